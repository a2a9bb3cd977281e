package task

import (
	"context"
	"fmt"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/scheduler"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type UpdateTaskLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Update a task. Omitted fields keep their current values.
func NewUpdateTaskLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateTaskLogic {
	return &UpdateTaskLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UpdateTaskLogic) UpdateTask(req *types.UpdateTaskRequest) (*types.UpdateTaskResponse, error) {
	current, err := l.svcCtx.DB.GetTask(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}

	params := db.UpdateTaskParams{
		ID:       req.Id,
		Name:     current.Name,
		Schedule: current.Schedule,
		Prompt:   current.Prompt,
		Enabled:  current.Enabled,
	}
	if req.Name != "" {
		params.Name = req.Name
	}
	if req.Schedule != "" {
		if err := scheduler.ValidateSchedule(req.Schedule); err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", req.Schedule, err)
		}
		params.Schedule = req.Schedule
	}
	if req.Prompt != "" {
		params.Prompt = req.Prompt
	}
	if req.Enabled != nil {
		params.Enabled = *req.Enabled
	}

	task, err := l.svcCtx.DB.UpdateTask(l.ctx, params)
	if err != nil {
		l.Errorf("Failed to update task %s: %v", req.Id, err)
		return nil, err
	}

	if err := l.svcCtx.Scheduler.Reload(l.ctx); err != nil {
		l.Errorf("Failed to reload scheduler: %v", err)
	}

	return &types.UpdateTaskResponse{Task: toTask(task)}, nil
}
