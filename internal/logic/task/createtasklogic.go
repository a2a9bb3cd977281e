package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/scheduler"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type CreateTaskLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Create a scheduled task
func NewCreateTaskLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateTaskLogic {
	return &CreateTaskLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateTaskLogic) CreateTask(req *types.CreateTaskRequest) (*types.CreateTaskResponse, error) {
	if req.Name == "" || req.Prompt == "" {
		return nil, errors.New("name and prompt are required")
	}
	if err := scheduler.ValidateSchedule(req.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", req.Schedule, err)
	}
	if req.AgentId != "" {
		if _, err := l.svcCtx.DB.GetAgent(l.ctx, req.AgentId); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, errors.New("agent profile not found")
			}
			return nil, err
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	task, err := l.svcCtx.DB.CreateTask(l.ctx, db.CreateTaskParams{
		ID:       uuid.New().String(),
		AgentID:  req.AgentId,
		Name:     req.Name,
		Schedule: req.Schedule,
		Prompt:   req.Prompt,
		Enabled:  enabled,
	})
	if err != nil {
		l.Errorf("Failed to create task: %v", err)
		return nil, err
	}

	if err := l.svcCtx.Scheduler.Reload(l.ctx); err != nil {
		l.Errorf("Failed to reload scheduler: %v", err)
	}

	return &types.CreateTaskResponse{Task: toTask(task)}, nil
}
