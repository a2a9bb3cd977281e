package task

import (
	"context"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ToggleTaskLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Flip a task between enabled and disabled
func NewToggleTaskLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ToggleTaskLogic {
	return &ToggleTaskLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ToggleTaskLogic) ToggleTask(req *types.ToggleTaskRequest) (*types.ToggleTaskResponse, error) {
	current, err := l.svcCtx.DB.GetTask(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}

	task, err := l.svcCtx.DB.UpdateTask(l.ctx, db.UpdateTaskParams{
		ID:       current.ID,
		Name:     current.Name,
		Schedule: current.Schedule,
		Prompt:   current.Prompt,
		Enabled:  !current.Enabled,
	})
	if err != nil {
		l.Errorf("Failed to toggle task %s: %v", req.Id, err)
		return nil, err
	}

	if err := l.svcCtx.Scheduler.Reload(l.ctx); err != nil {
		l.Errorf("Failed to reload scheduler: %v", err)
	}

	return &types.ToggleTaskResponse{Task: toTask(task)}, nil
}
