package task

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type DeleteTaskLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Delete a task and its run history
func NewDeleteTaskLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteTaskLogic {
	return &DeleteTaskLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DeleteTaskLogic) DeleteTask(req *types.DeleteTaskRequest) (*types.DeleteTaskResponse, error) {
	if _, err := l.svcCtx.DB.GetTask(l.ctx, req.Id); err != nil {
		return nil, err
	}
	if err := l.svcCtx.DB.DeleteTask(l.ctx, req.Id); err != nil {
		l.Errorf("Failed to delete task %s: %v", req.Id, err)
		return nil, err
	}
	if err := l.svcCtx.Scheduler.Reload(l.ctx); err != nil {
		l.Errorf("Failed to reload scheduler: %v", err)
	}
	return &types.DeleteTaskResponse{Success: true}, nil
}
