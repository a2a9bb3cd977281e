package task

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type RunTaskLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Fire a task immediately, outside its schedule
func NewRunTaskLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RunTaskLogic {
	return &RunTaskLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RunTaskLogic) RunTask(req *types.RunTaskRequest) (*types.RunTaskResponse, error) {
	runID, err := l.svcCtx.Scheduler.RunNow(req.Id)
	if err != nil {
		l.Errorf("Failed to trigger task %s: %v", req.Id, err)
		return nil, err
	}
	return &types.RunTaskResponse{RunId: runID}, nil
}
