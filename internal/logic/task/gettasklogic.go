package task

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type GetTaskLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Get a task with its recent run history
func NewGetTaskLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetTaskLogic {
	return &GetTaskLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetTaskLogic) GetTask(req *types.GetTaskRequest) (*types.GetTaskResponse, error) {
	task, err := l.svcCtx.DB.GetTask(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}

	rows, err := l.svcCtx.DB.ListTaskRuns(l.ctx, req.Id, 20)
	if err != nil {
		l.Errorf("Failed to list runs for task %s: %v", req.Id, err)
		return nil, err
	}

	runs := make([]types.TaskRun, 0, len(rows))
	for _, r := range rows {
		runs = append(runs, toRun(r))
	}

	return &types.GetTaskResponse{Task: toTask(task), Runs: runs}, nil
}
