package task

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ListTaskRunsLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// List a task's run history, newest first
func NewListTaskRunsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListTaskRunsLogic {
	return &ListTaskRunsLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListTaskRunsLogic) ListTaskRuns(req *types.ListTaskRunsRequest) (*types.ListTaskRunsResponse, error) {
	if _, err := l.svcCtx.DB.GetTask(l.ctx, req.Id); err != nil {
		return nil, err
	}

	rows, err := l.svcCtx.DB.ListTaskRuns(l.ctx, req.Id, 100)
	if err != nil {
		l.Errorf("Failed to list runs for task %s: %v", req.Id, err)
		return nil, err
	}

	runs := make([]types.TaskRun, 0, len(rows))
	for _, r := range rows {
		runs = append(runs, toRun(r))
	}
	return &types.ListTaskRunsResponse{Runs: runs}, nil
}
