package task

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ListTasksLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListTasksLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListTasksLogic {
	return &ListTasksLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListTasksLogic) ListTasks() (*types.ListTasksResponse, error) {
	rows, err := l.svcCtx.DB.ListTasks(l.ctx)
	if err != nil {
		l.Errorf("Failed to list tasks: %v", err)
		return nil, err
	}

	tasks := make([]types.Task, 0, len(rows))
	for _, t := range rows {
		tasks = append(tasks, toTask(t))
	}
	return &types.ListTasksResponse{Tasks: tasks}, nil
}
