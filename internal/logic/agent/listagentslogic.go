package agent

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ListAgentsLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListAgentsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListAgentsLogic {
	return &ListAgentsLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListAgentsLogic) ListAgents() (*types.ListAgentsResponse, error) {
	rows, err := l.svcCtx.DB.ListAgents(l.ctx)
	if err != nil {
		l.Errorf("Failed to list agents: %v", err)
		return nil, err
	}

	agents := make([]types.AgentProfile, 0, len(rows))
	for _, a := range rows {
		agents = append(agents, toProfile(a))
	}
	return &types.ListAgentsResponse{Agents: agents}, nil
}
