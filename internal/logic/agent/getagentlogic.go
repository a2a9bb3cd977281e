package agent

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type GetAgentLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetAgentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetAgentLogic {
	return &GetAgentLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetAgentLogic) GetAgent(req *types.GetAgentRequest) (*types.GetAgentResponse, error) {
	agent, err := l.svcCtx.DB.GetAgent(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}
	return &types.GetAgentResponse{Agent: toProfile(agent)}, nil
}
