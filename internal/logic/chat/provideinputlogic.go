package chat

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ProvideInputLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Answer a pending input request from the agent
func NewProvideInputLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ProvideInputLogic {
	return &ProvideInputLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ProvideInputLogic) ProvideInput(req *types.ProvideInputRequest) (*types.ProvideInputResponse, error) {
	if err := l.svcCtx.Mediator.ProvideInput(req.ChatId, req.RequestId, req.Value); err != nil {
		l.Infof("Input resolve rejected for chat %s request %s: %v", req.ChatId, req.RequestId, err)
		return nil, err
	}
	return &types.ProvideInputResponse{Accepted: true}, nil
}
