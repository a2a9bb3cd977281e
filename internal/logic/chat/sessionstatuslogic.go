package chat

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type SessionStatusLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Report the session lifecycle state and any pending suspension
func NewSessionStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SessionStatusLogic {
	return &SessionStatusLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SessionStatusLogic) SessionStatus(req *types.SessionStatusRequest) (*types.SessionStatusResponse, error) {
	if _, err := l.svcCtx.DB.GetChat(l.ctx, req.ChatId); err != nil {
		return nil, err
	}
	resp := l.svcCtx.Mediator.SessionStatus(req.ChatId)
	return &resp, nil
}
