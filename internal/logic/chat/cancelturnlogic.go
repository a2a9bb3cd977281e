package chat

import (
	"context"
	"errors"

	chatcore "github.com/helmdeck/helm/internal/chat"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type CancelTurnLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Abort the active turn on a chat
func NewCancelTurnLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CancelTurnLogic {
	return &CancelTurnLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CancelTurnLogic) CancelTurn(req *types.CancelTurnRequest) (*types.CancelTurnResponse, error) {
	if _, err := l.svcCtx.DB.GetChat(l.ctx, req.ChatId); err != nil {
		return nil, err
	}

	// Cancel is idempotent. Cancelling an idle chat, or one whose turn
	// already finished, succeeds without doing anything.
	if err := l.svcCtx.Mediator.Cancel(req.ChatId); err != nil {
		if errors.Is(err, chatcore.ErrNoActiveTurn) {
			return &types.CancelTurnResponse{Cancelled: false}, nil
		}
		return nil, err
	}
	return &types.CancelTurnResponse{Cancelled: true}, nil
}
