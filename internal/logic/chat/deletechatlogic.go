package chat

import (
	"context"

	chatcore "github.com/helmdeck/helm/internal/chat"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type DeleteChatLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Delete a chat and its messages
func NewDeleteChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteChatLogic {
	return &DeleteChatLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DeleteChatLogic) DeleteChat(req *types.DeleteChatRequest) (*types.DeleteChatResponse, error) {
	if _, err := l.svcCtx.DB.GetChat(l.ctx, req.Id); err != nil {
		return nil, err
	}

	// A streaming chat cannot be deleted out from under its turn.
	if st := l.svcCtx.Mediator.SessionStatus(req.Id); st.Status != string(chatcore.StatusIdle) {
		return nil, chatcore.ErrSessionBusy
	}

	if err := l.svcCtx.DB.DeleteChat(l.ctx, req.Id); err != nil {
		l.Errorf("Failed to delete chat %s: %v", req.Id, err)
		return nil, err
	}
	l.svcCtx.Mediator.Registry().Remove(req.Id)

	return &types.DeleteChatResponse{Success: true}, nil
}
