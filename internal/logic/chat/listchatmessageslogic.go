package chat

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ListChatMessagesLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// List a chat's messages in order, without the chat envelope
func NewListChatMessagesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListChatMessagesLogic {
	return &ListChatMessagesLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListChatMessagesLogic) ListChatMessages(req *types.ListChatMessagesRequest) (*types.ListChatMessagesResponse, error) {
	if _, err := l.svcCtx.DB.GetChat(l.ctx, req.Id); err != nil {
		return nil, err
	}

	rows, err := l.svcCtx.DB.ListChatMessages(l.ctx, req.Id)
	if err != nil {
		l.Errorf("Failed to list messages for chat %s: %v", req.Id, err)
		return nil, err
	}

	messages := make([]types.ChatMessage, 0, len(rows))
	for _, m := range rows {
		messages = append(messages, toMessage(m))
	}
	return &types.ListChatMessagesResponse{Messages: messages}, nil
}
