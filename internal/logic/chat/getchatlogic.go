package chat

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type GetChatLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Get a chat with its full message history
func NewGetChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetChatLogic {
	return &GetChatLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetChatLogic) GetChat(req *types.GetChatRequest) (*types.GetChatResponse, error) {
	chat, err := l.svcCtx.DB.GetChat(l.ctx, req.Id)
	if err != nil {
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

	return &types.GetChatResponse{
		Chat:     toChat(chat),
		Messages: messages,
	}, nil
}
