package chat

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ListChatsLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// List chats, most recently active first
func NewListChatsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListChatsLogic {
	return &ListChatsLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListChatsLogic) ListChats(req *types.ListChatsRequest) (*types.ListChatsResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := l.svcCtx.DB.ListChats(l.ctx, limit, offset)
	if err != nil {
		l.Errorf("Failed to list chats: %v", err)
		return nil, err
	}
	total, err := l.svcCtx.DB.CountChats(l.ctx)
	if err != nil {
		return nil, err
	}

	chats := make([]types.Chat, 0, len(rows))
	for _, c := range rows {
		chats = append(chats, toChat(c))
	}

	return &types.ListChatsResponse{Chats: chats, Total: total}, nil
}
