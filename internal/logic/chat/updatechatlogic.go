package chat

import (
	"context"
	"errors"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type UpdateChatLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Rename a chat
func NewUpdateChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateChatLogic {
	return &UpdateChatLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UpdateChatLogic) UpdateChat(req *types.UpdateChatRequest) (*types.UpdateChatResponse, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	if _, err := l.svcCtx.DB.GetChat(l.ctx, req.Id); err != nil {
		return nil, err
	}
	if err := l.svcCtx.DB.UpdateChatTitle(l.ctx, req.Id, req.Title); err != nil {
		l.Errorf("Failed to update chat %s: %v", req.Id, err)
		return nil, err
	}

	chat, err := l.svcCtx.DB.GetChat(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}
	return &types.UpdateChatResponse{Chat: toChat(chat)}, nil
}
