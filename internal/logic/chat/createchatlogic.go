package chat

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type CreateChatLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Create new chat
func NewCreateChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateChatLogic {
	return &CreateChatLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateChatLogic) CreateChat(req *types.CreateChatRequest) (*types.CreateChatResponse, error) {
	title := req.Title
	if title == "" {
		title = "New Chat"
	}

	if req.AgentId != "" {
		if _, err := l.svcCtx.DB.GetAgent(l.ctx, req.AgentId); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, errors.New("agent profile not found")
			}
			return nil, err
		}
	}

	chat, err := l.svcCtx.DB.CreateChat(l.ctx, db.CreateChatParams{
		ID:      uuid.New().String(),
		Title:   title,
		AgentID: req.AgentId,
	})
	if err != nil {
		l.Errorf("Failed to create chat: %v", err)
		return nil, err
	}

	return &types.CreateChatResponse{Chat: toChat(chat)}, nil
}
