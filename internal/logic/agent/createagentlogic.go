package agent

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type CreateAgentLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Create an agent profile
func NewCreateAgentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateAgentLogic {
	return &CreateAgentLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateAgentLogic) CreateAgent(req *types.CreateAgentRequest) (*types.CreateAgentResponse, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Provider != "" && req.Provider != "cli" && req.Provider != "anthropic" {
		return nil, errors.New("provider must be cli or anthropic")
	}

	agent, err := l.svcCtx.DB.CreateAgent(l.ctx, db.CreateAgentParams{
		ID:           uuid.New().String(),
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		Provider:     req.Provider,
	})
	if err != nil {
		l.Errorf("Failed to create agent: %v", err)
		return nil, err
	}

	return &types.CreateAgentResponse{Agent: toProfile(agent)}, nil
}
