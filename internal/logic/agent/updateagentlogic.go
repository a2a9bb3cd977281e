package agent

import (
	"context"
	"errors"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type UpdateAgentLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Update an agent profile. Omitted fields keep their current values.
func NewUpdateAgentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateAgentLogic {
	return &UpdateAgentLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UpdateAgentLogic) UpdateAgent(req *types.UpdateAgentRequest) (*types.UpdateAgentResponse, error) {
	current, err := l.svcCtx.DB.GetAgent(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}

	if req.Provider != "" && req.Provider != "cli" && req.Provider != "anthropic" {
		return nil, errors.New("provider must be cli or anthropic")
	}

	params := db.UpdateAgentParams{
		ID:           req.Id,
		Name:         current.Name,
		SystemPrompt: current.SystemPrompt,
		Model:        current.Model,
		Provider:     current.Provider,
	}
	if req.Name != "" {
		params.Name = req.Name
	}
	if req.SystemPrompt != "" {
		params.SystemPrompt = req.SystemPrompt
	}
	if req.Model != "" {
		params.Model = req.Model
	}
	if req.Provider != "" {
		params.Provider = req.Provider
	}

	agent, err := l.svcCtx.DB.UpdateAgent(l.ctx, params)
	if err != nil {
		l.Errorf("Failed to update agent %s: %v", req.Id, err)
		return nil, err
	}
	return &types.UpdateAgentResponse{Agent: toProfile(agent)}, nil
}
