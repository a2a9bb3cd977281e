package agent

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type DeleteAgentLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Delete an agent profile. Chats that referenced it keep their history
// and fall back to the default provider on their next turn.
func NewDeleteAgentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteAgentLogic {
	return &DeleteAgentLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DeleteAgentLogic) DeleteAgent(req *types.DeleteAgentRequest) (*types.DeleteAgentResponse, error) {
	if _, err := l.svcCtx.DB.GetAgent(l.ctx, req.Id); err != nil {
		return nil, err
	}
	if err := l.svcCtx.DB.DeleteAgent(l.ctx, req.Id); err != nil {
		l.Errorf("Failed to delete agent %s: %v", req.Id, err)
		return nil, err
	}
	return &types.DeleteAgentResponse{Success: true}, nil
}
