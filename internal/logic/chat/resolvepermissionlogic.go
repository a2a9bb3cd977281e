package chat

import (
	"context"

	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

type ResolvePermissionLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Answer a pending tool permission request
func NewResolvePermissionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ResolvePermissionLogic {
	return &ResolvePermissionLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ResolvePermissionLogic) ResolvePermission(req *types.ResolvePermissionRequest) (*types.ResolvePermissionResponse, error) {
	message := ""
	if !req.Approved {
		message = "denied by user"
	}

	if err := l.svcCtx.Mediator.ResolvePermission(req.ChatId, req.RequestId, req.Approved, message, req.Always); err != nil {
		l.Infof("Permission resolve rejected for chat %s request %s: %v", req.ChatId, req.RequestId, err)
		return nil, err
	}
	return &types.ResolvePermissionResponse{Accepted: true}, nil
}
