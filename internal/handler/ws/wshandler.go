package ws

import (
	"net/http"

	"github.com/helmdeck/helm/internal/svc"
)

// Upgrade to the realtime observer socket. Optional ?chatId= narrows
// the broadcast to one chat from the start.
func WSHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svcCtx.Hub.ServeWS(w, r)
	}
}
