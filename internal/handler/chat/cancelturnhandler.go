package chat

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	chatlogic "github.com/helmdeck/helm/internal/logic/chat"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

// Abort the active turn on a chat
func CancelTurnHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CancelTurnRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := chatlogic.NewCancelTurnLogic(r.Context(), svcCtx)
		resp, err := l.CancelTurn(&req)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
