package chat

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	chatlogic "github.com/helmdeck/helm/internal/logic/chat"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

// Create new chat
func CreateChatHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateChatRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := chatlogic.NewCreateChatLogic(r.Context(), svcCtx)
		resp, err := l.CreateChat(&req)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
