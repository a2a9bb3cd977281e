package chat

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	chatlogic "github.com/helmdeck/helm/internal/logic/chat"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

// List a chat's ordered message history
func ListChatMessagesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ListChatMessagesRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := chatlogic.NewListChatMessagesLogic(r.Context(), svcCtx)
		resp, err := l.ListChatMessages(&req)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
