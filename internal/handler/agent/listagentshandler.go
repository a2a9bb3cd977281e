package agent

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	agentlogic "github.com/helmdeck/helm/internal/logic/agent"
	"github.com/helmdeck/helm/internal/svc"
)

func ListAgentsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := agentlogic.NewListAgentsLogic(r.Context(), svcCtx)
		resp, err := l.ListAgents()
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
