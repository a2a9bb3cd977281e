package agent

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	agentlogic "github.com/helmdeck/helm/internal/logic/agent"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

func GetAgentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GetAgentRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := agentlogic.NewGetAgentLogic(r.Context(), svcCtx)
		resp, err := l.GetAgent(&req)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
