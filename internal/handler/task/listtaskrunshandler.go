package task

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	tasklogic "github.com/helmdeck/helm/internal/logic/task"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

// List a task's run history
func ListTaskRunsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ListTaskRunsRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := tasklogic.NewListTaskRunsLogic(r.Context(), svcCtx)
		resp, err := l.ListTaskRuns(&req)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
