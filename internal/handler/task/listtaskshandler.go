package task

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	tasklogic "github.com/helmdeck/helm/internal/logic/task"
	"github.com/helmdeck/helm/internal/svc"
)

func ListTasksHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := tasklogic.NewListTasksLogic(r.Context(), svcCtx)
		resp, err := l.ListTasks()
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, resp)
	}
}
