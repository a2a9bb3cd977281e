package handler

import (
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Liveness probe
func HealthCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, &types.HealthResponse{
			Status:  "ok",
			Version: Version,
		})
	}
}
