package agent

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
)

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		httputil.NotFound(w, "agent not found")
		return
	}
	httputil.Error(w, err)
}
