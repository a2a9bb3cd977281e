package chat

import (
	"database/sql"
	"errors"
	"net/http"

	chatcore "github.com/helmdeck/helm/internal/chat"
	"github.com/helmdeck/helm/internal/httputil"
)

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, chatcore.ErrChatNotFound):
		httputil.NotFound(w, "chat not found")
	case errors.Is(err, chatcore.ErrSessionBusy):
		httputil.Conflict(w, "a turn is already running on this chat")
	case errors.Is(err, chatcore.ErrNoPendingPermission):
		httputil.Conflict(w, "no pending permission request")
	case errors.Is(err, chatcore.ErrNoPendingInput):
		httputil.Conflict(w, "no pending input request")
	case errors.Is(err, chatcore.ErrNoActiveTurn):
		httputil.Conflict(w, "no active turn")
	default:
		httputil.Error(w, err)
	}
}
