package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/helmdeck/helm/internal/httputil"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/svc"
	"github.com/helmdeck/helm/internal/types"
)

// Send a user message and stream the agent's turn back as Server-Sent
// Events. The stream carries one JSON StreamEvent per data line and ends
// after the done event.
//
// A dropped client connection counts as an abort: the turn is cancelled
// through the same path as the cancel endpoint and the handler drains
// the remaining events while it winds down.
func SendMessageHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SendMessageRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		if req.Content == "" {
			httputil.Error(w, errors.New("content is required"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			httputil.InternalError(w, "streaming unsupported")
			return
		}

		events, err := svcCtx.Mediator.SendMessage(r.Context(), req.ChatId, req.Content, req.Model)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		clientGone := r.Context().Done()
		for {
			select {
			case ev, open := <-events:
				if !open {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					logging.Errorf("Failed to marshal stream event: %v", err)
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()

			case <-clientGone:
				logging.Infof("SSE client left chat %s mid-turn, cancelling", req.ChatId)
				if err := svcCtx.Mediator.Cancel(req.ChatId); err != nil {
					logging.Warnf("Cancel after disconnect on chat %s: %v", req.ChatId, err)
				}
				for range events {
				}
				return
			}
		}
	}
}
