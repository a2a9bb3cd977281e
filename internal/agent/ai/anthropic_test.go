package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

// A stalled upstream that sends SSE headers and then holds the
// connection open until the client goes away.
func stalledStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInterruptAbortsStream(t *testing.T) {
	srv := stalledStreamServer(t)
	p := NewAnthropicProvider("test-key", "test-model",
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	turn, err := p.Start(context.Background(), &TurnRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		for range turn.Events() {
		}
		close(done)
	}()

	if err := turn.Interrupt(); err != nil {
		t.Fatalf("Interrupt: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close after Interrupt")
	}
}
