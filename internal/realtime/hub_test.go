package realtime

import (
	"encoding/json"
	"testing"
)

func TestClientWatchFilter(t *testing.T) {
	c := newClient(nil, nil)

	if !c.Wants("chat-1") {
		t.Error("empty filter should pass every chat")
	}

	c.Watch("chat-1")
	if !c.Wants("chat-1") {
		t.Error("watched chat filtered out")
	}
	if c.Wants("chat-2") {
		t.Error("unwatched chat passed the filter")
	}
	if !c.Wants("") {
		t.Error("global frames must always pass")
	}

	c.Unwatch("chat-1")
	if !c.Wants("chat-2") {
		t.Error("filter should be open again after last unwatch")
	}
}

func TestBroadcastRespectsFilter(t *testing.T) {
	h := NewHub(nil)

	all := newClient(h, nil)
	only1 := newClient(h, nil)
	only1.Watch("chat-1")
	h.clients[all] = struct{}{}
	h.clients[only1] = struct{}{}

	h.broadcast(Envelope{Type: "stream", ChatId: "chat-2", Payload: "x"})

	if len(all.send) != 1 {
		t.Errorf("unfiltered client got %d frames, want 1", len(all.send))
	}
	if len(only1.send) != 0 {
		t.Errorf("filtered client got %d frames, want 0", len(only1.send))
	}

	var env Envelope
	if err := json.Unmarshal(<-all.send, &env); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if env.Type != "stream" || env.ChatId != "chat-2" {
		t.Errorf("frame = %+v", env)
	}
}

func TestBroadcastDropsSlowObserver(t *testing.T) {
	h := NewHub(nil)

	slow := newClient(h, nil)
	slow.send = make(chan []byte) // no buffer, never drained
	h.clients[slow] = struct{}{}

	h.broadcast(Envelope{Type: "stream", ChatId: "chat-1", Payload: "x"})

	if h.ClientCount() != 0 {
		t.Errorf("slow observer still registered, count = %d", h.ClientCount())
	}
}
