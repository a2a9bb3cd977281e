package events

import "github.com/helmdeck/helm/internal/types"

// StatusChange is published whenever a chat session changes lifecycle state.
type StatusChange struct {
	ChatID    string
	Status    string
	RequestID string // set while a suspension is pending
	Kind      string // permission or input
}

// TitleChange is published when a chat title is refreshed.
type TitleChange struct {
	ChatID string
	Title  string
}

// Package-level topics shared across the server.
var (
	// Stream carries every streaming event so observers (the WebSocket
	// hub) see the same sequence as the SSE client.
	Stream = NewTopic[types.StreamEvent]()

	// SessionStatus carries session lifecycle transitions.
	SessionStatus = NewTopic[StatusChange]()

	// ChatTitle carries asynchronous title refreshes.
	ChatTitle = NewTopic[TitleChange]()
)
