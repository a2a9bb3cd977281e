package ai

import (
	"context"
	"errors"
)

// Common provider errors.
var (
	// ErrNoPendingRequest is returned when a response arrives for a
	// request the turn is not waiting on.
	ErrNoPendingRequest = errors.New("no pending request with that id")
	// ErrTurnClosed is returned when interacting with a finished turn.
	ErrTurnClosed = errors.New("turn already closed")
	// ErrUnsupported is returned by providers that cannot suspend.
	ErrUnsupported = errors.New("operation not supported by this provider")
)

// HistoryMessage is one prior conversation message handed to a provider
// so it can rebuild context for the next turn.
type HistoryMessage struct {
	Role    string // user or assistant
	Content string
}

// TurnRequest describes one agent turn to run.
type TurnRequest struct {
	SessionID string
	Prompt    string
	System    string
	Model     string
	History   []HistoryMessage
}

// Turn is one in-flight agent turn. Events delivers the closed event
// union in arrival order and is closed when the turn ends, after a
// result event on clean shutdown. The Respond methods answer suspension
// requests by id; Interrupt asks the agent to abort the turn without
// tearing down the provider.
type Turn interface {
	Events() <-chan Event
	RespondPermission(requestID string, allow bool, message string) error
	RespondInput(requestID, value string) error
	Interrupt() error
	Close() error
}

// Provider starts agent turns. Implementations: CLIProvider wraps an
// agent CLI subprocess, AnthropicProvider calls the API directly.
type Provider interface {
	ID() string
	Start(ctx context.Context, req *TurnRequest) (Turn, error)
}
