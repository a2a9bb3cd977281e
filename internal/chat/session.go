package chat

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/helmdeck/helm/internal/agent/ai"
)

// Status is a session's lifecycle state. A finished turn returns the
// session to idle; the terminal outcome lives on the persisted message.
type Status string

const (
	StatusIdle               Status = "idle"
	StatusStreaming          Status = "streaming"
	StatusAwaitingPermission Status = "awaiting_permission"
	StatusAwaitingInput      Status = "awaiting_input"
	StatusCancelling         Status = "cancelling"
)

// TurnState carries everything owned by one in-flight turn: the message
// being assembled, the suspension gate, the provider turn handle, and
// the cancel func for the turn context.
type TurnState struct {
	MessageID string
	Assembler *Assembler
	Gate      *Gate
	Turn      ai.Turn
	Cancel    context.CancelFunc

	cancelled atomic.Bool
}

// MarkCancelled flips the turn to cancelled. Returns false if it
// already was, so cancellation runs once.
func (ts *TurnState) MarkCancelled() bool {
	return ts.cancelled.CompareAndSwap(false, true)
}

// Cancelled reports whether the turn was cancelled.
func (ts *TurnState) Cancelled() bool {
	return ts.cancelled.Load()
}

// Session serializes turns for one chat. At most one TurnState is
// active at a time; starting a second fails with ErrSessionBusy.
type Session struct {
	ChatID string

	mu          sync.Mutex
	status      Status
	turn        *TurnState
	alwaysAllow map[string]bool
}

func newSession(chatID string) *Session {
	return &Session{
		ChatID:      chatID,
		status:      StatusIdle,
		alwaysAllow: make(map[string]bool),
	}
}

// BeginTurn installs ts as the active turn.
func (s *Session) BeginTurn(ts *TurnState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn != nil {
		return ErrSessionBusy
	}
	s.turn = ts
	s.status = StatusStreaming
	return nil
}

// EndTurn clears ts if it is still the active turn and returns the
// session to idle.
func (s *Session) EndTurn(ts *TurnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn == ts {
		s.turn = nil
		s.status = StatusIdle
	}
}

// Turn returns the active turn, or nil.
func (s *Session) Turn() *TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Status returns the session's lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus records a lifecycle transition.
func (s *Session) SetStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// AllowAlways remembers a standing approval for a tool in this session.
func (s *Session) AllowAlways(toolName string) {
	s.mu.Lock()
	s.alwaysAllow[toolName] = true
	s.mu.Unlock()
}

// IsAlwaysAllowed reports whether a tool has a standing approval.
func (s *Session) IsAlwaysAllowed(toolName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alwaysAllow[toolName]
}

// Registry hands out the Session for each chat, creating on first use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for chatID, creating it if needed.
func (r *Registry) Get(chatID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	if !ok {
		s = newSession(chatID)
		r.sessions[chatID] = s
	}
	return s
}

// Peek returns the session for chatID without creating one.
func (r *Registry) Peek(chatID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[chatID]
}

// Remove drops the session for a deleted chat.
func (r *Registry) Remove(chatID string) {
	r.mu.Lock()
	delete(r.sessions, chatID)
	r.mu.Unlock()
}
