package chat

import (
	"context"
	"encoding/json"
	"sync"
)

// SuspensionKind tags a pending suspension. A session has at most one
// suspension of either kind at a time.
type SuspensionKind string

const (
	SuspensionPermission SuspensionKind = "permission"
	SuspensionInput      SuspensionKind = "input"
)

// Resolution is the user's answer to a suspension.
type Resolution struct {
	// Permission fields.
	Approved bool
	Message  string
	Always   bool
	// Input field.
	Value string
}

// Suspension is one paused point in a turn: the agent asked something
// and the turn blocks until the user answers or the turn is cancelled.
type Suspension struct {
	ID        string
	Kind      SuspensionKind
	ToolName  string
	ToolInput json.RawMessage
	Prompt    string

	once sync.Once
	ch   chan Resolution
}

func newSuspension(id string, kind SuspensionKind) *Suspension {
	return &Suspension{ID: id, Kind: kind, ch: make(chan Resolution, 1)}
}

// resolve delivers the answer. Only the first call wins; later calls
// report false.
func (s *Suspension) resolve(r Resolution) bool {
	delivered := false
	s.once.Do(func() {
		s.ch <- r
		delivered = true
	})
	return delivered
}

// Wait blocks until the suspension is resolved or ctx is cancelled.
func (s *Suspension) Wait(ctx context.Context) (Resolution, error) {
	select {
	case r := <-s.ch:
		return r, nil
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	}
}

// Gate holds the single pending suspension for a session and checks
// that resolutions match it by id and kind.
type Gate struct {
	mu       sync.Mutex
	pending  *Suspension
	resolved string // id of the last answered suspension
}

// Begin registers s as the pending suspension. Fails with
// ErrSuspensionAlreadyPending if another one is still unresolved.
func (g *Gate) Begin(s *Suspension) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending != nil {
		return ErrSuspensionAlreadyPending
	}
	g.pending = s
	return nil
}

// End clears s if it is still the pending suspension.
func (g *Gate) End(s *Suspension) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == s {
		g.pending = nil
	}
}

// Pending returns the current suspension, or nil.
func (g *Gate) Pending() *Suspension {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// ResolvePermission answers the pending permission request. The request
// id must match and the pending suspension must be a permission request,
// otherwise ErrNoPendingPermission. Re-resolving an already answered
// request is a no-op, so duplicate client retries are harmless.
func (g *Gate) ResolvePermission(requestID string, approved bool, message string, always bool) error {
	s, done := g.take(requestID, SuspensionPermission)
	if done {
		return nil
	}
	if s == nil {
		return ErrNoPendingPermission
	}
	s.resolve(Resolution{Approved: approved, Message: message, Always: always})
	return nil
}

// ResolveInput answers the pending input request.
func (g *Gate) ResolveInput(requestID, value string) error {
	s, done := g.take(requestID, SuspensionInput)
	if done {
		return nil
	}
	if s == nil {
		return ErrNoPendingInput
	}
	s.resolve(Resolution{Value: value})
	return nil
}

// take removes and returns the pending suspension when id and kind
// match. done reports that requestID was already answered.
func (g *Gate) take(requestID string, kind SuspensionKind) (s *Suspension, done bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolved == requestID {
		return nil, true
	}
	if g.pending == nil || g.pending.ID != requestID || g.pending.Kind != kind {
		return nil, false
	}
	s = g.pending
	g.pending = nil
	g.resolved = s.ID
	return s, false
}
