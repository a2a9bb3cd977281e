package chat

import "errors"

var (
	// ErrSessionBusy is returned when a turn is started on a session
	// that already has one active.
	ErrSessionBusy = errors.New("session already has an active turn")

	// ErrSuspensionAlreadyPending is returned when the agent raises a
	// second suspension before the first is resolved.
	ErrSuspensionAlreadyPending = errors.New("a suspension is already pending")

	// ErrNoPendingPermission is returned when a permission decision
	// arrives and no matching permission request is waiting.
	ErrNoPendingPermission = errors.New("no pending permission request")

	// ErrNoPendingInput is returned when input arrives and no matching
	// input request is waiting.
	ErrNoPendingInput = errors.New("no pending input request")

	// ErrNoActiveTurn is returned when cancelling a session that has
	// nothing running.
	ErrNoActiveTurn = errors.New("no active turn")
)
