package ai

import "encoding/json"

// EventKind identifies one member of the closed event union emitted by a
// Turn. Consumers switch on Kind; unknown kinds do not exist past the
// provider boundary, so raw protocol strings never leak upward.
type EventKind string

const (
	// KindSystem carries an informational message from the agent runtime.
	KindSystem EventKind = "system"
	// KindTextDelta carries an incremental chunk of visible assistant text.
	KindTextDelta EventKind = "text_delta"
	// KindThinkingDelta carries an incremental chunk of reasoning text.
	KindThinkingDelta EventKind = "thinking_delta"
	// KindToolUse carries a complete tool invocation with its full input.
	KindToolUse EventKind = "tool_use"
	// KindToolResult carries the outcome of a previously emitted tool use.
	KindToolResult EventKind = "tool_result"
	// KindPermissionRequest asks the user to approve or deny a tool call.
	// The turn is suspended until RespondPermission is called.
	KindPermissionRequest EventKind = "permission_request"
	// KindInputRequest asks the user a free-form question. The turn is
	// suspended until RespondInput is called.
	KindInputRequest EventKind = "input_request"
	// KindResult terminates the event stream for a turn.
	KindResult EventKind = "result"
	// KindError reports a provider failure. A result event may still follow.
	KindError EventKind = "error"
)

// Event is one item in a turn's event stream.
// Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	// Text is the delta payload for text/thinking kinds, the message for
	// system kinds, and the final summary text for result kinds.
	Text string

	// Tool fields, set for tool_use, tool_result, and permission_request.
	ToolUseID string
	ToolName  string
	ToolInput json.RawMessage

	// Content is the tool result payload.
	Content string
	IsError bool

	// RequestID correlates a suspension request with its response.
	RequestID string
	// Prompt is the question text for input_request.
	Prompt string

	// Success reports whether a result event ended the turn cleanly.
	Success bool

	// Err is set for error events.
	Err error
}
