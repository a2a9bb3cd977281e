package ai

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

type writeBuffer struct {
	bytes.Buffer
}

func (w *writeBuffer) Close() error { return nil }

func newTestTurn() (*cliTurn, *writeBuffer) {
	buf := &writeBuffer{}
	return &cliTurn{
		stdin:   buf,
		events:  make(chan Event, 100),
		pending: make(map[string]pendingControl),
	}, buf
}

func drain(t *cliTurn) []Event {
	var out []Event
	for {
		select {
		case ev := <-t.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestTextAndThinkingDeltas(t *testing.T) {
	turn, _ := newTestTurn()
	var acc toolAccum

	lines := []string{
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"thinking_delta","thinking":"hmm"}}}`,
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello"}}}`,
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"text_delta","text":" world"}}}`,
	}
	for _, l := range lines {
		turn.processLine(l, &acc)
	}

	events := drain(turn)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Kind != KindThinkingDelta || events[0].Text != "hmm" {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[1].Kind != KindTextDelta || events[1].Text != "Hello" {
		t.Errorf("event[1] = %+v", events[1])
	}
	if events[2].Text != " world" {
		t.Errorf("event[2] = %+v", events[2])
	}
}

func TestToolUseInputAccumulation(t *testing.T) {
	turn, _ := newTestTurn()
	var acc toolAccum

	lines := []string{
		`{"type":"stream_event","event":{"type":"content_block_start","content_block":{"type":"tool_use","id":"tu_1","name":"Bash"}}}`,
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"command\":"}}}`,
		`{"type":"stream_event","event":{"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"\"ls\"}"}}}`,
		`{"type":"stream_event","event":{"type":"content_block_stop"}}`,
	}
	for _, l := range lines {
		turn.processLine(l, &acc)
	}

	events := drain(turn)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (no partial tool events)", len(events))
	}
	ev := events[0]
	if ev.Kind != KindToolUse || ev.ToolUseID != "tu_1" || ev.ToolName != "Bash" {
		t.Fatalf("tool event = %+v", ev)
	}
	if got := gjson.GetBytes(ev.ToolInput, "command").String(); got != "ls" {
		t.Errorf("tool input command = %q, want ls", got)
	}
}

func TestToolResultEnvelope(t *testing.T) {
	turn, _ := newTestTurn()
	var acc toolAccum

	turn.processLine(`{"type":"user","message":{"content":[{"type":"tool_result","tool_use_id":"tu_1","content":[{"type":"text","text":"file.txt"}],"is_error":false}]}}`, &acc)

	events := drain(turn)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Kind != KindToolResult || ev.ToolUseID != "tu_1" || ev.Content != "file.txt" || ev.IsError {
		t.Errorf("tool result = %+v", ev)
	}
}

func TestResultLineTerminates(t *testing.T) {
	turn, _ := newTestTurn()
	var acc toolAccum

	if !turn.processLine(`{"type":"result","subtype":"success","result":"All done"}`, &acc) {
		t.Fatal("result line not reported as terminal")
	}
	events := drain(turn)
	if len(events) != 1 || events[0].Kind != KindResult || !events[0].Success || events[0].Text != "All done" {
		t.Fatalf("result event = %+v", events)
	}

	if turn.processLine(`{"type":"result","subtype":"error_during_execution","result":"boom"}`, &acc) != true {
		t.Fatal("error result not terminal")
	}
	events = drain(turn)
	if events[0].Success {
		t.Error("error result reported success")
	}
}

func TestPermissionRequestRoundTrip(t *testing.T) {
	turn, stdin := newTestTurn()
	var acc toolAccum

	turn.processLine(`{"type":"control_request","request_id":"req_1","request":{"subtype":"can_use_tool","tool_name":"Bash","input":{"command":"rm -rf /tmp/x"}}}`, &acc)

	events := drain(turn)
	if len(events) != 1 || events[0].Kind != KindPermissionRequest {
		t.Fatalf("events = %+v", events)
	}
	if events[0].RequestID != "req_1" || events[0].ToolName != "Bash" {
		t.Errorf("permission event = %+v", events[0])
	}

	if err := turn.RespondPermission("req_1", true, ""); err != nil {
		t.Fatalf("RespondPermission: %v", err)
	}
	wire := gjson.Parse(strings.TrimSpace(stdin.String()))
	if wire.Get("type").String() != "control_response" {
		t.Fatalf("wire = %s", stdin.String())
	}
	if wire.Get("response.request_id").String() != "req_1" {
		t.Errorf("request_id = %s", wire.Get("response.request_id").String())
	}
	if wire.Get("response.response.behavior").String() != "allow" {
		t.Errorf("behavior = %s", wire.Get("response.response.behavior").String())
	}
	if wire.Get("response.response.updatedInput.command").String() != "rm -rf /tmp/x" {
		t.Errorf("updatedInput not echoed: %s", stdin.String())
	}

	// Second resolution of the same request fails.
	if err := turn.RespondPermission("req_1", false, "no"); err != ErrNoPendingRequest {
		t.Errorf("second resolve err = %v, want ErrNoPendingRequest", err)
	}
}

func TestPermissionDeny(t *testing.T) {
	turn, stdin := newTestTurn()
	var acc toolAccum

	turn.processLine(`{"type":"control_request","request_id":"req_2","request":{"subtype":"can_use_tool","tool_name":"Write","input":{}}}`, &acc)
	drain(turn)

	if err := turn.RespondPermission("req_2", false, "not allowed"); err != nil {
		t.Fatalf("RespondPermission: %v", err)
	}
	wire := gjson.Parse(strings.TrimSpace(stdin.String()))
	if wire.Get("response.response.behavior").String() != "deny" {
		t.Errorf("behavior = %s", wire.Get("response.response.behavior").String())
	}
	if wire.Get("response.response.message").String() != "not allowed" {
		t.Errorf("message = %s", wire.Get("response.response.message").String())
	}
}

func TestInputRequestRoundTrip(t *testing.T) {
	turn, stdin := newTestTurn()
	var acc toolAccum

	turn.processLine(`{"type":"control_request","request_id":"req_3","request":{"subtype":"can_use_tool","tool_name":"AskUserQuestion","input":{"question":"Which branch?"}}}`, &acc)

	events := drain(turn)
	if len(events) != 1 || events[0].Kind != KindInputRequest {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Prompt != "Which branch?" {
		t.Errorf("prompt = %q", events[0].Prompt)
	}

	// A permission response cannot resolve an input request.
	if err := turn.RespondPermission("req_3", true, ""); err != ErrNoPendingRequest {
		t.Errorf("cross-kind resolve err = %v, want ErrNoPendingRequest", err)
	}

	if err := turn.RespondInput("req_3", "main"); err != nil {
		t.Fatalf("RespondInput: %v", err)
	}
	wire := gjson.Parse(strings.TrimSpace(stdin.String()))
	if wire.Get("response.response.updatedInput.answer").String() != "main" {
		t.Errorf("answer not in response: %s", stdin.String())
	}
	if wire.Get("response.response.updatedInput.question").String() != "Which branch?" {
		t.Errorf("original input not echoed: %s", stdin.String())
	}
}

func TestUnknownControlSubtypeAcked(t *testing.T) {
	turn, stdin := newTestTurn()
	var acc toolAccum

	turn.processLine(`{"type":"control_request","request_id":"req_9","request":{"subtype":"set_model"}}`, &acc)

	if events := drain(turn); len(events) != 0 {
		t.Fatalf("unexpected events: %+v", events)
	}
	wire := gjson.Parse(strings.TrimSpace(stdin.String()))
	if wire.Get("response.subtype").String() != "success" || wire.Get("response.request_id").String() != "req_9" {
		t.Errorf("ack = %s", stdin.String())
	}
}

func TestBuildPromptIncludesHistory(t *testing.T) {
	req := &TurnRequest{
		Prompt: "and now?",
		History: []HistoryMessage{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi there"},
		},
	}
	prompt := buildPrompt(req)
	for _, want := range []string{"user: hello", "assistant: hi there", "user: and now?"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if got := buildPrompt(&TurnRequest{Prompt: "solo"}); got != "solo" {
		t.Errorf("no-history prompt = %q", got)
	}
}
