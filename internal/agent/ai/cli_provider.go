package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/helmdeck/helm/internal/logging"
)

// CLIProvider wraps an agent CLI (claude) as a turn provider. The
// subprocess speaks stream-json on stdout; suspension requests arrive as
// control_request lines and are answered with control_response lines on
// stdin.
type CLIProvider struct {
	command string
	args    []string
	workDir string
}

// NewCLIProvider creates a provider around an arbitrary agent command.
func NewCLIProvider(command string, args []string, workDir string) *CLIProvider {
	return &CLIProvider{command: command, args: args, workDir: workDir}
}

// NewClaudeProvider creates a provider that wraps the Claude CLI with the
// flags needed for bidirectional stream-json.
func NewClaudeProvider(workDir string) *CLIProvider {
	return &CLIProvider{
		command: "claude",
		args: []string{
			"--print",
			"--verbose",
			"--output-format", "stream-json",
			"--input-format", "stream-json",
			"--include-partial-messages",
		},
		workDir: workDir,
	}
}

// ID returns the provider identifier
func (p *CLIProvider) ID() string {
	return "cli"
}

// Start launches the subprocess and begins one turn. The prompt is
// delivered as a stream-json user message on stdin; stdin stays open for
// control responses until the turn ends.
func (p *CLIProvider) Start(ctx context.Context, req *TurnRequest) (Turn, error) {
	args := append([]string{}, p.args...)
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}
	if req.System != "" {
		args = append(args, "--system-prompt", req.System)
	}

	cmd := exec.CommandContext(ctx, p.command, args...)
	if p.workDir != "" {
		cmd.Dir = p.workDir
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", p.command, err)
	}
	logging.Infof("[CLIProvider] started %s pid=%d session=%s", p.command, cmd.Process.Pid, req.SessionID)

	t := &cliTurn{
		cmd:     cmd,
		stdin:   stdin,
		events:  make(chan Event, 100),
		pending: make(map[string]pendingControl),
	}

	if err := t.sendUserMessage(buildPrompt(req)); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("send prompt: %w", err)
	}

	go t.run(ctx, stdout, stderr)
	return t, nil
}

// buildPrompt folds prior history into the prompt text so the subprocess
// sees conversation context without a session store of its own.
func buildPrompt(req *TurnRequest) string {
	if len(req.History) == 0 {
		return req.Prompt
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n\n")
	for _, m := range req.History {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("user: ")
	b.WriteString(req.Prompt)
	return b.String()
}

type pendingControl struct {
	kind  EventKind // permission_request or input_request
	input json.RawMessage
}

type cliTurn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	events chan Event

	writeMu sync.Mutex // serializes stdin writes

	mu      sync.Mutex
	pending map[string]pendingControl
	closed  bool
}

func (t *cliTurn) Events() <-chan Event {
	return t.events
}

// run reads the subprocess output until it exits, emitting union events.
func (t *cliTurn) run(ctx context.Context, stdout, stderr io.Reader) {
	defer close(t.events)

	var stderrWg sync.WaitGroup
	var stderrOut string
	stderrWg.Add(1)
	go func() {
		defer stderrWg.Done()
		b, _ := io.ReadAll(stderr)
		stderrOut = strings.TrimSpace(string(b))
	}()

	sawResult := false
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var acc toolAccum
	for scanner.Scan() {
		if ctx.Err() != nil {
			t.cmd.Process.Kill()
			break
		}
		if t.processLine(scanner.Text(), &acc) {
			sawResult = true
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		t.events <- Event{Kind: KindError, Err: fmt.Errorf("read agent output: %w", err)}
	}

	stderrWg.Wait()
	waitErr := t.cmd.Wait()
	t.markClosed()

	if waitErr != nil && ctx.Err() == nil && !sawResult {
		msg := fmt.Sprintf("agent exited: %v", waitErr)
		if stderrOut != "" {
			msg = fmt.Sprintf("%s: %s", msg, stderrOut)
		}
		t.events <- Event{Kind: KindError, Err: fmt.Errorf("%s", msg)}
	}
}

// toolAccum accumulates a streaming tool_use block. Input arrives as
// input_json_delta fragments; the complete tool_use event is emitted at
// content_block_stop.
type toolAccum struct {
	active   bool
	id, name string
	input    strings.Builder
}

// processLine turns one stream-json line into union events. Returns true
// when the line was a terminal result.
func (t *cliTurn) processLine(line string, acc *toolAccum) bool {
	if line == "" {
		return false
	}
	res := gjson.Parse(line)
	if !res.IsObject() {
		return false
	}

	switch res.Get("type").String() {
	case "stream_event":
		ev := res.Get("event")
		switch ev.Get("type").String() {
		case "content_block_start":
			block := ev.Get("content_block")
			if block.Get("type").String() == "tool_use" {
				*acc = toolAccum{active: true, id: block.Get("id").String(), name: block.Get("name").String()}
			}
		case "content_block_delta":
			delta := ev.Get("delta")
			switch delta.Get("type").String() {
			case "text_delta":
				t.events <- Event{Kind: KindTextDelta, Text: delta.Get("text").String()}
			case "thinking_delta":
				t.events <- Event{Kind: KindThinkingDelta, Text: delta.Get("thinking").String()}
			case "input_json_delta":
				if acc.active {
					acc.input.WriteString(delta.Get("partial_json").String())
				}
			}
		case "content_block_stop":
			if acc.active {
				input := acc.input.String()
				if input == "" {
					input = "{}"
				}
				t.events <- Event{
					Kind:      KindToolUse,
					ToolUseID: acc.id,
					ToolName:  acc.name,
					ToolInput: json.RawMessage(input),
				}
				*acc = toolAccum{}
			}
		}

	case "user":
		// Tool results come back wrapped in a user message envelope.
		for _, block := range res.Get("message.content").Array() {
			if block.Get("type").String() != "tool_result" {
				continue
			}
			t.events <- Event{
				Kind:      KindToolResult,
				ToolUseID: block.Get("tool_use_id").String(),
				Content:   toolResultContent(block),
				IsError:   block.Get("is_error").Bool(),
			}
		}

	case "system":
		if msg := res.Get("message").String(); msg != "" {
			t.events <- Event{Kind: KindSystem, Text: msg}
		}

	case "result":
		subtype := res.Get("subtype").String()
		t.events <- Event{
			Kind:    KindResult,
			Text:    res.Get("result").String(),
			Success: subtype == "success" || subtype == "error_max_turns",
		}
		return true

	case "control_request":
		t.handleControlRequest(res)
	}
	return false
}

// toolResultContent flattens a tool_result content field, which may be a
// plain string or a list of text blocks.
func toolResultContent(block gjson.Result) string {
	content := block.Get("content")
	if content.Type == gjson.String {
		return content.String()
	}
	var parts []string
	for _, c := range content.Array() {
		if c.Get("type").String() == "text" {
			parts = append(parts, c.Get("text").String())
		}
	}
	return strings.Join(parts, "\n")
}

// inputToolName is the tool the agent invokes to ask the user a question.
// Requests for it surface as input_request instead of permission_request.
const inputToolName = "AskUserQuestion"

func (t *cliTurn) handleControlRequest(res gjson.Result) {
	requestID := res.Get("request_id").String()
	req := res.Get("request")

	switch req.Get("subtype").String() {
	case "can_use_tool":
		toolName := req.Get("tool_name").String()
		input := json.RawMessage(req.Get("input").Raw)
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}

		kind := KindPermissionRequest
		if toolName == inputToolName {
			kind = KindInputRequest
		}

		t.mu.Lock()
		t.pending[requestID] = pendingControl{kind: kind, input: input}
		t.mu.Unlock()

		ev := Event{
			Kind:      kind,
			RequestID: requestID,
			ToolName:  toolName,
			ToolInput: input,
		}
		if kind == KindInputRequest {
			ev.Prompt = gjson.GetBytes(input, "question").String()
		}
		t.events <- ev

	default:
		// Unknown control subtypes get an empty success so the agent
		// does not stall waiting on us.
		t.sendControlResponse(requestID, json.RawMessage("{}"))
	}
}

// RespondPermission answers a pending can_use_tool request.
func (t *cliTurn) RespondPermission(requestID string, allow bool, message string) error {
	pc, err := t.takePending(requestID, KindPermissionRequest)
	if err != nil {
		return err
	}

	var body []byte
	if allow {
		body, _ = json.Marshal(map[string]any{
			"behavior":     "allow",
			"updatedInput": pc.input,
		})
	} else {
		if message == "" {
			message = "denied by user"
		}
		body, _ = json.Marshal(map[string]any{
			"behavior": "deny",
			"message":  message,
		})
	}
	return t.sendControlResponse(requestID, body)
}

// RespondInput answers a pending input request with the user's value.
func (t *cliTurn) RespondInput(requestID, value string) error {
	pc, err := t.takePending(requestID, KindInputRequest)
	if err != nil {
		return err
	}

	// Echo the original input back with the answer attached.
	updated := map[string]any{}
	json.Unmarshal(pc.input, &updated)
	updated["answer"] = value

	body, _ := json.Marshal(map[string]any{
		"behavior":     "allow",
		"updatedInput": updated,
	})
	return t.sendControlResponse(requestID, body)
}

// Interrupt asks the agent to abort the current turn. The process keeps
// running until it emits its final result and exits.
func (t *cliTurn) Interrupt() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTurnClosed
	}
	t.mu.Unlock()

	msg, _ := json.Marshal(map[string]any{
		"type":       "control_request",
		"request_id": uuid.New().String(),
		"request":    map[string]any{"subtype": "interrupt"},
	})
	return t.writeLine(msg)
}

// Close tears down the subprocess. Safe to call more than once.
func (t *cliTurn) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.stdin.Close()
	if t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	return nil
}

func (t *cliTurn) markClosed() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.stdin.Close()
}

func (t *cliTurn) takePending(requestID string, kind EventKind) (pendingControl, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return pendingControl{}, ErrTurnClosed
	}
	pc, ok := t.pending[requestID]
	if !ok || pc.kind != kind {
		return pendingControl{}, ErrNoPendingRequest
	}
	delete(t.pending, requestID)
	return pc, nil
}

func (t *cliTurn) sendUserMessage(text string) error {
	msg, err := json.Marshal(map[string]any{
		"type": "user",
		"message": map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": text},
			},
		},
	})
	if err != nil {
		return err
	}
	return t.writeLine(msg)
}

func (t *cliTurn) sendControlResponse(requestID string, body json.RawMessage) error {
	msg, err := json.Marshal(map[string]any{
		"type": "control_response",
		"response": map[string]any{
			"subtype":    "success",
			"request_id": requestID,
			"response":   body,
		},
	})
	if err != nil {
		return err
	}
	return t.writeLine(msg)
}

func (t *cliTurn) writeLine(msg []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.stdin.Write(msg); err != nil {
		return err
	}
	_, err := t.stdin.Write([]byte("\n"))
	return err
}
