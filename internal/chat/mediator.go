package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helmdeck/helm/internal/agent/ai"
	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/events"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/types"
)

// ErrChatNotFound is returned when a turn references a chat that does
// not exist.
var ErrChatNotFound = errors.New("chat not found")

// interruptGrace is how long a cancelled turn may keep streaming before
// its context is cut.
const interruptGrace = 5 * time.Second

// defaultMaxTurnDuration bounds a turn that the agent never finishes.
const defaultMaxTurnDuration = 30 * time.Minute

// Titler produces a short chat title from the first exchange.
// *ai.AnthropicProvider satisfies it.
type Titler interface {
	GenerateTitle(ctx context.Context, userText, assistantText string) (string, error)
}

// Mediator runs agent turns for chat sessions: it starts provider turns,
// assembles streamed deltas into persisted messages, gates suspensions,
// and fans events out to the SSE client and the event bus.
type Mediator struct {
	store     *db.Store
	registry  *Registry
	providers map[string]ai.Provider
	defaultID string
	titler    Titler
	maxTurn   time.Duration
}

// NewMediator creates a mediator. The first provider is the default for
// chats without an agent profile. titler may be nil.
func NewMediator(store *db.Store, titler Titler, providers ...ai.Provider) *Mediator {
	m := &Mediator{
		store:     store,
		registry:  NewRegistry(),
		providers: make(map[string]ai.Provider),
		titler:    titler,
		maxTurn:   defaultMaxTurnDuration,
	}
	for i, p := range providers {
		if i == 0 {
			m.defaultID = p.ID()
		}
		m.providers[p.ID()] = p
	}
	return m
}

// Registry exposes the session registry (for status queries and chat
// deletion).
func (m *Mediator) Registry() *Registry {
	return m.registry
}

// SetMaxTurnDuration changes the safety-net bound on a single turn.
// Zero disables it.
func (m *Mediator) SetMaxTurnDuration(d time.Duration) {
	m.maxTurn = d
}

// SendMessage persists the user message, starts one agent turn, and
// returns the stream of events for it. The returned channel is closed
// when the turn ends; the caller must drain it.
func (m *Mediator) SendMessage(ctx context.Context, chatID, content, modelOverride string) (<-chan types.StreamEvent, error) {
	chat, err := m.store.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	provider, model, system, err := m.resolveProvider(ctx, chat)
	if err != nil {
		return nil, err
	}
	if modelOverride != "" {
		model = modelOverride
	}

	session := m.registry.Get(chatID)
	ts := &TurnState{
		MessageID: uuid.New().String(),
		Assembler: NewAssembler(),
		Gate:      &Gate{},
	}
	if err := session.BeginTurn(ts); err != nil {
		return nil, err
	}

	history, err := m.loadHistory(ctx, chatID)
	if err != nil {
		session.EndTurn(ts)
		return nil, err
	}

	if _, err := m.store.CreateChatMessage(ctx, db.CreateChatMessageParams{
		ID:     uuid.New().String(),
		ChatID: chatID,
		Role:   "user",
		Blocks: mustBlocksJSON([]types.MessageBlock{{Type: "text", Text: content}}),
	}); err != nil {
		session.EndTurn(ts)
		return nil, err
	}

	turnCtx, cancel := context.WithCancel(context.Background())
	ts.Cancel = cancel

	turn, err := provider.Start(turnCtx, &ai.TurnRequest{
		SessionID: chatID,
		Prompt:    content,
		System:    system,
		Model:     model,
		History:   history,
	})
	if err != nil {
		cancel()
		session.EndTurn(ts)
		return nil, fmt.Errorf("start agent turn: %w", err)
	}
	ts.Turn = turn

	m.store.UpdateChatStatus(ctx, chatID, string(StatusStreaming))
	m.publishStatus(session, "", "")

	out := make(chan types.StreamEvent, 128)
	go m.runTurn(turnCtx, session, ts, chat, content, out)
	return out, nil
}

// ResolvePermission answers the pending permission request on a chat.
func (m *Mediator) ResolvePermission(chatID, requestID string, approved bool, message string, always bool) error {
	ts := m.activeTurn(chatID)
	if ts == nil {
		return ErrNoPendingPermission
	}
	return ts.Gate.ResolvePermission(requestID, approved, message, always)
}

// ProvideInput answers the pending input request on a chat.
func (m *Mediator) ProvideInput(chatID, requestID, value string) error {
	ts := m.activeTurn(chatID)
	if ts == nil {
		return ErrNoPendingInput
	}
	return ts.Gate.ResolveInput(requestID, value)
}

// Cancel aborts the active turn on a chat. The agent is interrupted and
// given a grace period to wind down; the turn finalizes as cancelled and
// its partial output is discarded, leaving only the user message.
// Pending suspensions are denied so nothing stays stuck.
func (m *Mediator) Cancel(chatID string) error {
	session := m.registry.Peek(chatID)
	if session == nil {
		return ErrNoActiveTurn
	}
	ts := session.Turn()
	if ts == nil {
		return ErrNoActiveTurn
	}
	if !ts.MarkCancelled() {
		return nil // already cancelling
	}

	session.SetStatus(StatusCancelling)
	m.publishStatus(session, "", "")

	// Unblock a suspended turn: deny whatever is pending.
	if s := ts.Gate.Pending(); s != nil {
		switch s.Kind {
		case SuspensionPermission:
			ts.Gate.ResolvePermission(s.ID, false, "turn cancelled", false)
		case SuspensionInput:
			ts.Gate.ResolveInput(s.ID, "")
		}
	}

	if err := ts.Turn.Interrupt(); err != nil {
		logging.Warnf("[Mediator] interrupt failed for chat %s: %v", chatID, err)
		ts.Cancel()
		return nil
	}
	// Hard stop if the agent ignores the interrupt.
	time.AfterFunc(interruptGrace, ts.Cancel)
	return nil
}

// SessionStatus reports the lifecycle state and any pending suspension.
func (m *Mediator) SessionStatus(chatID string) types.SessionStatusResponse {
	resp := types.SessionStatusResponse{ChatId: chatID, Status: string(StatusIdle)}
	session := m.registry.Peek(chatID)
	if session == nil {
		return resp
	}
	resp.Status = string(session.Status())
	if ts := session.Turn(); ts != nil {
		if s := ts.Gate.Pending(); s != nil {
			resp.RequestId = s.ID
			resp.Kind = string(s.Kind)
		}
	}
	return resp
}

func (m *Mediator) activeTurn(chatID string) *TurnState {
	session := m.registry.Peek(chatID)
	if session == nil {
		return nil
	}
	return session.Turn()
}

// runTurn consumes the provider's event stream until it closes, then
// persists the assembled assistant message and closes out.
func (m *Mediator) runTurn(ctx context.Context, session *Session, ts *TurnState, chat db.Chat, userText string, out chan<- types.StreamEvent) {
	defer close(out)
	defer ts.Cancel()

	var watchdog *time.Timer
	if m.maxTurn > 0 {
		watchdog = time.AfterFunc(m.maxTurn, func() {
			logging.Warnf("[Mediator] turn on chat %s exceeded %s, cancelling", chat.ID, m.maxTurn)
			m.Cancel(chat.ID)
		})
	}

	emit := func(ev types.StreamEvent) {
		ev.ChatId = chat.ID
		ev.MessageId = ts.MessageID
		out <- ev
		events.Stream.Publish(ev)
	}

	asm := ts.Assembler

	var resultText string
	var turnErr error
	sawResult := false
	success := false

	for ev := range ts.Turn.Events() {
		switch ev.Kind {
		case ai.KindTextDelta, ai.KindThinkingDelta:
			kind := "text_delta"
			appendDelta := asm.AppendText
			if ev.Kind == ai.KindThinkingDelta {
				kind = "thinking_delta"
				appendDelta = asm.AppendThinking
			}
			idx, _ := appendDelta(ev.Text)
			emit(types.StreamEvent{Type: "delta", BlockIndex: idx, Kind: kind, Delta: ev.Text})

		case ai.KindToolUse:
			idx := asm.AddToolUse(ev.ToolUseID, ev.ToolName, ev.ToolInput)
			block := asm.Block(idx)
			emit(types.StreamEvent{Type: "assistant_block", BlockIndex: idx, Blocks: []types.MessageBlock{block}})

		case ai.KindToolResult:
			idx, ok := asm.AttachToolResult(ev.ToolUseID, ev.Content, ev.IsError)
			if !ok {
				logging.Warnf("[Mediator] dropping orphan tool result %s on chat %s", ev.ToolUseID, chat.ID)
				continue
			}
			block := asm.Block(idx)
			emit(types.StreamEvent{Type: "tool_result", BlockIndex: idx, Block: &block})

		case ai.KindSystem:
			emit(types.StreamEvent{Type: "system_status", Status: ev.Text})

		case ai.KindPermissionRequest, ai.KindInputRequest:
			m.handleSuspension(ctx, session, ts, ev, emit)

		case ai.KindResult:
			sawResult = true
			resultText = ev.Text
			success = ev.Success

		case ai.KindError:
			turnErr = ev.Err
		}
	}

	// Stopped before EndTurn so a late firing cannot hit the next turn.
	if watchdog != nil {
		watchdog.Stop()
	}

	blocks := asm.Finalize()

	// A turn that produced no visible text still gets the provider's
	// final summary as its text block.
	if resultText != "" && !hasText(blocks) {
		blocks = append(blocks, types.MessageBlock{Type: "text", Text: resultText})
	}

	status := "completed"
	errMsg := ""
	switch {
	case ts.Cancelled():
		status = "cancelled"
	case turnErr != nil && !sawResult:
		status = "failed"
		errMsg = turnErr.Error()
	case !sawResult:
		status = "failed"
		errMsg = "agent stream ended unexpectedly"
	case !success:
		status = "failed"
		errMsg = resultText
		if errMsg == "" {
			errMsg = "agent reported an error"
		}
	}

	// Only completed turns commit an assistant message. Cancelled and
	// failed turns discard partial output; the user message stays.
	bg := context.Background()
	var final *types.ChatMessage
	if status == "completed" {
		msg, err := m.store.CreateChatMessage(bg, db.CreateChatMessageParams{
			ID:     ts.MessageID,
			ChatID: chat.ID,
			Role:   "assistant",
			Blocks: mustBlocksJSON(blocks),
			Status: status,
		})
		if err != nil {
			logging.Errorf("[Mediator] persist assistant message for chat %s: %v", chat.ID, err)
		} else {
			apiMsg := toAPIMessage(msg, blocks)
			final = &apiMsg
		}
	}
	m.store.UpdateChatStatus(bg, chat.ID, string(StatusIdle))

	session.EndTurn(ts)
	m.publishStatus(session, "", "")

	emit(types.StreamEvent{Type: "result", Status: status, Error: errMsg, Message: final})

	if status == "completed" && m.titler != nil && isDefaultTitle(chat.Title) {
		go m.refreshTitle(chat.ID, userText, blocks, resultText)
	}
}

// handleSuspension pauses the turn until the user answers, then relays
// the answer to the provider.
func (m *Mediator) handleSuspension(ctx context.Context, session *Session, ts *TurnState, ev ai.Event, emit func(types.StreamEvent)) {
	isInput := ev.Kind == ai.KindInputRequest

	// Cancelled turns answer for themselves.
	if ts.Cancelled() {
		m.denySuspension(ts, ev, "turn cancelled")
		return
	}

	// Standing approvals short-circuit the gate.
	if !isInput && session.IsAlwaysAllowed(ev.ToolName) {
		if err := ts.Turn.RespondPermission(ev.RequestID, true, ""); err != nil {
			logging.Warnf("[Mediator] auto-approve %s failed: %v", ev.ToolName, err)
		}
		return
	}

	kind := SuspensionPermission
	status := StatusAwaitingPermission
	if isInput {
		kind = SuspensionInput
		status = StatusAwaitingInput
	}

	susp := newSuspension(ev.RequestID, kind)
	susp.ToolName = ev.ToolName
	susp.ToolInput = ev.ToolInput
	susp.Prompt = ev.Prompt

	if err := ts.Gate.Begin(susp); err != nil {
		// A second suspension while one is pending is refused outright
		// rather than queued. The provider gets a deny and the turn
		// continues from the first suspension.
		logging.Warnf("[Mediator] overlapping suspension %s on chat %s refused", ev.RequestID, session.ChatID)
		m.denySuspension(ts, ev, "another request is already pending")
		return
	}

	session.SetStatus(status)
	m.publishStatus(session, ev.RequestID, string(kind))

	evType := "permission_request"
	if isInput {
		evType = "user_input_required"
	}
	emit(types.StreamEvent{
		Type:      evType,
		RequestId: ev.RequestID,
		ToolName:  ev.ToolName,
		ToolInput: ev.ToolInput,
		Prompt:    ev.Prompt,
	})

	res, err := susp.Wait(ctx)
	ts.Gate.End(susp)

	if err != nil {
		// Turn context cut while suspended. Best effort deny so the
		// agent is not left hanging if it survives.
		m.denySuspension(ts, ev, "turn cancelled")
		return
	}

	if isInput {
		if err := ts.Turn.RespondInput(ev.RequestID, res.Value); err != nil {
			logging.Warnf("[Mediator] relay input for %s failed: %v", ev.RequestID, err)
		}
	} else {
		if res.Approved && res.Always {
			session.AllowAlways(ev.ToolName)
		}
		if err := ts.Turn.RespondPermission(ev.RequestID, res.Approved, res.Message); err != nil {
			logging.Warnf("[Mediator] relay permission for %s failed: %v", ev.RequestID, err)
		}
	}

	if !ts.Cancelled() {
		session.SetStatus(StatusStreaming)
		m.publishStatus(session, "", "")
	}
}

func (m *Mediator) denySuspension(ts *TurnState, ev ai.Event, reason string) {
	var err error
	if ev.Kind == ai.KindInputRequest {
		err = ts.Turn.RespondInput(ev.RequestID, "")
	} else {
		err = ts.Turn.RespondPermission(ev.RequestID, false, reason)
	}
	if err != nil {
		logging.Warnf("[Mediator] deny suspension %s failed: %v", ev.RequestID, err)
	}
}

func (m *Mediator) publishStatus(session *Session, requestID, kind string) {
	events.SessionStatus.Publish(events.StatusChange{
		ChatID:    session.ChatID,
		Status:    string(session.Status()),
		RequestID: requestID,
		Kind:      kind,
	})
}

// resolveProvider picks the provider, model, and system prompt for a
// chat, honoring its agent profile when set.
func (m *Mediator) resolveProvider(ctx context.Context, chat db.Chat) (ai.Provider, string, string, error) {
	providerID := m.defaultID
	model := ""
	system := ""

	if chat.AgentID.Valid {
		agent, err := m.store.GetAgent(ctx, chat.AgentID.String)
		if err == nil {
			if agent.Provider != "" {
				providerID = agent.Provider
			}
			model = agent.Model
			system = agent.SystemPrompt
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, "", "", err
		}
	}

	p, ok := m.providers[providerID]
	if !ok {
		p, ok = m.providers[m.defaultID]
		if !ok {
			return nil, "", "", fmt.Errorf("no provider registered")
		}
	}
	return p, model, system, nil
}

// loadHistory flattens prior messages into provider history. Tool and
// thinking blocks stay local; only visible text crosses the boundary.
func (m *Mediator) loadHistory(ctx context.Context, chatID string) ([]ai.HistoryMessage, error) {
	msgs, err := m.store.ListChatMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	var history []ai.HistoryMessage
	for _, msg := range msgs {
		var blocks []types.MessageBlock
		if err := json.Unmarshal([]byte(msg.Blocks), &blocks); err != nil {
			continue
		}
		text := joinText(blocks)
		if text == "" {
			continue
		}
		history = append(history, ai.HistoryMessage{Role: msg.Role, Content: text})
	}
	return history, nil
}

func (m *Mediator) refreshTitle(chatID, userText string, blocks []types.MessageBlock, resultText string) {
	assistantText := joinText(blocks)
	if assistantText == "" {
		assistantText = resultText
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title, err := m.titler.GenerateTitle(ctx, userText, assistantText)
	if err != nil {
		logging.Warnf("[Mediator] title refresh for chat %s: %v", chatID, err)
		return
	}
	if err := m.store.UpdateChatTitle(ctx, chatID, title); err != nil {
		logging.Errorf("[Mediator] save title for chat %s: %v", chatID, err)
		return
	}
	events.ChatTitle.Publish(events.TitleChange{ChatID: chatID, Title: title})
}

func isDefaultTitle(title string) bool {
	return title == "" || title == "New Chat"
}

func hasText(blocks []types.MessageBlock) bool {
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			return true
		}
	}
	return false
}

func joinText(blocks []types.MessageBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func mustBlocksJSON(blocks []types.MessageBlock) string {
	if blocks == nil {
		blocks = []types.MessageBlock{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func toAPIMessage(msg db.ChatMessage, blocks []types.MessageBlock) types.ChatMessage {
	out := types.ChatMessage{
		Id:        msg.ID,
		ChatId:    msg.ChatID,
		Role:      msg.Role,
		Blocks:    blocks,
		Status:    msg.Status,
		CreatedAt: time.Unix(msg.CreatedAt, 0).Format(time.RFC3339),
	}
	if msg.Error.Valid {
		out.Error = msg.Error.String
	}
	return out
}
