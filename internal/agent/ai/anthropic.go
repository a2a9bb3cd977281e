package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

const defaultMaxTokens = 8192

// AnthropicProvider runs turns directly against the Anthropic API using
// the official SDK. It streams text and thinking deltas but never
// suspends: there are no tools, so RespondPermission and RespondInput
// report ErrUnsupported.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider with the given API key and
// default model. Extra request options (base URL overrides, retries)
// are passed through to the SDK client.
func NewAnthropicProvider(apiKey, model string, opts ...option.RequestOption) *AnthropicProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// ID returns the provider identifier
func (p *AnthropicProvider) ID() string {
	return "anthropic"
}

// Start begins a streaming message request as one turn.
func (p *AnthropicProvider) Start(ctx context.Context, req *TurnRequest) (Turn, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(defaultMaxTokens),
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	t := &apiTurn{
		events: make(chan Event, 100),
	}
	// The stream must observe the turn's own context, otherwise
	// Interrupt and Close cannot abort the request.
	ctx, t.cancel = context.WithCancel(ctx)
	stream := p.client.Messages.NewStreaming(ctx, params)
	go t.run(ctx, stream)
	return t, nil
}

type apiTurn struct {
	events chan Event
	cancel context.CancelFunc
}

func (t *apiTurn) Events() <-chan Event {
	return t.events
}

func (t *apiTurn) RespondPermission(requestID string, allow bool, message string) error {
	return ErrUnsupported
}

func (t *apiTurn) RespondInput(requestID, value string) error {
	return ErrUnsupported
}

// Interrupt cancels the stream. The API has no turn-level abort, so
// cancellation is the whole story here.
func (t *apiTurn) Interrupt() error {
	t.cancel()
	return nil
}

func (t *apiTurn) Close() error {
	t.cancel()
	return nil
}

func (t *apiTurn) run(ctx context.Context, stream *ssestream.Stream[anthropic.MessageStreamEventUnion]) {
	defer close(t.events)

	var text strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "content_block_delta":
			delta := event.AsContentBlockDelta()
			switch d := delta.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				text.WriteString(d.Text)
				t.events <- Event{Kind: KindTextDelta, Text: d.Text}
			case anthropic.ThinkingDelta:
				t.events <- Event{Kind: KindThinkingDelta, Text: d.Thinking}
			}
		case "message_stop":
			t.events <- Event{Kind: KindResult, Text: text.String(), Success: true}
			return
		case "error":
			t.events <- Event{Kind: KindError, Err: fmt.Errorf("stream error: %s", event.RawJSON())}
			return
		}
	}

	if err := stream.Err(); err != nil {
		if ctx.Err() != nil {
			// Cancelled locally. The mediator already knows.
			return
		}
		t.events <- Event{Kind: KindError, Err: err}
		return
	}
	t.events <- Event{Kind: KindResult, Text: text.String(), Success: true}
}

// GenerateTitle produces a short chat title from the first exchange.
// Used by the mediator's async title refresh after a turn completes.
func (p *AnthropicProvider) GenerateTitle(ctx context.Context, userText, assistantText string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a title of at most five words for this conversation. Reply with the title only.\n\nuser: %s\n\nassistant: %s",
		truncate(userText, 2000), truncate(assistantText, 2000))

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 32,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			title := strings.TrimSpace(strings.Trim(block.Text, `"`))
			if title != "" {
				return title, nil
			}
		}
	}
	return "", fmt.Errorf("empty title response")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
