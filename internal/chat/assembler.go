package chat

import (
	"encoding/json"

	"github.com/helmdeck/helm/internal/types"
)

// Assembler folds a stream of deltas into the ordered block list of one
// assistant message. Consecutive deltas of the same type merge into the
// open block; a delta of a different type closes it and opens a new one.
// Tool results are correlated back to their tool_use by id.
//
// Not safe for concurrent use. Each turn owns exactly one Assembler.
type Assembler struct {
	blocks    []types.MessageBlock
	open      int            // index of the open text/thinking block, -1 when none
	toolIdx   map[string]int // tool_use id -> block index
	resolved  map[string]bool
	finalized bool
}

// NewAssembler creates an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		open:     -1,
		toolIdx:  make(map[string]int),
		resolved: make(map[string]bool),
	}
}

// AppendText merges a text delta into the current text block, opening a
// new one if needed. Returns the block index and whether a new block was
// opened.
func (a *Assembler) AppendText(delta string) (int, bool) {
	return a.appendDelta("text", delta)
}

// AppendThinking merges a thinking delta into the current thinking block.
func (a *Assembler) AppendThinking(delta string) (int, bool) {
	return a.appendDelta("thinking", delta)
}

func (a *Assembler) appendDelta(blockType, delta string) (int, bool) {
	if a.open >= 0 && a.blocks[a.open].Type == blockType {
		if blockType == "text" {
			a.blocks[a.open].Text += delta
		} else {
			a.blocks[a.open].Thinking += delta
		}
		return a.open, false
	}

	a.CloseOpen()
	block := types.MessageBlock{Type: blockType}
	if blockType == "text" {
		block.Text = delta
	} else {
		block.Thinking = delta
	}
	a.blocks = append(a.blocks, block)
	a.open = len(a.blocks) - 1
	return a.open, true
}

// AddToolUse closes any open block and appends a completed tool_use
// block. Returns its index.
func (a *Assembler) AddToolUse(id, name string, input json.RawMessage) int {
	a.CloseOpen()
	a.blocks = append(a.blocks, types.MessageBlock{
		Type:      "tool_use",
		ToolUseId: id,
		ToolName:  name,
		ToolInput: input,
	})
	idx := len(a.blocks) - 1
	if id != "" {
		a.toolIdx[id] = idx
	}
	return idx
}

// AttachToolResult late-binds a result into the tool_use block it
// correlates with, even when later blocks have already been appended.
// Orphan results (unknown id) and duplicate results for the same id are
// dropped; ok reports whether the result was attached. Returns the index
// of the updated tool_use block.
func (a *Assembler) AttachToolResult(id, content string, isError bool) (int, bool) {
	idx, known := a.toolIdx[id]
	if !known || a.resolved[id] {
		return -1, false
	}
	a.resolved[id] = true
	a.blocks[idx].Result = &types.ToolResult{Content: content, IsError: isError}
	return idx, true
}

// CloseOpen closes the open block if any, returning its index.
func (a *Assembler) CloseOpen() (int, bool) {
	if a.open < 0 {
		return -1, false
	}
	idx := a.open
	a.open = -1
	return idx, true
}

// Block returns a copy of the block at index.
func (a *Assembler) Block(idx int) types.MessageBlock {
	return a.blocks[idx]
}

// Len returns the number of blocks assembled so far.
func (a *Assembler) Len() int {
	return len(a.blocks)
}

// UnresolvedTools returns ids of tool_use blocks with no result yet.
func (a *Assembler) UnresolvedTools() []string {
	var ids []string
	for _, b := range a.blocks {
		if b.Type == "tool_use" && b.ToolUseId != "" && !a.resolved[b.ToolUseId] {
			ids = append(ids, b.ToolUseId)
		}
	}
	return ids
}

// Finalize closes any open block and returns the complete block list.
// Calling it twice is a programming error and panics.
func (a *Assembler) Finalize() []types.MessageBlock {
	if a.finalized {
		panic("chat: assembler finalized twice")
	}
	a.finalized = true
	a.CloseOpen()
	return a.blocks
}
