package chat

import (
	"encoding/json"
	"testing"
)

func TestDeltasMergeIntoOneBlock(t *testing.T) {
	a := NewAssembler()

	idx, started := a.AppendText("Hel")
	if idx != 0 || !started {
		t.Fatalf("first delta: idx=%d started=%v", idx, started)
	}
	idx, started = a.AppendText("lo")
	if idx != 0 || started {
		t.Fatalf("second delta opened a new block: idx=%d started=%v", idx, started)
	}

	blocks := a.Finalize()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Type != "text" || blocks[0].Text != "Hello" {
		t.Errorf("block = %+v", blocks[0])
	}
}

func TestTypeSwitchClosesBlock(t *testing.T) {
	a := NewAssembler()

	a.AppendThinking("considering...")
	idx, started := a.AppendText("Answer")
	if idx != 1 || !started {
		t.Fatalf("text after thinking: idx=%d started=%v", idx, started)
	}
	a.AppendThinking("more")

	blocks := a.Finalize()
	want := []string{"thinking", "text", "thinking"}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(want))
	}
	for i, typ := range want {
		if blocks[i].Type != typ {
			t.Errorf("block[%d].Type = %s, want %s", i, blocks[i].Type, typ)
		}
	}
}

func TestToolUseAndResultOrdering(t *testing.T) {
	a := NewAssembler()

	a.AppendText("Let me check.")
	toolIdx := a.AddToolUse("tu_1", "Bash", json.RawMessage(`{"command":"ls"}`))
	if toolIdx != 1 {
		t.Fatalf("tool index = %d, want 1", toolIdx)
	}
	resIdx, ok := a.AttachToolResult("tu_1", "file.txt", false)
	if !ok || resIdx != toolIdx {
		t.Fatalf("result: idx=%d ok=%v, want idx=%d", resIdx, ok, toolIdx)
	}
	a.AppendText("Found it.")

	blocks := a.Finalize()
	want := []string{"text", "tool_use", "text"}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(want))
	}
	for i, typ := range want {
		if blocks[i].Type != typ {
			t.Errorf("block[%d].Type = %s, want %s", i, blocks[i].Type, typ)
		}
	}
	if blocks[1].ToolUseId != "tu_1" || blocks[1].Result == nil || blocks[1].Result.Content != "file.txt" {
		t.Errorf("tool_use = %+v", blocks[1])
	}
}

func TestResultBindsIntoToolUseAfterLaterBlocks(t *testing.T) {
	a := NewAssembler()

	a.AddToolUse("tu_1", "Read", json.RawMessage(`{"path":"go.mod"}`))
	a.AppendText("Reading now.")
	idx, ok := a.AttachToolResult("tu_1", "module helm", false)
	if !ok || idx != 0 {
		t.Fatalf("result: idx=%d ok=%v, want idx=0", idx, ok)
	}

	blocks := a.Finalize()
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Type != "tool_use" || blocks[0].Result == nil || blocks[0].Result.Content != "module helm" {
		t.Errorf("tool_use = %+v", blocks[0])
	}
	if blocks[1].Type != "text" || blocks[1].Text != "Reading now." {
		t.Errorf("text = %+v", blocks[1])
	}
}

func TestOrphanAndDuplicateResultsDropped(t *testing.T) {
	a := NewAssembler()

	if _, ok := a.AttachToolResult("unknown", "x", false); ok {
		t.Error("orphan result was attached")
	}

	a.AddToolUse("tu_1", "Read", nil)
	if _, ok := a.AttachToolResult("tu_1", "first", false); !ok {
		t.Fatal("first result rejected")
	}
	if _, ok := a.AttachToolResult("tu_1", "second", false); ok {
		t.Error("duplicate result was attached")
	}

	blocks := a.Finalize()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Result == nil || blocks[0].Result.Content != "first" {
		t.Errorf("kept result = %+v, want first", blocks[0].Result)
	}
}

func TestUnresolvedTools(t *testing.T) {
	a := NewAssembler()
	a.AddToolUse("tu_1", "Bash", nil)
	a.AddToolUse("tu_2", "Read", nil)
	a.AttachToolResult("tu_1", "ok", false)

	ids := a.UnresolvedTools()
	if len(ids) != 1 || ids[0] != "tu_2" {
		t.Errorf("unresolved = %v, want [tu_2]", ids)
	}
}

func TestFinalizeTwicePanics(t *testing.T) {
	a := NewAssembler()
	a.AppendText("x")
	a.Finalize()

	defer func() {
		if recover() == nil {
			t.Error("second Finalize did not panic")
		}
	}()
	a.Finalize()
}

func TestEmptyTurnFinalizesEmpty(t *testing.T) {
	a := NewAssembler()
	if blocks := a.Finalize(); len(blocks) != 0 {
		t.Errorf("blocks = %+v, want empty", blocks)
	}
}
