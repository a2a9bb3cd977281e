package db

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestChatLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, CreateChatParams{ID: "c1", Title: "First"})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if chat.Status != "idle" {
		t.Errorf("new chat status = %q, want idle", chat.Status)
	}

	if err := store.UpdateChatStatus(ctx, "c1", "streaming"); err != nil {
		t.Fatalf("UpdateChatStatus: %v", err)
	}
	got, err := store.GetChat(ctx, "c1")
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	if got.Status != "streaming" {
		t.Errorf("status = %q, want streaming", got.Status)
	}

	if err := store.UpdateChatTitle(ctx, "c1", "Renamed"); err != nil {
		t.Fatalf("UpdateChatTitle: %v", err)
	}
	got, _ = store.GetChat(ctx, "c1")
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", got.Title)
	}

	chats, err := store.ListChats(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("ListChats returned %d chats, want 1", len(chats))
	}

	if err := store.DeleteChat(ctx, "c1"); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}
	if _, err := store.GetChat(ctx, "c1"); err == nil {
		t.Error("GetChat after delete should fail")
	}
}

func TestChatMessagesOrdered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateChat(ctx, CreateChatParams{ID: "c1", Title: "t"}); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	for i, id := range []string{"m1", "m2", "m3"} {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		if _, err := store.CreateChatMessage(ctx, CreateChatMessageParams{
			ID: id, ChatID: "c1", Role: role, Blocks: `[{"type":"text","text":"hi"}]`,
		}); err != nil {
			t.Fatalf("CreateChatMessage %s: %v", id, err)
		}
	}

	msgs, err := store.ListChatMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if msgs[i].ID != want {
			t.Errorf("message[%d] = %s, want %s", i, msgs[i].ID, want)
		}
	}
}

func TestSameSecondMessagesKeepInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateChat(ctx, CreateChatParams{ID: "c1", Title: "t"}); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	// Inserted back to back within one created_at second, with ids that
	// sort against insertion order. The user message must still list first.
	if _, err := store.CreateChatMessage(ctx, CreateChatMessageParams{
		ID: "zzzz-user", ChatID: "c1", Role: "user", Blocks: `[{"type":"text","text":"q"}]`,
	}); err != nil {
		t.Fatalf("CreateChatMessage user: %v", err)
	}
	if _, err := store.CreateChatMessage(ctx, CreateChatMessageParams{
		ID: "aaaa-assistant", ChatID: "c1", Role: "assistant", Blocks: `[{"type":"text","text":"a"}]`,
	}); err != nil {
		t.Fatalf("CreateChatMessage assistant: %v", err)
	}

	msgs, err := store.ListChatMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("order = [%s %s], want [user assistant]", msgs[0].Role, msgs[1].Role)
	}
}

func TestDeleteChatCascadesMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.CreateChat(ctx, CreateChatParams{ID: "c1", Title: "t"})
	store.CreateChatMessage(ctx, CreateChatMessageParams{ID: "m1", ChatID: "c1", Role: "user", Blocks: "[]"})

	if err := store.DeleteChat(ctx, "c1"); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}
	msgs, err := store.ListChatMessages(ctx, "c1")
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages survived chat delete: %d", len(msgs))
	}
}

func TestTaskRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateTask(ctx, CreateTaskParams{
		ID: "t1", Name: "daily", Schedule: "0 9 * * *", Prompt: "summarize inbox", Enabled: true,
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	enabled, err := store.ListEnabledTasks(ctx)
	if err != nil {
		t.Fatalf("ListEnabledTasks: %v", err)
	}
	if len(enabled) != 1 {
		t.Fatalf("got %d enabled tasks, want 1", len(enabled))
	}

	run, err := store.CreateTaskRun(ctx, "r1", "t1")
	if err != nil {
		t.Fatalf("CreateTaskRun: %v", err)
	}
	if run.Status != "running" {
		t.Errorf("run status = %q, want running", run.Status)
	}

	if err := store.FinishTaskRun(ctx, "r1", "completed", "done"); err != nil {
		t.Fatalf("FinishTaskRun: %v", err)
	}
	runs, err := store.ListTaskRuns(ctx, "t1", 10)
	if err != nil {
		t.Fatalf("ListTaskRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "completed" {
		t.Fatalf("runs = %+v", runs)
	}

	if _, err := store.UpdateTask(ctx, UpdateTaskParams{
		ID: "t1", Name: "daily", Schedule: "0 9 * * *", Prompt: "summarize inbox", Enabled: false,
	}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	enabled, _ = store.ListEnabledTasks(ctx)
	if len(enabled) != 0 {
		t.Errorf("disabled task still listed as enabled")
	}
}
