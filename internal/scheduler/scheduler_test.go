package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/helmdeck/helm/internal/agent/ai"
	"github.com/helmdeck/helm/internal/chat"
	"github.com/helmdeck/helm/internal/db"
)

// stubProvider completes every turn immediately with one text block.
type stubProvider struct {
	text string
}

func (p *stubProvider) ID() string { return "stub" }

func (p *stubProvider) Start(ctx context.Context, req *ai.TurnRequest) (ai.Turn, error) {
	t := &stubTurn{events: make(chan ai.Event, 4)}
	t.events <- ai.Event{Kind: ai.KindTextDelta, Text: p.text}
	t.events <- ai.Event{Kind: ai.KindResult, Text: p.text, Success: true}
	close(t.events)
	return t, nil
}

type stubTurn struct {
	events chan ai.Event
}

func (t *stubTurn) Events() <-chan ai.Event { return t.events }

func (t *stubTurn) RespondPermission(string, bool, string) error { return nil }

func (t *stubTurn) RespondInput(string, string) error { return nil }

func (t *stubTurn) Interrupt() error { return nil }

func (t *stubTurn) Close() error { return nil }

func newTestScheduler(t *testing.T) (*Scheduler, *db.Store) {
	t.Helper()
	store, err := db.NewSQLite(filepath.Join(t.TempDir(), "helm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m := chat.NewMediator(store, nil, &stubProvider{text: "report ready"})
	return New(store, m), store
}

func TestValidateSchedule(t *testing.T) {
	valid := []string{"* * * * *", "0 9 * * 1-5", "@hourly", "*/30 * * * * *"}
	for _, expr := range valid {
		if err := ValidateSchedule(expr); err != nil {
			t.Errorf("ValidateSchedule(%q) = %v, want nil", expr, err)
		}
	}
	invalid := []string{"", "not a schedule", "99 * * * *"}
	for _, expr := range invalid {
		if err := ValidateSchedule(expr); err == nil {
			t.Errorf("ValidateSchedule(%q) = nil, want error", expr)
		}
	}
}

func TestRunNowRecordsRun(t *testing.T) {
	s, store := newTestScheduler(t)
	ctx := context.Background()

	task, err := store.CreateTask(ctx, db.CreateTaskParams{
		ID:       "task-1",
		Name:     "daily report",
		Schedule: "0 9 * * *",
		Prompt:   "write the daily report",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	runID, err := s.RunNow(task.ID)
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	var run db.TaskRun
	deadline := time.Now().Add(5 * time.Second)
	for {
		runs, err := store.ListTaskRuns(ctx, task.ID, 10)
		if err != nil {
			t.Fatalf("list runs: %v", err)
		}
		if len(runs) == 1 && runs[0].Status != "running" {
			run = runs[0]
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run %s never finished: %+v", runID, runs)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if run.ID != runID {
		t.Errorf("run id = %s, want %s", run.ID, runID)
	}
	if run.Status != "succeeded" {
		t.Errorf("run status = %q, want succeeded", run.Status)
	}
	if run.Output != "report ready" {
		t.Errorf("run output = %q", run.Output)
	}

	// The run left a chat with the task's prompt and the agent's reply.
	refreshed, _ := store.GetTask(ctx, task.ID)
	if !refreshed.LastRunAt.Valid {
		t.Error("last_run_at not set")
	}
	chats, _ := store.ListChats(ctx, 10, 0)
	if len(chats) != 1 || chats[0].Title != "Task: daily report" {
		t.Errorf("chats after run = %+v", chats)
	}
}

func TestRunNowUnknownTask(t *testing.T) {
	s, _ := newTestScheduler(t)
	if _, err := s.RunNow("missing"); err == nil {
		t.Fatal("RunNow on missing task should fail")
	}
}

func TestReloadSkipsBadSchedules(t *testing.T) {
	s, store := newTestScheduler(t)
	ctx := context.Background()

	store.CreateTask(ctx, db.CreateTaskParams{
		ID: "good", Name: "good", Schedule: "@hourly", Prompt: "p", Enabled: true,
	})
	store.CreateTask(ctx, db.CreateTaskParams{
		ID: "bad", Name: "bad", Schedule: "nonsense", Prompt: "p", Enabled: true,
	})
	store.CreateTask(ctx, db.CreateTaskParams{
		ID: "off", Name: "off", Schedule: "@hourly", Prompt: "p", Enabled: false,
	})

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(s.entries) != 1 {
		t.Fatalf("got %d entries, want 1 (good only)", len(s.entries))
	}
	if _, ok := s.entries["good"]; !ok {
		t.Error("good task not registered")
	}
}
