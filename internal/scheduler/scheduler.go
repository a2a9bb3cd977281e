package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/helmdeck/helm/internal/chat"
	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/types"
)

// cronParser accepts standard 5-field expressions, optional seconds, and
// descriptors like @hourly.
var cronParser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// runTimeout bounds one scheduled agent turn.
const runTimeout = 10 * time.Minute

// ValidateSchedule rejects cron expressions the scheduler cannot parse.
func ValidateSchedule(expr string) error {
	_, err := cronParser.Parse(expr)
	return err
}

// Scheduler runs enabled tasks on their cron schedules. Each firing
// creates a fresh chat and drives one agent turn through the mediator,
// recording the outcome as a task run.
type Scheduler struct {
	store    *db.Store
	mediator *chat.Mediator

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
	running bool
}

func New(store *db.Store, mediator *chat.Mediator) *Scheduler {
	return &Scheduler{
		store:    store,
		mediator: mediator,
		cron:     cron.New(cron.WithParser(cronParser)),
		entries:  make(map[string]cron.EntryID),
	}
}

// Start loads enabled tasks and begins firing them.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if err := s.reloadLocked(ctx); err != nil {
		return err
	}
	s.cron.Start()
	s.running = true
	logging.Infof("[Scheduler] started with %d task(s)", len(s.entries))
	return nil
}

// Stop halts the timer and waits for in-flight runs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	logging.Info("[Scheduler] stopped")
}

// Reload re-reads enabled tasks from the store. Call after task CRUD.
func (s *Scheduler) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Scheduler) reloadLocked(ctx context.Context) error {
	for id, entry := range s.entries {
		s.cron.Remove(entry)
		delete(s.entries, id)
	}

	tasks, err := s.store.ListEnabledTasks(ctx)
	if err != nil {
		return fmt.Errorf("load enabled tasks: %w", err)
	}
	for _, task := range tasks {
		task := task
		entry, err := s.cron.AddFunc(task.Schedule, func() {
			s.runTask(task.ID)
		})
		if err != nil {
			logging.Warnf("[Scheduler] skipping task %s (%s): bad schedule %q: %v",
				task.Name, task.ID, task.Schedule, err)
			continue
		}
		s.entries[task.ID] = entry
	}
	return nil
}

// RunNow fires a task immediately, outside its schedule.
func (s *Scheduler) RunNow(taskID string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return "", err
	}
	runID := uuid.New().String()
	go s.execute(taskID, runID)
	return runID, nil
}

func (s *Scheduler) runTask(taskID string) {
	s.execute(taskID, uuid.New().String())
}

// execute drives one complete task run: fresh chat, one agent turn,
// persisted run record.
func (s *Scheduler) execute(taskID, runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		logging.Errorf("[Scheduler] task %s vanished before run: %v", taskID, err)
		return
	}

	if _, err := s.store.CreateTaskRun(ctx, runID, task.ID); err != nil {
		logging.Errorf("[Scheduler] record run for task %s: %v", task.ID, err)
		return
	}
	s.store.MarkTaskRan(ctx, task.ID)

	logging.Infof("[Scheduler] running task %s (%s)", task.Name, task.ID)

	chatRow, err := s.store.CreateChat(ctx, db.CreateChatParams{
		ID:      uuid.New().String(),
		Title:   fmt.Sprintf("Task: %s", task.Name),
		AgentID: task.AgentID.String,
	})
	if err != nil {
		s.finish(runID, "failed", fmt.Sprintf("create chat: %v", err))
		return
	}

	out, err := s.mediator.SendMessage(ctx, chatRow.ID, task.Prompt, "")
	if err != nil {
		s.finish(runID, "failed", fmt.Sprintf("start turn: %v", err))
		return
	}

	status, output := drainRun(ctx, s.mediator, chatRow.ID, out)
	s.finish(runID, status, output)
	logging.Infof("[Scheduler] task %s finished: %s", task.Name, status)
}

// drainRun consumes the turn's stream to completion. Suspensions have
// no user to answer them, so permission requests are denied and input
// requests get an empty answer to keep the turn moving.
func drainRun(ctx context.Context, m *chat.Mediator, chatID string, out <-chan types.StreamEvent) (status, output string) {
	status = "failed"
	output = "turn ended without result"
	for {
		select {
		case ev, ok := <-out:
			if !ok {
				return status, output
			}
			switch ev.Type {
			case "permission_request":
				m.ResolvePermission(chatID, ev.RequestId, false, "unattended task run", false)
			case "user_input_required":
				m.ProvideInput(chatID, ev.RequestId, "")
			case "result":
				status = doneStatus(ev.Status)
				output = finalText(ev.Message)
				if status == "failed" && ev.Error != "" {
					output = ev.Error
				}
			}
		case <-ctx.Done():
			m.Cancel(chatID)
			// Keep draining until the turn winds down.
			for range out {
			}
			return "failed", "task run timed out"
		}
	}
}

func doneStatus(s string) string {
	if s == "completed" {
		return "succeeded"
	}
	return "failed"
}

func finalText(msg *types.ChatMessage) string {
	if msg == nil {
		return ""
	}
	for _, b := range msg.Blocks {
		if b.Type == "text" && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

func (s *Scheduler) finish(runID, status, output string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.FinishTaskRun(ctx, runID, status, output); err != nil {
		logging.Errorf("[Scheduler] finish run %s: %v", runID, err)
	}
}
