package db

import (
	"context"
	"database/sql"
	"time"
)

// Store wraps the single SQLite connection with typed queries.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store around an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetDB exposes the underlying handle for callers that need raw SQL.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---- Chats ----

type Chat struct {
	ID        string
	Title     string
	AgentID   sql.NullString
	Status    string
	CreatedAt int64
	UpdatedAt int64
}

type CreateChatParams struct {
	ID      string
	Title   string
	AgentID string
}

func (s *Store) CreateChat(ctx context.Context, arg CreateChatParams) (Chat, error) {
	now := time.Now().Unix()
	agentID := sql.NullString{String: arg.AgentID, Valid: arg.AgentID != ""}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (id, title, agent_id, status, created_at, updated_at) VALUES (?, ?, ?, 'idle', ?, ?)`,
		arg.ID, arg.Title, agentID, now, now)
	if err != nil {
		return Chat{}, err
	}
	return Chat{ID: arg.ID, Title: arg.Title, AgentID: agentID, Status: "idle", CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) GetChat(ctx context.Context, id string) (Chat, error) {
	var c Chat
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, agent_id, status, created_at, updated_at FROM chats WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.AgentID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListChats(ctx context.Context, limit, offset int) ([]Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, agent_id, status, created_at, updated_at FROM chats ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ID, &c.Title, &c.AgentID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *Store) CountChats(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats`).Scan(&n)
	return n, err
}

func (s *Store) UpdateChatTitle(ctx context.Context, id, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().Unix(), id)
	return err
}

func (s *Store) UpdateChatStatus(ctx context.Context, id, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().Unix(), id)
	return err
}

func (s *Store) TouchChat(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chats SET updated_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

func (s *Store) DeleteChat(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	return err
}

// ---- Chat messages ----

type ChatMessage struct {
	ID        string
	ChatID    string
	Role      string
	Blocks    string // JSON array of message blocks
	Status    string
	Error     sql.NullString
	CreatedAt int64
}

type CreateChatMessageParams struct {
	ID     string
	ChatID string
	Role   string
	Blocks string
	Status string
	Error  string
}

func (s *Store) CreateChatMessage(ctx context.Context, arg CreateChatMessageParams) (ChatMessage, error) {
	now := time.Now().Unix()
	if arg.Status == "" {
		arg.Status = "completed"
	}
	errVal := sql.NullString{String: arg.Error, Valid: arg.Error != ""}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, chat_id, role, blocks, status, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.ChatID, arg.Role, arg.Blocks, arg.Status, errVal, now)
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{ID: arg.ID, ChatID: arg.ChatID, Role: arg.Role, Blocks: arg.Blocks,
		Status: arg.Status, Error: errVal, CreatedAt: now}, nil
}

func (s *Store) ListChatMessages(ctx context.Context, chatID string) ([]ChatMessage, error) {
	// created_at has second granularity and ids are random, so ordering
	// by either scrambles messages inserted in the same second. rowid is
	// monotonic across inserts and preserves conversation order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, role, blocks, status, error, created_at FROM chat_messages WHERE chat_id = ? ORDER BY rowid ASC`,
		chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Blocks, &m.Status, &m.Error, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ---- Agents ----

type Agent struct {
	ID           string
	Name         string
	SystemPrompt string
	Model        string
	Provider     string
	CreatedAt    int64
	UpdatedAt    int64
}

type CreateAgentParams struct {
	ID           string
	Name         string
	SystemPrompt string
	Model        string
	Provider     string
}

func (s *Store) CreateAgent(ctx context.Context, arg CreateAgentParams) (Agent, error) {
	now := time.Now().Unix()
	if arg.Provider == "" {
		arg.Provider = "cli"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (id, name, system_prompt, model, provider, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.Name, arg.SystemPrompt, arg.Model, arg.Provider, now, now)
	if err != nil {
		return Agent{}, err
	}
	return Agent{ID: arg.ID, Name: arg.Name, SystemPrompt: arg.SystemPrompt,
		Model: arg.Model, Provider: arg.Provider, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) GetAgent(ctx context.Context, id string) (Agent, error) {
	var a Agent
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, system_prompt, model, provider, created_at, updated_at FROM agents WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.SystemPrompt, &a.Model, &a.Provider, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, system_prompt, model, provider, created_at, updated_at FROM agents ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.SystemPrompt, &a.Model, &a.Provider, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

type UpdateAgentParams struct {
	ID           string
	Name         string
	SystemPrompt string
	Model        string
	Provider     string
}

func (s *Store) UpdateAgent(ctx context.Context, arg UpdateAgentParams) (Agent, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE agents SET name = ?, system_prompt = ?, model = ?, provider = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.SystemPrompt, arg.Model, arg.Provider, time.Now().Unix(), arg.ID)
	if err != nil {
		return Agent{}, err
	}
	return s.GetAgent(ctx, arg.ID)
}

func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	return err
}

// ---- Tasks ----

type Task struct {
	ID        string
	AgentID   sql.NullString
	Name      string
	Schedule  string
	Prompt    string
	Enabled   bool
	LastRunAt sql.NullInt64
	CreatedAt int64
}

type CreateTaskParams struct {
	ID       string
	AgentID  string
	Name     string
	Schedule string
	Prompt   string
	Enabled  bool
}

func (s *Store) CreateTask(ctx context.Context, arg CreateTaskParams) (Task, error) {
	now := time.Now().Unix()
	agentID := sql.NullString{String: arg.AgentID, Valid: arg.AgentID != ""}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, agent_id, name, schedule, prompt, enabled, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, agentID, arg.Name, arg.Schedule, arg.Prompt, arg.Enabled, now)
	if err != nil {
		return Task{}, err
	}
	return Task{ID: arg.ID, AgentID: agentID, Name: arg.Name, Schedule: arg.Schedule,
		Prompt: arg.Prompt, Enabled: arg.Enabled, CreatedAt: now}, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx,
		`SELECT id, agent_id, name, schedule, prompt, enabled, last_run_at, created_at FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.AgentID, &t.Name, &t.Schedule, &t.Prompt, &t.Enabled, &t.LastRunAt, &t.CreatedAt)
	return t, err
}

func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, name, schedule, prompt, enabled, last_run_at, created_at FROM tasks ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.AgentID, &t.Name, &t.Schedule, &t.Prompt, &t.Enabled, &t.LastRunAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) ListEnabledTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, name, schedule, prompt, enabled, last_run_at, created_at FROM tasks WHERE enabled = 1 ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.AgentID, &t.Name, &t.Schedule, &t.Prompt, &t.Enabled, &t.LastRunAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type UpdateTaskParams struct {
	ID       string
	Name     string
	Schedule string
	Prompt   string
	Enabled  bool
}

func (s *Store) UpdateTask(ctx context.Context, arg UpdateTaskParams) (Task, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, schedule = ?, prompt = ?, enabled = ? WHERE id = ?`,
		arg.Name, arg.Schedule, arg.Prompt, arg.Enabled, arg.ID)
	if err != nil {
		return Task{}, err
	}
	return s.GetTask(ctx, arg.ID)
}

func (s *Store) MarkTaskRan(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET last_run_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

// ---- Task runs ----

type TaskRun struct {
	ID         string
	TaskID     string
	Status     string
	Output     string
	StartedAt  int64
	FinishedAt sql.NullInt64
}

func (s *Store) CreateTaskRun(ctx context.Context, id, taskID string) (TaskRun, error) {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_runs (id, task_id, status, started_at) VALUES (?, ?, 'running', ?)`,
		id, taskID, now)
	if err != nil {
		return TaskRun{}, err
	}
	return TaskRun{ID: id, TaskID: taskID, Status: "running", StartedAt: now}, nil
}

func (s *Store) FinishTaskRun(ctx context.Context, id, status, output string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE task_runs SET status = ?, output = ?, finished_at = ? WHERE id = ?`,
		status, output, time.Now().Unix(), id)
	return err
}

func (s *Store) ListTaskRuns(ctx context.Context, taskID string, limit int) ([]TaskRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, status, output, started_at, finished_at FROM task_runs WHERE task_id = ? ORDER BY started_at DESC LIMIT ?`,
		taskID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []TaskRun
	for rows.Next() {
		var r TaskRun
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Status, &r.Output, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
