package types

import "encoding/json"

// ---- Core chat model ----

type Chat struct {
	Id        string `json:"id"`
	Title     string `json:"title"`
	AgentId   string `json:"agentId,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type ChatMessage struct {
	Id        string         `json:"id"`
	ChatId    string         `json:"chatId"`
	Role      string         `json:"role"` // user or assistant
	Blocks    []MessageBlock `json:"blocks"`
	Status    string         `json:"status"` // completed, cancelled, failed
	Error     string         `json:"error,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

// MessageBlock is one ordered content block inside an assistant message.
// Type is one of: text, thinking, tool_use. A tool_use block carries its
// result inline once the tool finishes.
type MessageBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	ToolUseId string          `json:"toolUseId,omitempty"`
	ToolName  string          `json:"toolName,omitempty"`
	ToolInput json.RawMessage `json:"toolInput,omitempty"`
	Result    *ToolResult     `json:"result,omitempty"`
}

// ToolResult is the outcome of a tool invocation, late-bound into its
// tool_use block when the result arrives.
type ToolResult struct {
	Content string `json:"content"`
	IsError bool   `json:"isError,omitempty"`
}

// StreamEvent is the wire format for one streaming update, carried over
// SSE to the sending client and over the WebSocket hub to observers.
type StreamEvent struct {
	Type       string          `json:"type"` // system_status, delta, assistant_block, tool_result, permission_request, user_input_required, result
	ChatId     string          `json:"chatId,omitempty"`
	MessageId  string          `json:"messageId,omitempty"`
	BlockIndex int             `json:"blockIndex"`
	Kind       string          `json:"kind,omitempty"` // delta discriminator: thinking_delta | text_delta
	Delta      string          `json:"delta,omitempty"`
	Blocks     []MessageBlock  `json:"blocks,omitempty"`
	Block      *MessageBlock   `json:"block,omitempty"`
	Status     string          `json:"status,omitempty"`
	RequestId  string          `json:"requestId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	ToolInput  json.RawMessage `json:"toolInput,omitempty"`
	Prompt     string          `json:"prompt,omitempty"`
	Message    *ChatMessage    `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ---- Chat CRUD ----

type CreateChatRequest struct {
	Title   string `json:"title,omitempty"`
	AgentId string `json:"agentId,omitempty"`
}

type CreateChatResponse struct {
	Chat Chat `json:"chat"`
}

type GetChatRequest struct {
	Id string `path:"id"`
}

type GetChatResponse struct {
	Chat     Chat          `json:"chat"`
	Messages []ChatMessage `json:"messages"`
}

type ListChatMessagesRequest struct {
	Id string `path:"id"`
}

type ListChatMessagesResponse struct {
	Messages []ChatMessage `json:"messages"`
}

type ListChatsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

type ListChatsResponse struct {
	Chats []Chat `json:"chats"`
	Total int    `json:"total"`
}

type UpdateChatRequest struct {
	Id    string `path:"id"`
	Title string `json:"title"`
}

type UpdateChatResponse struct {
	Chat Chat `json:"chat"`
}

type DeleteChatRequest struct {
	Id string `path:"id"`
}

type DeleteChatResponse struct {
	Success bool `json:"success"`
}

// ---- Streaming turn ----

type SendMessageRequest struct {
	ChatId  string `path:"id"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

type ProvideInputRequest struct {
	ChatId    string `path:"id"`
	RequestId string `json:"requestId"`
	Value     string `json:"value"`
}

type ProvideInputResponse struct {
	Accepted bool `json:"accepted"`
}

type ResolvePermissionRequest struct {
	ChatId    string `path:"id"`
	RequestId string `json:"requestId"`
	Approved  bool   `json:"approved"`
	Always    bool   `json:"always,omitempty"`
}

type ResolvePermissionResponse struct {
	Accepted bool `json:"accepted"`
}

type CancelTurnRequest struct {
	ChatId string `path:"id"`
}

type CancelTurnResponse struct {
	Cancelled bool `json:"cancelled"`
}

type SessionStatusRequest struct {
	ChatId string `path:"id"`
}

type SessionStatusResponse struct {
	ChatId    string `json:"chatId"`
	Status    string `json:"status"`
	RequestId string `json:"requestId,omitempty"` // pending suspension, if any
	Kind      string `json:"kind,omitempty"`      // permission or input
}

// ---- Agent profiles ----

type AgentProfile struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"` // cli or anthropic
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type CreateAgentRequest struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

type CreateAgentResponse struct {
	Agent AgentProfile `json:"agent"`
}

type GetAgentRequest struct {
	Id string `path:"id"`
}

type GetAgentResponse struct {
	Agent AgentProfile `json:"agent"`
}

type ListAgentsResponse struct {
	Agents []AgentProfile `json:"agents"`
}

type UpdateAgentRequest struct {
	Id           string `path:"id"`
	Name         string `json:"name,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

type UpdateAgentResponse struct {
	Agent AgentProfile `json:"agent"`
}

type DeleteAgentRequest struct {
	Id string `path:"id"`
}

type DeleteAgentResponse struct {
	Success bool `json:"success"`
}

// ---- Scheduled tasks ----

type Task struct {
	Id        string `json:"id"`
	AgentId   string `json:"agentId,omitempty"`
	Name      string `json:"name"`
	Schedule  string `json:"schedule"` // cron expression
	Prompt    string `json:"prompt"`
	Enabled   bool   `json:"enabled"`
	LastRunAt string `json:"lastRunAt,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type TaskRun struct {
	Id         string `json:"id"`
	TaskId     string `json:"taskId"`
	Status     string `json:"status"` // running, completed, failed
	Output     string `json:"output,omitempty"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

type CreateTaskRequest struct {
	AgentId  string `json:"agentId,omitempty"`
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Prompt   string `json:"prompt"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

type CreateTaskResponse struct {
	Task Task `json:"task"`
}

type GetTaskRequest struct {
	Id string `path:"id"`
}

type GetTaskResponse struct {
	Task Task      `json:"task"`
	Runs []TaskRun `json:"runs"`
}

type ListTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

type UpdateTaskRequest struct {
	Id       string `path:"id"`
	Name     string `json:"name,omitempty"`
	Schedule string `json:"schedule,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

type UpdateTaskResponse struct {
	Task Task `json:"task"`
}

type RunTaskRequest struct {
	Id string `path:"id"`
}

type RunTaskResponse struct {
	RunId string `json:"runId"`
}

type ToggleTaskRequest struct {
	Id string `path:"id"`
}

type ToggleTaskResponse struct {
	Task Task `json:"task"`
}

type ListTaskRunsRequest struct {
	Id string `path:"id"`
}

type ListTaskRunsResponse struct {
	Runs []TaskRun `json:"runs"`
}

type DeleteTaskRequest struct {
	Id string `path:"id"`
}

type DeleteTaskResponse struct {
	Success bool `json:"success"`
}

// ---- Misc ----

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
