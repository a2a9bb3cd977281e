package chat

import (
	"encoding/json"
	"time"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/types"
)

func toChat(c db.Chat) types.Chat {
	return types.Chat{
		Id:        c.ID,
		Title:     c.Title,
		AgentId:   c.AgentID.String,
		Status:    c.Status,
		CreatedAt: time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
		UpdatedAt: time.Unix(c.UpdatedAt, 0).Format(time.RFC3339),
	}
}

func toMessage(m db.ChatMessage) types.ChatMessage {
	var blocks []types.MessageBlock
	if err := json.Unmarshal([]byte(m.Blocks), &blocks); err != nil {
		blocks = nil
	}
	msg := types.ChatMessage{
		Id:        m.ID,
		ChatId:    m.ChatID,
		Role:      m.Role,
		Blocks:    blocks,
		Status:    m.Status,
		CreatedAt: time.Unix(m.CreatedAt, 0).Format(time.RFC3339),
	}
	if m.Error.Valid {
		msg.Error = m.Error.String
	}
	return msg
}
