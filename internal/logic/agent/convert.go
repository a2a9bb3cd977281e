package agent

import (
	"time"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/types"
)

func toProfile(a db.Agent) types.AgentProfile {
	return types.AgentProfile{
		Id:           a.ID,
		Name:         a.Name,
		SystemPrompt: a.SystemPrompt,
		Model:        a.Model,
		Provider:     a.Provider,
		CreatedAt:    time.Unix(a.CreatedAt, 0).Format(time.RFC3339),
		UpdatedAt:    time.Unix(a.UpdatedAt, 0).Format(time.RFC3339),
	}
}
