package task

import (
	"time"

	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/types"
)

func toTask(t db.Task) types.Task {
	out := types.Task{
		Id:        t.ID,
		AgentId:   t.AgentID.String,
		Name:      t.Name,
		Schedule:  t.Schedule,
		Prompt:    t.Prompt,
		Enabled:   t.Enabled,
		CreatedAt: time.Unix(t.CreatedAt, 0).Format(time.RFC3339),
	}
	if t.LastRunAt.Valid {
		out.LastRunAt = time.Unix(t.LastRunAt.Int64, 0).Format(time.RFC3339)
	}
	return out
}

func toRun(r db.TaskRun) types.TaskRun {
	out := types.TaskRun{
		Id:        r.ID,
		TaskId:    r.TaskID,
		Status:    r.Status,
		Output:    r.Output,
		StartedAt: time.Unix(r.StartedAt, 0).Format(time.RFC3339),
	}
	if r.FinishedAt.Valid {
		out.FinishedAt = time.Unix(r.FinishedAt.Int64, 0).Format(time.RFC3339)
	}
	return out
}
