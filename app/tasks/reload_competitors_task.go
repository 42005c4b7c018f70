package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type ReloadCompetitorsTask struct {
	Task
	loader CatalogLoader
}

func NewReloadCompetitorsTask(loader CatalogLoader) *ReloadCompetitorsTask {
	return &ReloadCompetitorsTask{
		Task:   NewTask(TaskTypeReloadCompetitors, ""),
		loader: loader,
	}
}

func (t *ReloadCompetitorsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.loader.Load(); err != nil {
		return fmt.Errorf("failed to reload competitor catalog: %w", err)
	}

	slog.Debug("Task completed",
		"type", string(t.Type),
		"groups", t.loader.GroupCount(),
		"duration", t.GetDuration())

	return nil
}
