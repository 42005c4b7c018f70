package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type RefreshBrandTask struct {
	Task
	refresher Refresher
}

func NewRefreshBrandTask(origin string, refresher Refresher) *RefreshBrandTask {
	return &RefreshBrandTask{
		Task:      NewTask(TaskTypeRefreshBrand, origin),
		refresher: refresher,
	}
}

func (t *RefreshBrandTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	profile, err := t.refresher.Refresh(ctx, t.Origin)
	if err != nil {
		return fmt.Errorf("failed to refresh brand: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"origin", t.Origin,
		"products", len(profile.Catalog),
		"faqs", len(profile.FAQs),
		"duration", t.GetDuration())

	return nil
}
