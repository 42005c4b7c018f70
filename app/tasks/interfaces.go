package tasks

import (
	"context"
	"time"

	"github.com/storelens/storelens/app/brand"
	"github.com/storelens/storelens/app/database"
)

// TaskSchedulerInterface is what the server and the API see of the scheduler.
//
//	scheduler := NewScheduler(repo, service, finder, config)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshBrandTask(origin, service))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Refresher re-scrapes and stores one origin.
type Refresher interface {
	Refresh(ctx context.Context, origin string) (*brand.Profile, error)
}

// CatalogLoader reloads the competitor catalog from disk.
type CatalogLoader interface {
	Load() error
	GroupCount() int
}

// StaleLister lists persisted brands last updated before a cutoff.
type StaleLister interface {
	ListStale(ctx context.Context, before time.Time, limit int) ([]database.Brand, error)
}
