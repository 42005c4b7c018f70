package database

import (
	"context"
	"time"

	"github.com/storelens/storelens/app/brand"
)

// BrandRepositoryInterface is the persistence contract used by the insights
// service, the refresh scheduler and the CLI.
type BrandRepositoryInterface interface {
	Upsert(ctx context.Context, profile *brand.Profile) (int64, error)
	FindByOrigin(ctx context.Context, origin string) (*brand.Profile, error)
	GetBrand(ctx context.Context, origin string) (*Brand, error)
	ListStale(ctx context.Context, before time.Time, limit int) ([]Brand, error)
	GetBrandCount(ctx context.Context) (int, error)

	ReplaceCompetitors(ctx context.Context, origin string, competitors []string) error
	ListCompetitors(ctx context.Context, origin string) ([]string, error)
}
