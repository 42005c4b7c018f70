package api

import (
	"context"

	"github.com/storelens/storelens/app/brand"
	"github.com/storelens/storelens/app/database"
	"github.com/storelens/storelens/app/insights"
	"github.com/storelens/storelens/app/tasks"
)

type InsightsService interface {
	Fetch(ctx context.Context, req insights.Request) (*insights.Result, error)
	Refresh(ctx context.Context, origin string) (*brand.Profile, error)
}

var _ InsightsService = (*insights.Service)(nil)

// FetchInsightsRequest is the body of POST /fetch_insights. Persist defaults
// to true when omitted.
type FetchInsightsRequest struct {
	WebsiteURL      string `json:"website_url" binding:"required"`
	Persist         *bool  `json:"persist"`
	WithCompetitors bool   `json:"with_competitors"`
}

func (r FetchInsightsRequest) toInsights() insights.Request {
	persist := true
	if r.Persist != nil {
		persist = *r.Persist
	}
	return insights.Request{
		WebsiteURL:      r.WebsiteURL,
		Persist:         persist,
		WithCompetitors: r.WithCompetitors,
	}
}

type Handler struct {
	service   InsightsService
	brandRepo database.BrandRepositoryInterface
	scheduler tasks.TaskSchedulerInterface
	version   string
}
