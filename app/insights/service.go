// Package insights composes the scraper, the brand repository and the
// competitor finder into the fetch-insights operation.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/storelens/storelens/app/brand"
	"github.com/storelens/storelens/app/database"
)

// ErrInvalidRequest is returned for requests rejected before any fetch.
var ErrInvalidRequest = errors.New("invalid request")

type Scraper interface {
	Run(ctx context.Context, website string) (*brand.Profile, error)
}

type CompetitorFinder interface {
	Find(ctx context.Context, profile *brand.Profile) ([]string, error)
}

type Request struct {
	WebsiteURL      string
	Persist         bool
	WithCompetitors bool
}

type Result struct {
	Brand       *brand.Profile   `json:"brand"`
	Competitors []*brand.Profile `json:"competitors"`
}

type Service struct {
	scraper Scraper
	repo    database.BrandRepositoryInterface
	finder  CompetitorFinder
	locks   *keyedMutex
	logger  *slog.Logger
}

// NewService wires the service. repo and finder may be nil; the matching
// optional features then report a diagnostic instead of running.
func NewService(scraper Scraper, repo database.BrandRepositoryInterface, finder CompetitorFinder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		scraper: scraper,
		repo:    repo,
		finder:  finder,
		locks:   newKeyedMutex(),
		logger:  logger,
	}
}

// Fetch scrapes req.WebsiteURL and runs the requested optional features.
// Only validation, connectivity and cancellation fail the call.
func (s *Service) Fetch(ctx context.Context, req Request) (*Result, error) {
	website := strings.TrimSpace(req.WebsiteURL)
	if website == "" {
		return nil, fmt.Errorf("%w: website_url is required", ErrInvalidRequest)
	}

	profile, err := s.scraper.Run(ctx, website)
	if err != nil {
		return nil, err
	}

	if req.Persist {
		if err := s.persist(ctx, profile); err != nil {
			s.logger.Warn("Failed to persist brand", "origin", profile.Origin, "error", err)
			profile.AddError(fmt.Sprintf("Persistence failed: %v", err))
		}
	}

	result := &Result{Brand: profile, Competitors: []*brand.Profile{}}
	if !req.WithCompetitors {
		return result, nil
	}

	competitors, err := s.competitors(ctx, profile, req.Persist)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		profile.AddError(fmt.Sprintf("Competitor analysis failed: %v", err))
		return result, nil
	}
	result.Competitors = competitors

	return result, nil
}

// Refresh re-scrapes a persisted origin and stores the new profile.
func (s *Service) Refresh(ctx context.Context, origin string) (*brand.Profile, error) {
	if s.repo == nil {
		return nil, errors.New("no brand repository configured")
	}

	profile, err := s.scraper.Run(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", origin, err)
	}
	if err := s.persist(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) persist(ctx context.Context, profile *brand.Profile) error {
	if s.repo == nil {
		return errors.New("no brand repository configured")
	}

	unlock := s.locks.Lock(profile.Origin)
	defer unlock()

	if _, err := s.repo.Upsert(ctx, profile); err != nil {
		return err
	}
	return nil
}

func (s *Service) competitors(ctx context.Context, profile *brand.Profile, persist bool) ([]*brand.Profile, error) {
	if s.finder == nil {
		return nil, errors.New("no competitor catalog configured")
	}

	origins, err := s.finder.Find(ctx, profile)
	if err != nil {
		return nil, err
	}

	scraped := make([]*brand.Profile, len(origins))
	g, gctx := errgroup.WithContext(ctx)
	for i, origin := range origins {
		g.Go(func() error {
			p, err := s.scraper.Run(gctx, origin)
			if err != nil {
				s.logger.Warn("Skipping competitor", "origin", profile.Origin, "competitor", origin, "error", err)
				return nil
			}
			if persist {
				if err := s.persist(gctx, p); err != nil {
					p.AddError(fmt.Sprintf("Persistence failed: %v", err))
				}
			}
			scraped[i] = p
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*brand.Profile, 0, len(scraped))
	found := make([]string, 0, len(scraped))
	for _, p := range scraped {
		if p == nil {
			continue
		}
		out = append(out, p)
		found = append(found, p.Origin)
	}

	if persist && s.repo != nil {
		if err := s.repo.ReplaceCompetitors(ctx, profile.Origin, found); err != nil {
			profile.AddError(fmt.Sprintf("Persistence failed: %v", err))
		}
	}

	return out, nil
}
