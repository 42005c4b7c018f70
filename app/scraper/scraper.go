// Package scraper turns a storefront origin into a brand profile by probing a
// fixed set of page classes with layered fallbacks.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/storelens/storelens/app/brand"
	"github.com/storelens/storelens/app/fetcher"
)

const (
	DefaultConcurrency       = 4
	DefaultRequestsPerSecond = 8
)

// ErrUnreachable is matched by every ConnectivityError.
var ErrUnreachable = errors.New("website not reachable")

// ConnectivityError reports that the homepage could not be fetched, so no
// other stage ran.
type ConnectivityError struct {
	Origin string
	Status int
	Err    error
}

func (e *ConnectivityError) Error() string {
	if e.Status >= 400 {
		return fmt.Sprintf("website %s not reachable or returned status %d", e.Origin, e.Status)
	}
	return fmt.Sprintf("website %s not reachable: %v", e.Origin, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Is(target error) bool { return target == ErrUnreachable }

type Options struct {
	Concurrency       int
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Scraper holds no per-request state and is safe for concurrent use.
type Scraper struct {
	fetcher     fetcher.Fetcher
	concurrency int
	rps         float64
	logger      *slog.Logger
	now         func() time.Time
}

func New(f fetcher.Fetcher, opts Options) *Scraper {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scraper{
		fetcher:     f,
		concurrency: opts.Concurrency,
		rps:         opts.RequestsPerSecond,
		logger:      opts.Logger,
		now:         time.Now,
	}
}

// run carries the state of one Run call.
type run struct {
	fetcher fetcher.Fetcher
	origin  string
	base    *url.URL
	footer  FooterLinks

	mu    sync.Mutex
	notes []stageNote
}

type stageNote struct {
	stage  string
	detail string
}

func (r *run) note(stage, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, stageNote{stage: stage, detail: detail})
}

// Run builds the profile for website. A homepage failure returns a
// *ConnectivityError; a cancelled ctx returns ctx.Err(). Every other stage
// failure only leaves its field empty.
func (s *Scraper) Run(ctx context.Context, website string) (*brand.Profile, error) {
	origin := NormalizeOrigin(website)
	started := time.Now()

	limit := rate.Limit(s.rps)
	if s.rps <= 0 {
		limit = rate.Inf
	}
	f := fetcher.Throttle(s.fetcher, rate.NewLimiter(limit, s.concurrency))

	home, err := f.Text(ctx, origin+"/")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ConnectivityError{Origin: origin, Status: fetcher.StatusOf(err), Err: err}
	}
	doc, err := parseDocument(home.Body)
	if err != nil {
		return nil, &ConnectivityError{Origin: origin, Status: home.Status, Err: err}
	}

	r := &run{
		fetcher: f,
		origin:  origin,
		base:    mustBase(origin),
		footer:  ClassifyFooterLinks(doc, origin),
	}

	parts := Parts{
		Origin:         origin,
		Name:           pageTitle(doc),
		Description:    describe(doc, home.Body, origin),
		Hero:           heroProducts(doc, origin),
		Socials:        socials(r.footer),
		Contacts:       ExtractContacts(visibleText(doc.Selection, " ")),
		ImportantLinks: importantLinks(r.footer, sameOriginLinks(doc, origin)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	g.Go(func() error { parts.Catalog = r.catalog(gctx); return nil })
	g.Go(func() error { parts.Privacy = r.privacyPolicy(gctx); return nil })
	g.Go(func() error { parts.Return = r.returnPolicy(gctx); return nil })
	g.Go(func() error { parts.About = r.about(gctx); return nil })
	g.Go(func() error { parts.FAQs = r.faqs(gctx); return nil })
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, n := range r.notes {
		s.logger.Debug("Stage note", "origin", origin, "stage", n.stage, "detail", n.detail)
	}

	profile := Aggregate(parts, s.now())

	s.logger.Info("Brand profile built",
		"origin", origin,
		"products", len(profile.Catalog),
		"hero_products", len(profile.HeroItems),
		"faqs", len(profile.FAQs),
		"duration", time.Since(started))

	return profile, nil
}
