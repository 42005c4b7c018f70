package insights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/storelens/storelens/app/brand"
	"github.com/storelens/storelens/app/database"
	"github.com/storelens/storelens/app/scraper"
)

type fakeScraper struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeScraper) Run(ctx context.Context, website string) (*brand.Profile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, website)
	f.mu.Unlock()

	origin := scraper.NormalizeOrigin(website)
	if err, ok := f.fail[origin]; ok {
		return nil, err
	}
	return &brand.Profile{
		Origin: origin,
		Name:   strings.TrimPrefix(origin, "https://"),
		Meta:   brand.Meta{Success: true, Errors: []string{}},
	}, nil
}

type fakeRepo struct {
	database.BrandRepositoryInterface

	mu          sync.Mutex
	upserts     []string
	upsertErr   error
	competitors map[string][]string
}

func (r *fakeRepo) Upsert(ctx context.Context, p *brand.Profile) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserts = append(r.upserts, p.Origin)
	return int64(len(r.upserts)), nil
}

func (r *fakeRepo) ReplaceCompetitors(ctx context.Context, origin string, competitors []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.competitors == nil {
		r.competitors = map[string][]string{}
	}
	r.competitors[origin] = competitors
	return nil
}

type fakeFinder struct {
	origins []string
	err     error
}

func (f *fakeFinder) Find(ctx context.Context, p *brand.Profile) ([]string, error) {
	return f.origins, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchValidation(t *testing.T) {
	s := NewService(&fakeScraper{}, nil, nil, testLogger())

	_, err := s.Fetch(context.Background(), Request{WebsiteURL: "   "})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
}

func TestFetchConnectivityError(t *testing.T) {
	connErr := &scraper.ConnectivityError{Origin: "https://down.test", Status: 503}
	sc := &fakeScraper{fail: map[string]error{"https://down.test": connErr}}
	repo := &fakeRepo{}
	s := NewService(sc, repo, nil, testLogger())

	_, err := s.Fetch(context.Background(), Request{WebsiteURL: "down.test", Persist: true})
	if !errors.Is(err, scraper.ErrUnreachable) {
		t.Errorf("Expected ErrUnreachable, got %v", err)
	}
	if len(repo.upserts) != 0 {
		t.Errorf("Expected no upserts, got %v", repo.upserts)
	}
}

func TestFetchPersists(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(&fakeScraper{}, repo, nil, testLogger())

	result, err := s.Fetch(context.Background(), Request{WebsiteURL: "acme.test", Persist: true})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"https://acme.test"}, repo.upserts); diff != "" {
		t.Errorf("upserts mismatch (-want +got):\n%s", diff)
	}
	if len(result.Brand.Meta.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Brand.Meta.Errors)
	}
	if result.Competitors == nil || len(result.Competitors) != 0 {
		t.Errorf("Expected empty competitors, got %#v", result.Competitors)
	}
}

func TestFetchWithoutPersist(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(&fakeScraper{}, repo, nil, testLogger())

	if _, err := s.Fetch(context.Background(), Request{WebsiteURL: "acme.test"}); err != nil {
		t.Fatal(err)
	}
	if len(repo.upserts) != 0 {
		t.Errorf("Expected no upserts, got %v", repo.upserts)
	}
}

func TestFetchPersistenceFailureIsDiagnostic(t *testing.T) {
	repo := &fakeRepo{upsertErr: errors.New("disk full")}
	s := NewService(&fakeScraper{}, repo, nil, testLogger())

	result, err := s.Fetch(context.Background(), Request{WebsiteURL: "acme.test", Persist: true})
	if err != nil {
		t.Fatalf("Expected persistence failure to be non-fatal, got %v", err)
	}
	want := []string{"Persistence failed: disk full"}
	if diff := cmp.Diff(want, result.Brand.Meta.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if !result.Brand.Meta.Success {
		t.Error("Expected success to stay true")
	}
}

func TestFetchCompetitors(t *testing.T) {
	sc := &fakeScraper{fail: map[string]error{
		"https://gone.test": &scraper.ConnectivityError{Origin: "https://gone.test"},
	}}
	repo := &fakeRepo{}
	finder := &fakeFinder{origins: []string{"https://rival.test", "https://gone.test", "https://other.test"}}
	s := NewService(sc, repo, finder, testLogger())

	result, err := s.Fetch(context.Background(), Request{WebsiteURL: "acme.test", Persist: true, WithCompetitors: true})
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, c := range result.Competitors {
		got = append(got, c.Origin)
	}
	want := []string{"https://rival.test", "https://other.test"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("competitors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, repo.competitors["https://acme.test"]); diff != "" {
		t.Errorf("stored competitors mismatch (-want +got):\n%s", diff)
	}
	if len(repo.upserts) != 3 {
		t.Errorf("Expected brand and both competitors persisted, got %v", repo.upserts)
	}
}

func TestFetchCompetitorFinderFailure(t *testing.T) {
	finder := &fakeFinder{err: errors.New("bad catalog")}
	s := NewService(&fakeScraper{}, nil, finder, testLogger())

	result, err := s.Fetch(context.Background(), Request{WebsiteURL: "acme.test", WithCompetitors: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Competitor analysis failed: bad catalog"}
	if diff := cmp.Diff(want, result.Brand.Meta.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if len(result.Competitors) != 0 {
		t.Errorf("Expected no competitors, got %d", len(result.Competitors))
	}
}

func TestRefresh(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(&fakeScraper{}, repo, nil, testLogger())

	profile, err := s.Refresh(context.Background(), "https://acme.test")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Origin != "https://acme.test" || len(repo.upserts) != 1 {
		t.Errorf("Expected refreshed profile to be stored, got %v", repo.upserts)
	}

	repo.upsertErr = errors.New("locked")
	if _, err := s.Refresh(context.Background(), "https://acme.test"); err == nil {
		t.Error("Expected refresh to fail when persistence fails")
	}
}

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	k := newKeyedMutex()

	unlock := k.Lock("a")
	acquired := make(chan struct{})
	go func() {
		release := k.Lock("a")
		close(acquired)
		release()
	}()

	otherDone := make(chan struct{})
	go func() {
		k.Lock("b")()
		close(otherDone)
	}()

	select {
	case <-otherDone:
	case <-time.After(time.Second):
		t.Fatal("Expected a different key not to block")
	}

	select {
	case <-acquired:
		t.Fatal("Expected the same key to block")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Expected the waiter to acquire after unlock")
	}

	deadline := time.Now().Add(time.Second)
	for k.size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := k.size(); n != 0 {
		t.Errorf("Expected no retained entries, got %d", n)
	}
}
