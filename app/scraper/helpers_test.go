package scraper

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/storelens/storelens/app/fetcher"
)

// storefront serves fixed bodies by path and records every requested path.
type storefront struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]string
	requests []string
}

func newStorefront(t *testing.T, pages map[string]string) *storefront {
	t.Helper()

	s := &storefront{pages: pages}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		body, ok := s.pages[r.URL.Path]
		s.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, ".json"):
			w.Header().Set("Content-Type", "application/json")
		case strings.HasSuffix(r.URL.Path, ".atom"):
			w.Header().Set("Content-Type", "application/atom+xml")
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *storefront) requested(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.requests {
		if p == path {
			n++
		}
	}
	return n
}

func testFetcher() *fetcher.Client {
	opts := fetcher.DefaultOptions()
	opts.Timeout = 2 * time.Second
	opts.MaxRetries = 0
	return fetcher.New(opts)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRun(origin string, footer FooterLinks) *run {
	return &run{
		fetcher: testFetcher(),
		origin:  origin,
		base:    mustBase(origin),
		footer:  footer,
	}
}

func mustDocument(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := parseDocument(body)
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	return doc
}
