package cfg

import (
	"testing"
	"time"

	"github.com/storelens/storelens/app/fetcher"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{"--timezone=UTC"})
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}

	if cfg.DBPath != "storelens.db" {
		t.Errorf("Expected db path 'storelens.db', got '%s'", cfg.DBPath)
	}
	if cfg.MaxRedirects != 5 {
		t.Errorf("Expected max redirects 5, got %d", cfg.MaxRedirects)
	}
	if cfg.RequestTimeout != 15.0 {
		t.Errorf("Expected request timeout 15, got %v", cfg.RequestTimeout)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", cfg.Concurrency)
	}
	if cfg.CompetitorsFile != "./competitors.yml" {
		t.Errorf("Expected competitors file './competitors.yml', got '%s'", cfg.CompetitorsFile)
	}
	if cfg.RefreshInterval != 0 || cfg.RefreshAge() != 0 {
		t.Errorf("Expected refresh disabled by default, got %d", cfg.RefreshInterval)
	}
	if cfg.UserAgent != fetcher.DefaultUserAgent {
		t.Errorf("Expected browser user agent, got '%s'", cfg.UserAgent)
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsFlags(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--db-path=/tmp/brands.db",
		"--port=9090",
		"--request-timeout=2.5",
		"--insecure-skip-verify",
		"--max-retries=3",
		"--refresh-interval=12",
		"--user-agent=probe/1.0",
		"--timezone=UTC",
	})
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}

	if cfg.DBPath != "/tmp/brands.db" {
		t.Errorf("Expected db path '/tmp/brands.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.RefreshAge() != 12*time.Hour {
		t.Errorf("Expected refresh age 12h, got %v", cfg.RefreshAge())
	}

	opts := cfg.FetcherOptions()
	if opts.Timeout != 2500*time.Millisecond {
		t.Errorf("Expected timeout 2.5s, got %v", opts.Timeout)
	}
	if opts.VerifyTLS {
		t.Error("Expected TLS verification disabled")
	}
	if opts.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", opts.MaxRetries)
	}
	if opts.UserAgent != "probe/1.0" {
		t.Errorf("Expected user agent 'probe/1.0', got '%s'", opts.UserAgent)
	}
}

func TestLoadArgsEnvironment(t *testing.T) {
	t.Setenv("MAX_REDIRECTS", "2")
	t.Setenv("API_ACCESS_KEY", "secret")

	cfg, err := LoadArgs([]string{"--timezone=UTC"})
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if cfg.MaxRedirects != 2 {
		t.Errorf("Expected max redirects 2 from env, got %d", cfg.MaxRedirects)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key from env, got '%s'", cfg.APIAccessKey)
	}
}

func TestLoadArgsInvalid(t *testing.T) {
	tests := [][]string{
		{"--request-timeout=0"},
		{"--concurrency=0"},
		{"--max-redirects=-1"},
		{"--refresh-interval=-5"},
		{"--max-retries=many"},
	}
	for _, args := range tests {
		if _, err := LoadArgs(args); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestLoadArgsHelp(t *testing.T) {
	cfg, err := LoadArgs([]string{"--help"})
	if err != nil || cfg != nil {
		t.Errorf("Expected nil config and nil error for help, got %v, %v", cfg, err)
	}
}
