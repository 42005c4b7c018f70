package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/storelens/storelens/app/fetcher"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"storelens.db" description:"SQLite database file"`

	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Page fetching
	RequestTimeout     float64 `long:"request-timeout" env:"REQUEST_TIMEOUT_SECONDS" default:"15.0" description:"Per-request timeout in seconds"`
	MaxRedirects       int     `long:"max-redirects" env:"MAX_REDIRECTS" default:"5" description:"Maximum redirects followed per request"`
	InsecureSkipVerify bool    `long:"insecure-skip-verify" env:"INSECURE_SKIP_VERIFY" description:"Skip TLS certificate verification"`
	UserAgent          string  `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (defaults to a desktop browser)"`
	MaxRetries         int     `long:"max-retries" env:"MAX_RETRIES" default:"1" description:"Retries for transient fetch failures"`
	Concurrency        int     `long:"concurrency" env:"CONCURRENCY" default:"4" description:"Concurrent page stages per scrape"`
	RequestsPerSecond  float64 `long:"requests-per-second" env:"REQUESTS_PER_SECOND" default:"8" description:"Request rate per scrape (0 disables throttling)"`

	// Competitors and background refresh
	CompetitorsFile   string `long:"competitors-file" env:"COMPETITORS_FILE" default:"./competitors.yml" description:"YAML catalog of competitor groups"`
	RefreshInterval   int    `long:"refresh-interval" env:"REFRESH_INTERVAL_HOURS" default:"0" description:"Re-scrape stored brands older than this many hours (0 disables)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses the process arguments and environment.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help
// was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		RequestTimeout:     raw.RequestTimeout,
		MaxRedirects:       raw.MaxRedirects,
		InsecureSkipVerify: raw.InsecureSkipVerify,
		UserAgent:          cmp.Or(raw.UserAgent, fetcher.DefaultUserAgent),
		MaxRetries:         raw.MaxRetries,
		Concurrency:        raw.Concurrency,
		RequestsPerSecond:  raw.RequestsPerSecond,
		CompetitorsFile:    raw.CompetitorsFile,
		RefreshInterval:    raw.RefreshInterval,
		WorkerCount:        raw.WorkerCount,
		SchedulerInterval:  raw.SchedulerInterval,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// FetcherOptions projects the page fetching settings.
func (c *Cfg) FetcherOptions() fetcher.Options {
	opts := fetcher.DefaultOptions()
	opts.Timeout = time.Duration(c.RequestTimeout * float64(time.Second))
	opts.MaxRedirects = c.MaxRedirects
	opts.VerifyTLS = !c.InsecureSkipVerify
	opts.UserAgent = c.UserAgent
	opts.MaxRetries = c.MaxRetries
	return opts
}

// RefreshAge is the stored profile age that triggers a background re-scrape.
func (c *Cfg) RefreshAge() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Hour
}

func validate(raw *rawCfg) error {
	switch {
	case raw.DBPath == "":
		return fmt.Errorf("db-path must not be empty")
	case raw.RequestTimeout <= 0:
		return fmt.Errorf("request-timeout must be positive, got %v", raw.RequestTimeout)
	case raw.MaxRedirects < 0:
		return fmt.Errorf("max-redirects must not be negative, got %d", raw.MaxRedirects)
	case raw.MaxRetries < 0:
		return fmt.Errorf("max-retries must not be negative, got %d", raw.MaxRetries)
	case raw.Concurrency < 1:
		return fmt.Errorf("concurrency must be at least 1, got %d", raw.Concurrency)
	case raw.RequestsPerSecond < 0:
		return fmt.Errorf("requests-per-second must not be negative, got %v", raw.RequestsPerSecond)
	case raw.RefreshInterval < 0:
		return fmt.Errorf("refresh-interval must not be negative, got %d", raw.RefreshInterval)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
