package cfg

type Cfg struct {
	// Storage
	DBPath string

	// HTTP server
	Port         string
	APIAccessKey string

	// Page fetching
	RequestTimeout     float64
	MaxRedirects       int
	InsecureSkipVerify bool
	UserAgent          string
	MaxRetries         int
	Concurrency        int
	RequestsPerSecond  float64

	// Competitors and background refresh
	CompetitorsFile   string
	RefreshInterval   int
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
