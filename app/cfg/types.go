package cfg

import "time"

type Cfg struct {
	// Pipeline inputs and outputs
	FeedsFile    string
	SeenStore    string
	SeenFile     string
	DBPath       string
	ArtifactPath string
	FeedPath     string

	// HTTP server
	Port         string
	DashboardURL string
	PublicURL    string

	// Scheduling
	SchedulerInterval time.Duration
	RunOnce           bool

	// Fetching and extraction
	UserAgent           string
	AcceptLanguage      string
	FetchTimeout        time.Duration
	MaxChars            int
	ReadabilityFallback bool

	// Summarization
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIURL         string
	SummarizerRPM     int
	SummarizerTimeout time.Duration

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

const (
	SeenStoreJSON   = "json"
	SeenStoreSQLite = "sqlite"
)
