package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari"

type rawCfg struct {
	// Pipeline inputs and outputs
	FeedsFile    string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.yml" description:"YAML file listing the feeds to digest"`
	SeenStore    string `long:"seen-store" env:"SEEN_STORE" default:"json" choice:"json" choice:"sqlite" description:"Backend for the processed-URL ledger"`
	SeenFile     string `long:"seen-file" env:"SEEN_FILE" default:"./seen.json" description:"JSON ledger of processed article URLs (json backend)"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./digest.db" description:"SQLite database for run history and the sqlite ledger backend"`
	ArtifactPath string `long:"artifact-path" env:"ARTIFACT_PATH" default:"./news-digest.html" description:"Where the rendered digest page is written"`
	FeedPath     string `long:"feed-path" env:"FEED_PATH" default:"./news-digest.xml" description:"Where the RSS rendition of the digest is written (empty to disable)"`

	// HTTP server
	Port         string `long:"port" env:"PORT" default:"3001" description:"HTTP server port"`
	DashboardURL string `long:"dashboard-url" env:"DASHBOARD_URL" default:"http://localhost:3000" description:"Back link shown in the digest header (empty to hide)"`
	PublicURL    string `long:"public-url" env:"PUBLIC_URL" description:"Public base URL of this server, used as the digest feed link"`

	// Scheduling
	SchedulerInterval int  `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"0" description:"Seconds between pipeline runs (0 runs only at startup and on /refresh)"`
	RunOnce           bool `long:"run-once" env:"RUN_ONCE" description:"Run the pipeline once and exit without serving"`

	// Fetching and extraction
	UserAgent           string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`
	AcceptLanguage      string `long:"accept-language" env:"ACCEPT_LANGUAGE" default:"en" description:"Accept-Language header for article requests"`
	FetchTimeout        int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Article fetch timeout in seconds"`
	MaxChars            int    `long:"max-chars" env:"MAX_CHARS" default:"12000" description:"Character budget of extracted article text"`
	ReadabilityFallback bool   `long:"readability-fallback" env:"READABILITY_FALLBACK" description:"Retry short extractions with the readability algorithm"`

	// Summarization
	OpenAIAPIKey      string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"API key of the summarization service (required)"`
	OpenAIModel       string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4.1-mini" description:"Chat model used for summaries"`
	OpenAIURL         string `long:"openai-url" env:"OPENAI_URL" default:"https://api.openai.com/v1/chat/completions" description:"Chat completions endpoint"`
	SummarizerRPM     int    `long:"summarizer-rpm" env:"SUMMARIZER_RPM" default:"60" description:"Maximum summarization requests per minute"`
	SummarizerTimeout int    `long:"summarizer-timeout" env:"SUMMARIZER_TIMEOUT" default:"60" description:"Summarization request timeout in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Africa/Johannesburg)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment.
// A nil config with a nil error means help was printed.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

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

	cfg := &Cfg{
		FeedsFile:           raw.FeedsFile,
		SeenStore:           raw.SeenStore,
		SeenFile:            raw.SeenFile,
		DBPath:              raw.DBPath,
		ArtifactPath:        raw.ArtifactPath,
		FeedPath:            raw.FeedPath,
		Port:                raw.Port,
		DashboardURL:        raw.DashboardURL,
		PublicURL:           cmp.Or(raw.PublicURL, "http://localhost:"+raw.Port+"/"),
		SchedulerInterval:   time.Duration(raw.SchedulerInterval) * time.Second,
		RunOnce:             raw.RunOnce,
		UserAgent:           cmp.Or(raw.UserAgent, defaultUserAgent),
		AcceptLanguage:      raw.AcceptLanguage,
		FetchTimeout:        time.Duration(raw.FetchTimeout) * time.Second,
		MaxChars:            raw.MaxChars,
		ReadabilityFallback: raw.ReadabilityFallback,
		OpenAIAPIKey:        raw.OpenAIAPIKey,
		OpenAIModel:         raw.OpenAIModel,
		OpenAIURL:           raw.OpenAIURL,
		SummarizerRPM:       raw.SummarizerRPM,
		SummarizerTimeout:   time.Duration(raw.SummarizerTimeout) * time.Second,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.MaxChars <= 0 {
		return fmt.Errorf("max chars must be positive, got %d", cfg.MaxChars)
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if cfg.SummarizerTimeout <= 0 {
		return fmt.Errorf("summarizer timeout must be positive")
	}
	if cfg.SchedulerInterval < 0 {
		return fmt.Errorf("scheduler interval must be non-negative")
	}
	if cfg.SummarizerRPM < 0 {
		return fmt.Errorf("summarizer rpm must be non-negative")
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
