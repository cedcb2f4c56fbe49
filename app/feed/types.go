package feed

import (
	"time"
)

// Feed configuration types

type Source struct {
	Name     string         `yaml:"name"`
	URL      string         `yaml:"url"`
	Settings SourceSettings `yaml:"settings"`
	Filters  []SourceFilter `yaml:"filters"`

	// Position in the configuration file; digest entries are ordered by it.
	Index int `yaml:"-"`
}

type SourceSettings struct {
	Enabled  *bool `yaml:"enabled"`
	MaxItems int   `yaml:"max_items"`
	Timeout  int   `yaml:"timeout"` // seconds
}

type SourceFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

func (s SourceSettings) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s SourceSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultFeedTimeout
	}
	return time.Duration(s.Timeout) * time.Second
}

// Pipeline types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Item is one candidate entry of a feed.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	PublishedAt time.Time
	Authors     []string
	Categories  []string

	FeedName  string
	FeedTitle string
	FeedLink  string
	FeedIndex int

	IsFiltered   bool
	FilterReason string
}

// Article is the cleaned body text of one fetched page.
type Article struct {
	SourceURL   string
	Text        string
	ApproxChars int
	Scorer      string
}

// Summary is one digest entry.
type Summary struct {
	Title     string
	Facts     []string
	URL       string
	FeedName  string
	FeedTitle string
	FeedLink  string
	FeedIndex int
	ItemIndex int
}

type Digest struct {
	GeneratedAt time.Time
	Entries     []Summary
}
