package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxItems    = 1
	DefaultFeedTimeout = 30 * time.Second
)

type sourcesFile struct {
	Feeds []Source `yaml:"feeds"`
}

// LoadSources reads the ordered feed list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	return ParseSources(data)
}

func ParseSources(data []byte) ([]Source, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	sources := make([]Source, 0, len(file.Feeds))
	names := make(map[string]int, len(file.Feeds))

	for i, source := range file.Feeds {
		source.Index = i
		setDefaults(&source)

		if err := validateSource(source); err != nil {
			return nil, fmt.Errorf("invalid feed at index %d: %w", i, err)
		}

		if prev, ok := names[source.Name]; ok {
			return nil, fmt.Errorf("feed name '%s' at index %d duplicates index %d", source.Name, i, prev)
		}
		names[source.Name] = i

		slog.Debug("Feed configuration loaded", "feed", source.Name, "url", source.URL,
			"enabled", source.Settings.IsEnabled(), "max_items", source.Settings.MaxItems)

		sources = append(sources, source)
	}

	return sources, nil
}

// EnabledSources returns the enabled sources in declaration order, or
// ErrNoFeeds when none are left.
func EnabledSources(sources []Source) ([]Source, error) {
	enabled := make([]Source, 0, len(sources))
	for _, source := range sources {
		if source.Settings.IsEnabled() {
			enabled = append(enabled, source)
		}
	}

	if len(enabled) == 0 {
		return nil, ErrNoFeeds
	}
	return enabled, nil
}

func setDefaults(source *Source) {
	source.URL = strings.TrimSpace(source.URL)
	if source.Name == "" {
		source.Name = nameFromURL(source.URL)
	}
	if source.Settings.MaxItems == 0 {
		source.Settings.MaxItems = DefaultMaxItems
	}
	if source.Settings.Timeout == 0 {
		source.Settings.Timeout = int(DefaultFeedTimeout / time.Second)
	}
}

func validateSource(source Source) error {
	if source.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	u, err := url.Parse(source.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("feed URL must be an absolute http(s) URL: %s", source.URL)
	}

	nonNegativeFields := map[string]int{
		"max items": source.Settings.MaxItems,
		"timeout":   source.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	validFields := map[string]bool{
		"title":       true,
		"description": true,
		"authors":     true,
		"link":        true,
		"categories":  true,
	}

	for i, filter := range source.Filters {
		if !validFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
