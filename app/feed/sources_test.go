package feed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSources_ValidFile(t *testing.T) {
	tempDir := t.TempDir()

	content := `
feeds:
  - name: techcentral
    url: "https://techcentral.co.za/feed/"
    settings:
      enabled: true
      max_items: 3
      timeout: 15
    filters:
      - field: "title"
        excludes:
          - "sponsored"
  - url: "https://www.dailymaverick.co.za/dmrss/"
  - name: disabled
    url: "https://example.com/feed"
    settings:
      enabled: false
`

	path := filepath.Join(tempDir, "feeds.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(sources) != 3 {
		t.Fatalf("Expected 3 sources, got %d", len(sources))
	}

	first := sources[0]
	if first.Name != "techcentral" {
		t.Errorf("Expected name 'techcentral', got '%s'", first.Name)
	}
	if first.Settings.MaxItems != 3 {
		t.Errorf("Expected max items 3, got %d", first.Settings.MaxItems)
	}
	if first.Settings.GetTimeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", first.Settings.GetTimeout())
	}
	if len(first.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(first.Filters))
	}

	second := sources[1]
	if second.Name != "dailymaverick.co.za" {
		t.Errorf("Expected name derived from host, got '%s'", second.Name)
	}
	if second.Settings.MaxItems != DefaultMaxItems {
		t.Errorf("Expected default max items %d, got %d", DefaultMaxItems, second.Settings.MaxItems)
	}
	if second.Settings.GetTimeout() != DefaultFeedTimeout {
		t.Errorf("Expected default timeout, got %v", second.Settings.GetTimeout())
	}
	if !second.Settings.IsEnabled() {
		t.Error("Expected feed without enabled flag to be enabled")
	}
	if second.Index != 1 {
		t.Errorf("Expected index 1, got %d", second.Index)
	}

	if sources[2].Settings.IsEnabled() {
		t.Error("Expected third feed to be disabled")
	}

	enabled, err := EnabledSources(sources)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(enabled) != 2 {
		t.Errorf("Expected 2 enabled sources, got %d", len(enabled))
	}
}

func TestLoadSources_MissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Error("Expected error for missing feeds file")
	}
}

func TestParseSources_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing url", "feeds:\n  - name: nourl\n"},
		{"relative url", "feeds:\n  - url: /feed\n"},
		{"negative max items", "feeds:\n  - url: https://example.com/feed\n    settings:\n      max_items: -1\n"},
		{"invalid filter field", "feeds:\n  - url: https://example.com/feed\n    filters:\n      - field: body\n        includes: [x]\n"},
		{"empty filter", "feeds:\n  - url: https://example.com/feed\n    filters:\n      - field: title\n"},
		{"duplicate names", "feeds:\n  - name: a\n    url: https://example.com/1\n  - name: a\n    url: https://example.com/2\n"},
		{"broken yaml", "feeds: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSources([]byte(tt.content)); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestEnabledSources_None(t *testing.T) {
	disabled := false
	sources := []Source{
		{Name: "a", URL: "https://example.com/feed", Settings: SourceSettings{Enabled: &disabled}},
	}

	_, err := EnabledSources(sources)
	if !errors.Is(err, ErrNoFeeds) {
		t.Errorf("Expected ErrNoFeeds, got: %v", err)
	}

	_, err = EnabledSources(nil)
	if !errors.Is(err, ErrNoFeeds) {
		t.Errorf("Expected ErrNoFeeds for empty list, got: %v", err)
	}
}
