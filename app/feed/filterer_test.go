package feed

import (
	"strings"
	"testing"
)

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Test Item 1", Description: "Test description"},
		{Title: "Test Item 2", Description: "Another description"},
	}

	result := filterer.Run(items, Source{})

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}

	for i, item := range result {
		if item.IsFiltered {
			t.Errorf("Item %d should not be filtered when no filters are configured", i)
		}
	}
}

func TestFilterer_TitleInclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Breaking News: Rates Update"},
		{Title: "Sports Roundup"},
	}

	source := Source{
		Filters: []SourceFilter{
			{Field: "title", Includes: []string{"news", "update"}},
		},
	}

	result := filterer.Run(items, source)

	if result[0].IsFiltered {
		t.Errorf("Expected first item to pass, got reason: %s", result[0].FilterReason)
	}
	if !result[1].IsFiltered {
		t.Error("Expected second item to be filtered")
	}
	if !strings.Contains(result[1].FilterReason, "does not contain") {
		t.Errorf("Unexpected filter reason: %s", result[1].FilterReason)
	}
}

func TestFilterer_ExcludeWinsOverInclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Sponsored: markets update", Categories: []string{"Partner Content"}},
		{Title: "Markets update", Categories: []string{"Finance"}},
	}

	source := Source{
		Filters: []SourceFilter{
			{Field: "title", Includes: []string{"markets"}},
			{Field: "categories", Excludes: []string{"partner"}},
		},
	}

	result := filterer.Run(items, source)

	if !result[0].IsFiltered {
		t.Error("Expected sponsored item to be filtered")
	}
	if result[1].IsFiltered {
		t.Errorf("Expected finance item to pass, got reason: %s", result[1].FilterReason)
	}
}

func TestFilterer_CaseInsensitive(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{{Link: "https://example.com/PODCAST/episode-1"}}

	source := Source{
		Filters: []SourceFilter{
			{Field: "link", Excludes: []string{"/podcast/"}},
		},
	}

	result := filterer.Run(items, source)

	if !result[0].IsFiltered {
		t.Error("Expected link filter to match regardless of case")
	}
}

func TestFilterer_UnicodeFolding(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "ÉCOLE closures in Joburg"},
		{Title: "Eskom tariffs"},
	}

	source := Source{
		Filters: []SourceFilter{
			{Field: "title", Excludes: []string{"école"}},
		},
	}

	result := filterer.Run(items, source)

	if !result[0].IsFiltered {
		t.Error("Expected folded exclude to match")
	}
	if result[1].IsFiltered {
		t.Errorf("Expected second item to pass, got reason: %s", result[1].FilterReason)
	}
}

func TestFilterer_UnknownField(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{{Title: "Anything"}}

	excludeOnly := filterer.Run(items, Source{Filters: []SourceFilter{{Field: "content", Excludes: []string{"any"}}}})
	if excludeOnly[0].IsFiltered {
		t.Error("Expected exclude on unknown field to match nothing")
	}

	includeOnly := filterer.Run(items, Source{Filters: []SourceFilter{{Field: "content", Includes: []string{"any"}}}})
	if !includeOnly[0].IsFiltered {
		t.Error("Expected include on unknown field to reject")
	}
}
