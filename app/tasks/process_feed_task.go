package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-digest/app/feed"
)

var _ TaskInterface = (*ProcessFeedTask)(nil)

type ProcessFeedTask struct {
	Task
	Source   feed.Source
	Items    []feed.Item
	Results  []feed.Summary
	Outcomes []ItemOutcome

	fetcher    ArticleFetcher
	extractor  ContentExtractor
	summarizer Summarizer
	store      SeenStore
}

func NewProcessFeedTask(source feed.Source, items []feed.Item, fetcher ArticleFetcher, extractor ContentExtractor, summarizer Summarizer, store SeenStore) *ProcessFeedTask {
	return &ProcessFeedTask{
		Task:       NewTask(TaskTypeProcessFeed, source.Name),
		Source:     source,
		Items:      items,
		fetcher:    fetcher,
		extractor:  extractor,
		summarizer: summarizer,
		store:      store,
	}
}

// Execute processes the items one after another. A failing item is logged
// and recorded; it never stops the remaining items.
func (t *ProcessFeedTask) Execute(ctx context.Context) error {
	successCount := 0
	errorCount := 0

	for i, item := range t.Items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary, stage, err := t.processItem(ctx, item)
		if err != nil {
			slog.Error("Failed to process item", "feed", t.FeedName, "url", item.Link, "stage", stage, "error", err)
			t.Outcomes = append(t.Outcomes, ItemOutcome{
				FeedName: t.FeedName,
				URL:      item.Link,
				Stage:    stage,
				Status:   StatusFailed,
				Error:    err.Error(),
			})
			errorCount++
			continue
		}

		summary.ItemIndex = i
		t.Results = append(t.Results, *summary)
		t.store.MarkSeen(item.Link)
		t.Outcomes = append(t.Outcomes, ItemOutcome{
			FeedName: t.FeedName,
			URL:      item.Link,
			Stage:    StageDone,
			Status:   StatusSuccess,
		})
		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(t.Items),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ProcessFeedTask) processItem(ctx context.Context, item feed.Item) (*feed.Summary, Stage, error) {
	slog.Info("Fetching article", "feed", t.FeedName, "url", item.Link)

	data, err := t.fetcher.Fetch(ctx, item.Link)
	if err != nil {
		return nil, StageFetch, fmt.Errorf("failed to fetch article: %w", err)
	}

	article, err := t.extractor.Run(data, item.Link)
	if err != nil {
		return nil, StageExtract, fmt.Errorf("failed to extract article: %w", err)
	}

	slog.Info("Extracted article text, summarizing",
		"feed", t.FeedName,
		"url", item.Link,
		"chars", article.ApproxChars,
		"scorer", article.Scorer)

	facts, err := t.summarizer.Summarize(ctx, article.Text)
	if err != nil {
		return nil, StageSummarize, fmt.Errorf("failed to summarize article: %w", err)
	}

	return &feed.Summary{
		Title:     item.Title,
		Facts:     facts,
		URL:       article.SourceURL,
		FeedName:  item.FeedName,
		FeedTitle: item.FeedTitle,
		FeedLink:  item.FeedLink,
		FeedIndex: item.FeedIndex,
	}, StageDone, nil
}
