package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/news-digest/app/dedup"
	"github.com/lysyi3m/news-digest/app/feed"
)

var _ PipelineRunner = (*Pipeline)(nil)

// Pipeline executes one digest run: read feeds, pick unseen candidates,
// summarize them, persist the seen set and write the digest artifact.
type Pipeline struct {
	sources      []feed.Source
	reader       FeedReader
	filterer     *feed.Filterer
	fetcher      ArticleFetcher
	extractor    ContentExtractor
	summarizer   Summarizer
	store        SeenStore
	renderer     DigestRenderer
	recorder     RunRecorder
	artifactPath string

	feedRenderer DigestRenderer
	feedPath     string
}

func NewPipeline(sources []feed.Source, reader FeedReader, filterer *feed.Filterer, fetcher ArticleFetcher,
	extractor ContentExtractor, summarizer Summarizer, store SeenStore, renderer DigestRenderer,
	recorder RunRecorder, artifactPath string) *Pipeline {
	return &Pipeline{
		sources:      sources,
		reader:       reader,
		filterer:     filterer,
		fetcher:      fetcher,
		extractor:    extractor,
		summarizer:   summarizer,
		store:        store,
		renderer:     renderer,
		recorder:     recorder,
		artifactPath: artifactPath,
	}
}

// WithFeed also writes each digest as a feed document to path.
func (p *Pipeline) WithFeed(renderer DigestRenderer, path string) *Pipeline {
	p.feedRenderer = renderer
	p.feedPath = path
	return p
}

// Run returns an error only for fatal conditions: no feeds, cancellation,
// or failure to persist the seen set or write the artifact. Feed and item
// failures are reported in the RunReport.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	if len(p.sources) == 0 {
		return nil, feed.ErrNoFeeds
	}

	report := &RunReport{
		ID:           uuid.NewString(),
		StartedAt:    time.Now(),
		Feeds:        len(p.sources),
		ArtifactPath: p.artifactPath,
	}

	loaded := p.store.Load(ctx)
	slog.Info("Pipeline run started", "run", report.ID, "feeds", len(p.sources), "seen", loaded)

	readTasks := p.readFeeds(ctx, report)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	processTasks := p.selectCandidates(readTasks, report)
	p.processFeeds(ctx, processTasks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []feed.Summary
	for _, task := range processTasks {
		entries = append(entries, task.Results...)
		report.Outcomes = append(report.Outcomes, task.Outcomes...)
	}
	report.Processed = len(entries)
	report.Failed = report.Candidates - report.Processed

	if err := p.store.Persist(ctx); err != nil {
		report.FinishedAt = time.Now()
		p.recordRun(report)
		return report, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FeedIndex != entries[j].FeedIndex {
			return entries[i].FeedIndex < entries[j].FeedIndex
		}
		return entries[i].ItemIndex < entries[j].ItemIndex
	})

	if err := p.writeArtifact(entries); err != nil {
		report.FinishedAt = time.Now()
		p.recordRun(report)
		return report, err
	}

	report.FinishedAt = time.Now()
	p.recordRun(report)

	slog.Info("Pipeline run completed",
		"run", report.ID,
		"duration", report.Duration(),
		"feeds", report.Feeds,
		"failed_feeds", report.FailedFeeds,
		"candidates", report.Candidates,
		"skipped", report.Skipped,
		"duplicates", report.Duplicates,
		"filtered", report.Filtered,
		"processed", report.Processed,
		"failed", report.Failed)

	return report, nil
}

// readFeeds reads every source concurrently and waits for all of them.
func (p *Pipeline) readFeeds(ctx context.Context, report *RunReport) []*ReadFeedTask {
	readTasks := make([]*ReadFeedTask, len(p.sources))
	errs := make([]error, len(p.sources))

	var g errgroup.Group
	for i, source := range p.sources {
		task := NewReadFeedTask(source, p.reader)
		readTasks[i] = task

		g.Go(func() error {
			task.Start()
			if err := task.Execute(ctx); err != nil {
				slog.Error("Failed to read feed", "feed", source.Name, "url", source.URL, "stage", StageRead, "error", err)
				errs[i] = err
			}
			return nil
		})
	}
	g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		report.FailedFeeds++
		report.Outcomes = append(report.Outcomes, ItemOutcome{
			FeedName: p.sources[i].Name,
			URL:      p.sources[i].URL,
			Stage:    StageRead,
			Status:   StatusFailed,
			Error:    err.Error(),
		})
	}

	return readTasks
}

// selectCandidates drops filtered and already seen items. A URL offered by
// several feeds in the same run belongs to the first feed in declaration order.
func (p *Pipeline) selectCandidates(readTasks []*ReadFeedTask, report *RunReport) []*ProcessFeedTask {
	claimed := make(map[string]string)
	var processTasks []*ProcessFeedTask

	for _, readTask := range readTasks {
		if len(readTask.Items) == 0 {
			continue
		}

		items := readTask.Items
		if p.filterer != nil {
			items = p.filterer.Run(items, readTask.Source)
		}

		var candidates []feed.Item
		for _, item := range items {
			if item.IsFiltered {
				slog.Debug("Item filtered, skipping", "feed", readTask.FeedName, "url", item.Link, "reason", item.FilterReason)
				report.Filtered++
				continue
			}

			if p.store.Contains(item.Link) {
				slog.Info("Already seen article, skipping", "feed", readTask.FeedName, "url", item.Link)
				report.Skipped++
				continue
			}

			if owner, ok := claimed[item.Link]; ok {
				slog.Info("Article already offered by another feed, skipping", "feed", readTask.FeedName, "owner", owner, "url", item.Link)
				report.Duplicates++
				continue
			}

			claimed[item.Link] = readTask.FeedName
			candidates = append(candidates, item)
		}

		if len(candidates) == 0 {
			continue
		}

		report.Candidates += len(candidates)
		processTasks = append(processTasks, NewProcessFeedTask(readTask.Source, candidates, p.fetcher, p.extractor, p.summarizer, p.store))
	}

	return processTasks
}

func (p *Pipeline) processFeeds(ctx context.Context, processTasks []*ProcessFeedTask) {
	var g errgroup.Group
	for _, task := range processTasks {
		g.Go(func() error {
			task.Start()
			if err := task.Execute(ctx); err != nil {
				slog.Warn("Feed processing interrupted", "feed", task.FeedName, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

func (p *Pipeline) writeArtifact(entries []feed.Summary) error {
	digest := feed.Digest{
		GeneratedAt: time.Now(),
		Entries:     entries,
	}

	html, err := p.renderer.Run(digest)
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	if err := dedup.WriteFileAtomic(p.artifactPath, html); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	slog.Info("Digest written", "path", p.artifactPath, "entries", len(entries))

	if p.feedRenderer != nil && p.feedPath != "" {
		p.writeFeed(digest)
	}

	return nil
}

// writeFeed failures are logged only; the page is the primary artifact.
func (p *Pipeline) writeFeed(digest feed.Digest) {
	data, err := p.feedRenderer.Run(digest)
	if err != nil {
		slog.Warn("Failed to render digest feed", "path", p.feedPath, "error", err)
		return
	}

	if err := dedup.WriteFileAtomic(p.feedPath, data); err != nil {
		slog.Warn("Failed to write digest feed", "path", p.feedPath, "error", err)
		return
	}

	slog.Debug("Digest feed written", "path", p.feedPath, "entries", len(digest.Entries))
}

func (p *Pipeline) recordRun(report *RunReport) {
	if p.recorder == nil {
		return
	}

	// Detached from the run context so a failed run is still recorded.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.recorder.RecordRun(ctx, report.record()); err != nil {
		slog.Warn("Failed to record run history", "run", report.ID, "error", err)
	}
}
