package tasks

import (
	"context"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/feed"
)

type FeedReader interface {
	Read(ctx context.Context, source feed.Source) ([]feed.Item, error)
}

type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type ContentExtractor interface {
	Run(data []byte, sourceURL string) (*feed.Article, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) ([]string, error)
}

// SeenStore is the processed-URL ledger shared by all feeds of a run.
type SeenStore interface {
	Load(ctx context.Context) int
	Contains(url string) bool
	MarkSeen(url string)
	Added() []string
	Persist(ctx context.Context) error
}

type DigestRenderer interface {
	Run(digest feed.Digest) ([]byte, error)
}

type RunRecorder interface {
	RecordRun(ctx context.Context, run database.RunRecord) error
}

type PipelineRunner interface {
	Run(ctx context.Context) (*RunReport, error)
}

// TaskSchedulerInterface is used by the main application and the HTTP server
// to drive pipeline runs.
//
//	scheduler := NewScheduler(pipeline, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Trigger() bool
}
