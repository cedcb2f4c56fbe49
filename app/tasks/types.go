package tasks

import (
	"time"

	"github.com/lysyi3m/news-digest/app/database"
)

type Stage string

const (
	StageRead      Stage = "read"
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageSummarize Stage = "summarize"
	StageDone      Stage = "done"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ItemOutcome is the result of one feed read or one item chain.
type ItemOutcome struct {
	FeedName string
	URL      string
	Stage    Stage
	Status   string
	Error    string
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	Feeds       int
	FailedFeeds int
	Candidates  int
	Skipped     int // already in the seen set
	Duplicates  int // same URL offered by an earlier feed in this run
	Filtered    int
	Processed   int
	Failed      int

	Outcomes     []ItemOutcome
	ArtifactPath string
}

func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *RunReport) record() database.RunRecord {
	items := make([]database.RunItemRecord, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		items = append(items, database.RunItemRecord{
			FeedName: o.FeedName,
			URL:      o.URL,
			Stage:    string(o.Stage),
			Status:   o.Status,
			Error:    o.Error,
		})
	}

	return database.RunRecord{
		ID:          r.ID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Feeds:       r.Feeds,
		FailedFeeds: r.FailedFeeds,
		Candidates:  r.Candidates,
		Skipped:     r.Skipped,
		Processed:   r.Processed,
		Failed:      r.Failed,
		Items:       items,
	}
}
