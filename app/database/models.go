package database

import (
	"time"
)

// RunRecord is one pipeline run as stored in the runs table.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Feeds       int
	FailedFeeds int
	Candidates  int
	Skipped     int
	Processed   int
	Failed      int
	Items       []RunItemRecord
}

// RunItemRecord is the outcome of one feed or item within a run.
type RunItemRecord struct {
	FeedName string
	URL      string
	Stage    string // read, fetch, extract, summarize, done
	Status   string // success, failed
	Error    string
}
