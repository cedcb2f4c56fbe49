package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)

	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestSeenRepository_ReadWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewSeenRepository(newTestDB(t))

	urls, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, urls)

	require.NoError(t, repo.Write(ctx, []string{"https://a.example/1", "https://a.example/2"}))
	require.NoError(t, repo.Write(ctx, []string{"https://a.example/2", "https://a.example/3"}))

	urls, err = repo.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"}, urls)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSeenRepository_WriteEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewSeenRepository(newTestDB(t))

	require.NoError(t, repo.Write(ctx, nil))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSeenRepository_CancelledContext(t *testing.T) {
	repo := NewSeenRepository(newTestDB(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, repo.Write(ctx, []string{"https://a.example/1"}))
}

func TestRunRepository_RecordAndLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(newTestDB(t))

	latest, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	started := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	older := RunRecord{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Feeds:      1,
	}
	require.NoError(t, repo.RecordRun(ctx, older))

	newer := RunRecord{
		ID:          "run-2",
		StartedAt:   started.Add(time.Hour),
		FinishedAt:  started.Add(time.Hour + 2*time.Minute),
		Feeds:       6,
		FailedFeeds: 1,
		Candidates:  5,
		Skipped:     1,
		Processed:   3,
		Failed:      1,
		Items: []RunItemRecord{
			{FeedName: "iol", URL: "https://rss.iol.io/iol/news", Stage: "read", Status: "failed", Error: "HTTP 500"},
			{FeedName: "mg", URL: "https://mg.co.za/a", Stage: "extract", Status: "failed", Error: "too short"},
			{FeedName: "mg", URL: "https://mg.co.za/b", Stage: "done", Status: "success"},
		},
	}
	require.NoError(t, repo.RecordRun(ctx, newer))

	latest, err = repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)

	assert.Equal(t, "run-2", latest.ID)
	assert.True(t, newer.StartedAt.Equal(latest.StartedAt))
	assert.True(t, newer.FinishedAt.Equal(latest.FinishedAt))
	assert.Equal(t, 6, latest.Feeds)
	assert.Equal(t, 1, latest.FailedFeeds)
	assert.Equal(t, 5, latest.Candidates)
	assert.Equal(t, 1, latest.Skipped)
	assert.Equal(t, 3, latest.Processed)
	assert.Equal(t, 1, latest.Failed)
	assert.Equal(t, newer.Items, latest.Items)
}

func TestRunRepository_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(newTestDB(t))

	run := RunRecord{ID: "run-1", StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, repo.RecordRun(ctx, run))
	assert.Error(t, repo.RecordRun(ctx, run))
}
