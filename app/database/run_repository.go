package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// RunRepository records pipeline runs and their per-item outcomes.
type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) RecordRun(ctx context.Context, run RunRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("runs").
		Columns("id", "started_at", "finished_at", "feeds", "failed_feeds", "candidates", "skipped", "processed", "failed").
		Values(run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Feeds, run.FailedFeeds, run.Candidates, run.Skipped, run.Processed, run.Failed).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(run.Items) > 0 {
		insert := sq.Insert("run_items").Columns("run_id", "feed_name", "url", "stage", "status", "error")
		for _, item := range run.Items {
			insert = insert.Values(run.ID, item.FeedName, item.URL, item.Stage, item.Status, item.Error)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build run items insert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert run items: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// LatestRun returns the most recently started run with its items, or nil
// when no run was recorded yet.
func (r *RunRepository) LatestRun(ctx context.Context) (*RunRecord, error) {
	query, args, err := sq.Select("id", "started_at", "finished_at", "feeds", "failed_feeds", "candidates", "skipped", "processed", "failed").
		From("runs").
		OrderBy("started_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var run RunRecord
	var startedAt, finishedAt string

	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&run.ID, &startedAt, &finishedAt,
		&run.Feeds, &run.FailedFeeds, &run.Candidates, &run.Skipped, &run.Processed, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, err
	}

	items, err := r.runItems(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Items = items

	return &run, nil
}

func (r *RunRepository) runItems(ctx context.Context, runID string) ([]RunItemRecord, error) {
	query, args, err := sq.Select("feed_name", "url", "stage", "status", "error").
		From("run_items").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run items: %w", err)
	}
	defer rows.Close()

	var items []RunItemRecord
	for rows.Next() {
		var item RunItemRecord
		if err := rows.Scan(&item.FeedName, &item.URL, &item.Stage, &item.Status, &item.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run items: %w", err)
	}

	return items, nil
}
