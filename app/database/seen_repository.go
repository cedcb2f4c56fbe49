package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SeenRepository stores processed article URLs in the seen_urls table.
type SeenRepository struct {
	db *DB
}

func NewSeenRepository(db *DB) *SeenRepository {
	return &SeenRepository{db: db}
}

// Read returns every stored URL, oldest first.
func (r *SeenRepository) Read(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("url").
		From("seen_urls").
		OrderBy("first_seen_at", "rowid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan seen url: %w", err)
		}
		urls = append(urls, url)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seen urls: %w", err)
	}

	return urls, nil
}

// Write inserts urls that are not stored yet. Existing rows keep their
// first_seen_at. All inserts commit together or not at all.
func (r *SeenRepository) Write(ctx context.Context, urls []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(time.Now())

	for _, url := range urls {
		query, args, err := sq.Insert("seen_urls").
			Options("OR IGNORE").
			Columns("url", "first_seen_at").
			Values(url, now).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert seen url: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen urls: %w", err)
	}

	return nil
}

func (r *SeenRepository) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("seen_urls").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count seen urls: %w", err)
	}

	return count, nil
}
