package feed

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Reader fetches one feed document and turns it into candidate items.
type Reader struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
}

func NewReader(httpClient *http.Client, parser *Parser, userAgent string) *Reader {
	return &Reader{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
	}
}

// Read returns at most source.Settings.MaxItems items in document order.
// Items without a link are dropped before the limit is applied.
func (r *Reader) Read(ctx context.Context, source Source) ([]Item, error) {
	data, err := r.fetchFeed(ctx, source)
	if err != nil {
		return nil, err
	}

	metadata, items, err := r.parser.Run(data)
	if err != nil {
		return nil, &FeedFetchError{FeedURL: source.URL, Err: err}
	}

	limit := source.Settings.MaxItems
	if limit <= 0 {
		limit = DefaultMaxItems
	}

	result := make([]Item, 0, min(limit, len(items)))
	for _, item := range items {
		if item.Link == "" {
			slog.Debug("Item without link, skipping", "feed", source.Name, "title", item.Title)
			continue
		}

		item.FeedName = source.Name
		item.FeedTitle = cmp.Or(metadata.Title, source.Name)
		item.FeedLink = cmp.Or(metadata.Link, source.URL)
		item.FeedIndex = source.Index
		result = append(result, item)

		if len(result) == limit {
			break
		}
	}

	slog.Debug("Feed read", "feed", source.Name, "total", len(items), "candidates", len(result))

	return result, nil
}

func (r *Reader) fetchFeed(ctx context.Context, source Source) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, source.Settings.GetTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", source.URL, nil)
	if err != nil {
		return nil, &FeedFetchError{FeedURL: source.URL, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &FeedFetchError{FeedURL: source.URL, Err: fmt.Errorf("failed to fetch feed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FeedFetchError{
			FeedURL:    source.URL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FeedFetchError{FeedURL: source.URL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}
