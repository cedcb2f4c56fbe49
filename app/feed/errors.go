package feed

import (
	"errors"
	"fmt"
)

var ErrNoFeeds = errors.New("no enabled feeds configured")

// FeedFetchError reports a feed that could not be fetched or parsed.
// It only aborts the feed it belongs to.
type FeedFetchError struct {
	FeedURL    string
	StatusCode int
	Err        error
}

func (e *FeedFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed %s: HTTP %d: %v", e.FeedURL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("feed %s: %v", e.FeedURL, e.Err)
}

func (e *FeedFetchError) Unwrap() error {
	return e.Err
}

// FetchError reports an article page that could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a page whose extracted text failed the sanity guard
// or could not be parsed at all.
type ExtractionError struct {
	URL    string
	Chars  int
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
