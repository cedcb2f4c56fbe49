package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/feed"
)

type fakeReader struct {
	items map[string][]feed.Item
	errs  map[string]error
}

func (r *fakeReader) Read(_ context.Context, source feed.Source) ([]feed.Item, error) {
	if err := r.errs[source.URL]; err != nil {
		return nil, err
	}
	return r.items[source.URL], nil
}

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	delays map[string]time.Duration
	calls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	delay := f.delays[url]
	page, ok := f.pages[url]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !ok {
		return nil, &feed.FetchError{URL: url, StatusCode: 404, Err: errors.New("not found")}
	}
	return []byte(page), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeExtractor treats the page body as the article text. Bodies starting
// with "short" fail the sanity guard.
type fakeExtractor struct{}

func (fakeExtractor) Run(data []byte, sourceURL string) (*feed.Article, error) {
	text := string(data)
	if strings.HasPrefix(text, "short") {
		return nil, &feed.ExtractionError{URL: sourceURL, Chars: len(text), Reason: "extracted text too short"}
	}
	return &feed.Article{SourceURL: sourceURL, Text: text, ApproxChars: len(text), Scorer: "fake"}, nil
}

// fakeSummarizer returns one fact echoing the text. Texts containing
// "unsummarizable" fail.
type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text string) ([]string, error) {
	if strings.Contains(text, "unsummarizable") {
		return nil, errors.New("model output has no keyFacts")
	}
	return []string{"Fact: " + text}, nil
}

type memoryBackend struct {
	mu       sync.Mutex
	urls     []string
	writeErr error
}

func (b *memoryBackend) Read(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.urls...), nil
}

func (b *memoryBackend) Write(_ context.Context, urls []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.urls = append([]string(nil), urls...)
	return nil
}

type fakeRenderer struct {
	digests []feed.Digest
}

func (r *fakeRenderer) Run(digest feed.Digest) ([]byte, error) {
	r.digests = append(r.digests, digest)
	var sb strings.Builder
	for _, entry := range digest.Entries {
		sb.WriteString(entry.Title + "\n")
	}
	return []byte(sb.String()), nil
}

type fakeRecorder struct {
	runs []database.RunRecord
	err  error
}

func (r *fakeRecorder) RecordRun(_ context.Context, run database.RunRecord) error {
	r.runs = append(r.runs, run)
	return r.err
}

func source(index int, name, url string) feed.Source {
	return feed.Source{Name: name, URL: url, Index: index, Settings: feed.SourceSettings{MaxItems: 5}}
}

func item(src feed.Source, link, title string) feed.Item {
	return feed.Item{
		GUID:      link,
		Title:     title,
		Link:      link,
		FeedName:  src.Name,
		FeedTitle: strings.ToUpper(src.Name),
		FeedLink:  src.URL,
		FeedIndex: src.Index,
	}
}
