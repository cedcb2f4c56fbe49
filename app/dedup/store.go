package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Backend reads and writes the persisted set of processed URLs.
type Backend interface {
	Read(ctx context.Context) ([]string, error)
	// Write stores urls; the backend keeps every URL it already has.
	Write(ctx context.Context, urls []string) error
}

// PersistenceError reports a failure to write the processed URL set.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist seen urls: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store holds the URLs processed by earlier runs and accumulates the URLs
// processed by the current run.
type Store struct {
	backend Backend

	mu         sync.RWMutex
	loaded     []string
	index      map[string]struct{}
	added      []string
	addedIndex map[string]struct{}
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend:    backend,
		index:      make(map[string]struct{}),
		addedIndex: make(map[string]struct{}),
	}
}

// Load replaces the in-memory state with the persisted set and starts a new
// run. A backend that cannot be read yields an empty set.
func (s *Store) Load(ctx context.Context) int {
	urls, err := s.backend.Read(ctx)
	if err != nil {
		slog.Warn("Failed to load seen urls, starting fresh", "error", err)
		urls = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = make([]string, 0, len(urls))
	s.index = make(map[string]struct{}, len(urls))
	s.added = nil
	s.addedIndex = make(map[string]struct{})

	for _, url := range urls {
		if _, ok := s.index[url]; ok {
			continue
		}
		s.index[url] = struct{}{}
		s.loaded = append(s.loaded, url)
	}

	return len(s.loaded)
}

// Contains reports whether url was processed by an earlier run.
func (s *Store) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[url]
	return ok
}

// MarkSeen records url as processed by the current run.
func (s *Store) MarkSeen(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[url]; ok {
		return
	}
	if _, ok := s.addedIndex[url]; ok {
		return
	}
	s.addedIndex[url] = struct{}{}
	s.added = append(s.added, url)
}

// Added returns the URLs marked during the current run in marking order.
func (s *Store) Added() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.added...)
}

// Persist writes the loaded set followed by the URLs added this run.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	urls := make([]string, 0, len(s.loaded)+len(s.added))
	urls = append(urls, s.loaded...)
	urls = append(urls, s.added...)
	s.mu.RUnlock()

	if err := s.backend.Write(ctx, urls); err != nil {
		return &PersistenceError{Err: err}
	}

	slog.Debug("Seen urls persisted", "total", len(urls))

	return nil
}
