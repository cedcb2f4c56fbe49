package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcherFetch_Headers(t *testing.T) {
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>Hello</p></body></html>"))
	}))
	defer server.Close()

	fetcher, err := NewFetcher(server.Client(), "browser-agent", "en-ZA,en;q=0.8", 5*time.Second)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if string(data) != "<html><body><p>Hello</p></body></html>" {
		t.Errorf("Unexpected body: %s", data)
	}
	if headers.Get("User-Agent") != "browser-agent" {
		t.Errorf("Expected user agent 'browser-agent', got '%s'", headers.Get("User-Agent"))
	}
	if headers.Get("Accept-Language") != "en-ZA,en;q=0.8" {
		t.Errorf("Expected accept language header, got '%s'", headers.Get("Accept-Language"))
	}
	if headers.Get("Accept") != "text/html,application/xhtml+xml" {
		t.Errorf("Expected accept header, got '%s'", headers.Get("Accept"))
	}
}

func TestFetcherFetch_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		w.Write([]byte{'c', 'a', 'f', 0xE9})
	}))
	defer server.Close()

	fetcher, err := NewFetcher(server.Client(), "agent", "en", 5*time.Second)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if string(data) != "café" {
		t.Errorf("Expected 'café', got %q", data)
	}
}

func TestFetcherFetch_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher, err := NewFetcher(server.Client(), "agent", "en", 5*time.Second)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	_, err = fetcher.Fetch(context.Background(), server.URL+"/article")

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got: %v", err)
	}
	if fetchErr.StatusCode != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", fetchErr.StatusCode)
	}
	if fetchErr.URL != server.URL+"/article" {
		t.Errorf("Expected URL in error, got '%s'", fetchErr.URL)
	}
}

func TestFetcherFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	fetcher, err := NewFetcher(server.Client(), "agent", "en", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	_, err = fetcher.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got: %v", err)
	}
}

func TestNewFetcher_InvalidAcceptLanguage(t *testing.T) {
	if _, err := NewFetcher(http.DefaultClient, "agent", "not a language!!", time.Second); err == nil {
		t.Error("Expected error for invalid accept language")
	}
}
