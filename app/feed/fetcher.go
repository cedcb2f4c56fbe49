package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

const (
	maxBodySize  = 5 << 20
	acceptHeader = "text/html,application/xhtml+xml"
)

// Fetcher retrieves the raw HTML of an article page. It never retries.
type Fetcher struct {
	httpClient     *http.Client
	userAgent      string
	acceptLanguage string
	timeout        time.Duration
}

func NewFetcher(httpClient *http.Client, userAgent, acceptLanguage string, timeout time.Duration) (*Fetcher, error) {
	if _, _, err := language.ParseAcceptLanguage(acceptLanguage); err != nil {
		return nil, fmt.Errorf("invalid accept language %q: %w", acceptLanguage, err)
	}

	return &Fetcher{
		httpClient:     httpClient,
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
		timeout:        timeout,
	}, nil
}

// Fetch returns the page body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", f.acceptLanguage)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to fetch URL: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return decodeCharset(data, resp.Header.Get("Content-Type")), nil
}

// decodeCharset converts data to UTF-8 using the charset parameter of the
// Content-Type header. Unknown charsets leave the bytes untouched.
func decodeCharset(data []byte, contentType string) []byte {
	if contentType == "" {
		return data
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return data
	}

	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return data
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		slog.Debug("Unknown charset, keeping raw bytes", "charset", charset)
		return data
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		slog.Debug("Failed to decode charset, keeping raw bytes", "charset", charset, "error", err)
		return data
	}

	return decoded
}
