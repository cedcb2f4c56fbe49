package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-4.1-mini"
	DefaultTimeout  = 60 * time.Second
)

type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	// RPM caps requests per minute; zero disables pacing.
	RPM     int
	Timeout time.Duration
}

// Client summarizes article text through an OpenAI-compatible chat
// completions endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	limit := rate.Inf
	if cfg.RPM > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RPM))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		endpoint:   endpoint,
		model:      model,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type summaryPayload struct {
	KeyFacts json.RawMessage `json:"keyFacts"`
}

// Summarize returns the key facts of the article text. Only keyFacts is read
// from the model output.
func (c *Client) Summarize(ctx context.Context, text string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &SummarizationError{Reason: "rate limiter", Err: err}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrefix + text},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, &SummarizationError{Reason: "failed to marshal request", Err: err}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &SummarizationError{Reason: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SummarizationError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SummarizationError{Reason: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(respBody))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return nil, &SummarizationError{Reason: fmt.Sprintf("unexpected status %s: %s", resp.Status, snippet)}
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, &SummarizationError{Reason: "malformed response", Err: err}
	}

	if len(chat.Choices) == 0 {
		return nil, &SummarizationError{Reason: "response has no choices"}
	}

	return parseKeyFacts(chat.Choices[0].Message.Content)
}

func parseKeyFacts(content string) ([]string, error) {
	content = stripCodeFence(content)

	var payload summaryPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, &SummarizationError{Reason: "model output is not valid JSON", Err: err}
	}

	if len(payload.KeyFacts) == 0 || string(payload.KeyFacts) == "null" {
		return nil, &SummarizationError{Reason: "model output has no keyFacts"}
	}

	var raw []string
	if err := json.Unmarshal(payload.KeyFacts, &raw); err != nil {
		return nil, &SummarizationError{Reason: "keyFacts is not a list of strings", Err: err}
	}

	facts := make([]string, 0, len(raw))
	for _, fact := range raw {
		if fact = strings.TrimSpace(fact); fact != "" {
			facts = append(facts, fact)
		}
	}

	if len(facts) == 0 {
		return nil, &SummarizationError{Reason: "keyFacts is empty"}
	}

	return facts, nil
}

// stripCodeFence removes a surrounding markdown code fence such as ```json.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[i+1:]
	} else {
		content = strings.TrimPrefix(content, "```")
	}

	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")

	return strings.TrimSpace(content)
}
