package producer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnthropicClient implements Producer using the Anthropic Messages API over
// raw HTTP. Streaming sessions consume the server-sent event feed directly.
type AnthropicClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// AnthropicOption configures the Anthropic client.
type AnthropicOption func(*AnthropicClient)

// WithModel sets the model name.
func WithModel(model string) AnthropicOption {
	return func(c *AnthropicClient) { c.model = model }
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) AnthropicOption {
	return func(c *AnthropicClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// NewAnthropicClient creates a new Anthropic producer client.
func NewAnthropicClient(apiKey string, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:  apiKey,
		model:   "claude-sonnet-4-5-20250929",
		baseURL: "https://api.anthropic.com/v1",
		httpClient: &http.Client{
			// Long generations stream for minutes; per-session deadlines come
			// from the caller's context.
			Timeout: 0,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Stream    bool               `json:"stream,omitempty"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) newRequest(ctx context.Context, req SessionRequest, streaming bool) (*http.Request, error) {
	body := anthropicRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		Stream:    streaming,
		System:    req.System,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = 4096
	}
	for _, t := range req.Turns {
		body.Messages = append(body.Messages, anthropicMessage{Role: t.Role, Content: t.Content})
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	if streaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	return httpReq, nil
}

// OpenSession starts a streaming generation session.
func (c *AnthropicClient) OpenSession(ctx context.Context, req SessionRequest) (Session, error) {
	httpReq, err := c.newRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &anthropicSession{body: resp.Body, scanner: scanner}, nil
}

// anthropicSession reads text deltas off the Messages API event feed.
type anthropicSession struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Recv returns the next text fragment, or io.EOF when the message is complete.
func (s *anthropicSession) Recv() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var evt struct {
			Type  string `json:"type"`
			Delta *struct {
				Type string `json:"type"`
				Text string `json:"text,omitempty"`
			} `json:"delta,omitempty"`
			Error *struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error,omitempty"`
		}
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			continue
		}
		if evt.Error != nil {
			return "", fmt.Errorf("producer stream error: %s", evt.Error.Message)
		}
		if evt.Type == "message_stop" {
			return "", io.EOF
		}
		if evt.Type == "content_block_delta" && evt.Delta != nil && evt.Delta.Text != "" {
			return evt.Delta.Text, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *anthropicSession) Close() error {
	return s.body.Close()
}

// Complete runs a non-streaming request with a single retry on transient
// failures.
func (c *AnthropicClient) Complete(ctx context.Context, req SessionRequest) (string, error) {
	const maxAttempts = 2
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 2 * time.Second
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := c.doComplete(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var ae *APIError
		if errors.As(err, &ae) && ae.Kind() == FailureAuth {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("anthropic: %w", lastErr)
}

func (c *AnthropicClient) doComplete(ctx context.Context, req SessionRequest) (string, error) {
	httpReq, err := c.newRequest(ctx, req, false)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}
