package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mosgamer/promptplay/internal/stream"
)

// ErrTimeout reports that the overall session deadline expired. It is a
// distinct failure class from producer-side errors delivered in-stream.
var ErrTimeout = errors.New("generation timed out")

// UpstreamError is a terminal error event received from the server stream.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// RequestError is a structured (non-stream) rejection, e.g. a validation
// failure reported before framing began.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request rejected (%d): %s", e.StatusCode, e.Message)
}

// Update is a progress snapshot delivered once per received chunk.
type Update struct {
	Display string
	Lines   int
	Phase   string // non-empty only when the phase advanced
}

// Result is the terminal outcome of a successful session.
type Result struct {
	Document string
	ID       string
}

// Client streams generation sessions from a promptplay server and enforces
// the overall wall-clock timeout.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// ClientOption configures the streaming client.
type ClientOption func(*Client)

// WithTimeout overrides the default 120s session deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a streaming client for the given server base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 120 * time.Second,
		// No transport-level timeout: the session deadline is the ctx one.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generatePayload struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title,omitempty"`
}

type suggestionPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type improvePayload struct {
	Prompt      string              `json:"prompt"`
	Document    string              `json:"document"`
	Suggestions []suggestionPayload `json:"suggestions"`
	ArtifactID  string              `json:"artifactId"`
}

// Generate streams a fresh generation. onUpdate, when non-nil, is invoked
// after every chunk with the current display window, line count, and phase.
func (c *Client) Generate(ctx context.Context, prompt, title string, onUpdate func(Update)) (*Result, error) {
	return c.stream(ctx, "/api/generate", generatePayload{Prompt: prompt, Title: title}, onUpdate)
}

// Improve streams an improvement pass over a prior document.
func (c *Client) Improve(ctx context.Context, prompt, document, artifactID string, suggestions [][2]string, onUpdate func(Update)) (*Result, error) {
	payload := improvePayload{Prompt: prompt, Document: document, ArtifactID: artifactID}
	for _, s := range suggestions {
		payload.Suggestions = append(payload.Suggestions, suggestionPayload{Title: s[0], Description: s[1]})
	}
	return c.stream(ctx, "/api/improve", payload, onUpdate)
}

func (c *Client) stream(ctx context.Context, path string, payload any, onUpdate func(Update)) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	cons := New()
	var decoder stream.Decoder
	var result *Result

	handle := func(ev stream.Event) error {
		switch e := ev.(type) {
		case stream.Chunk:
			cons.Append(e.Text)
			if onUpdate != nil {
				u := Update{Display: cons.Display(), Lines: cons.LineCount()}
				if label, ok := cons.Advance(); ok {
					u.Phase = label
				}
				onUpdate(u)
			}
		case stream.Done:
			result = &Result{Document: e.Document, ID: e.ID}
		case stream.Error:
			return &UpstreamError{Message: e.Message}
		}
		return nil
	}

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range decoder.Feed(buf[:n]) {
				if hErr := handle(ev); hErr != nil {
					return nil, hErr
				}
			}
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, c.classify(ctx, err)
			}
			break // io.EOF or a transport close; the flush below decides
		}
	}

	if ev, ok := decoder.Flush(); ok {
		if err := handle(ev); err != nil {
			return nil, err
		}
	}

	if result == nil || result.Document == "" {
		if ctx.Err() != nil {
			return nil, c.classify(ctx, ctx.Err())
		}
		return nil, fmt.Errorf("stream ended without a terminal event")
	}
	return result, nil
}

// classify maps a transport failure to the timeout class when the session
// deadline was the cause.
func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
