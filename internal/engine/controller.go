// Package engine hosts the generation session controller and the
// post-generation analysis stack: document extraction, complexity scoring,
// tag classification, suggestions, and the startup backfill.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mosgamer/promptplay/internal/model"
	"github.com/mosgamer/promptplay/internal/producer"
	"github.com/mosgamer/promptplay/internal/stream"
)

// maxPromptRunes is the longest accepted prompt.
const maxPromptRunes = 1000

// User-facing failure messages. Distinct upstream conditions map to distinct
// messages; everything else falls back to the per-flow generic message.
const (
	msgAuthFailed  = "API key invalid. Please check the server configuration."
	msgRateLimited = "Too many requests. Please wait a moment and try again."
	msgOverloaded  = "The model is overloaded right now. Please try again in a minute."

	msgGenerateFailed = "The game could not be generated. Please try again."
	msgImproveFailed  = "Improvement failed. Please try again."
)

// ArtifactWriter is the slice of the store the controller needs.
type ArtifactWriter interface {
	Insert(ctx context.Context, a model.Artifact) error
}

// Suggestion is one improvement proposal for an existing game.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GenerateRequest asks for a fresh generation.
type GenerateRequest struct {
	Prompt string
	Title  string
}

// Validate rejects malformed requests before any session is opened.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return model.Validation("Prompt is missing or invalid.")
	}
	if utf8.RuneCountInString(r.Prompt) > maxPromptRunes {
		return model.Validation("Prompt is too long (max. 1000 characters).")
	}
	return nil
}

// ImproveRequest asks for a regeneration of a prior document with a list of
// accepted suggestions applied.
type ImproveRequest struct {
	Prompt      string
	Document    string
	Suggestions []Suggestion
	ArtifactID  string
}

// Validate rejects malformed requests before any session is opened.
func (r ImproveRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" || strings.TrimSpace(r.Document) == "" || len(r.Suggestions) == 0 {
		return model.Validation("Prompt, document and suggestions are required.")
	}
	if utf8.RuneCountInString(r.Prompt) > maxPromptRunes {
		return model.Validation("Prompt is too long (max. 1000 characters).")
	}
	return nil
}

// Controller orchestrates one session against the producer: relay fragments
// as chunk events, then extract, score, classify, persist, and finish with a
// single terminal event.
type Controller struct {
	store         ArtifactWriter
	producer      producer.Producer
	maxTokens     int
	suggestTokens int
}

// ControllerOption configures the controller.
type ControllerOption func(*Controller)

// WithMaxTokens sets the per-session token budget.
func WithMaxTokens(n int) ControllerOption {
	return func(c *Controller) { c.maxTokens = n }
}

// WithSuggestMaxTokens sets the token budget for suggestion completions.
func WithSuggestMaxTokens(n int) ControllerOption {
	return func(c *Controller) { c.suggestTokens = n }
}

// NewController creates a session controller.
func NewController(store ArtifactWriter, p producer.Producer, opts ...ControllerOption) *Controller {
	c := &Controller{store: store, producer: p, maxTokens: 16000, suggestTokens: 1000}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate starts a fresh generation session. Validation failures return a
// plain error and no stream; otherwise the returned channel carries zero or
// more Chunk events followed by exactly one terminal event, then closes.
func (c *Controller) Generate(ctx context.Context, req GenerateRequest) (<-chan stream.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	slog.Info("generating game", "prompt", truncate(req.Prompt, 80))
	return c.run(ctx, generateTurns(req.Prompt), req.Prompt, req.Title, msgGenerateFailed), nil
}

// Improve starts an improvement session. It persists a brand-new artifact
// row; the prior artifact is never mutated.
func (c *Controller) Improve(ctx context.Context, req ImproveRequest) (<-chan stream.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	slog.Info("improving game", "artifact_id", req.ArtifactID, "suggestions", len(req.Suggestions))
	turns := improveTurns(req.Prompt, req.Document, req.Suggestions)
	return c.run(ctx, turns, req.Prompt+" (improved)", "", msgImproveFailed), nil
}

func (c *Controller) run(ctx context.Context, turns []producer.Turn, prompt, title, genericMsg string) <-chan stream.Event {
	events := make(chan stream.Event)

	go func() {
		defer close(events)

		sess, err := c.producer.OpenSession(ctx, producer.SessionRequest{
			System:    systemPrompt,
			Turns:     turns,
			MaxTokens: c.maxTokens,
		})
		if err != nil {
			c.emit(ctx, events, stream.Error{Message: userMessage(err, genericMsg)})
			return
		}
		defer sess.Close()

		var full strings.Builder
		for {
			if ctx.Err() != nil {
				// Consumer is gone: stop relaying, skip all post-processing.
				return
			}
			frag, err := sess.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("producer session failed", "error", err)
				c.emit(ctx, events, stream.Error{Message: userMessage(err, genericMsg)})
				return
			}
			full.WriteString(frag)
			if !c.emit(ctx, events, stream.Chunk{Text: frag}) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		document := ExtractDocument(full.String())
		complexity := ScoreComplexity(document)
		tags := ClassifyTags(prompt)
		if title == "" {
			title = DeriveTitle(document)
		}

		artifact := model.NewArtifact(uuid.New().String(), prompt, document, title, complexity, tags)
		if err := c.store.Insert(ctx, artifact); err != nil {
			slog.Error("persist artifact failed", "error", err)
			c.emit(ctx, events, stream.Error{Message: genericMsg})
			return
		}

		slog.Info("game generated",
			"artifact_id", artifact.ID,
			"chars", len(document),
			"complexity", complexity,
			"tags", model.JoinTags(tags))
		c.emit(ctx, events, stream.Done{Document: document, ID: artifact.ID})
	}()

	return events
}

// emit sends one event unless the consumer has disconnected. It reports
// whether the send happened.
func (c *Controller) emit(ctx context.Context, events chan<- stream.Event, ev stream.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func userMessage(err error, generic string) string {
	var ae *producer.APIError
	if errors.As(err, &ae) {
		switch ae.Kind() {
		case producer.FailureAuth:
			return msgAuthFailed
		case producer.FailureRateLimited:
			return msgRateLimited
		case producer.FailureOverloaded:
			return msgOverloaded
		}
	}
	return generic
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
