package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mosgamer/promptplay/internal/model"
	"github.com/mosgamer/promptplay/internal/producer"
)

// The producer occasionally wraps the array in prose or a fence despite the
// instructions; take the first bracketed span.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// Suggest asks the producer for exactly three improvement suggestions for an
// existing game. This is a plain completion, no streaming involved.
func (c *Controller) Suggest(ctx context.Context, prompt, document string) ([]Suggestion, error) {
	if strings.TrimSpace(prompt) == "" || strings.TrimSpace(document) == "" {
		return nil, model.Validation("Prompt and document are required.")
	}

	raw, err := c.producer.Complete(ctx, producer.SessionRequest{
		System:    suggestSystemPrompt,
		Turns:     suggestTurns(prompt, document),
		MaxTokens: c.suggestTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest completion: %w", err)
	}

	span := jsonArrayRe.FindString(raw)
	if span == "" {
		return nil, fmt.Errorf("no JSON array in suggestion response")
	}
	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(span), &suggestions); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("empty suggestion list")
	}
	return suggestions, nil
}
