package model

import (
	"strings"
	"time"
)

// TagOther is the fallback tag applied when no classification rule matches a prompt.
const TagOther = "Other"

// Artifact is a persisted generated game plus its metadata.
type Artifact struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Document   string   `json:"document"`
	Title      string   `json:"title"`
	Votes      int      `json:"votes"`
	Complexity int      `json:"complexity"`
	UserRating *int     `json:"user_rating"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"created_at"`
}

// Summary is an Artifact without its document body, for listings.
type Summary struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Title      string   `json:"title"`
	Votes      int      `json:"votes"`
	Complexity int      `json:"complexity"`
	UserRating *int     `json:"user_rating"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"created_at"`
}

// NewArtifact creates a new Artifact with a creation timestamp.
func NewArtifact(id, prompt, document, title string, complexity int, tags []string) Artifact {
	return Artifact{
		ID:         id,
		Prompt:     prompt,
		Document:   document,
		Title:      title,
		Complexity: complexity,
		Tags:       tags,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

// JoinTags serializes a tag list into the comma-joined storage form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags parses the comma-joined storage form back into a tag list.
// An empty string yields nil, not a one-element slice.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
