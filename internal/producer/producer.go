// Package producer abstracts the external generative text service behind a
// narrow session interface: open a session, receive text fragments in arrival
// order, terminate with success or a categorized failure.
package producer

import (
	"context"
	"fmt"
)

// Message roles for session turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a session's conversation history.
type Turn struct {
	Role    string
	Content string
}

// SessionRequest describes one request to the producer.
type SessionRequest struct {
	System    string
	Turns     []Turn
	MaxTokens int
}

// Session delivers the fragments of one in-flight generation.
// Recv returns io.EOF after the final fragment.
type Session interface {
	Recv() (string, error)
	Close() error
}

// Producer opens generation sessions against the external service.
// Implementations must not assume determinism or fixed latency.
type Producer interface {
	// OpenSession starts a streaming generation. Cancelling ctx aborts the
	// session and unblocks any pending Recv.
	OpenSession(ctx context.Context, req SessionRequest) (Session, error)

	// Complete runs a non-streaming request and returns the full response text.
	Complete(ctx context.Context, req SessionRequest) (string, error)
}

// FailureKind categorizes producer failures that need distinct user-facing
// messages.
type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureAuth
	FailureRateLimited
	FailureOverloaded
)

// APIError is a non-2xx response from the producer service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("producer API status %d: %s", e.StatusCode, e.Body)
}

// Kind maps the HTTP status to a failure category.
func (e *APIError) Kind() FailureKind {
	switch e.StatusCode {
	case 401:
		return FailureAuth
	case 429:
		return FailureRateLimited
	case 529:
		return FailureOverloaded
	default:
		return FailureOther
	}
}
