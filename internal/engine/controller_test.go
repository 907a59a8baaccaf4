package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosgamer/promptplay/internal/model"
	"github.com/mosgamer/promptplay/internal/producer"
	"github.com/mosgamer/promptplay/internal/stream"
)

// fakeProducer replays a scripted fragment sequence.
type fakeProducer struct {
	openErr   error
	fragments []string
	recvErr   error // terminal error instead of a clean end

	mu      sync.Mutex
	lastReq producer.SessionRequest
}

func (p *fakeProducer) OpenSession(_ context.Context, req producer.SessionRequest) (producer.Session, error) {
	p.mu.Lock()
	p.lastReq = req
	p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	return &fakeSession{fragments: p.fragments, err: p.recvErr}, nil
}

func (p *fakeProducer) Complete(_ context.Context, req producer.SessionRequest) (string, error) {
	p.mu.Lock()
	p.lastReq = req
	p.mu.Unlock()
	if p.openErr != nil {
		return "", p.openErr
	}
	return strings.Join(p.fragments, ""), nil
}

type fakeSession struct {
	fragments []string
	err       error
	next      int
}

func (s *fakeSession) Recv() (string, error) {
	if s.next >= len(s.fragments) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	frag := s.fragments[s.next]
	s.next++
	return frag, nil
}

func (s *fakeSession) Close() error { return nil }

// memWriter records inserted artifacts.
type memWriter struct {
	mu       sync.Mutex
	inserted []model.Artifact
}

func (w *memWriter) Insert(_ context.Context, a model.Artifact) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inserted = append(w.inserted, a)
	return nil
}

func (w *memWriter) all() []model.Artifact {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Artifact(nil), w.inserted...)
}

func fragmentsFor(doc string) []string {
	var frags []string
	for text := doc; text != ""; {
		n := min(16, len(text))
		frags = append(frags, text[:n])
		text = text[n:]
	}
	return frags
}

const testDoc = "<!DOCTYPE html>\n<html>\n<head><title>Pong</title></head>\n<body><canvas></canvas></body>\n</html>"

func TestGenerateStreamsChunksThenDone(t *testing.T) {
	frags := fragmentsFor("```html\n" + testDoc + "\n```")
	p := &fakeProducer{fragments: frags}
	w := &memWriter{}
	c := NewController(w, p)

	events, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a pong game"})
	require.NoError(t, err)

	var chunks []string
	var done *stream.Done
	for ev := range events {
		switch e := ev.(type) {
		case stream.Chunk:
			require.Nil(t, done, "no events may follow a terminal event")
			chunks = append(chunks, e.Text)
		case stream.Done:
			done = &e
		case stream.Error:
			t.Fatalf("unexpected error event: %s", e.Message)
		}
	}

	require.NotNil(t, done)
	assert.Equal(t, frags, chunks, "chunks relayed in arrival order")
	assert.Equal(t, testDoc, done.Document, "fence stripped by extraction")

	arts := w.all()
	require.Len(t, arts, 1)
	assert.Equal(t, done.ID, arts[0].ID)
	assert.Equal(t, "a pong game", arts[0].Prompt)
	assert.Equal(t, testDoc, arts[0].Document)
	assert.Equal(t, []string{"Arcade"}, arts[0].Tags)
	assert.Equal(t, 1, arts[0].Complexity)
	assert.Equal(t, "Pong", arts[0].Title, "title derived from the document")
}

func TestGenerateValidation(t *testing.T) {
	c := NewController(&memWriter{}, &fakeProducer{})

	var ve *model.ValidationError
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "   "})
	require.ErrorAs(t, err, &ve)

	_, err = c.Generate(context.Background(), GenerateRequest{Prompt: strings.Repeat("x", 1001)})
	require.ErrorAs(t, err, &ve)

	// Exactly at the limit is accepted.
	events, err := c.Generate(context.Background(), GenerateRequest{Prompt: strings.Repeat("x", 1000)})
	require.NoError(t, err)
	for range events {
	}
}

func TestGenerateDisconnectSkipsPersistence(t *testing.T) {
	p := &fakeProducer{fragments: fragmentsFor(testDoc)}
	w := &memWriter{}
	c := NewController(w, p)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.Generate(ctx, GenerateRequest{Prompt: "a pong game"})
	require.NoError(t, err)

	// Consume two chunks, then drop the connection.
	<-events
	<-events
	cancel()

	for ev := range events {
		_, isDone := ev.(stream.Done)
		assert.False(t, isDone, "aborted session must not complete")
	}
	assert.Empty(t, w.all(), "no partial artifact may be persisted")
}

func TestGenerateMapsUpstreamFailures(t *testing.T) {
	for _, tc := range []struct {
		status int
		want   string
	}{
		{401, msgAuthFailed},
		{429, msgRateLimited},
		{529, msgOverloaded},
		{500, msgGenerateFailed},
	} {
		p := &fakeProducer{openErr: &producer.APIError{StatusCode: tc.status}}
		c := NewController(&memWriter{}, p)

		events, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a pong game"})
		require.NoError(t, err, "post-validation failures arrive in-stream")

		var got []stream.Event
		for ev := range events {
			got = append(got, ev)
		}
		require.Len(t, got, 1, "status %d", tc.status)
		assert.Equal(t, stream.Error{Message: tc.want}, got[0], "status %d", tc.status)
	}
}

func TestGenerateMidStreamFailure(t *testing.T) {
	p := &fakeProducer{
		fragments: []string{"<html>", "<body>"},
		recvErr:   errors.New("connection reset"),
	}
	w := &memWriter{}
	c := NewController(w, p)

	events, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a pong game"})
	require.NoError(t, err)

	var last stream.Event
	n := 0
	for ev := range events {
		last = ev
		n++
	}
	assert.Equal(t, 3, n, "two chunks plus one terminal event")
	assert.Equal(t, stream.Error{Message: msgGenerateFailed}, last)
	assert.Empty(t, w.all())
}

func TestImprovePersistsNewArtifact(t *testing.T) {
	p := &fakeProducer{fragments: fragmentsFor(testDoc)}
	w := &memWriter{}
	c := NewController(w, p)

	events, err := c.Improve(context.Background(), ImproveRequest{
		Prompt:      "a pong game",
		Document:    "<html>old</html>",
		Suggestions: []Suggestion{{Title: "Power-ups", Description: "Add random power-ups."}},
		ArtifactID:  "prior-id",
	})
	require.NoError(t, err)

	var done *stream.Done
	for ev := range events {
		if e, ok := ev.(stream.Done); ok {
			done = &e
		}
	}
	require.NotNil(t, done)

	arts := w.all()
	require.Len(t, arts, 1, "improvement persists a new row, never an update")
	assert.NotEqual(t, "prior-id", arts[0].ID)
	assert.Equal(t, "a pong game (improved)", arts[0].Prompt)

	// The three-turn history carries the prior document as an assistant turn.
	p.mu.Lock()
	turns := p.lastReq.Turns
	p.mu.Unlock()
	require.Len(t, turns, 3)
	assert.Equal(t, producer.RoleAssistant, turns[1].Role)
	assert.Equal(t, "<html>old</html>", turns[1].Content)
	assert.Contains(t, turns[2].Content, "Power-ups")
}

func TestImproveValidation(t *testing.T) {
	c := NewController(&memWriter{}, &fakeProducer{})

	var ve *model.ValidationError
	_, err := c.Improve(context.Background(), ImproveRequest{Prompt: "p", Document: "d"})
	require.ErrorAs(t, err, &ve, "empty suggestion list rejected")
}
