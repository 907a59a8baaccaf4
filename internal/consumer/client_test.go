package consumer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosgamer/promptplay/internal/stream"
)

func streamHandler(t *testing.T, events ...stream.Event) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, ev := range events {
			w.Write(stream.Encode(ev))
			flusher.Flush()
		}
	}
}

func TestClientGenerate(t *testing.T) {
	srv := httptest.NewServer(streamHandler(t,
		stream.Chunk{Text: "<!DOCTYPE html><html>"},
		stream.Chunk{Text: "<canvas></canvas>"},
		stream.Done{Document: "<!DOCTYPE html><html><canvas></canvas></html>", ID: "art-1"},
	))
	defer srv.Close()

	c := NewClient(srv.URL)
	var updates []Update
	result, err := c.Generate(context.Background(), "a pong game", "", func(u Update) {
		updates = append(updates, u)
	})
	require.NoError(t, err)
	assert.Equal(t, "art-1", result.ID)
	assert.Contains(t, result.Document, "<canvas>")

	require.Len(t, updates, 2)
	assert.Equal(t, "Building the HTML skeleton...", updates[0].Phase)
	assert.Equal(t, "Preparing the canvas...", updates[1].Phase)
}

func TestClientSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(streamHandler(t,
		stream.Chunk{Text: "<html>"},
		stream.Error{Message: "the model is overloaded"},
	))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Generate(context.Background(), "a pong game", "", nil)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "the model is overloaded", ue.Message)
	assert.NotErrorIs(t, err, ErrTimeout, "upstream failures are not the timeout class")
}

func TestClientRejectionBeforeStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Prompt is too long (max. 1000 characters)."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Generate(context.Background(), "a pong game", "", nil)

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
	assert.Contains(t, re.Message, "too long")
}

func TestClientTimeoutIsDistinct(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write(stream.Encode(stream.Chunk{Text: "<html>"}))
		w.(http.Flusher).Flush()
		<-release // never terminate
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(100*time.Millisecond))
	_, err := c.Generate(context.Background(), "a pong game", "", nil)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestClientParsesUnterminatedFinalRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write(stream.Encode(stream.Chunk{Text: "<html></html>"}))
		// Terminal record without its trailing blank line.
		payload, _ := json.Marshal(map[string]any{"done": true, "document": "<html></html>", "id": "art-2"})
		w.Write([]byte("data: " + string(payload)))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Generate(context.Background(), "a pong game", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "art-2", result.ID)
}
