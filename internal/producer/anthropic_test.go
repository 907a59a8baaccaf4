package producer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseBody(fragments ...string) string {
	body := `event: message_start
data: {"type":"message_start"}

`
	for _, f := range fragments {
		body += fmt.Sprintf("data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":%q}}\n\n", f)
	}
	body += `data: {"type":"message_stop"}

`
	return body
}

func TestOpenSessionStreamsFragmentsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseBody("<html>", "<canvas>", "</html>"))
	}))
	defer srv.Close()

	c := NewAnthropicClient("test-key", WithBaseURL(srv.URL))
	sess, err := c.OpenSession(context.Background(), SessionRequest{
		Turns: []Turn{{Role: RoleUser, Content: "make pong"}},
	})
	require.NoError(t, err)
	defer sess.Close()

	var got []string
	for {
		frag, err := sess.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, frag)
	}
	assert.Equal(t, []string{"<html>", "<canvas>", "</html>"}, got)
}

func TestOpenSessionCategorizesFailures(t *testing.T) {
	for _, tc := range []struct {
		status int
		kind   FailureKind
	}{
		{401, FailureAuth},
		{429, FailureRateLimited},
		{529, FailureOverloaded},
		{500, FailureOther},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))

		c := NewAnthropicClient("k", WithBaseURL(srv.URL))
		_, err := c.OpenSession(context.Background(), SessionRequest{})
		srv.Close()

		var ae *APIError
		require.ErrorAs(t, err, &ae, "status %d", tc.status)
		assert.Equal(t, tc.kind, ae.Kind(), "status %d", tc.status)
	}
}

func TestRecvUnblocksOnContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-release // hold the stream open without sending a terminal event
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewAnthropicClient("k", WithBaseURL(srv.URL))
	sess, err := c.OpenSession(ctx, SessionRequest{})
	require.NoError(t, err)
	defer sess.Close()

	done := make(chan error, 1)
	go func() {
		_, err := sess.Recv()
		done <- err
	}()

	cancel()
	err = <-done
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}

func TestCompleteReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"content":[{"type":"text","text":"[{\"title\":\"t\",\"description\":\"d\"}]"}]}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient("k", WithBaseURL(srv.URL))
	got, err := c.Complete(context.Background(), SessionRequest{
		Turns: []Turn{{Role: RoleUser, Content: "suggest"}},
	})
	require.NoError(t, err)
	assert.Contains(t, got, `"title"`)
}

func TestCompleteDoesNotRetryAuthFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewAnthropicClient("k", WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), SessionRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
