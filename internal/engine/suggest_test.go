package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosgamer/promptplay/internal/model"
)

func TestSuggestParsesWrappedArray(t *testing.T) {
	p := &fakeProducer{fragments: []string{
		"Here you go:\n[{\"title\": \"Power-ups\", \"description\": \"Add random power-ups.\"}," +
			"{\"title\": \"Particles\", \"description\": \"Burst effects on hits.\"}," +
			"{\"title\": \"Levels\", \"description\": \"Ramp up the speed.\"}]\nEnjoy!",
	}}
	c := NewController(&memWriter{}, p)

	got, err := c.Suggest(context.Background(), "a pong game", "<html></html>")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Power-ups", got[0].Title)
}

func TestSuggestRejectsNonArrayResponse(t *testing.T) {
	p := &fakeProducer{fragments: []string{"I cannot propose anything."}}
	c := NewController(&memWriter{}, p)

	_, err := c.Suggest(context.Background(), "a pong game", "<html></html>")
	require.Error(t, err)
}

func TestSuggestValidation(t *testing.T) {
	c := NewController(&memWriter{}, &fakeProducer{})

	var ve *model.ValidationError
	_, err := c.Suggest(context.Background(), "", "<html></html>")
	require.ErrorAs(t, err, &ve)

	_, err = c.Suggest(context.Background(), "a pong game", "")
	require.ErrorAs(t, err, &ve)
}
