package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageSourcesRoundTrip(t *testing.T) {
	msg := &Message{}
	msg.SetSources([]SourceCitation{{
		Title: "Headline",
		Date:  "2024-03-01T12:00:00Z",
		URL:   "https://example.com/article",
	}})

	got := msg.SourceCitations()
	require.Len(t, got, 1)
	assert.Equal(t, "Headline", got[0].Title)
	assert.Equal(t, "https://example.com/article", got[0].URL)
}

func TestMessageEmptySources(t *testing.T) {
	msg := &Message{}
	msg.SetSources(nil)
	assert.Equal(t, "[]", msg.Sources)
	assert.Empty(t, msg.SourceCitations())

	assert.Nil(t, (&Message{}).SourceCitations())
}

func TestCompleteEventNeverCarriesNilSources(t *testing.T) {
	ev := CompleteEvent(nil)
	assert.Equal(t, EventComplete, ev.Type)
	assert.NotNil(t, ev.Sources)
	assert.Empty(t, ev.Sources)
}
