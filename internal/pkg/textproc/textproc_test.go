package textproc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsrag/internal/pkg/textproc"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "Fed  raises\n\nrates\ttoday", "Fed raises rates today"},
		{"keeps basic punctuation", "Markets up 2, down 1. Really!?", "Markets up 2, down 1. Really!?"},
		{"strips exotic characters", "Breaking: markets @ $record ©2024", "Breaking markets record 2024"},
		{"trims", "  headline  ", "headline"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textproc.Clean(tt.in))
		})
	}
}

func TestTitleKey(t *testing.T) {
	assert.Equal(t, "fedraisesrates", textproc.TitleKey("Fed Raises Rates"))
	assert.Equal(t, "fedraisesrates", textproc.TitleKey("FED RAISES RATES!!"))
	assert.Equal(t, "ai", textproc.TitleKey("AI"))
	assert.Equal(t, "", textproc.TitleKey("!!!"))
}

func TestChunkNeverEmptyForNonEmptyInput(t *testing.T) {
	inputs := []string{
		"short",
		"   ",
		strings.Repeat("word ", 1000),
	}
	for _, in := range inputs {
		chunks := textproc.Chunk(in, 300)
		assert.NotEmpty(t, chunks, "input %q", in)
	}
	assert.Nil(t, textproc.Chunk("", 300))
}

func TestChunkGroupsByWordCount(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = "abcdef"
	}
	text := strings.Join(words, " ")

	chunks := textproc.Chunk(text, 40)
	require.Len(t, chunks, 3)

	// non-overlapping and order-preserving: rejoining restores the input
	assert.Equal(t, text, strings.Join(chunks, " "))
	assert.Len(t, strings.Fields(chunks[0]), 40)
	assert.Len(t, strings.Fields(chunks[1]), 40)
	assert.Len(t, strings.Fields(chunks[2]), 20)
}

func TestChunkDropsNoiseRuns(t *testing.T) {
	long := strings.Repeat("paragraph ", 10) // well over 50 chars
	text := long + " ab cd"

	chunks := textproc.Chunk(text, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(long), chunks[0])
}

func TestChunkFallsBackToWholeText(t *testing.T) {
	// every run would be filtered as noise, so the original text survives
	chunks := textproc.Chunk("tiny body", 300)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny body", chunks[0])
}
