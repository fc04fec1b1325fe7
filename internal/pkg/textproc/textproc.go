// Package textproc holds the text normalization and chunking helpers shared
// by feed ingestion.
package textproc

import (
	"regexp"
	"strings"
)

// minChunkLen is the shortest trimmed chunk worth embedding; anything at or
// below this is noise (bylines, stray fragments).
const minChunkLen = 50

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	charsetRe    = regexp.MustCompile(`[^\w\s.,!?-]`)
	nonWordRe    = regexp.MustCompile(`[^\w]`)
)

// Clean collapses all whitespace runs to single spaces, strips characters
// outside a conservative alphanumeric-and-basic-punctuation set, and trims.
func Clean(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = charsetRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// TitleKey derives the deduplication key for an article title: lowercase with
// all non-word characters removed. Keys of length <= 10 are too generic to
// dedupe on; callers must skip them.
func TitleKey(title string) string {
	return nonWordRe.ReplaceAllString(strings.ToLower(title), "")
}

// Chunk splits text on whitespace into contiguous runs of up to maxWords
// words, joined with single spaces. Runs whose trimmed length is <= 50
// characters are dropped as noise, except that a non-empty input always
// yields at least one chunk: if filtering removed everything, the original
// text is returned whole.
func Chunk(text string, maxWords int) []string {
	if text == "" {
		return nil
	}
	if maxWords <= 0 {
		maxWords = 300
	}

	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.TrimSpace(strings.Join(words[i:end], " "))
		if len(chunk) > minChunkLen {
			chunks = append(chunks, chunk)
		}
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
