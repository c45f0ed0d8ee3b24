// Package segment splits document text into bounded-size retrievable chunks.
//
// Splitting is pure and lossless: concatenating the returned chunks in order
// reproduces the input text exactly. Paragraph boundaries are preferred over
// sentence boundaries, and a paragraph longer than the limit is hard-split.
package segment

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize is the default chunk size limit in bytes.
const DefaultMaxChunkSize = 1200

// sentenceEnds are the boundaries considered when no paragraph break fits
// inside the size window. The separator stays with the preceding chunk so
// that concatenation loses nothing.
var sentenceEnds = []string{". ", "! ", "? ", "\n"}

// Split divides text into chunks of at most maxSize bytes. Empty input
// yields no chunks. A non-positive maxSize falls back to
// DefaultMaxChunkSize.
func Split(text string, maxSize int) []string {
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	var chunks []string
	remaining := text

	for len(remaining) > maxSize {
		cut := cutPoint(remaining, maxSize)
		chunks = append(chunks, remaining[:cut])
		remaining = remaining[cut:]
	}

	if remaining != "" {
		chunks = append(chunks, remaining)
	}

	return chunks
}

// cutPoint returns where to cut the next chunk, preferring the last
// paragraph break within the size window, then the last sentence end, then
// a hard cut at the window edge (backed off to a rune boundary).
func cutPoint(remaining string, maxSize int) int {
	window := remaining[:maxSize]

	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return i + 2
	}

	best := 0
	for _, end := range sentenceEnds {
		if i := strings.LastIndex(window, end); i >= 0 && i+len(end) > best {
			best = i + len(end)
		}
	}
	if best > 0 {
		return best
	}

	// Hard split. Back off so a multi-byte rune is never cut in half;
	// remaining is longer than the window, so remaining[cut] always exists.
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(remaining[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxSize
	}
	return cut
}
