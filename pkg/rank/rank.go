// Package rank scores stored chunks against a query embedding and returns
// an ordered, thresholded, size-limited result set.
//
// Selection is always by raw cosine similarity; the relevance score layers
// a bounded keyword boost on top for display but never changes which
// chunks are returned or their order.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/summitchronicles/basecamp/pkg/knowledge"
)

const (
	// DefaultLimit is the result count used when the caller passes zero.
	DefaultLimit = 5

	// MaxLimit caps the result count regardless of what was requested.
	MaxLimit = 20

	// SnippetLength bounds the display snippet taken from a chunk.
	SnippetLength = 200
)

// Boost weights applied to the relevance score per matched query keyword.
// The total is always capped at 1.0.
const (
	titleBoost      = 0.15
	tagBoost        = 0.10
	contentBoost    = 0.05
	multiMatchBoost = 0.10
)

// Result pairs a chunk with its similarity and adjusted relevance scores.
type Result struct {
	Chunk      knowledge.Chunk
	Document   knowledge.Document
	Similarity float32
	Relevance  float32
	Snippet    string
}

// Options bounds a ranking pass.
type Options struct {
	// Limit is the maximum number of results; zero means DefaultLimit and
	// anything above MaxLimit is clamped.
	Limit int

	// Threshold discards results whose cosine similarity falls below it.
	Threshold float32
}

// CosineSimilarity computes the normalized dot product of two vectors.
// Mismatched or zero-length vectors score zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// Rank scores every chunk against the query embedding, drops those below
// the threshold, orders by descending similarity and returns at most the
// requested number of results. Ties are broken by ascending document
// insertion sequence, then ascending chunk ordinal, so identical inputs
// always produce identical output.
func Rank(query string, queryEmbedding []float32, chunks []knowledge.Chunk, docs map[string]knowledge.Document, opts Options) []Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	keywords := ExtractKeywords(query)

	results := make([]Result, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}

		similarity := CosineSimilarity(queryEmbedding, chunk.Embedding)
		if similarity < opts.Threshold {
			continue
		}

		doc := docs[chunk.DocumentID]
		results = append(results, Result{
			Chunk:      chunk,
			Document:   doc,
			Similarity: similarity,
			Relevance:  relevance(similarity, keywords, chunk, doc),
			Snippet:    Snippet(chunk.Text),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if results[i].Chunk.DocumentSeq != results[j].Chunk.DocumentSeq {
			return results[i].Chunk.DocumentSeq < results[j].Chunk.DocumentSeq
		}
		return results[i].Chunk.Ordinal < results[j].Chunk.Ordinal
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results
}

// relevance layers keyword boosts over the similarity score: strong for a
// title hit, medium for a tag hit, light for a content hit, with an extra
// bump when two or more keywords match. Capped at 1.0.
func relevance(similarity float32, keywords []string, chunk knowledge.Chunk, doc knowledge.Document) float32 {
	score := similarity

	titleLower := strings.ToLower(doc.Title)
	contentLower := strings.ToLower(chunk.Text)
	tagsLower := strings.ToLower(strings.Join(doc.Tags, " "))

	matches := 0
	for _, word := range keywords {
		if strings.Contains(titleLower, word) {
			score += titleBoost
			matches++
		}
		if strings.Contains(tagsLower, word) {
			score += tagBoost
			matches++
		}
		if strings.Contains(contentLower, word) {
			score += contentBoost
			matches++
		}
	}

	if matches >= 2 {
		score += multiMatchBoost
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// stopwords are common question words excluded from keyword boosting.
var stopwords = map[string]struct{}{
	"what": {}, "where": {}, "when": {}, "how": {},
	"that": {}, "this": {}, "with": {}, "from": {},
}

// ExtractKeywords lowercases the query, strips punctuation and returns the
// words longer than three characters that are not question stopwords.
func ExtractKeywords(query string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		if r == '\t' || r == '\n' {
			return ' '
		}
		return -1
	}, query)

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// Snippet returns the leading display excerpt of a chunk's text, cut at a
// rune boundary with an ellipsis when truncated.
func Snippet(text string) string {
	if len(text) <= SnippetLength {
		return text
	}

	cut := SnippetLength
	for cut > 0 && (text[cut]&0xC0) == 0x80 {
		cut--
	}
	return text[:cut] + "..."
}
