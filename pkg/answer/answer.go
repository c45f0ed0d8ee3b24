// Package answer assembles a context window from ranked chunks, invokes
// the generation provider and produces a structured, grounded answer.
//
// Confidence is derived from the retrieval signal alone, never from the
// generator's own output: a query with nothing above the similarity floor
// gets the fixed FallbackConfidence and skips the generator entirely.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/provider"
	"github.com/summitchronicles/basecamp/pkg/rank"
)

const (
	// FallbackConfidence is reported when no chunk clears the similarity
	// floor and the insufficient-information response is returned.
	FallbackConfidence = 0.1

	// DirectConfidence is the fixed value for ungrounded direct answers.
	DirectConfidence = 0.6

	// MinTopSimilarity is the floor the best result must clear before the
	// generator is invoked at all.
	MinTopSimilarity = 0.45

	// DefaultContextBudget is the total character budget for the context
	// window handed to the generator.
	DefaultContextBudget = 3000

	// MethodRetrieval marks answers grounded in retrieved chunks.
	MethodRetrieval = "retrieval"

	// MethodDirect marks answers generated without retrieval.
	MethodDirect = "direct"
)

// FallbackAnswer is returned when retrieval finds nothing usable.
const FallbackAnswer = "The knowledge base does not have enough information to answer that yet. Try rephrasing the question or ask about ingested content."

// Source references a document that grounded an answer.
type Source struct {
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Similarity float32 `json:"similarity"`
	Relevance  float32 `json:"relevance"`
}

// Response is the structured result of an ask operation.
type Response struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Sources     []Source `json:"sources"`
	ContextUsed []string `json:"context_used"`
	Confidence  float32  `json:"confidence"`
	Method      string   `json:"method"`
}

// Synthesizer turns ranked chunks and a question into a grounded answer.
type Synthesizer struct {
	generator     provider.Generator
	contextBudget int
	logger        *zap.Logger
}

// New creates a synthesizer. A non-positive contextBudget falls back to
// DefaultContextBudget.
func New(generator provider.Generator, contextBudget int, logger *zap.Logger) *Synthesizer {
	if contextBudget <= 0 {
		contextBudget = DefaultContextBudget
	}
	return &Synthesizer{
		generator:     generator,
		contextBudget: contextBudget,
		logger:        logger,
	}
}

// Synthesize builds the context window from the ranked results, calls the
// generation provider and returns the structured answer. When the results
// are empty or the best similarity is below MinTopSimilarity, the fixed
// fallback response is returned without a provider call.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []rank.Result) (*Response, error) {
	if len(results) == 0 || results[0].Similarity < MinTopSimilarity {
		s.logger.Debug("insufficient retrieval context, returning fallback",
			zap.String("question", question),
			zap.Int("results", len(results)),
		)
		return &Response{
			Question:    question,
			Answer:      FallbackAnswer,
			Sources:     []Source{},
			ContextUsed: []string{},
			Confidence:  FallbackConfidence,
			Method:      MethodRetrieval,
		}, nil
	}

	var window strings.Builder
	contextUsed := []string{}
	sources := []Source{}

	for _, result := range results {
		block := fmt.Sprintf("SOURCE: %s\n%s\n\n", result.Document.Title, result.Chunk.Text)
		if window.Len()+len(block) > s.contextBudget {
			break
		}
		window.WriteString(block)
		contextUsed = append(contextUsed, result.Chunk.Text)
		sources = append(sources, Source{
			Title:      result.Document.Title,
			Category:   result.Document.Category,
			Similarity: result.Similarity,
			Relevance:  result.Relevance,
		})
	}

	prompt := buildPrompt(question, window.String())

	generated, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &Response{
		Question:    question,
		Answer:      generated,
		Sources:     sources,
		ContextUsed: contextUsed,
		Confidence:  Confidence(results[0].Similarity, len(sources)),
		Method:      MethodRetrieval,
	}, nil
}

// Direct asks the generation provider without retrieval. The source list
// is empty and confidence is the fixed DirectConfidence since nothing
// grounds the answer.
func (s *Synthesizer) Direct(ctx context.Context, question, extraContext string) (*Response, error) {
	prompt := question
	if extraContext != "" {
		prompt = fmt.Sprintf("Additional context:\n%s\n\nQuestion: %s", extraContext, question)
	}

	generated, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating direct answer: %w", err)
	}

	return &Response{
		Question:    question,
		Answer:      generated,
		Sources:     []Source{},
		ContextUsed: []string{},
		Confidence:  DirectConfidence,
		Method:      MethodDirect,
	}, nil
}

// Confidence maps the retrieval signal to [0, 1]: monotonic in the top
// result's similarity and in the number of corroborating sources (counted
// up to five).
func Confidence(topSimilarity float32, sourceCount int) float32 {
	if sourceCount > 5 {
		sourceCount = 5
	}
	confidence := topSimilarity * (0.75 + 0.05*float32(sourceCount))
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

func buildPrompt(question, contextWindow string) string {
	return fmt.Sprintf(`You are an expert mountaineering coach answering from a curated knowledge base of expedition reports, training logs and technique guides.

Answer the question using only the context below. Be specific and practical, emphasize safety where relevant, and say so plainly when the context does not cover part of the question.

Context:
%s
Question: %s

Answer:`, contextWindow, question)
}
