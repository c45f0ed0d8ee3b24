// Package rag composes the segmenter, embedding cache, knowledge store,
// ranker, synthesizer and health monitor into the question answering
// engine behind the API.
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/answer"
	"github.com/summitchronicles/basecamp/pkg/cache"
	"github.com/summitchronicles/basecamp/pkg/health"
	"github.com/summitchronicles/basecamp/pkg/knowledge"
	"github.com/summitchronicles/basecamp/pkg/provider"
	"github.com/summitchronicles/basecamp/pkg/rank"
	"github.com/summitchronicles/basecamp/pkg/segment"
)

const (
	// DefaultSearchThreshold is the permissive similarity floor for the
	// search operation when the caller does not pass one.
	DefaultSearchThreshold = 0.3

	// AskThreshold is the stricter similarity floor used when retrieving
	// context for answer synthesis.
	AskThreshold = 0.6
)

// Options tunes an engine. Zero values fall back to package defaults.
type Options struct {
	// MaxChunkSize bounds chunk length in characters during segmentation.
	MaxChunkSize int

	// ContextBudget bounds the synthesizer's context window in characters.
	ContextBudget int

	// HealthTTL is how long a provider connectivity probe stays cached.
	HealthTTL time.Duration
}

// Engine is the retrieval-augmented answering engine. Each operation is
// an independent unit of work; the only shared mutable state is the
// knowledge store and the embedding cache, both safe for concurrent use.
type Engine struct {
	provider     provider.Provider
	store        *knowledge.Store
	cache        *cache.EmbeddingCache
	synthesizer  *answer.Synthesizer
	monitor      *health.Monitor
	maxChunkSize int
	logger       *zap.Logger
}

// New wires an engine from its collaborators.
func New(p provider.Provider, store *knowledge.Store, embedCache *cache.EmbeddingCache, opts Options, logger *zap.Logger) *Engine {
	maxChunkSize := opts.MaxChunkSize
	if maxChunkSize <= 0 {
		maxChunkSize = segment.DefaultMaxChunkSize
	}

	return &Engine{
		provider:     p,
		store:        store,
		cache:        embedCache,
		synthesizer:  answer.New(p, opts.ContextBudget, logger),
		monitor:      health.NewMonitor(p, opts.HealthTTL, logger),
		maxChunkSize: maxChunkSize,
		logger:       logger,
	}
}

// IngestRequest is a document offered for ingestion. Title, Source, URL
// and Text are required; the rest is optional metadata.
type IngestRequest struct {
	Title    string            `json:"title"`
	Source   string            `json:"source"`
	URL      string            `json:"url"`
	Access   knowledge.Access  `json:"access"`
	Text     string            `json:"text"`
	Category string            `json:"category,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestResult reports what an ingestion produced.
type IngestResult struct {
	ID     string `json:"id"`
	Chunks int    `json:"chunks"`
}

// Ingest validates the request, segments the text, embeds each chunk
// through the fingerprint cache and stores the document. The store is
// only touched after every chunk embedded successfully, so a provider
// failure leaves any prior version of the document untouched.
func (e *Engine) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if err := validateIngest(req); err != nil {
		return nil, err
	}

	access := req.Access
	if access == "" {
		access = knowledge.AccessPublic
	}

	doc := knowledge.Document{
		ID:       knowledge.DocumentID(req.Title),
		Title:    req.Title,
		Category: req.Category,
		Source:   req.Source,
		URL:      req.URL,
		Access:   access,
		Text:     req.Text,
		Tags:     req.Tags,
		Metadata: req.Metadata,
	}

	pieces := segment.Split(req.Text, e.maxChunkSize)

	chunks := make([]knowledge.Chunk, 0, len(pieces))
	misses := 0
	for _, text := range pieces {
		fingerprint := cache.Fingerprint(text)
		chunk := knowledge.Chunk{
			ID:          uuid.NewString(),
			Text:        text,
			Fingerprint: fingerprint,
		}

		if embedding, ok := e.cache.Lookup(fingerprint); ok {
			chunk.Embedding = embedding
			chunks = append(chunks, chunk)
			continue
		}

		embedding, err := e.provider.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding chunk of %q: %v", ErrProvider, doc.ID, err)
		}
		misses++

		chunk.Embedding = embedding
		chunk.EmbeddedAt = time.Now().UTC()
		chunks = append(chunks, chunk)

		// A failed cache write costs recomputation later, nothing more.
		_ = e.cache.Store(fingerprint, embedding)
	}

	e.store.Replace(doc, chunks)

	e.logger.Debug("document ingested",
		zap.String("id", doc.ID),
		zap.Int("chunks", len(chunks)),
		zap.Int("cache_misses", misses),
	)

	return &IngestResult{ID: doc.ID, Chunks: len(chunks)}, nil
}

// Remove deletes a document and its chunks from the knowledge store.
// Cache entries for its fingerprints are left behind; they are never
// looked up again unless the same text returns.
func (e *Engine) Remove(documentID string) {
	e.store.Remove(documentID)
	e.logger.Debug("document removed", zap.String("id", documentID))
}

// Search embeds the query and returns the ranked results above the
// threshold. A negative threshold selects DefaultSearchThreshold.
func (e *Engine) Search(ctx context.Context, query string, limit int, threshold float32) ([]rank.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrValidation)
	}
	if threshold < 0 {
		threshold = DefaultSearchThreshold
	}

	e.logger.Debug("search state", zap.String("state", "EMBEDDING_QUERY"), zap.String("query", query))
	queryEmbedding, err := e.provider.Embed(ctx, query)
	if err != nil {
		e.logger.Debug("search state", zap.String("state", "FAILED"), zap.Error(err))
		return nil, fmt.Errorf("%w: embedding query: %v", ErrProvider, err)
	}

	e.logger.Debug("search state", zap.String("state", "RANKING"))
	results := rank.Rank(query, queryEmbedding, e.store.AllChunks(), e.store.Documents(), rank.Options{
		Limit:     limit,
		Threshold: threshold,
	})

	e.logger.Debug("search state", zap.String("state", "DONE"), zap.Int("results", len(results)))
	return results, nil
}

// Ask answers a question. With retrieval enabled the question is embedded,
// the knowledge base is ranked at AskThreshold and the synthesizer builds
// a grounded answer — or the fixed fallback when nothing clears the floor,
// which is a successful outcome, not an error. With retrieval disabled the
// generator is asked directly and the response carries no sources.
func (e *Engine) Ask(ctx context.Context, question string, useRetrieval bool, extraContext string) (*answer.Response, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrValidation)
	}

	if !useRetrieval {
		resp, err := e.synthesizer.Direct(ctx, question, extraContext)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}
		return resp, nil
	}

	e.logger.Debug("ask state", zap.String("state", "EMBEDDING_QUERY"), zap.String("question", question))
	queryEmbedding, err := e.provider.Embed(ctx, question)
	if err != nil {
		e.logger.Debug("ask state", zap.String("state", "FAILED"), zap.Error(err))
		return nil, fmt.Errorf("%w: embedding question: %v", ErrProvider, err)
	}

	e.logger.Debug("ask state", zap.String("state", "RANKING"))
	results := rank.Rank(question, queryEmbedding, e.store.AllChunks(), e.store.Documents(), rank.Options{
		Threshold: AskThreshold,
	})

	if len(results) == 0 {
		e.logger.Debug("ask state", zap.String("state", "INSUFFICIENT_CONTEXT"))
	} else {
		e.logger.Debug("ask state", zap.String("state", "SYNTHESIZING"), zap.Int("results", len(results)))
	}

	resp, err := e.synthesizer.Synthesize(ctx, question, results)
	if err != nil {
		e.logger.Debug("ask state", zap.String("state", "FAILED"), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	e.logger.Debug("ask state", zap.String("state", "DONE"), zap.String("method", resp.Method))
	return resp, nil
}

// StatusReport is the engine's operational snapshot.
type StatusReport struct {
	Status        string          `json:"status"`
	Provider      ProviderStatus  `json:"provider"`
	KnowledgeBase knowledge.Stats `json:"knowledge_base"`
	Capabilities  []string        `json:"capabilities"`
}

// ProviderStatus names the active provider alongside its connectivity.
type ProviderStatus struct {
	Name string `json:"name"`
	health.Status
}

// Status reports provider connectivity (from the TTL-cached monitor) and
// knowledge base statistics.
func (e *Engine) Status(ctx context.Context) StatusReport {
	probe := e.monitor.Status(ctx)

	status := "ok"
	if !probe.Connected {
		status = "degraded"
	}

	return StatusReport{
		Status: status,
		Provider: ProviderStatus{
			Name:   e.provider.Name(),
			Status: probe,
		},
		KnowledgeBase: e.store.Stats(),
		Capabilities:  []string{"ingest", "search", "ask", "status"},
	}
}

func validateIngest(req IngestRequest) error {
	missing := func(field, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
		}
		return nil
	}

	if err := missing("title", req.Title); err != nil {
		return err
	}
	if err := missing("source", req.Source); err != nil {
		return err
	}
	if err := missing("url", req.URL); err != nil {
		return err
	}
	if err := missing("text", req.Text); err != nil {
		return err
	}

	if req.Access != "" && req.Access != knowledge.AccessPublic && req.Access != knowledge.AccessPrivate {
		return fmt.Errorf("%w: access must be %q or %q", ErrValidation, knowledge.AccessPublic, knowledge.AccessPrivate)
	}

	return nil
}
