package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/rag"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchResult is one entry of a search response.
type SearchResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Category   string  `json:"category,omitempty"`
	Source     string  `json:"source"`
	URL        string  `json:"url"`
	Snippet    string  `json:"snippet"`
	Similarity float32 `json:"similarity"`
	Relevance  float32 `json:"relevance"`
}

// SearchResponse is the body of GET /v1/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// AskRequest is the body of POST /v1/ask. UseRetrieval defaults to true
// when omitted.
type AskRequest struct {
	Question     string `json:"question"`
	UseRetrieval *bool  `json:"use_retrieval"`
	Context      string `json:"context,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleIngest handles POST /v1/ingest requests.
func (s *Server) handleIngest(c *fiber.Ctx) error {
	var req rag.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	result, err := s.engine.Ingest(c.Context(), req)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(result)
}

// handleSearch handles GET /v1/search requests.
// Query parameters:
//   - query (required): the search query text
//   - limit (optional, default 5, capped at 20): number of results
//   - threshold (optional, default 0.3): minimum cosine similarity
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	var threshold float32 = -1
	if thresholdStr := c.Query("threshold"); thresholdStr != "" {
		parsed, err := strconv.ParseFloat(thresholdStr, 32)
		if err != nil || parsed < -1 || parsed > 1 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "threshold must be a number in [-1, 1]",
			})
		}
		threshold = float32(parsed)
	}

	ranked, err := s.engine.Search(c.Context(), query, limit, threshold)
	if err != nil {
		return s.fail(c, err)
	}

	results := make([]SearchResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, SearchResult{
			ID:         r.Document.ID,
			Title:      r.Document.Title,
			Category:   r.Document.Category,
			Source:     r.Document.Source,
			URL:        r.Document.URL,
			Snippet:    r.Snippet,
			Similarity: r.Similarity,
			Relevance:  r.Relevance,
		})
	}

	return c.JSON(SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}

// handleAsk handles POST /v1/ask requests.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	useRetrieval := true
	if req.UseRetrieval != nil {
		useRetrieval = *req.UseRetrieval
	}

	resp, err := s.engine.Ask(c.Context(), req.Question, useRetrieval, req.Context)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(resp)
}

// handleStatus handles GET /v1/status requests, served from the health
// monitor's TTL cache.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.engine.Status(c.Context()))
}

// handleRemove handles DELETE /v1/documents/:id requests.
func (s *Server) handleRemove(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "document id required"})
	}

	s.engine.Remove(id)
	return c.SendStatus(fiber.StatusNoContent)
}

// fail maps engine errors to HTTP statuses: validation failures are the
// caller's fault, provider failures are an upstream outage.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, rag.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, rag.ErrProvider):
		status = fiber.StatusBadGateway
	}

	if status == fiber.StatusBadGateway {
		s.logger.Warn("provider failure", zap.Error(err))
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
