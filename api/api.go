package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/rag"
)

// Server is the HTTP API server in front of the knowledge engine.
type Server struct {
	config Config
	engine *rag.Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates the API server. The engine is injected so it can be
// shared with the content watcher.
func NewServer(config Config, engine *rag.Engine, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: engine,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/ingest", s.handleIngest)
	app.Get("/v1/search", s.handleSearch)
	app.Post("/v1/ask", s.handleAsk)
	app.Get("/v1/status", s.handleStatus)
	app.Delete("/v1/documents/:id", s.handleRemove)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
