// Package servecmder provides the serve command that runs the knowledge
// API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/api"
	"github.com/summitchronicles/basecamp/pkg/cache"
	"github.com/summitchronicles/basecamp/pkg/config"
	"github.com/summitchronicles/basecamp/pkg/content"
	"github.com/summitchronicles/basecamp/pkg/knowledge"
	"github.com/summitchronicles/basecamp/pkg/logger"
	providerutils "github.com/summitchronicles/basecamp/pkg/provider/utils"
	"github.com/summitchronicles/basecamp/pkg/rag"
)

type serveCommander struct {
	listen          string
	providerName    string
	target          string
	embeddingModel  string
	generationModel string
	cachePath       string
	contentDir      string
	debug           bool
	logger          *zap.Logger
}

const serveLongDesc string = `Run the basecamp knowledge API server.

The server ingests documents over HTTP and, when a content directory is
configured, from markdown files on disk. Configuration is resolved from
flags, BASECAMP_* environment variables, an optional TOML config file,
and built-in defaults, in that order.`

const serveShortDesc string = "Run the basecamp API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}

			v, err := config.InitViper(configPath)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagListen,
				config.FlagProvider,
				config.FlagTarget,
				config.FlagEmbeddingModel,
				config.FlagGenerationModel,
				config.FlagCachePath,
				config.FlagContentDir,
			})

			return cmder.run(config.FromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.providerName)
	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagGenerationModel, &cmder.generationModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagCachePath, &cmder.cachePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagContentDir, &cmder.contentDir)

	return cmd
}

func (c *serveCommander) run(cfg *config.Config) error {
	c.logger = logger.NewLogger(c.debug || cfg.Debug)
	defer c.logger.Sync()

	prov, err := providerutils.NewProvider(&providerutils.NewProviderOpts{
		ProviderType:    cfg.Provider.Name,
		TargetURL:       cfg.Provider.Target,
		APIKey:          cfg.Provider.APIKey,
		EmbeddingModel:  cfg.Provider.EmbeddingModel,
		GenerationModel: cfg.Provider.GenerationModel,
		Timeout:         time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	defer prov.Close()

	c.logger.Info("using provider",
		zap.String("provider", cfg.Provider.Name),
		zap.String("target", cfg.Provider.Target),
		zap.String("embedding_model", cfg.Provider.EmbeddingModel),
		zap.String("generation_model", cfg.Provider.GenerationModel),
	)

	embedCache, err := cache.New(cfg.Cache.Path, c.logger)
	if err != nil {
		return fmt.Errorf("creating embedding cache: %w", err)
	}
	if cfg.Cache.Path != "" {
		c.logger.Info("using embedding cache",
			zap.String("path", cfg.Cache.Path),
			zap.Int("entries", embedCache.Len()),
		)
	}

	engine := rag.New(prov, knowledge.NewStore(), embedCache, rag.Options{
		MaxChunkSize:  cfg.Engine.MaxChunkSize,
		ContextBudget: cfg.Engine.ContextBudget,
		HealthTTL:     time.Duration(cfg.Engine.HealthTTLSecs) * time.Second,
	}, c.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Content.Dir != "" {
		if err := c.loadContent(ctx, engine, cfg); err != nil {
			return err
		}
	}

	server := api.NewServer(api.Config{ListenAddr: cfg.Server.Listen}, engine, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return server.Shutdown()
	}
}

// loadContent ingests the configured markdown directory and, when
// watching is enabled, keeps re-ingesting files as they change.
func (c *serveCommander) loadContent(ctx context.Context, engine *rag.Engine, cfg *config.Config) error {
	if _, err := os.Stat(cfg.Content.Dir); err != nil {
		return fmt.Errorf("content dir: %w", err)
	}

	loader := content.NewLoader(engine, cfg.Content.Dir, c.logger)
	if _, err := loader.LoadDir(ctx); err != nil {
		return fmt.Errorf("ingesting content dir: %w", err)
	}

	if !cfg.Content.Watch {
		return nil
	}

	watcher, err := content.NewWatcher(loader, c.logger)
	if err != nil {
		return err
	}

	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("content watcher stopped", zap.Error(err))
		}
	}()

	return nil
}
