package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathforge/pathforge/internal/ai"
	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/generation"
	"github.com/pathforge/pathforge/internal/platform/cache"
	"github.com/pathforge/pathforge/internal/platform/config"
	"github.com/pathforge/pathforge/internal/platform/database"
	"github.com/pathforge/pathforge/internal/progress"
	"github.com/pathforge/pathforge/internal/server"
	"github.com/pathforge/pathforge/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var ready []server.HealthChecker

	var contentStore store.Store
	var progressStore progress.ProgressStore
	switch cfg.Generation.StoreBackend {
	case "postgres":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		ready = append(ready, db)

		cs, err := store.NewPostgresStore(db.Pool)
		if err != nil {
			return fmt.Errorf("create content store: %w", err)
		}
		if err := cs.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure content schema: %w", err)
		}
		contentStore = cs

		ps, err := progress.NewPostgresStore(db.Pool)
		if err != nil {
			return fmt.Errorf("create progress store: %w", err)
		}
		if err := ps.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure progress schema: %w", err)
		}
		progressStore = ps
	default:
		slog.Warn("using in-memory stores; data will not survive a restart")
		contentStore = store.NewMemoryStore()
		progressStore = progress.NewMemoryStore()
	}

	var progressCache generation.ProgressCache
	if cfg.Generation.ProgressBackend == "redis" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		defer c.Close()
		ready = append(ready, c)
		progressCache = generation.NewRedisCache(c.Client)
	} else {
		progressCache = generation.NewMemoryCache()
	}

	router, err := buildRouter(cfg.AI)
	if err != nil {
		return err
	}

	generator := content.NewGenerator(content.GeneratorConfig{
		Provider: router,
		Usage:    ai.NewInMemoryUsage(),
		UserID:   "service",
	})
	milestones := generation.NewMilestoneGenerator(generator, contentStore)
	orchestrator := generation.NewOrchestrator(milestones, contentStore, progressCache)
	tracker := progress.NewTracker(progressStore, contentStore)

	api := server.New(server.Config{
		Store:        contentStore,
		Tracker:      tracker,
		Generator:    generator,
		Orchestrator: orchestrator,
		Progress:     progressCache,
		Ready:        ready,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     api.Routes(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: the progress stream holds connections open
		// for the duration of a generation run.
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildRouter registers every configured provider in fallback order.
func buildRouter(cfg config.AIConfig) (*ai.Router, error) {
	router := ai.NewRouter()

	if cfg.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey, ai.WithDefaultModel(cfg.OpenAI.Model)))
	}
	if cfg.Anthropic.APIKey != "" {
		p, err := ai.NewAnthropicProvider(cfg.Anthropic.APIKey, ai.WithAnthropicModel(cfg.Anthropic.Model))
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		router.Register("anthropic", p)
	}
	if cfg.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey, ai.WithDefaultModel(cfg.DeepSeek.Model)))
	}
	if cfg.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL, ai.WithOllamaModel(cfg.Ollama.Model)))
	}

	if !router.HasProvider() {
		return nil, fmt.Errorf("no generation provider configured")
	}
	return router, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
