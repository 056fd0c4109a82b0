// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/almahq/alma/internal/api"
	"github.com/almahq/alma/internal/indexstore"
	"github.com/almahq/alma/internal/maintainer"
	"github.com/almahq/alma/internal/mcpserver"
	"github.com/almahq/alma/internal/notes"
	"github.com/almahq/alma/internal/projects"
	"github.com/almahq/alma/internal/search"
	"github.com/almahq/alma/internal/sse"
	"github.com/almahq/alma/internal/storage"
)

// core bundles the wired-up domain services.
type core struct {
	svc      *notes.Service
	registry *projects.Registry
	close    func()
}

// buildCore initialises storage, indexes, search, and services from config.
func buildCore(cfg *Config, logger *slog.Logger) (*core, error) {
	store, err := storage.NewFS(cfg.Notes.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	idx, err := indexstore.New(cfg.Indexes.Dir)
	if err != nil {
		return nil, fmt.Errorf("init index store: %w", err)
	}

	var searchIdx *search.Index
	if cfg.Search.Enabled {
		searchIdx, err = search.Open(cfg.Search.Path)
		if err != nil {
			return nil, fmt.Errorf("init search index: %w", err)
		}
	}

	svc := notes.NewService(store, idx, searchIdx, logger)
	registry := projects.NewRegistry(idx)

	return &core{
		svc:      svc,
		registry: registry,
		close: func() {
			if searchIdx != nil {
				_ = searchIdx.Close()
			}
		},
	}, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the HTTP server (and the optional external-edit watcher) with
// the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_dir", cfg.Notes.Dir),
		slog.String("indexes_dir", cfg.Indexes.Dir),
		slog.Bool("search_enabled", cfg.Search.Enabled),
		slog.Bool("watch_enabled", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := buildCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	apiRouter := api.NewRouter(c.svc, c.registry, broker, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Optional watcher: external edits trigger a regeneration pass.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			return maintainer.Watch(gCtx, cfg.Notes.Dir, cfg.Watch.Debounce, logger,
				func() (maintainer.Result, error) { return c.svc.Regenerate(gCtx) },
				func(res maintainer.Result) {
					broker.PublishRegenerated(res.Indexed, res.Skipped)
				})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Regenerate rebuilds all index documents from the markdown files and
// returns the pass result. This is the CLI entry behind "alma regenerate".
func Regenerate(_ context.Context, opts ...Option) (maintainer.Result, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return maintainer.Result{}, fmt.Errorf("config is required")
	}

	logger := newLogger(app.config)
	c, err := buildCore(app.config, logger)
	if err != nil {
		return maintainer.Result{}, err
	}
	defer c.close()

	return c.svc.Regenerate(context.Background())
}

// RunMCP serves the MCP stdio server over the same core services.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	// MCP speaks on stdout; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))

	c, err := buildCore(app.config, logger)
	if err != nil {
		return err
	}
	defer c.close()

	return mcpserver.New(c.svc, c.registry).ServeStdio()
}
