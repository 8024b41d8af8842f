// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/assets"
	"github.com/starford/ansuz/internal/diagram"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/state"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/vaultwatch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("state_path", cfg.State.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize view-state database.
	flags, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	defer flags.Close()

	// SSE broker.
	broker := sse.NewBroker(cfg.Update.SSEThrottle())
	defer broker.Close()

	// Rendering scene and the diagram instance around it.
	scene := render.NewScene(cfg.Render.Width, cfg.Render.Height)
	registry := diagram.NewRegistry()

	inst := diagram.NewInstance(diagram.InstanceConfig{
		Renderer: scene,
		Parser:   outline.NewParser(),
		Links: diagram.LinkResolverFunc(func(target string) string {
			if !strings.HasSuffix(target, ".md") {
				target += ".md"
			}
			return "/api/documents/" + url.PathEscape(target)
		}),
		Assets: assets.NewLoader(nil, logger),
		Docs:   store,
		Flags:  flags,
		Views:  registry,
		Prefs:  cfg.Render.Prefs(),
		Logger: logger,
		OnRender: func(doc string) {
			broker.PublishDiagramUpdated(doc)
		},
		Screenshot: func(textColor, background string) error {
			return export.Screenshot(scene, textColor, background, logger)
		},
		StylingDelay: cfg.Update.StylingDelay(),
	})

	// Trigger controller routing edits and opens into update cycles.
	trig := diagram.NewController(inst, cfg.Update.DebounceWindow(), logger)
	defer trig.Close()

	// Bind the startup document, if configured.
	if doc := cfg.Vault.Document; doc != "" {
		name := strings.TrimSuffix(path.Base(doc), ".md")
		trig.DocumentOpened(doc, name)
		broker.PublishDocumentOpened(doc)
	}

	apiRouter := api.NewRouter(inst, trig, scene, store, registry, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start vault watcher feeding the trigger controller. Only changes to
	// the currently bound document produce update cycles.
	g.Go(func() error {
		return vaultwatch.Watch(gCtx, store, cfg.Vault.Path, logger, func(p string, content []byte) {
			bound, _ := inst.Document()
			if p != bound {
				return
			}
			trig.TextChanged(string(content))
		})
	})

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
