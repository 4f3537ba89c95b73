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

	"github.com/starford/skyroute/internal/api"
	"github.com/starford/skyroute/internal/catalog"
	"github.com/starford/skyroute/internal/metrics"
	"github.com/starford/skyroute/internal/planner"
	"github.com/starford/skyroute/internal/sse"
)

func newApplication(opts ...Option) (*application, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if app.logger == nil {
		out := app.logOutput
		if out == nil {
			out = os.Stdout
		}
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// newCatalog creates the catalog over the configured dataset file and
// attempts the first load.
func (a *application) newCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cfg := a.config
	src := catalog.FileSource(cfg.Dataset.Path, cfg.Dataset.Format, cfg.Search.Location(), a.logger)
	cat := catalog.New(src, cfg.Search.GraphCacheSize, a.logger)
	return cat, cat.Reload(ctx)
}

func (a *application) newPlanner(cat *catalog.Catalog) *planner.Service {
	s := a.config.Search
	return planner.NewService(cat, planner.Options{
		MaxHops:       s.MaxHops,
		MinLayover:    s.MinLayover,
		MaxExpansions: s.MaxExpansions,
		Timeout:       s.Timeout,
		Workers:       s.Workers,
	}, a.logger)
}

// newRouter builds the root HTTP handler: health checks, metrics and the
// API under /api.
func (a *application) newRouter(cat *catalog.Catalog, svc *planner.Service, broker *sse.Broker) http.Handler {
	cfg := a.config
	apiRouter := api.NewRouter(svc, cfg.Search.Location(), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		snap, err := cat.Snapshot()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","dataset_version":%d,"flights":%d}`, snap.Version, len(snap.Flights))
	})

	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api; the SSE endpoint lives at /api/events.
	r.Mount("/api", apiRouter)

	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("dataset_path", cfg.Dataset.Path),
		slog.String("dataset_format", cfg.Dataset.Format),
		slog.Bool("dataset_watch", cfg.Dataset.Watch),
		slog.String("timezone", cfg.Search.Timezone),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	cat, err := app.newCatalog(ctx)
	if err != nil {
		logger.Warn("initial dataset load failed", slog.String("error", err.Error()))
	}
	defer cat.Close()
	if snap, err := cat.Snapshot(); err == nil {
		metrics.ObserveReload(len(snap.Flights))
	}
	cat.OnReload(func(s *catalog.Snapshot) {
		metrics.ObserveReload(len(s.Flights))
		broker.PublishReload(sse.ReloadEvent{Version: s.Version, Flights: len(s.Flights), Cities: len(s.Cities())})
	})

	svc := app.newPlanner(cat)
	svc.OnSearch(func(res *planner.Result) {
		broker.PublishSearch(sse.SearchEvent{
			SearchID:   res.SearchID,
			From:       res.From,
			To:         res.To,
			Outcome:    string(res.Outcome),
			Candidates: res.Candidates,
			Feasible:   len(res.Itineraries),
			TookMillis: float64(res.Took.Microseconds()) / 1000,
		})
	})

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           app.newRouter(cat, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	// Start dataset watcher.
	if cfg.Dataset.Watch {
		g.Go(func() error {
			if err := cat.Watch(gCtx, cfg.Dataset.Path); err != nil {
				logger.Error("dataset watcher failed", slog.String("error", err.Error()))
			}
			return nil
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stop()
		broker.Close()

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
