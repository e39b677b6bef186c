package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/storefront-map/internal/core/config"
	"github.com/mohammed-shakir/storefront-map/internal/core/health"
	middleware "github.com/mohammed-shakir/storefront-map/internal/core/middleware"
	"github.com/mohammed-shakir/storefront-map/internal/core/router"
	"github.com/mohammed-shakir/storefront-map/internal/web"
)

type Deps struct {
	Sessions router.Sessions
	Ready    health.ReadinessReporter
	Checks   []health.Check
	// Metrics defaults to the default prometheus registry.
	Metrics http.Handler
}

// NewHandler builds the full route tree.
func NewHandler(logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	metrics := d.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Ready, d.Checks...))
	r.Method(http.MethodGet, "/metrics", metrics)
	router.Mount(r, logger, d.Sessions)

	static := web.Static()
	r.Method(http.MethodGet, "/", static)
	r.Method(http.MethodGet, "/*", static)
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, d Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(logger, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
