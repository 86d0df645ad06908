// Package http exposes the operational endpoints of a running tgadmin:
// a health check and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout is how long outstanding requests get on shutdown.
const ShutdownTimeout = 5 * time.Second

// Status is the body of /healthz.
type Status struct {
	Status   string `json:"status"`
	Document string `json:"document"`
	Format   string `json:"format"`
	Chats    int    `json:"chats"`
	// Busy counts chats with events queued or in flight.
	Busy int `json:"busy"`
}

// StatusFunc reports the current status. A non-nil error turns /healthz into a 503.
type StatusFunc func(ctx context.Context) (Status, error)

// NewHandler creates the router.
func NewHandler(gatherer prometheus.Gatherer, status StatusFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s, err := status(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			s.Status = err.Error()
			w.WriteHeader(http.StatusServiceUnavailable)
		} else if s.Status == "" {
			s.Status = "ok"
		}
		if err := json.NewEncoder(w).Encode(s); err != nil {
			slog.Warn("Failed to write health response", "err", err)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting metrics server", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("Metrics server stopped")
		return nil
	}
}
