package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// Handler - routes of the HTTP API.
func Handler(logger *slog.Logger, searchEngine searchEngine) http.Handler {
	moves := &moveHandler{
		logger: logger.With("component", "rest"),
		engine: searchEngine,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)
	r.Post("/api/best-move", moves.BestMove)

	return r
}

// Start - serves the HTTP API until ctx is done.
func Start(ctx context.Context, logger *slog.Logger, searchEngine searchEngine, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      Handler(logger, searchEngine),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
