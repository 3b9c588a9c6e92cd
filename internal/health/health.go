// Package health exposes the process liveness endpoint.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"log/slog"

	"github.com/xiniluca/skillswap/core/logger"
)

// Server serves GET /healthz for liveness probes.
type Server struct {
	srv *http.Server
}

// NewServer builds the health HTTP server on the given listen address.
func NewServer(listen string) *Server {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	return &Server{srv: &http.Server{Addr: listen, Handler: r}}
}

// Start listens in the background until Shutdown is called.
func (s *Server) Start() {
	go func() {
		logger.L.With("component", "health").Info("health endpoint up",
			slog.String("event", "listen"),
			slog.String("listen", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.With("component", "health").Error("health endpoint failed",
				slog.String("event", "listen"),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
