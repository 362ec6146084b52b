// Package server exposes the browse screens over HTTP. Each feed screen is a
// session: mounted by POST, advanced by scroll signals, removed by DELETE.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Sternrassler/digi-client/pkg/browse"
	"github.com/Sternrassler/digi-client/pkg/logging"
	"github.com/Sternrassler/digi-client/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Config tunes the HTTP server.
type Config struct {
	Addr           string
	SessionTTL     time.Duration
	AllowedOrigins []string
}

// Server wraps the chi router and the http.Server.
type Server struct {
	browser    *browse.Browser
	sessions   *registry
	catalog    singleflight.Group
	router     chi.Router
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds the router and registers all routes.
func New(browser *browse.Browser, cfg Config) *Server {
	logger := logging.NewLogger(logging.ComponentServer)

	s := &Server{
		browser:  browser,
		sessions: newRegistry(cfg.SessionTTL, logger),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(logging.HTTPMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	r.Use(chimw.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/digimon", s.handleCatalog)
		r.Get("/digimon/{id}", s.handleDetail)
		r.Get("/levels", s.handleLevels)
		r.Get("/types", s.handleTypes)

		r.Post("/levels/{name}/sessions", s.handleMountLevel)
		r.Post("/types/{id}/sessions", s.handleMountType)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleUnmount)
			r.Post("/more", s.handleMore)
			r.Post("/refresh", s.handleRefresh)
		})
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the session sweeper and the HTTP server. It blocks
// until the server is closed.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go s.sessions.runSweeper(ctx, time.Minute)

	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Server starting")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
