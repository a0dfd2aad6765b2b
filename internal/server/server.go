// Package server provides the HTTP API for findex.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/answer"
	"github.com/sableworks/findex/internal/config"
	"github.com/sableworks/findex/internal/indexer"
	"github.com/sableworks/findex/internal/search"
	"github.com/sableworks/findex/internal/storage"
	"github.com/sableworks/findex/internal/watcher"
)

// Server is the HTTP server for the findex API.
type Server struct {
	service  *search.Service
	answerer *answer.Answerer
	indexer  *indexer.Indexer
	storage  storage.Storage
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server

	watch      *watcher.Watcher
	configPath string
	configMu   sync.Mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAnswerer enables the /ask endpoint.
func WithAnswerer(a *answer.Answerer) ServerOption {
	return func(s *Server) { s.answerer = a }
}

// WithWatch enables the watch-directory endpoints, persisting changes to
// configPath when non-empty.
func WithWatch(w *watcher.Watcher, configPath string) ServerOption {
	return func(s *Server) {
		s.watch = w
		s.configPath = configPath
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(
	service *search.Service,
	idx *indexer.Indexer,
	storage storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...ServerOption,
) *Server {
	s := &Server{
		service: service,
		indexer: idx,
		storage: storage,
		config:  cfg,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// The /ask path wraps a generative call bounded by its own multi-minute
	// timeout, so the router-level timeout only covers the search paths.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/api/v1/search", s.handleSearch)
		r.Post("/api/v1/documents", s.handleIndexDocument)
		r.Get("/api/v1/documents/{id}", s.handleGetDocument)
		r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
		r.Get("/api/v1/status", s.handleStatus)
		r.Get("/api/v1/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/api/v1/watch/directories", s.handleWatchDirectoriesAdd)
		r.Delete("/api/v1/watch/directories", s.handleWatchDirectoriesRemove)
		r.Get("/health", s.handleHealth)
	})
	r.Post("/api/v1/ask", s.handleAsk)
	return r
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
