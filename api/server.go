package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/scenedex/ingestion"
	"github.com/poiesic/scenedex/search"
	"github.com/poiesic/scenedex/storage"
)

// Server is the HTTP surface: upload a video, poll indexing status,
// search the index, and reset it.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// ServerConfig carries the collaborators the handlers close over.
type ServerConfig struct {
	Port int

	Jobs     storage.JobRepository
	Pipeline *ingestion.Pipeline
	Searcher *search.Searcher

	// UploadsDir is where uploaded videos are written before ingestion.
	UploadsDir string
	// FramesDir is served read-only under /frames/ for previews.
	FramesDir string
	// DefaultInterval is the frame sampling interval in seconds used
	// when an upload does not specify one.
	DefaultInterval float64

	Logger *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Port),
			Handler:     router,
			ReadTimeout: 0, // uploads can be large and slow
			IdleTimeout: 60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
