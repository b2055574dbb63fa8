// Package server exposes the extraction pipeline over HTTP: document
// uploads return the extracted fields as JSON, a websocket endpoint
// streams progress for long documents, and Prometheus metrics describe
// the traffic.
package server

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/pipeline"
	"github.com/vanban-tech/vanban/internal/utils"
)

// documentProcessor is the slice of the pipeline the server needs.
type documentProcessor interface {
	ProcessDocument(ctx context.Context, path string) (*pipeline.DocumentResult, error)
	ProcessRegion(img image.Image, box utils.Box, class fields.Class) (string, error)
}

// PipelineFactory builds a pipeline with the given progress callback.
// Websocket requests get their own pipeline so progress streams to the
// right connection.
type PipelineFactory func(progress pipeline.ProgressCallback) (documentProcessor, error)

// NewPipelineFactory adapts a concrete pipeline constructor to a
// PipelineFactory.
func NewPipelineFactory(build func(pipeline.ProgressCallback) (*pipeline.Pipeline, error)) PipelineFactory {
	return func(progress pipeline.ProgressCallback) (documentProcessor, error) {
		return build(progress)
	}
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	MaxUploadMB     int64
	TimeoutSec      int
	ShutdownTimeout int
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	factory     PipelineFactory
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	shutdownSec int
	addr        string
	logger      *slog.Logger
}

// NewServer creates an extraction server.
func NewServer(config Config, factory PipelineFactory, logger *slog.Logger) (*Server, error) {
	if factory == nil {
		return nil, fmt.Errorf("pipeline factory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxUploadMB < 1 {
		config.MaxUploadMB = 50
	}
	if config.TimeoutSec < 1 {
		config.TimeoutSec = 120
	}
	if config.ShutdownTimeout < 1 {
		config.ShutdownTimeout = 10
	}
	return &Server{
		factory:     factory,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		shutdownSec: config.ShutdownTimeout,
		addr:        fmt.Sprintf("%s:%d", config.Host, config.Port),
		logger:      logger,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/classes", s.corsMiddleware(s.classesHandler))
	mux.HandleFunc("/extract", s.corsMiddleware(s.extractHandler))
	mux.HandleFunc("/extract/region", s.corsMiddleware(s.extractRegionHandler))
	mux.HandleFunc("/ws/extract", s.extractWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Run starts the server and blocks until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: mux,
		// Websocket progress outlives the normal request timeout; write
		// deadlines are enforced per handler instead.
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.shutdownSec)*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
