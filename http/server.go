// Package http serves the maintenance form and its JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"predmaint/maintenance"
	"predmaint/ml"
)

// ModelSource is the model registry as seen by the handlers.
type ModelSource interface {
	maintenance.Provider
	Status() ml.Status
}

// Server HTTP server
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig server settings
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	MaxRequestSize int64
}

// DefaultServerConfig default server settings
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8501,
		Timeout:        30 * time.Second,
		MaxRequestSize: 64 << 10,
	}
}

// NewServer creates the HTTP server
func NewServer(config ServerConfig, models ModelSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	RegisterHandlers(mux, models, logger)

	chain := Chain(
		RecoveryMiddleware(logger), // outermost, catches panics from everything below
		LoggerMiddleware(logger),
		SecurityHeadersMiddleware,
		RequestSizeMiddleware(config.MaxRequestSize),
	)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      chain(mux),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// Start blocks serving requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
