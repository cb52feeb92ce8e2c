package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/sonarr-mcp/internal/api/handlers"
	"github.com/amaumene/sonarr-mcp/internal/api/middleware"
	"github.com/amaumene/sonarr-mcp/internal/config"
	"github.com/amaumene/sonarr-mcp/internal/mcpserver"
	"github.com/amaumene/sonarr-mcp/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	mcp     *mcpserver.Server
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, mcp *mcpserver.Server, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		mcp:     mcp,
		metrics: m,
		logger:  logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	// No write timeout: streamable MCP responses may stay open for a while.
	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.Logging(mux, logger),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	// MCP streamable HTTP endpoint
	mux.Handle(cfg.MCPPath, s.mcp.Handler())

	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.mcp.Info, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", s.metrics.Handler())
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
