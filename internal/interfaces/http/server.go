package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// Server wraps the ops HTTP server with sane timeouts and graceful
// shutdown.
type Server struct {
	srv    *http.Server
	router http.Handler
	logger logging.Logger
	port   int
}

func NewServer(port int, router http.Handler, log logging.Logger) *Server {
	return &Server{
		router: router,
		logger: log,
		port:   port,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start blocks serving requests until Stop is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", logging.Int("port", s.port))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
