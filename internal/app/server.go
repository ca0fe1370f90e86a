package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Server wraps http.Server with graceful shutdown and ordered cleanup hooks.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	hooks           []func()
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithShutdownTimeout bounds how long in-flight requests may drain.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithShutdownHook registers fn to run after the listener has drained.
// Hooks run in registration order.
func WithShutdownHook(fn func()) ServerOption {
	return func(s *Server) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// NewServer creates a new Server bound to the given port.
func NewServer(handler http.Handler, port string, opts ...ServerOption) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the server and blocks until a shutdown signal is received.
func (s *Server) Run() error {
	errChan := make(chan error, 1)

	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("Server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		s.runHooks()
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Received signal, draining carts and checkouts")
	}

	return s.Shutdown()
}

// Shutdown drains in-flight requests and then runs the cleanup hooks.
// Hooks run even when draining times out so audit entries still flush.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.runHooks()
	if err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}

func (s *Server) runHooks() {
	hooks := s.hooks
	s.hooks = nil
	for _, fn := range hooks {
		fn()
	}
}
