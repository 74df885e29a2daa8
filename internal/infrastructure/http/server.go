package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// ShutdownFunc stops one component gracefully.
type ShutdownFunc func(ctx context.Context) error

// Server runs an HTTP handler and shuts it down on SIGINT/SIGTERM.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             zerolog.Logger

	mu            sync.Mutex
	shutdownFuncs []ShutdownFunc
}

func NewServer(handler http.Handler, port string, shutdownTimeout time.Duration, log zerolog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// Proxied calls can take up to the proxy timeout, so no WriteTimeout.
			IdleTimeout: 120 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		log:             log,
	}
}

// OnShutdown registers fn to run after the HTTP server stops.
// Functions run in reverse registration order.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownFuncs = append(s.shutdownFuncs, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			s.log.Error().Err(err).Str("component", name).Msg("component shutdown failed")
			return err
		}
		s.log.Info().Str("component", name).Msg("component stopped")
		return nil
	})
}

// Run blocks until a shutdown signal arrives or the listener fails.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx)
}

func (s *Server) serve(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		s.runShutdownFuncs(context.Background())
		return err
	case <-ctx.Done():
		s.log.Info().Msg("shutdown signal received")
		return s.shutdown()
	}
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.httpServer.SetKeepAlivesEnabled(false)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error().Err(err).Msg("http server shutdown failed")
	}

	if err := s.runShutdownFuncs(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped gracefully")
	return nil
}

func (s *Server) runShutdownFuncs(ctx context.Context) error {
	s.mu.Lock()
	funcs := s.shutdownFuncs
	s.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
