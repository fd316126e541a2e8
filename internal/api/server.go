package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds the listen address and HTTP timeouts
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig listens on :8080
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:        8080,
		ReadTimeout: 15 * time.Second,
		// An ai turn can block on oracle retries. SSE clients reconnect when this cuts them off.
		WriteTimeout:    2 * time.Minute,
		IdleTimeout:     time.Minute,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Addr is the host:port the server listens on
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// Server runs the API until its context is cancelled, then drains connections.
type Server struct {
	http            *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func NewServer(handler http.Handler, config ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         config.Addr(),
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger:          logger.With(slog.String("component", "http")),
		shutdownTimeout: config.ShutdownTimeout,
	}
}

// OnShutdown registers f to run when draining starts. Long-lived handlers
// such as event streams must be released here or draining waits on them.
func (s *Server) OnShutdown(f func()) {
	s.http.RegisterOnShutdown(f)
}

// Listen opens the configured address
func (s *Server) Listen() (net.Listener, error) {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return l, nil
}

// Run serves on l until ctx is done or serving fails.
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", l.Addr().String()))
		errCh <- s.http.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("draining connections", slog.Duration("timeout", s.shutdownTimeout))
	drainCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}
