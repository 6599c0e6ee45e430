package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redmonkez12/healthmate-api/internal/config"
	"github.com/redmonkez12/healthmate-api/internal/logging"
)

const idleTimeout = 2 * time.Minute

// Server runs the API until its context is cancelled, then drains
// in-flight requests.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *logging.Logger
}

// NewServer binds handler to the port and timeouts in cfg. Errors from the
// standard library server (TLS handshakes, panics outside the router) go to
// logger at error level.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *logging.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       idleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
			BaseContext: func(net.Listener) context.Context {
				return logging.WithLogger(context.Background(), logger)
			},
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or the server fails.
// On cancellation it waits up to the shutdown timeout for open requests
// and closes whatever is left after that.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", ln.Addr().String())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", s.shutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		_ = s.httpServer.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
