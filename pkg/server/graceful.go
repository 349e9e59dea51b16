// Package server wraps net/http with signal-driven graceful shutdown.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/codeatlas/codeatlas/pkg/logging"
)

// GracefulServer wraps an HTTP server with graceful shutdown.
type GracefulServer struct {
	server       *http.Server
	log          logging.Logger
	timeout      time.Duration
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// Option mutates server construction.
type Option func(*GracefulServer)

// WithTimeouts sets read and write timeouts on the listener.
func WithTimeouts(read, write time.Duration) Option {
	return func(gs *GracefulServer) {
		gs.server.ReadTimeout = read
		gs.server.WriteTimeout = write
	}
}

// WithShutdownTimeout sets how long in-flight requests get to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(gs *GracefulServer) {
		gs.timeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(log logging.Logger) Option {
	return func(gs *GracefulServer) {
		gs.log = log
	}
}

// NewGracefulServer creates a graceful HTTP server.
func NewGracefulServer(addr string, handler http.Handler, opts ...Option) *GracefulServer {
	gs := &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		log:        logging.NewNopLogger(),
		timeout:    10 * time.Second,
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// Start serves until shut down by signal or an explicit Shutdown call.
func (gs *GracefulServer) Start() error {
	go gs.handleSignals()

	gs.log.Info("starting HTTP server", logging.String("addr", gs.server.Addr))
	if err := gs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener. Safe to call
// more than once.
func (gs *GracefulServer) Shutdown() error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()

		gs.log.Info("initiating graceful shutdown",
			logging.Duration("timeout", gs.timeout))
		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.log.Error("shutdown failed", logging.Error(shutdownErr))
		} else {
			gs.log.Info("server shutdown complete")
		}
	})
	return err
}

// IsShuttingDown reports whether shutdown has been initiated.
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

func (gs *GracefulServer) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	gs.log.Info("received signal, shutting down", logging.String("signal", sig.String()))
	gs.Shutdown()
}
