// Package api exposes an item.Backend over HTTP and provides a client that
// implements item.Backend against such a server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/tabula/internal/core/item"
)

const shutdownTimeout = 10 * time.Second

// Server serves the item API.
type Server struct {
	backend         item.Backend
	log             zerolog.Logger
	metrics         *Metrics
	storeSize       func() int
	transientStatus int
	handler         http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithTransientStatus sets the status code reported for transient backend
// failures. Defaults to 503.
func WithTransientStatus(code int) Option {
	return func(s *Server) {
		s.transientStatus = code
	}
}

// WithStoreSize reports the store size on /healthz and /metrics.
func WithStoreSize(fn func() int) Option {
	return func(s *Server) {
		s.storeSize = fn
	}
}

// NewServer creates a server over backend.
func NewServer(backend item.Backend, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		backend:         backend,
		log:             log,
		transientStatus: http.StatusServiceUnavailable,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = NewMetrics(s.storeSize)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", s.handleList)
	mux.HandleFunc("POST /items", s.handleCreate)
	mux.HandleFunc("PATCH /items/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /items/{id}", s.handleDelete)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.handler = chain(mux,
		recoverer(log),
		requestID(log),
		accessLog,
		instrument(s.metrics),
	)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run listens on addr and serves until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("serving item api")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	return g.Wait()
}
