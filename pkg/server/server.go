package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/middleware"
	"github.com/vango-dev/hydrate/pkg/render"
	"github.com/vango-dev/hydrate/pkg/serverfn"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// Server serves rendered pages, the server function gateway, published
// hydration payloads and the client bundle.
type Server struct {
	config *Config
	router chi.Router

	registry *serverfn.Registry
	store    hydrate.Store

	metrics        *middleware.Metrics
	metricsHandler http.Handler

	tracing     bool
	otelOptions []middleware.OTelOption

	bundle     []byte
	bundleETag string

	logger *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry mounts the server functions of reg at the gateway prefix.
func WithRegistry(reg *serverfn.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithStore sets the payload store. It is required for PayloadStore and
// mounts the payload endpoint.
func WithStore(store hydrate.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics records renders, resource settlements and server function
// calls in m. A non-nil handler is mounted at the metrics path.
func WithMetrics(m *middleware.Metrics, handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsHandler = handler
	}
}

// WithTracing opens a span per page request and per server function call.
func WithTracing(opts ...middleware.OTelOption) Option {
	return func(s *Server) {
		s.tracing = true
		s.otelOptions = opts
	}
}

// WithClientBundle serves js at render.DefaultClientScript. Without a
// bundle pages are rendered without the client script.
func WithClientBundle(js []byte) Option {
	return func(s *Server) {
		s.bundle = js
	}
}

// WithLogger sets the server logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server. Pages are added with Page.
func New(config *Config, opts ...Option) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Server{
		config: config.withDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	if s.config.PayloadMode == PayloadStore && s.store == nil {
		return nil, errors.New("server: payload store mode requires a store")
	}
	if len(s.bundle) > 0 {
		s.bundleETag = bundleETag(s.bundle)
	}

	if s.registry != nil {
		if s.metrics != nil {
			s.registry.Use(s.metrics.Interceptor())
		}
		if s.tracing {
			s.registry.Use(middleware.OpenTelemetry(s.otelOptions...))
		}
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)

	if s.registry != nil {
		r.Mount(s.config.GatewayPrefix, s.registry.Routes(s.config.Gateway))
	}
	if s.store != nil {
		r.Mount(hydrate.PayloadPath, hydrate.PayloadHandler(s.store, s.logger))
	}
	if len(s.bundle) > 0 {
		r.Get(render.DefaultClientScript, s.serveBundle)
		r.Head(render.DefaultClientScript, s.serveBundle)
	}
	if s.metricsHandler != nil {
		r.Handle(s.config.MetricsPath, s.metricsHandler)
	}
	return r
}

// Page serves root at pattern. base supplies the document fields other
// than the body and payload.
func (s *Server) Page(pattern string, root vdom.Component, base render.PageData) {
	var h http.Handler = &pageHandler{server: s, root: root, base: base}
	if s.tracing {
		h = middleware.TracePages(s.otelOptions...)(h)
	}
	s.router.Method(http.MethodGet, pattern, h)
}

// Router returns the router, for mounting additional handlers.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Config returns the effective configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// logRequests logs every request at debug level, and failures at warn.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	s.logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
