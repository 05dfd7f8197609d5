package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/strassen/internal/config"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/logging"
	"github.com/agbru/strassen/internal/service"
	"github.com/agbru/strassen/internal/strassen"
)

// Server is the HTTP server of the multiplication API. It wraps the standard
// http.Server and adds application-specific configuration and graceful
// shutdown.
type Server struct {
	factory        strassen.MultiplierFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
	maxSize        int
}

// NewServer creates a new Server for the given multiplier factory and
// configuration. cfg.MaxSize and cfg.CacheSize configure the default service.
//
// Parameters:
//   - factory: The factory to retrieve multipliers from.
//   - cfg: The application configuration (port, leaf size, limits).
//   - opts: Optional functional options (e.g., WithLogger, WithService).
//
// Returns:
//   - *Server: A pointer to the initialized Server.
func NewServer(factory strassen.MultiplierFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
		maxSize:        cfg.MaxSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewMultiplyService(s.factory, s.cfg, s.maxSize, s.cfg.CacheSize)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/multiply", s.wrapWithMiddleware(s.handleMultiply))
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))
	mux.HandleFunc("/algorithms", s.wrapWithMiddleware(s.handleAlgorithms))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// wrapWithMiddleware applies the full middleware chain to a handler:
// Security -> RequestID -> RateLimit -> Logging -> Metrics -> Handler.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = requestIDMiddleware(wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start listens on the configured port until SIGINT or SIGTERM, then shuts
// down gracefully.
//
// Returns:
//   - error: A ServerError if the server fails to start or to shut down.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.Int("leaf_size", s.cfg.LeafSize),
			logging.Int("max_size", s.maxSize),
			logging.Int("cache_size", s.cfg.CacheSize))
		s.logger.Println("Available endpoints:")
		s.logger.Println("  POST /multiply    {\"size\":n,\"a\":[...],\"b\":[...],\"algorithm\":\"parallel\",\"leaf_size\":8}")
		s.logger.Println("  GET  /algorithms")
		s.logger.Println("  GET  /health")
		s.logger.Println("  GET  /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, initiating graceful shutdown")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
