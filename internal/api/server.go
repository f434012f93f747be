// Package api serves layout generation over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /v1/version
//	POST   /v1/layouts                  generate (and store) layouts from a blueprint
//	GET    /v1/layouts                  list stored layouts, newest first
//	GET    /v1/layouts/{id}             layout document
//	DELETE /v1/layouts/{id}
//	GET    /v1/layouts/{id}/floors/{z}.png
//
// Errors are JSON objects carrying the error code from pkg/errors.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/roomweaver/pkg/pipeline"
)

// Default server settings.
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultGenerateTimeout = 2 * time.Minute
	shutdownTimeout        = 10 * time.Second
)

// Config configures the server.
type Config struct {
	Addr            string
	MaxBodyBytes    int64
	GenerateTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = DefaultGenerateTimeout
	}
}

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	router chi.Router
}

// New builds a server around runner. The runner must have a store, since
// generated layouts are addressed by ID afterwards.
func New(runner *pipeline.Runner, cfg Config) (*Server, error) {
	if runner == nil || runner.Store == nil {
		return nil, errors.New("api: runner needs a store")
	}
	cfg.setDefaults()
	s := &Server{runner: runner, logger: runner.Logger, cfg: cfg}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", s.version)
		r.Route("/layouts", func(r chi.Router) {
			r.With(middleware.Timeout(s.cfg.GenerateTimeout)).Post("/", s.createLayouts)
			r.Get("/", s.listLayouts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getLayout)
				r.Delete("/", s.deleteLayout)
				r.Get("/floors/{z}.png", s.getFloor)
			})
		})
	})
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// logRequests logs one line per request through the runner's logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
