// Package server exposes the normalization pipeline over HTTP.
//
// # Routes
//
//	GET    /healthz              liveness and build info
//	POST   /v1/normalize         normalize a declaration, respond with the artifact
//	POST   /v1/schemas           normalize a declaration and store the schema
//	GET    /v1/schemas           list stored schemas
//	GET    /v1/schemas/{id}      fetch a stored schema, optionally rendered
//	DELETE /v1/schemas/{id}      delete a stored schema
//
// POST bodies are the raw documentation JSON. The declaration path and
// normalizer options travel as query parameters:
//
//	curl -X POST --data-binary @docs.json \
//	    'localhost:8080/v1/normalize?declaration=SupabaseClient.from&format=svg'
//
// Errors are JSON objects with "code" and "error" fields; the status code
// follows [errors.HTTPStatus].
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/typeshape/pkg/pipeline"
	"github.com/matzehuels/typeshape/pkg/store"
)

// DefaultMaxBodyBytes caps uploaded project documents.
const DefaultMaxBodyBytes = 32 << 20

// Options configures a [Server].
type Options struct {
	// Runner executes the pipeline. Required.
	Runner *pipeline.Runner

	// Store holds saved schemas. When nil the /v1/schemas routes are not
	// mounted.
	Store store.Store

	// Defaults supplies normalizer settings a request does not override:
	// Strict, MaxDepth, MaxNodes and DereferenceDepth.
	Defaults pipeline.Options

	// MaxBodyBytes caps request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/normalize", s.handleNormalize)
		if s.opts.Store != nil {
			r.Route("/schemas", func(r chi.Router) {
				r.Post("/", s.handleCreateSchema)
				r.Get("/", s.handleListSchemas)
				r.Get("/{id}", s.handleGetSchema)
				r.Delete("/{id}", s.handleDeleteSchema)
			})
		}
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
