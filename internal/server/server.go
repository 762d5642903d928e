// Package server exposes the animal registry and the pedigree pipeline
// over HTTP.
//
// Routes (all JSON unless noted):
//
//	GET    /healthz
//	GET    /version
//	GET    /metrics                                  Prometheus text format
//	GET    /api/v1/types
//	POST   /api/v1/types
//	GET    /api/v1/types/{id}
//	GET    /api/v1/animals                           ?type_id=&active=&search=
//	POST   /api/v1/animals
//	GET    /api/v1/animals/{id}
//	PUT    /api/v1/animals/{id}
//	DELETE /api/v1/animals/{id}
//	GET    /api/v1/animals/{id}/offspring
//	GET    /api/v1/animals/{id}/pedigree             ?generations=
//	GET    /api/v1/animals/{id}/pedigree.svg         ?generations=
//	GET    /api/v1/animals/{id}/pedigree/export      ?format=png|pdf|json&generations=
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/export"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

// SVGRenderer draws a presentation tree for the browser view.
type SVGRenderer interface {
	SVG(ctx context.Context, view *presentation.Node) ([]byte, error)
}

// Options configures a Server. Registry, Resolver and Exporter are
// required.
type Options struct {
	Registry *animal.Registry
	Resolver *pedigree.Resolver
	Exporter *export.Pipeline
	// SVG enables the pedigree.svg route when set.
	SVG SVGRenderer
	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
	// Now dates computed ages. Defaults to time.Now.
	Now func() time.Time

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	registry *animal.Registry
	resolver *pedigree.Resolver
	exporter *export.Pipeline
	svg      SVGRenderer
	gatherer prometheus.Gatherer
	logger   *log.Logger
	now      func() time.Time
	opts     Options
	router   chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		registry: opts.Registry,
		resolver: opts.Resolver,
		exporter: opts.Exporter,
		svg:      opts.SVG,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
		now:      opts.Now,
		opts:     opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/types", func(r chi.Router) {
			r.Get("/", s.handleListTypes)
			r.Post("/", s.handleCreateType)
			r.Get("/{id}", s.handleGetType)
		})
		r.Route("/animals", func(r chi.Router) {
			r.Get("/", s.handleListAnimals)
			r.Post("/", s.handleCreateAnimal)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAnimal)
				r.Put("/", s.handleUpdateAnimal)
				r.Delete("/", s.handleDeleteAnimal)
				r.Get("/offspring", s.handleOffspring)
				r.Get("/pedigree", s.handlePedigree)
				r.Get("/pedigree.svg", s.handlePedigreeSVG)
				r.Get("/pedigree/export", s.handleExport)
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
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
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
