// Package server provides the HTTP service that exposes the webtools.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/thebtf/webtools/internal/config"
	"github.com/thebtf/webtools/internal/pdftext"
	"github.com/thebtf/webtools/internal/session"
)

const (
	// ShutdownTimeout bounds how long in-flight requests may take to finish.
	ShutdownTimeout = 10 * time.Second

	readHeaderTimeout = 10 * time.Second
	meterName         = "github.com/thebtf/webtools/internal/server"
)

// Service is the webtools HTTP service.
type Service struct {
	version   string
	config    *config.Config
	sessions  *session.Store
	extractor *pdftext.Extractor
	pages     map[string]*template.Template
	metrics   *metrics
	router    *chi.Mux
	startTime time.Time
}

// New builds a Service from cfg.
func New(cfg *config.Config, version string) (*Service, error) {
	backend, err := pdftext.NewBackend(cfg.PDFBackend)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewStore(session.Options{
		Secret: cfg.SecretKey,
		MaxAge: cfg.SessionMaxAge(),
		Secure: cfg.CookieSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	pages, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	m, err := newMetrics(otel.GetMeterProvider().Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	svc := &Service{
		version:   version,
		config:    cfg,
		sessions:  sessions,
		extractor: pdftext.NewExtractor(backend),
		pages:     pages,
		metrics:   m,
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}
	svc.setupRoutes()
	return svc, nil
}

// Handler returns the service's root handler.
func (s *Service) Handler() http.Handler {
	return s.router
}

func (s *Service) setupRoutes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestID)
	r.Use(hlog.AccessHandler(s.logAccess))
	r.Use(middleware.Recoverer)
	r.Use(limitBody(s.config.MaxUploadBytes))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/quotes", s.handleQuotes)
	r.Get("/static/*", serveStatic)

	r.Get("/uppercase", s.handleUppercase)
	r.Post("/uppercase", s.handleUppercase)
	r.Get("/wordcounter", s.handleWordCounterPage)
	r.Post("/wordcounter", s.handleWordCount)

	r.Get("/pdf2text", s.handlePDFPage)
	r.Post("/pdf2text", s.handlePDFUpload)
	r.Post("/pdf2text/download", s.handlePDFDownload)

	r.Route("/habit", func(r chi.Router) {
		r.Get("/", s.handleHabitPage)
		r.Post("/add", s.handleHabitAdd)
		r.Post("/toggle/{id:[0-9]+}", s.handleHabitToggle)
		r.Post("/delete/{id:[0-9]+}", s.handleHabitDelete)
	})
}

// Run listens on the configured address until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is cancelled, then shuts down gracefully.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", ln.Addr().String()).
			Str("version", s.version).
			Str("pdf_backend", s.config.PDFBackend).
			Msg("Starting HTTP server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Dur("uptime", time.Since(s.startTime)).Msg("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
