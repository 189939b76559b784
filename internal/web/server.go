// Package web serves the tidycsv page and JSON API.
//
// Each browser is bound to one cleaning session by the tidycsv_session
// cookie. Handlers translate requests into session actions and map the
// resulting errors through MapError.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tidycsv/internal/audit"
	"github.com/JonMunkholm/tidycsv/internal/config"
	"github.com/JonMunkholm/tidycsv/internal/metrics"
	"github.com/JonMunkholm/tidycsv/internal/session"
	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/web/middleware"
)

// Deps are the collaborators of a Server. Recorder and Metrics may be nil.
type Deps struct {
	Config   *config.Config
	Store    *session.Store
	Loads    *table.LoadLimiter
	Recorder audit.Recorder
	Metrics  *metrics.Metrics
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	store    *session.Store
	loads    *table.LoadLimiter
	recorder audit.Recorder
	metrics  *metrics.Metrics

	router *chi.Mux
	server *http.Server
}

// NewServer builds the router. Loads defaults to a limiter sized from the
// upload config.
func NewServer(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		store:    d.Store,
		loads:    d.Loads,
		recorder: d.Recorder,
		metrics:  d.Metrics,
		router:   chi.NewRouter(),
	}
	if s.loads == nil {
		s.loads = table.NewLoadLimiter(s.cfg.Upload.MaxConcurrent, s.cfg.Upload.MaxWaitTime)
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.With(middleware.BearerToken(s.cfg.Metrics.Token)).Handle("/metrics", s.metrics.Handler())
	}

	s.router.Group(func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			r.Use(s.rateLimit(newClientLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)))
		}

		r.Get("/", s.handlePage)

		r.Route("/api", func(r chi.Router) {
			r.Post("/upload", s.handleUpload)
			r.Post("/session/new", s.handleNewSession)
			r.Post("/reset", s.handleReset)

			r.Post("/missing", s.handleMissing)
			r.Post("/dedupe", s.handleDedupe)
			r.Post("/scale", s.handleScale)
			r.Post("/convert", s.handleConvert)

			r.Get("/preview", s.handlePreview)
			r.Get("/summary", s.handleSummary)
			r.Get("/download", s.handleDownload)
			r.Get("/history", s.handleHistory)
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
