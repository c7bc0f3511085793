// Package server exposes the detection pipeline over HTTP: scan, redact,
// file upload, audit log listing, and an embedded dashboard.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/audit"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/extract"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/otel"
)

const defaultTimeout = 60 * time.Second

// Server holds all dependencies for the HTTP API.
type Server struct {
	router        *chi.Mux
	pipeline      *detect.Pipeline
	extractor     *extract.Extractor
	auditStore    *audit.Store
	limiter       *RateLimiter
	dashboardHTML string
	startTime     time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithAuditStore enables audit logging and the /v1/logs endpoint.
func WithAuditStore(s *audit.Store) Option {
	return func(srv *Server) { srv.auditStore = s }
}

// WithRateLimiter enables request rate limiting.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(srv *Server) { srv.limiter = rl }
}

// WithDashboard sets the embedded dashboard HTML served at / and /dashboard.
func WithDashboard(html string) Option {
	return func(srv *Server) { srv.dashboardHTML = html }
}

// NewServer builds a Server around the pipeline and extractor.
func NewServer(pipeline *detect.Pipeline, extractor *extract.Extractor, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		pipeline:  pipeline,
		extractor: extractor,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otel.Middleware())
	if s.limiter != nil {
		r.Use(RateLimitMiddleware(s.limiter))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/v1/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(defaultTimeout))
		r.Post("/v1/scan", s.handleScan)
		r.Post("/v1/redact", s.handleRedact)
		r.Post("/v1/upload", s.handleUpload)
		r.Get("/v1/logs", s.handleLogs)
	})

	r.Get("/", s.handleDashboard)
	r.Get("/dashboard", s.handleDashboard)

	return r
}
