package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesdash/internal/branch"
	"salesdash/internal/dashboard"
	"salesdash/internal/log"
	"salesdash/internal/middleware/ratelimit"
	"salesdash/internal/middleware/security"
	"salesdash/internal/middleware/trace"
)

// Options tunes NewServer. The zero value is usable.
type Options struct {
	Policy          branch.Policy
	RateLimitPerMin int
	Logger          *log.Logger
	// Registry receives the server collectors; a private one is created when nil.
	Registry       *prometheus.Registry
	TrustedProxies []string
}

// Server serves the read-only dashboard API.
type Server struct {
	http.Server
	service  *dashboard.Service
	policy   branch.Policy
	logger   *log.Logger
	events   *log.StructuredLogger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around service, returning a ready-to-run server.
func NewServer(addr string, service *dashboard.Service, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Policy == "" {
		opts.Policy = branch.PolicyFallback
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.TrustedProxies == nil {
		opts.TrustedProxies = security.DefaultTrustedProxies
	}

	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		service:  service,
		policy:   opts.Policy,
		logger:   logger,
		events:   log.NewStructuredLogger(opts.Logger),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMin}),
		detector: detector,
	}

	reqMetrics, err := trace.NewMetrics(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("register request metrics: %w", err)
	}
	if err := s.registerCollectors(opts.Registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	r := chi.NewRouter()
	r.Use(trace.RequestID)
	r.Use(log.Middleware(opts.Logger))
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(trace.NewMiddleware(detector.ClientIP, reqMetrics, s.events).Handler)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.APIHeadersConfig()))
	r.Use(s.flagSuspicious)
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(detector.ClientIP, s.handleRateLimited))
		r.Get("/branches", s.handleBranches)
		r.Route("/branches/{branch}", func(r chi.Router) {
			r.Use(s.resolveBranch)
			r.Get("/summary", s.handleSummary)
			r.Get("/tables/{table}", s.handleTable)
			r.Get("/export.xlsx", s.handleExport)
		})
	})

	s.Server = http.Server{Addr: addr, Handler: r}
	s.limiter.Start()
	return s, nil
}

func (s *Server) registerCollectors(reg *prometheus.Registry) error {
	stats := s.service.Cache().Stats
	limiter := s.limiter
	detector := s.detector
	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "salesdash", Subsystem: "summary_cache", Name: "hits_total",
			Help: "Summary cache hits.",
		}, func() float64 { return float64(stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "salesdash", Subsystem: "summary_cache", Name: "misses_total",
			Help: "Summary cache misses.",
		}, func() float64 { return float64(stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "salesdash", Subsystem: "summary_cache", Name: "entries",
			Help: "Summaries currently cached.",
		}, func() float64 { return float64(stats().Size) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "salesdash", Subsystem: "http", Name: "rate_limited_total",
			Help: "Requests refused by the per-client rate limit.",
		}, func() float64 { return float64(limiter.Rejected()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "salesdash", Subsystem: "http", Name: "suspicious_requests_total",
			Help: "Requests that matched a probing pattern.",
		}, func() float64 { return float64(detector.SuspiciousCount()) }),
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops the limiter sweep and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.logger.Info("Shutting down HTTP server")
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.Suspicious(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request", log.FieldMethod, r.Method, log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}
