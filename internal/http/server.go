// Package http exposes the insight service over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finsight/internal/cache"
	"finsight/internal/classify"
	"finsight/internal/forecast"
	"finsight/internal/log"
	"finsight/internal/middleware/ratelimit"
	"finsight/internal/middleware/security"
	"finsight/internal/middleware/trace"
	"finsight/internal/storage"
)

// ReportPublisher notifies the export worker that a report snapshot is
// waiting. Publishing is best-effort: the server logs failures and keeps
// serving.
type ReportPublisher interface {
	PublishReportExport(ctx context.Context, id string, version int64) error
}

// Deps are the collaborators a server needs. Storage and Publisher may be
// nil: without storage the service still computes insights, it just skips
// persistence and export.
type Deps struct {
	Storage    *storage.SQLiteRepository
	Classifier *classify.Classifier
	Model      *forecast.Model
	Publisher  ReportPublisher

	// DefaultMonthlyBudget fills in requests that omit monthly_budget.
	DefaultMonthlyBudget float64
}

type Server struct {
	http.Server

	storage       *storage.SQLiteRepository
	classifier    *classify.Classifier
	model         *forecast.Model
	publisher     ReportPublisher
	defaultBudget float64

	detector *security.Detector
	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	caches   *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		storage:       deps.Storage,
		classifier:    deps.Classifier,
		model:         deps.Model,
		publisher:     deps.Publisher,
		defaultBudget: deps.DefaultMonthlyBudget,
		detector:      detector,
		tracer:        trace.NewMiddleware(detector.ExtractClientIP),
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		caches:        cache.NewManager(),
		startedAt:     time.Now(),
	}
	if s.classifier == nil {
		s.classifier = classify.New()
	}

	s.caches.Register(s.classifier.ResultCache())
	s.caches.StartCleanup(10 * time.Minute)

	// Rate limiting protects the mutating endpoints only; probes and reads
	// stay cheap for orchestrators.
	limited := s.limiter.Middleware(detector.ExtractClientIP, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /forecast", s.handleForecast)
	mux.HandleFunc("GET /statements/{id}", s.handleGetStatement)
	mux.Handle("POST /insights", limited(http.HandlerFunc(s.handleInsights)))
	mux.Handle("POST /classify", limited(http.HandlerFunc(s.handleClassify)))
	mux.Handle("POST /statements", limited(http.HandlerFunc(s.handleCreateStatement)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	httpLogger := log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)

	var handler http.Handler = mux
	// Request-scoped loggers pick up the id the trace middleware assigns, so
	// these run inside it.
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = log.Middleware(httpLogger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = detector.Middleware(handler)
	handler = headers.Middleware(handler)
	s.Handler = handler

	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
