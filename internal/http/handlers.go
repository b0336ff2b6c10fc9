package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports readiness: storage must answer a ping, the forecast
// model is reported but never blocks readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	switch {
	case s.storage == nil:
		checks["storage"] = "disabled"
	case s.storage.Ping(r.Context()) != nil:
		checks["storage"] = "error"
		ready = false
	default:
		checks["storage"] = "ok"
	}

	if s.model != nil && s.model.Available() {
		checks["forecast_model"] = "available"
	} else {
		checks["forecast_model"] = "unavailable"
	}

	hits, misses := s.classifier.ResultCache().Stats()
	limitMetrics := s.limiter.GetMetrics()

	status := http.StatusOK
	body := map[string]any{
		"status": "ready",
		"checks": checks,
		"cache": map[string]any{
			"entries": s.classifier.CacheSize(),
			"hits":    hits,
			"misses":  misses,
		},
		"rate_limit": map[string]any{
			"active_clients": limitMetrics.ClientCount,
			"total_hits":     limitMetrics.TotalHits,
		},
	}
	if !ready {
		status = http.StatusServiceUnavailable
		body["status"] = "not ready"
	}
	NewResponse().Status(status).JSON(body).Write(w)
}

// handleMetrics exposes plain-text counters for scraping.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder

	traceMetrics := s.tracer.GetMetrics()
	fmt.Fprintf(&b, "http_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(&b, "http_request_duration_avg_microseconds %d\n", traceMetrics.AverageResponseTime)

	limitMetrics := s.limiter.GetMetrics()
	fmt.Fprintf(&b, "rate_limit_hits_total %d\n", limitMetrics.TotalHits)
	fmt.Fprintf(&b, "rate_limit_active_clients %d\n", limitMetrics.ClientCount)

	detectionMetrics := s.detector.GetMetrics()
	fmt.Fprintf(&b, "security_suspicious_requests_total %d\n", detectionMetrics.SuspiciousRequests)

	hits, misses := s.classifier.ResultCache().Stats()
	fmt.Fprintf(&b, "classifier_cache_hits_total %d\n", hits)
	fmt.Fprintf(&b, "classifier_cache_misses_total %d\n", misses)
	fmt.Fprintf(&b, "classifier_cache_entries %d\n", s.classifier.CacheSize())

	if s.storage != nil {
		if count, err := s.storage.ReportCount(r.Context()); err == nil {
			fmt.Fprintf(&b, "reports_stored_total %d\n", count)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, b.String())
}
