package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

// appMetrics counts the domain events shown on /metrics.
type appMetrics struct {
	startedAt     time.Time
	signups       int64
	logins        int64
	loginFailures int64
	transactions  int64
	adviceCalls   int64
	adviceErrors  int64
	reviews       int64
}

func newAppMetrics() *appMetrics {
	return &appMetrics{startedAt: time.Now()}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startedAt).Round(time.Second).String(),
	})
}

// handleReady reports not_ready when templates are missing or the storage
// medium does not answer a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: " + errTemplatesNotLoaded.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.readiness == nil:
		checks["storage"] = "not_configured"
	default:
		if err := s.readiness.Ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	checks["sessions"] = map[string]any{"active": s.sessions.Len(), "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.authLimiter.ActiveClients(), "status": "ok"}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	limitMetrics := s.authLimiter.GetMetrics()

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v float64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n\n", name, help, name, name, v)
	}

	w.WriteHeader(http.StatusOK)
	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	counter("signups_total", "Accounts created", atomic.LoadInt64(&s.metrics.signups))
	counter("logins_total", "Successful logins", atomic.LoadInt64(&s.metrics.logins))
	counter("login_failures_total", "Rejected logins", atomic.LoadInt64(&s.metrics.loginFailures))
	counter("transactions_total", "Transactions recorded", atomic.LoadInt64(&s.metrics.transactions))
	counter("advice_requests_total", "AI analyses requested", atomic.LoadInt64(&s.metrics.adviceCalls))
	counter("advice_errors_total", "AI analyses that failed", atomic.LoadInt64(&s.metrics.adviceErrors))
	counter("reviews_total", "Reviews submitted", atomic.LoadInt64(&s.metrics.reviews))
	counter("rate_limit_hits_total", "Requests refused by the auth rate limiter", limitMetrics.TotalHits)
	counter("suspicious_requests_total", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	gauge("active_sessions", "Live browser sessions", float64(s.sessions.Len()))
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", float64(limitMetrics.ClientCount))
	gauge("uptime_seconds", "Application uptime in seconds", time.Since(s.metrics.startedAt).Round(time.Second).Seconds())
}
