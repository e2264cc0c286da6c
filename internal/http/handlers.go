package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"mfdist/internal/leads"
)

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.appMetrics.uptime).String(),
	})
}

// handleReady checks templates, the session store and, when it can report
// it, the lead store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})
	fail := func(name string, err error) {
		checks[name] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", fmt.Errorf("templates not loaded"))
	} else {
		checks["templates"] = "ok"
	}

	if n, err := s.sessions.Len(ctx); err != nil {
		fail("sessions", err)
	} else {
		checks["sessions"] = map[string]interface{}{
			"active": n,
			"status": "ok",
		}
	}

	switch p := s.leads.(type) {
	case nil:
		checks["leads"] = "not_configured"
	case leads.Pinger:
		if err := p.Ping(ctx); err != nil {
			fail("leads", err)
		} else {
			checks["leads"] = "ok"
		}
	default:
		checks["leads"] = "ok"
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	sessions, _ := s.sessions.Len(r.Context())

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("projections_total", "counter", "Projections computed", atomic.LoadInt64(&s.appMetrics.projections))
	metric("chat_messages_total", "counter", "Chat messages answered", atomic.LoadInt64(&s.appMetrics.chatMessages))
	metric("leads_submitted_total", "counter", "Customer details submitted", atomic.LoadInt64(&s.appMetrics.leadsSubmitted))
	metric("lead_errors_total", "counter", "Customer details that could not be stored", atomic.LoadInt64(&s.appMetrics.leadErrors))
	metric("sessions_active", "gauge", "Sessions currently stored", sessions)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", s.now().Sub(s.appMetrics.uptime).Seconds()))
}
