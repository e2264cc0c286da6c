package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	applog "mfdist/internal/log"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// Middleware assigns request IDs, logs start and completion, and keeps
// request counters for /metrics.
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.StructuredLogger

	totalRequests int64
	totalDuration int64 // microseconds
	serverErrors  int64
	clientErrors  int64
}

type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64 // microseconds
	ClientErrors        int64
	ServerErrors        int64
}

func NewMiddleware(extractIP func(*http.Request) string, logger *applog.StructuredLogger) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get("X-Request-ID")
		if !validRequestID(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		logger := applog.FromContext(ctx).With(applog.FieldRequestID, requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		if m.logger != nil {
			m.logger.LogHTTPStart(ctx, r, clientIP)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		atomic.AddInt64(&m.totalRequests, 1)
		atomic.AddInt64(&m.totalDuration, duration.Microseconds())
		switch {
		case rw.statusCode >= 500:
			atomic.AddInt64(&m.serverErrors, 1)
		case rw.statusCode >= 400:
			atomic.AddInt64(&m.clientErrors, 1)
		}

		if m.logger != nil {
			m.logger.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// GenerateRequestID returns "req_" followed by 16 hex characters.
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// validRequestID accepts caller IDs of up to 64 URL-safe characters.
func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	total := atomic.LoadInt64(&m.totalRequests)
	var avg int64
	if total > 0 {
		avg = atomic.LoadInt64(&m.totalDuration) / total
	}
	return Metrics{
		TotalRequests:       total,
		AverageResponseTime: avg,
		ClientErrors:        atomic.LoadInt64(&m.clientErrors),
		ServerErrors:        atomic.LoadInt64(&m.serverErrors),
	}
}
