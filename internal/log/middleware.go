package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const (
	LoggerContextKey ContextKey = "logger"
)

// Middleware stores logger on the request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the request logger, or one wrapping slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: ComponentApp,
	}
}

// ComponentMiddleware creates middleware that adds component context to the logger
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).WithComponent(component)
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds request ID to logger context
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := extractRequestID(r)
			logger := FromContext(r.Context()).With(FieldRequestID, requestID)
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StructuredLogger writes the HTTP and domain events the service emits.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs at debug so a busy dashboard does not double its log volume.
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd picks the level from the status code.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogFilter(ctx context.Context, category string, minReturn float64, matched int) {
	fields := NewFields().
		WithFilter(category, minReturn, matched).
		WithOperation(OpFilter)

	sl.logger.WithComponent(ComponentFunds).DebugContext(ctx, "Funds filtered", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogProjection(ctx context.Context, fund string, principal float64, years int, projected float64) {
	fields := NewFields().
		WithProjection(fund, principal, years).
		WithOperation(OpProject)
	fields[FieldProjected] = projected

	sl.logger.WithComponent(ComponentFunds).InfoContext(ctx, "Projection computed", fields.ToSlice()...)
}

// LogChat records message size only; chat text is never logged.
func (sl *StructuredLogger) LogChat(ctx context.Context, sessionID string, messageLen int) {
	fields := NewFields().
		WithSessionID(sessionID).
		WithOperation(OpReply)
	fields[FieldMessageLen] = messageLen

	sl.logger.WithComponent(ComponentChat).InfoContext(ctx, "Chat reply sent", fields.ToSlice()...)
}

// LogLeadSubmitted omits contact details.
func (sl *StructuredLogger) LogLeadSubmitted(ctx context.Context, ref string, fund string, amount float64) {
	fields := NewFields().
		WithOperation(OpSubmit)
	fields[FieldLeadRef] = ref
	fields[FieldFund] = fund
	fields[FieldPrincipal] = amount

	sl.logger.WithComponent(ComponentLeads).InfoContext(ctx, "Lead submitted", fields.ToSlice()...)
}

// LogError logs err under the given component and operation.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields = fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, fields.ToSlice()...)
}
