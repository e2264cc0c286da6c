package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	oteltrace "go.opentelemetry.io/otel/trace"

	"mfdist/internal/core"
	"mfdist/internal/leads"
	applog "mfdist/internal/log"
	"mfdist/internal/middleware/ratelimit"
	"mfdist/internal/middleware/security"
	"mfdist/internal/middleware/trace"
	"mfdist/internal/session"
	appweb "mfdist/web"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "mfdist_session"

// Deps are the collaborators a Server is built from. Nil fields get
// in-memory defaults so tests only set what they exercise.
type Deps struct {
	Catalog            *core.Catalog
	Sessions           session.Store
	Leads              leads.Writer
	Logger             *applog.Logger
	RateLimitPerMinute int

	// Templates overrides the embedded templates.
	Templates fs.FS
	// Now overrides the clock.
	Now func() time.Time
	// TracerProvider overrides the global OpenTelemetry provider.
	TracerProvider oteltrace.TracerProvider
}

type Server struct {
	http.Server
	templates *template.Template
	catalog   *core.Catalog
	sessions  session.Store
	leads     leads.Writer
	logger    *applog.Logger
	events    *applog.StructuredLogger
	now       func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime         time.Time
	projections    int64
	chatMessages   int64
	leadsSubmitted int64
	leadErrors     int64
}

// templateFuncs are shared by every page and partial.
var templateFuncs = template.FuncMap{
	"rupees":  core.FormatRupees,
	"percent": core.FormatPercent,
	"ret":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Catalog == nil {
		deps.Catalog = core.DefaultCatalog()
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore(1000, 30*time.Minute, time.Minute)
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Templates == nil {
		deps.Templates = appweb.TemplatesFS
	}

	mux := http.NewServeMux()
	s := &Server{
		catalog:          deps.Catalog,
		sessions:         deps.Sessions,
		leads:            deps.Leads,
		logger:           deps.Logger,
		events:           applog.NewStructuredLogger(deps.Logger),
		now:              deps.Now,
		securityDetector: security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		appMetrics: &appMetrics{uptime: deps.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, s.events)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(deps.Templates, "templates/*.html")
	if err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ui/funds", s.handleFundsPartial)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/customers", s.handleCustomers)

	mux.HandleFunc("/api/funds", s.handleAPIFunds)
	mux.HandleFunc("/api/categories", s.handleAPICategories)
	mux.HandleFunc("/api/projection", s.handleAPIProjection)
	mux.HandleFunc("/api/chat", s.handleAPIChat)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// Outermost first: the logger must be on the context before tracing
	// adds the request id to it.
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit, http.MethodPost)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = applog.Middleware(s.logger)(handler)
	otelOpts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}
	if deps.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(deps.TracerProvider))
	}
	handler = otelhttp.NewHandler(handler, "mfdist", otelOpts...)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops background goroutines and the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	if isAPI(r) {
		w.Header().Set("Retry-After", "60")
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").
		Header("Retry-After", "60").
		Write(w)
}

// session resolves the visitor's session from the cookie, creating one and
// setting the cookie when needed.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	sess, created, err := session.LoadOrCreate(r.Context(), s.sessions, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}

// render executes name into a buffer so template errors never produce a
// half-written page.
func (s *Server) render(name string, data interface{}) (string, error) {
	if s.templates == nil {
		return "", fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// renderPage writes a full page or a partial through b, logging failures.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data interface{}) {
	html, err := s.render(name, data)
	if err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithTemplate(name))
		InternalServerError("Error rendering page").Write(w)
		return
	}
	b.BodyHTML(html).Write(w)
}
