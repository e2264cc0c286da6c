package http

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"

	"mfdist/internal/chat"
	"mfdist/internal/dashboard"
	applog "mfdist/internal/log"
)

type indexPage struct {
	Active     string
	View       dashboard.View
	Transcript chat.Transcript
}

// buildView re-derives the funds page from the request parameters.
func (s *Server) buildView(ctx context.Context, params url.Values) dashboard.View {
	q := dashboard.ParseQuery(params, s.catalog)
	v := dashboard.Build(s.catalog, q)

	s.events.LogFilter(ctx, q.Category, q.MinReturn, len(v.Funds))
	if v.ProjectionErr == "" {
		atomic.AddInt64(&s.appMetrics.projections, 1)
		s.events.LogProjection(ctx, v.Query.Fund, q.Amount, q.Years, v.Projected)
	}
	return v
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			"error_type", applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	page := indexPage{
		Active: "funds",
		View:   s.buildView(r.Context(), r.URL.Query()),
	}
	sess, err := s.session(w, r)
	if err != nil {
		// The chat starts empty rather than failing the whole page.
		s.events.LogError(r.Context(), "Session unavailable", err, applog.ComponentSession, applog.OpRead, nil)
	} else {
		page.Transcript = sess.Transcript
	}

	s.renderPage(w, r, NewHTMXResponse(), "index.html", page)
}

// handleFundsPartial re-renders the funds section for htmx requests.
func (s *Server) handleFundsPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	v := s.buildView(r.Context(), r.URL.Query())
	b := NewHTMXResponse().
		TriggerFundsRefresh(v.Query.Category, v.Query.Fund).
		PushURL("/?" + v.Query.Encode())
	s.renderPage(w, r, b, "funds", v)
}
