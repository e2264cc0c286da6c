package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mfdist/internal/core"
	"mfdist/internal/leads/memory"
	applog "mfdist/internal/log"
	"mfdist/internal/session"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

func newTestServer(t *testing.T, mutate func(*Deps)) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	sessions := session.NewMemoryStore(100, time.Hour, time.Hour)
	t.Cleanup(func() { _ = sessions.Close() })

	deps := Deps{
		Catalog:            core.DefaultCatalog(),
		Sessions:           sessions,
		Leads:              store,
		Logger:             quietLogger(),
		RateLimitPerMinute: 100,
		Now: func() time.Time {
			return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		},
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv := NewServer(":0", deps)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv, store
}

// client replays cookies between requests like a browser would.
type client struct {
	t       *testing.T
	srv     *Server
	cookies []*http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	c.srv.Handler.ServeHTTP(rr, req)
	if got := rr.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}
	return rr
}

func (c *client) get(target string, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

func (c *client) postForm(target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

func assertContains(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Errorf("body missing %q", p)
		}
	}
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	rr := c.get("/", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	assertContains(t, rr.Body.String(),
		"Mutual Funds Distributor",
		"Filtered Mutual Funds",
		"Projected Return after 1 years: ₹1125.00",
		"Hdfc Fund Performance",
		"1-Year Return",
		"5-Year Return",
		"Distribution of Fund Categories",
		"50.0%",
		"#FF5733",
		"Chatbot",
	)
	if len(c.cookies) != 1 || c.cookies[0].Name != SessionCookie || !c.cookies[0].HttpOnly {
		t.Errorf("session cookie not set correctly: %+v", c.cookies)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := c.get(path, false)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}

	if rr := c.get("/nope", false); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d, want 404", rr.Code)
	}
}

func TestFundsPartial(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "filtered out fund falls back to first match",
			query: "category=Equity&min_return=13&fund=Hdfc&amount=2000&years=5",
			want:  []string{"Hal Fund Performance", "Projected Return after 5 years: ₹2270.00"},
		},
		{
			name:  "unsupported horizon",
			query: "category=Debt&min_return=0&years=2",
			want:  []string{"Tata Elexi", "Duration of 2 years is not supported"},
		},
		{
			name:  "unknown category",
			query: "category=Crypto",
			want:  []string{"No funds match the selected filters.", "No fund selected."},
		},
		{
			name:  "huge amount falls back to the minimum",
			query: "category=Equity&min_return=0&amount=1.7e308",
			want:  []string{"Projected Return after 1 years: ₹1125.00"},
		},
		{
			name:  "tie rounds to even",
			query: "category=Equity&min_return=0&fund=Hdfc&amount=1001",
			want:  []string{"Projected Return after 1 years: ₹1126.12"},
		},
		{
			name:  "amount below minimum is raised",
			query: "category=Hybrid&min_return=0&amount=10",
			want:  []string{"Projected Return after 1 years: ₹1095.00"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := c.get("/ui/funds?"+tt.query, true)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			assertContains(t, rr.Body.String(), tt.want...)
			if strings.Contains(rr.Body.String(), "<html") {
				t.Error("partial should not contain the page layout")
			}
			if !strings.Contains(rr.Header().Get("HX-Trigger"), `"funds:refresh"`) {
				t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
			}
		})
	}

	rr := c.get("/ui/funds?category=Equity&min_return=13", true)
	if push := rr.Header().Get("HX-Push-Url"); !strings.Contains(push, "fund=Hal") {
		t.Errorf("HX-Push-Url = %q", push)
	}
}

func TestChat(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	rr := c.get("/chat", false)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /chat status=%d, want 405", rr.Code)
	}

	rr = c.postForm("/chat", url.Values{"message": {"Tell me about RETURNS"}}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	assertContains(t, rr.Body.String(), "Tell me about RETURNS", "Our funds have historically performed well.")
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"messages":2`) {
		t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}

	rr = c.postForm("/chat", url.Values{"message": {"which fund?"}}, true)
	assertContains(t, rr.Body.String(), "Tell me about RETURNS", "We offer various categories of funds.")

	rr = c.postForm("/chat", url.Values{"message": {"   "}}, true)
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"messages":4`) {
		t.Errorf("blank message changed the transcript: %q", rr.Header().Get("HX-Trigger"))
	}

	rr = c.postForm("/chat", url.Values{"message": {"hello"}}, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/#chat" {
		t.Errorf("non-htmx chat status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	rr = c.get("/", false)
	assertContains(t, rr.Body.String(), "which fund?", "hello")
}

func TestAPIChat(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return c.do(req)
	}

	rr := post(`{"message":"any good fund?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "We offer various categories of funds. You can filter them on the sidebar!" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if len(resp.Transcript) != 2 {
		t.Errorf("transcript length = %d, want 2", len(resp.Transcript))
	}

	rr = post(`{"message":"hi"}`)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transcript) != 4 {
		t.Errorf("transcript length = %d, want 4", len(resp.Transcript))
	}

	if rr := post(`{"message":""}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty message status=%d, want 422", rr.Code)
	}
	if rr := post(`{"message":`); rr.Code != http.StatusBadRequest {
		t.Errorf("bad json status=%d, want 400", rr.Code)
	}
}

func TestCustomers(t *testing.T) {
	srv, store := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	rr := c.get("/customers", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	assertContains(t, rr.Body.String(), "Customer Details", "Please fill in all details.", `value="Adani Port"`)

	rr = c.postForm("/customers", url.Values{
		"name": {"Asha"}, "email": {"asha@example.com"}, "phone": {"98765"},
		"amount": {"1500"}, "preferred_fund": {"Hal"},
	}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	assertContains(t, rr.Body.String(), "Details for Asha have been submitted!", "asha@example.com", "₹1500.00", "Hal")
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"lead:submitted":{"ref":"mem:1"}`) {
		t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}
	if store.Len() != 1 {
		t.Errorf("stored leads = %d, want 1", store.Len())
	}

	rr = c.get("/customers", false)
	assertContains(t, rr.Body.String(), "asha@example.com")

	rr = c.postForm("/customers", url.Values{"name": {"Ravi"}, "amount": {"2000"}}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("incomplete status=%d", rr.Code)
	}
	assertContains(t, rr.Body.String(), "Details for Ravi have been submitted!", "Please fill in all details.")

	rr = c.postForm("/customers", url.Values{"name": {"X"}, "amount": {"lots"}}, true)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad amount status=%d, want 422", rr.Code)
	}
	assertContains(t, rr.Body.String(), "Investment amount must be a number.")

	rr = c.postForm("/customers", url.Values{"name": {"X"}, "preferred_fund": {"Nope"}}, false)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown fund status=%d, want 422", rr.Code)
	}
	assertContains(t, rr.Body.String(), "<html", "Please choose one of the listed funds.")

	if store.Len() != 2 {
		t.Errorf("stored leads = %d, want 2", store.Len())
	}
}

func TestAPIFundsAndCategories(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	rr := c.get("/api/funds?category=Equity&min_return=13", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var funds fundsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &funds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(funds.Funds) != 1 || funds.Funds[0].Name != "Hal" || funds.MinReturn != 13 {
		t.Errorf("funds = %+v", funds)
	}

	rr = c.get("/api/categories", false)
	var shares []core.CategoryShare
	if err := json.Unmarshal(rr.Body.Bytes(), &shares); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(shares) != 3 || shares[0].Category != core.Equity || shares[0].Count != 2 || shares[0].Percent != 50 {
		t.Errorf("shares = %+v", shares)
	}
}

func TestAPIProjection(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	rr := c.get("/api/projection?fund=Hdfc&amount=1000&years=1", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got projectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != (projectionResponse{Fund: "Hdfc", Amount: 1000, Years: 1, Projected: 1125}) {
		t.Errorf("projection = %+v", got)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"fund=Nope&amount=1000&years=1", http.StatusNotFound},
		{"fund=Hdfc&amount=1000&years=2", http.StatusUnprocessableEntity},
		{"fund=Hdfc&amount=1000&years=two", http.StatusUnprocessableEntity},
		{"fund=Hdfc&amount=-5&years=1", http.StatusUnprocessableEntity},
		{"fund=Hdfc&amount=1.7e308&years=1", http.StatusUnprocessableEntity},
		{"fund=Hdfc&amount=1e400&years=5", http.StatusUnprocessableEntity},
		{"fund=Hal&amount=0&years=3", http.StatusOK},
	}
	for _, tt := range tests {
		rr := c.get("/api/projection?"+tt.query, false)
		if rr.Code != tt.want {
			t.Errorf("%s: status=%d, want %d", tt.query, rr.Code, tt.want)
		}
	}
}

func TestIndex_HugeAmountDoesNotPanic(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	rr := c.get("/?amount=1.7e308", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	assertContains(t, rr.Body.String(), "₹1125.00")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := &client{t: t, srv: srv}

	c.get("/", false)
	c.get("/api/projection?fund=Hal&years=5", false)

	rr := c.get("/metrics", false)
	assertContains(t, rr.Body.String(),
		"http_requests_total 2",
		"projections_total 2",
		"sessions_active 1",
	)
}

func TestRequestsAreTraced(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv, _ := newTestServer(t, func(d *Deps) { d.TracerProvider = tp })
	c := &client{t: t, srv: srv}

	if rr := c.get("/api/funds", false); rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "GET /api/funds" {
		t.Errorf("span name = %q, want %q", got, "GET /api/funds")
	}
}

func TestRateLimitOnPost(t *testing.T) {
	srv, _ := newTestServer(t, func(d *Deps) { d.RateLimitPerMinute = 1 })
	c := &client{t: t, srv: srv}

	if rr := c.postForm("/chat", url.Values{"message": {"hi"}}, true); rr.Code != http.StatusOK {
		t.Fatalf("first POST status=%d", rr.Code)
	}
	rr := c.postForm("/chat", url.Values{"message": {"hi"}}, true)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second POST status=%d, want 429", rr.Code)
	}
	if rr := c.get("/", false); rr.Code != http.StatusOK {
		t.Errorf("GET should not be rate limited, status=%d", rr.Code)
	}
}

func TestTemplateParseErrorPath(t *testing.T) {
	srv, _ := newTestServer(t, func(d *Deps) { d.Templates = fstest.MapFS{} })
	c := &client{t: t, srv: srv}

	if rr := c.get("/", false); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing templates, got %d", rr.Code)
	}
	if rr := c.get("/readyz", false); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status=%d, want 503", rr.Code)
	}
	if rr := c.get("/api/funds", false); rr.Code != http.StatusOK {
		t.Errorf("API should not depend on templates, status=%d", rr.Code)
	}
}
