package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"mfdist/internal/core"
	"mfdist/internal/dashboard"
)

type fundsResponse struct {
	Category  string            `json:"category"`
	MinReturn float64           `json:"min_return"`
	Funds     []core.FundRecord `json:"funds"`
}

type projectionResponse struct {
	Fund      string  `json:"fund"`
	Amount    float64 `json:"amount"`
	Years     int     `json:"years"`
	Projected float64 `json:"projected"`
}

func requireAPIGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// handleAPIFunds applies the same defaults and clamping as the dashboard sidebar.
func (s *Server) handleAPIFunds(w http.ResponseWriter, r *http.Request) {
	if !requireAPIGET(w, r) {
		return
	}
	q := dashboard.ParseQuery(r.URL.Query(), s.catalog)
	funds := s.catalog.Filter(q.Criteria())
	s.events.LogFilter(r.Context(), q.Category, q.MinReturn, len(funds))

	writeJSON(w, http.StatusOK, fundsResponse{
		Category:  q.Category,
		MinReturn: q.MinReturn,
		Funds:     funds,
	})
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	if !requireAPIGET(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, core.Distribution(s.catalog.Funds()))
}

// handleAPIProjection is strict where the dashboard is forgiving: bad
// amounts and horizons are errors instead of falling back to defaults.
func (s *Server) handleAPIProjection(w http.ResponseWriter, r *http.Request) {
	if !requireAPIGET(w, r) {
		return
	}
	params := r.URL.Query()

	fund, err := s.catalog.Lookup(strings.TrimSpace(params.Get("fund")))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	amount := float64(core.MinInvestment)
	if raw := params.Get("amount"); strings.TrimSpace(raw) != "" {
		amount, err = core.ParseAmount(raw)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "amount must be a number between 0 and 1000000000000")
			return
		}
	}

	years := dashboard.DefaultHorizon
	if raw := strings.TrimSpace(params.Get("years")); raw != "" {
		years, err = strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "years must be one of 1, 3, 5")
			return
		}
	}

	projected, err := core.Project(core.ProjectionRequest{Fund: &fund, Principal: amount, HorizonYears: years})
	switch {
	case errors.Is(err, core.ErrUnsupportedHorizon):
		writeJSONError(w, http.StatusUnprocessableEntity, "years must be one of 1, 3, 5")
		return
	case errors.Is(err, core.ErrInvalidPrincipal):
		writeJSONError(w, http.StatusUnprocessableEntity, "amount must be a number between 0 and 1000000000000")
		return
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	atomic.AddInt64(&s.appMetrics.projections, 1)
	s.events.LogProjection(r.Context(), fund.Name, amount, years, projected)
	writeJSON(w, http.StatusOK, projectionResponse{
		Fund:      fund.Name,
		Amount:    amount,
		Years:     years,
		Projected: core.Round2(projected),
	})
}
