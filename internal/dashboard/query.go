// Package dashboard derives the whole funds page from request parameters.
//
// Every interaction re-runs Build with the parsed Query, so the view never
// depends on state left behind by an earlier request.
package dashboard

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"mfdist/internal/core"
)

const (
	DefaultMinReturn = 5.0
	MinReturnFloor   = 0.0
	MinReturnCeil    = 20.0
	DefaultHorizon   = 1
)

// Query is the parsed state of the funds page inputs.
type Query struct {
	Category  string
	MinReturn float64
	Fund      string
	Amount    float64
	Years     int
}

// Criteria converts the sidebar inputs to filter criteria.
func (q Query) Criteria() core.FilterCriteria {
	return core.FilterCriteria{Category: q.Category, MinReturn1Y: q.MinReturn}
}

// Encode renders the query as URL parameters for links and hx-get targets.
func (q Query) Encode() string {
	v := url.Values{}
	v.Set("category", q.Category)
	v.Set("min_return", strconv.FormatFloat(q.MinReturn, 'f', -1, 64))
	if q.Fund != "" {
		v.Set("fund", q.Fund)
	}
	v.Set("amount", strconv.FormatFloat(q.Amount, 'f', -1, 64))
	v.Set("years", strconv.Itoa(q.Years))
	return v.Encode()
}

// ParseQuery reads the funds page inputs, falling back to defaults.
//
// Category defaults to the catalog's first category; an unknown category is
// kept as given and simply matches nothing. The minimum return is clamped to
// the slider range. Amounts below the minimum investment are raised to it.
// Years is kept as given when numeric so unsupported horizons reach the
// projector and surface as an error.
func ParseQuery(v url.Values, c *core.Catalog) Query {
	q := Query{
		Category:  strings.TrimSpace(v.Get("category")),
		MinReturn: DefaultMinReturn,
		Fund:      strings.TrimSpace(v.Get("fund")),
		Amount:    core.MinInvestment,
		Years:     DefaultHorizon,
	}
	if q.Category == "" {
		if cats := c.Categories(); len(cats) > 0 {
			q.Category = string(cats[0])
		}
	}
	if raw := strings.TrimSpace(v.Get("min_return")); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) {
			q.MinReturn = clamp(f, MinReturnFloor, MinReturnCeil)
		}
	}
	if raw := v.Get("amount"); strings.TrimSpace(raw) != "" {
		if amt, err := core.ParseAmount(raw); err == nil {
			q.Amount = math.Max(amt, core.MinInvestment)
		}
	}
	if raw := strings.TrimSpace(v.Get("years")); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil {
			q.Years = y
		}
	}
	return q
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
