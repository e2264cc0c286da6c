// Package core provides money parsing and formatting for the dashboard.
//
// Amounts are parsed with decimal arithmetic, computed as float64 by the
// projector and only rounded here, at the presentation boundary. Rounding
// works on the exact binary value, so a tie such as 1126.125 goes to the even
// digit.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MinInvestment is the smallest amount the calculator accepts, in rupees.
	MinInvestment = 1000
	// InvestmentStep is the increment offered by amount inputs.
	InvestmentStep = 500
	// MaxInvestment bounds parsed amounts so projections stay finite.
	MaxInvestment = 1e12
)

var maxInvestment = decimal.NewFromInt(MaxInvestment)

// Round2 rounds v to two decimal places, matching FormatRupees. Non-finite
// values are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return f
}

// FormatRupees renders v as "₹1125.00".
func FormatRupees(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatPercent renders v with one decimal, e.g. "33.3%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// ParseAmount parses a non-negative amount no larger than MaxInvestment.
// Both "1000.5" and "1000,5" are accepted; thousands separators are not.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	if s == "" {
		return 0, ErrInvalidPrincipal
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidPrincipal
	}
	if d.IsNegative() || d.GreaterThan(maxInvestment) {
		return 0, ErrInvalidPrincipal
	}
	f, _ := d.Float64()
	return f, nil
}
