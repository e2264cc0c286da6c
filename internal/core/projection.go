package core

import (
	"fmt"
	"math"
)

// Horizons lists the supported investment durations in years.
var Horizons = []int{1, 3, 5}

// ProjectionRequest asks for the value of Principal after HorizonYears in Fund.
type ProjectionRequest struct {
	Fund         *FundRecord
	Principal    float64
	HorizonYears int
}

// RateFor returns the fund's historical return for the horizon.
func (f FundRecord) RateFor(horizonYears int) (float64, error) {
	switch horizonYears {
	case 1:
		return f.Return1Y, nil
	case 3:
		return f.Return3Y, nil
	case 5:
		return f.Return5Y, nil
	default:
		return 0, fmt.Errorf("%d years: %w", horizonYears, ErrUnsupportedHorizon)
	}
}

// Project applies the horizon's rate once: principal * (1 + rate/100).
//
// The rate is not compounded over the horizon. A 5 year projection uses the
// 5 year return as a single period, which understates growth for horizons
// longer than one year. The result is unrounded.
func Project(req ProjectionRequest) (float64, error) {
	if req.Fund == nil {
		return 0, ErrNoFundSelected
	}
	if req.Principal < 0 || !finite(req.Principal) {
		return 0, fmt.Errorf("%v: %w", req.Principal, ErrInvalidPrincipal)
	}
	rate, err := req.Fund.RateFor(req.HorizonYears)
	if err != nil {
		return 0, err
	}
	value := req.Principal * (1 + rate/100)
	if !finite(value) {
		return 0, fmt.Errorf("%v overflows: %w", req.Principal, ErrInvalidPrincipal)
	}
	return value, nil
}

// IsSupportedHorizon reports whether years is one of Horizons.
func IsSupportedHorizon(years int) bool {
	for _, h := range Horizons {
		if h == years {
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
