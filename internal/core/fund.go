package core

import (
	"errors"
	"strings"
)

const (
	Equity Category = "Equity"
	Debt   Category = "Debt"
	Hybrid Category = "Hybrid"
)

type (
	// Category is the asset class a fund belongs to.
	Category string

	// FundRecord is one row of the fund catalog. Returns are percentages.
	FundRecord struct {
		Name     string   `json:"name"`
		Category Category `json:"category"`
		Return1Y float64  `json:"return_1y"`
		Return3Y float64  `json:"return_3y"`
		Return5Y float64  `json:"return_5y"`
	}

	// FilterCriteria narrows the catalog to one category and a 1-year return floor.
	FilterCriteria struct {
		Category    string
		MinReturn1Y float64
	}
)

var (
	ErrInvalidCategory    = errors.New("invalid category")
	ErrUnsupportedHorizon = errors.New("unsupported horizon")
	ErrNoFundSelected     = errors.New("no fund selected")
	ErrInvalidPrincipal   = errors.New("invalid principal")
	ErrFundNotFound       = errors.New("fund not found")
	ErrDuplicateFund      = errors.New("duplicate fund name")
	ErrEmptyFundName      = errors.New("empty fund name")
	ErrInvalidMinReturn   = errors.New("minimum return must not be negative")
)

func (c Category) String() string {
	return string(c)
}

// Validate checks the record shape. Returns may be negative.
func (f FundRecord) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyFundName
	}
	if strings.TrimSpace(string(f.Category)) == "" {
		return ErrInvalidCategory
	}
	return nil
}

// Returns lists the 1, 3 and 5 year returns in horizon order.
func (f FundRecord) Returns() []float64 {
	return []float64{f.Return1Y, f.Return3Y, f.Return5Y}
}

// Matches reports whether the record satisfies the criteria.
func (f FundRecord) Matches(c FilterCriteria) bool {
	return string(f.Category) == c.Category && f.Return1Y >= c.MinReturn1Y
}
