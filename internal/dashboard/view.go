package dashboard

import (
	"errors"
	"fmt"

	"mfdist/internal/chart"
	"mfdist/internal/core"
)

const (
	PerformanceXLabel = "Duration"
	PerformanceYLabel = "Return (%)"
	DistributionTitle = "Distribution of Fund Categories"

	CompoundingNote = "Projections apply the period return once and are not compounded."
)

// HorizonLabels are the x axis labels of the performance chart.
var HorizonLabels = []string{"1-Year Return", "3-Year Return", "5-Year Return"}

// View is everything the funds page renders.
type View struct {
	Query      Query
	Categories []core.Category
	Horizons   []int

	Funds    []core.FundRecord
	Selected *core.FundRecord

	Projected     float64
	ProjectedText string
	ProjectionErr string
	Note          string

	Performance  *chart.Line
	Distribution []core.CategoryShare
	Pie          chart.Pie
}

// HasFunds reports whether the filter matched anything.
func (v View) HasFunds() bool {
	return len(v.Funds) > 0
}

// Build filters the catalog, resolves the selected fund, runs the projection
// and lays out both charts.
func Build(c *core.Catalog, q Query) View {
	v := View{
		Query:      q,
		Categories: c.Categories(),
		Horizons:   append([]int(nil), core.Horizons...),
		Funds:      c.Filter(q.Criteria()),
		Note:       CompoundingNote,
	}

	v.Selected = selectFund(c, v.Funds, q.Fund)
	if v.Selected != nil {
		v.Query.Fund = v.Selected.Name
	} else {
		v.Query.Fund = ""
	}

	projected, err := core.Project(core.ProjectionRequest{
		Fund:         v.Selected,
		Principal:    q.Amount,
		HorizonYears: q.Years,
	})
	if err != nil {
		v.ProjectionErr = ProjectionErrorText(err, q.Years)
	} else {
		v.Projected = core.Round2(projected)
		v.ProjectedText = ProjectionText(q.Years, projected)
	}

	if v.Selected != nil {
		line, err := chart.NewLine(
			fmt.Sprintf("%s Fund Performance", v.Selected.Name),
			PerformanceXLabel, PerformanceYLabel,
			HorizonLabels, v.Selected.Returns(),
		)
		if err == nil {
			v.Performance = &line
		}
	}

	v.Distribution = core.Distribution(c.Funds())
	labels := make([]string, len(v.Distribution))
	counts := make([]int, len(v.Distribution))
	for i, share := range v.Distribution {
		labels[i] = string(share.Category)
		counts[i] = share.Count
	}
	// Lengths always match here, so the error is unreachable.
	v.Pie, _ = chart.NewPie(DistributionTitle, labels, counts)
	return v
}

// selectFund picks the requested fund when it survived the filter, otherwise
// the first filtered fund. The returned record comes from the full catalog.
func selectFund(c *core.Catalog, filtered []core.FundRecord, name string) *core.FundRecord {
	if len(filtered) == 0 {
		return nil
	}
	pick := filtered[0].Name
	for _, f := range filtered {
		if f.Name == name {
			pick = name
			break
		}
	}
	rec, err := c.Lookup(pick)
	if err != nil {
		return nil
	}
	return &rec
}

// ProjectionText renders a successful projection.
func ProjectionText(years int, value float64) string {
	return fmt.Sprintf("Projected Return after %d years: %s", years, core.FormatRupees(value))
}

// ProjectionErrorText renders a projection failure for display.
func ProjectionErrorText(err error, years int) string {
	switch {
	case errors.Is(err, core.ErrNoFundSelected):
		return "No fund selected. Adjust the filters to see matching funds."
	case errors.Is(err, core.ErrUnsupportedHorizon):
		return fmt.Sprintf("Duration of %d years is not supported. Choose 1, 3 or 5 years.", years)
	case errors.Is(err, core.ErrInvalidPrincipal):
		return "Investment amount must be a number between 0 and 1000000000000."
	default:
		return err.Error()
	}
}
