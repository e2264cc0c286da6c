package dashboard

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfdist/internal/core"
)

func TestParseQuery_Defaults(t *testing.T) {
	q := ParseQuery(url.Values{}, core.DefaultCatalog())
	assert.Equal(t, "Equity", q.Category)
	assert.Equal(t, DefaultMinReturn, q.MinReturn)
	assert.Equal(t, float64(core.MinInvestment), q.Amount)
	assert.Equal(t, 1, q.Years)
	assert.Empty(t, q.Fund)
}

func TestParseQuery_Clamping(t *testing.T) {
	c := core.DefaultCatalog()
	tests := []struct {
		name   string
		values url.Values
		want   Query
	}{
		{
			name:   "min return above slider",
			values: url.Values{"min_return": {"35"}},
			want:   Query{Category: "Equity", MinReturn: 20, Amount: 1000, Years: 1},
		},
		{
			name:   "negative min return",
			values: url.Values{"min_return": {"-3"}},
			want:   Query{Category: "Equity", MinReturn: 0, Amount: 1000, Years: 1},
		},
		{
			name:   "garbage min return uses default",
			values: url.Values{"min_return": {"abc"}},
			want:   Query{Category: "Equity", MinReturn: 5, Amount: 1000, Years: 1},
		},
		{
			name:   "amount below minimum",
			values: url.Values{"amount": {"200"}},
			want:   Query{Category: "Equity", MinReturn: 5, Amount: 1000, Years: 1},
		},
		{
			name:   "amount and unsupported horizon kept",
			values: url.Values{"category": {"Debt"}, "amount": {"2500"}, "years": {"2"}, "fund": {"Tata Elexi"}},
			want:   Query{Category: "Debt", MinReturn: 5, Fund: "Tata Elexi", Amount: 2500, Years: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuery(tt.values, c))
		})
	}
}

func TestQueryEncodeRoundtrip(t *testing.T) {
	c := core.DefaultCatalog()
	q := Query{Category: "Hybrid", MinReturn: 7, Fund: "Adani Port", Amount: 1500, Years: 3}
	v, err := url.ParseQuery(q.Encode())
	require.NoError(t, err)
	assert.Equal(t, q, ParseQuery(v, c))
}

func TestBuild_DefaultPage(t *testing.T) {
	c := core.DefaultCatalog()
	v := Build(c, ParseQuery(url.Values{}, c))

	require.Len(t, v.Funds, 2)
	assert.Equal(t, "Hdfc", v.Funds[0].Name)
	assert.Equal(t, "Hal", v.Funds[1].Name)

	require.NotNil(t, v.Selected)
	assert.Equal(t, "Hdfc", v.Selected.Name)
	assert.Equal(t, "Projected Return after 1 years: ₹1125.00", v.ProjectedText)
	assert.Empty(t, v.ProjectionErr)

	require.NotNil(t, v.Performance)
	assert.Equal(t, "Hdfc Fund Performance", v.Performance.Title)
	require.Len(t, v.Performance.XTicks, 3)
	assert.Equal(t, "1-Year Return", v.Performance.XTicks[0].Label)
	assert.Equal(t, "5-Year Return", v.Performance.XTicks[2].Label)

	require.Len(t, v.Pie.Slices, 3)
	assert.Equal(t, "Equity", v.Pie.Slices[0].Label)
	assert.Equal(t, "50.0%", v.Pie.Slices[0].PercentLabel())
	assert.Equal(t, DistributionTitle, v.Pie.Title)
}

func TestBuild_SelectsRequestedFund(t *testing.T) {
	c := core.DefaultCatalog()
	v := Build(c, Query{Category: "Equity", MinReturn: 5, Fund: "Hal", Amount: 1000, Years: 5})
	require.NotNil(t, v.Selected)
	assert.Equal(t, "Hal", v.Selected.Name)
	assert.Equal(t, "Projected Return after 5 years: ₹1135.00", v.ProjectedText)
}

func TestBuild_FundOutsideFilterFallsBack(t *testing.T) {
	c := core.DefaultCatalog()
	v := Build(c, Query{Category: "Equity", MinReturn: 5, Fund: "Tata Elexi", Amount: 1000, Years: 1})
	require.NotNil(t, v.Selected)
	assert.Equal(t, "Hdfc", v.Selected.Name)
	assert.Equal(t, "Hdfc", v.Query.Fund)
}

func TestBuild_EmptyFilter(t *testing.T) {
	c := core.DefaultCatalog()
	v := Build(c, Query{Category: "Debt", MinReturn: 10, Amount: 1000, Years: 1})
	assert.False(t, v.HasFunds())
	assert.Nil(t, v.Selected)
	assert.Nil(t, v.Performance)
	assert.Empty(t, v.ProjectedText)
	assert.Contains(t, v.ProjectionErr, "No fund selected")
	assert.Len(t, v.Pie.Slices, 3, "distribution covers the whole catalog")
}

func TestBuild_UnknownCategory(t *testing.T) {
	c := core.DefaultCatalog()
	v := Build(c, Query{Category: "Gold", MinReturn: 0, Amount: 1000, Years: 1})
	assert.Empty(t, v.Funds)
}

func TestBuild_UnsupportedHorizon(t *testing.T) {
	c := core.DefaultCatalog()
	v := Build(c, Query{Category: "Equity", MinReturn: 5, Amount: 1000, Years: 2})
	assert.Empty(t, v.ProjectedText)
	assert.Equal(t, "Duration of 2 years is not supported. Choose 1, 3 or 5 years.", v.ProjectionErr)
}

func TestProjectionErrorText_Fallback(t *testing.T) {
	assert.Equal(t, "boom", ProjectionErrorText(errors.New("boom"), 1))
}

func TestParseCustomer(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c, err := ParseCustomer(url.Values{
		"name":           {" Asha "},
		"email":          {"asha@example.com"},
		"phone":          {"98200 00000"},
		"amount":         {"1500"},
		"preferred_fund": {"Hal"},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "Asha", c.Name)
	assert.Equal(t, 1500.0, c.Amount)
	assert.Equal(t, now, c.SubmittedAt)
	assert.True(t, c.Complete())

	empty, err := ParseCustomer(url.Values{}, now)
	require.NoError(t, err, "empty fields are allowed")
	assert.False(t, empty.Complete())
	assert.Equal(t, float64(core.MinInvestment), empty.Amount)

	_, err = ParseCustomer(url.Values{"amount": {"lots"}}, now)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestCustomerForm(t *testing.T) {
	f := NewCustomerForm(core.DefaultCatalog())
	assert.Equal(t, []string{"Hdfc", "Tata Elexi", "Adani Port", "Hal"}, f.FundNames)
	assert.Equal(t, "Hdfc", f.Input.PreferredFund)
	assert.False(t, f.Complete())
	assert.Equal(t, "Details for Asha have been submitted!", SubmittedBanner("Asha"))
}
