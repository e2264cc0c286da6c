package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hdfc(t *testing.T) *FundRecord {
	t.Helper()
	f, err := DefaultCatalog().Lookup("Hdfc")
	require.NoError(t, err)
	return &f
}

func TestProject_OneYearHdfc(t *testing.T) {
	got, err := Project(ProjectionRequest{Fund: hdfc(t), Principal: 1000, HorizonYears: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1125.0, got, 1e-9)
}

func TestProject_SelectsRateByHorizon(t *testing.T) {
	fund := hdfc(t)
	cases := []struct {
		years int
		want  float64
	}{
		{1, 1000 * (1 + 12.5/100)},
		{3, 1000 * (1 + 10.2/100)},
		{5, 1000 * (1 + 11.1/100)},
	}
	for _, tc := range cases {
		got, err := Project(ProjectionRequest{Fund: fund, Principal: 1000, HorizonYears: tc.years})
		require.NoError(t, err, "years=%d", tc.years)
		assert.InDelta(t, tc.want, got, 1e-9, "years=%d", tc.years)
	}
}

func TestProject_IsNotCompounded(t *testing.T) {
	got, err := Project(ProjectionRequest{Fund: hdfc(t), Principal: 1000, HorizonYears: 5})
	require.NoError(t, err)
	assert.InDelta(t, 1111.0, got, 1e-9)
}

func TestProject_UnsupportedHorizon(t *testing.T) {
	for _, years := range []int{0, 2, 4, 10, -1} {
		_, err := Project(ProjectionRequest{Fund: hdfc(t), Principal: 1000, HorizonYears: years})
		assert.ErrorIs(t, err, ErrUnsupportedHorizon, "years=%d", years)
	}
}

func TestProject_ZeroPrincipal(t *testing.T) {
	got, err := Project(ProjectionRequest{Fund: hdfc(t), Principal: 0, HorizonYears: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestProject_Errors(t *testing.T) {
	_, err := Project(ProjectionRequest{Principal: 1000, HorizonYears: 1})
	assert.ErrorIs(t, err, ErrNoFundSelected)

	_, err = Project(ProjectionRequest{Fund: hdfc(t), Principal: -1, HorizonYears: 1})
	assert.ErrorIs(t, err, ErrInvalidPrincipal)
}

func TestProject_NonFinitePrincipal(t *testing.T) {
	for _, p := range []float64{math.Inf(1), math.NaN(), math.MaxFloat64} {
		_, err := Project(ProjectionRequest{Fund: hdfc(t), Principal: p, HorizonYears: 1})
		assert.ErrorIs(t, err, ErrInvalidPrincipal, "principal=%v", p)
	}
}

func TestProject_TieRoundsToEven(t *testing.T) {
	got, err := Project(ProjectionRequest{Fund: hdfc(t), Principal: 1001, HorizonYears: 1})
	require.NoError(t, err)
	assert.Equal(t, "₹1126.12", FormatRupees(got))
}

func TestProject_FormulaHoldsAcrossCatalog(t *testing.T) {
	for _, f := range DefaultFunds() {
		f := f
		for _, p := range []float64{1, 1000, 1500, 123456.78} {
			got, err := Project(ProjectionRequest{Fund: &f, Principal: p, HorizonYears: 1})
			require.NoError(t, err)
			assert.InDelta(t, p*(1+f.Return1Y/100), got, 1e-9)
		}
	}
}

func TestIsSupportedHorizon(t *testing.T) {
	assert.True(t, IsSupportedHorizon(1))
	assert.True(t, IsSupportedHorizon(3))
	assert.True(t, IsSupportedHorizon(5))
	assert.False(t, IsSupportedHorizon(2))
}
