package chart

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLine(t *testing.T) {
	l, err := NewLine("Hdfc Fund Performance", "Duration", "Return (%)",
		[]string{"1-Year Return", "3-Year Return", "5-Year Return"}, []float64{12.5, 10.2, 11.1})
	require.NoError(t, err)

	assert.Equal(t, "Hdfc Fund Performance", l.Title)
	assert.Equal(t, ColorPrimary, l.LineColor)
	assert.Equal(t, ColorSecondary, l.MarkerColor)
	require.Len(t, l.Points, 3)
	require.Len(t, l.XTicks, 3)
	assert.Equal(t, "3-Year Return", l.XTicks[1].Label)

	// x increases left to right, higher returns sit higher on screen
	assert.Less(t, l.Points[0].X, l.Points[1].X)
	assert.Less(t, l.Points[1].X, l.Points[2].X)
	assert.Less(t, l.Points[0].Y, l.Points[2].Y)
	assert.Less(t, l.Points[2].Y, l.Points[1].Y)

	for _, p := range l.Points {
		assert.GreaterOrEqual(t, p.X, l.Plot.Left)
		assert.LessOrEqual(t, p.X, l.Plot.Right)
		assert.GreaterOrEqual(t, p.Y, l.Plot.Top)
		assert.LessOrEqual(t, p.Y, l.Plot.Bottom)
	}

	require.Len(t, l.YTicks, yTickCount)
	assert.Equal(t, "9.0", l.YTicks[0].Label)
	assert.Equal(t, "14.0", l.YTicks[len(l.YTicks)-1].Label)
	assert.Equal(t, 3, len(strings.Fields(l.Polyline())))
}

func TestNewLine_FlatSeries(t *testing.T) {
	l, err := NewLine("t", "x", "y", []string{"a", "b"}, []float64{5, 5})
	require.NoError(t, err)
	assert.Equal(t, l.Points[0].Y, l.Points[1].Y)
	assert.False(t, math.IsNaN(l.Points[0].Y))
}

func TestNewLine_Errors(t *testing.T) {
	_, err := NewLine("t", "x", "y", []string{"a"}, []float64{1, 2})
	assert.Error(t, err)
	_, err = NewLine("t", "x", "y", nil, nil)
	assert.Error(t, err)
}

func TestNewPie(t *testing.T) {
	p, err := NewPie("Distribution of Fund Categories",
		[]string{"Equity", "Debt", "Hybrid"}, []int{2, 1, 1})
	require.NoError(t, err)
	require.Len(t, p.Slices, 3)

	assert.InDelta(t, 50.0, p.Slices[0].Percent, 1e-9)
	assert.Equal(t, "50.0%", p.Slices[0].PercentLabel())
	assert.Equal(t, "25.0%", p.Slices[1].PercentLabel())

	assert.Equal(t, ColorPrimary, p.Slices[0].Color)
	assert.Equal(t, ColorSecondary, p.Slices[1].Color)
	assert.Equal(t, ColorTertiary, p.Slices[2].Color)

	// first wedge starts at 140 degrees
	start := p.at(StartAngle, p.Radius)
	assert.True(t, strings.HasPrefix(p.Slices[0].Path,
		"M 160 160 L "+start.SX()+" "+start.SY()+" "))
	for _, s := range p.Slices {
		assert.False(t, s.Full())
		assert.Contains(t, s.Path, " 0 0 ", "half-pie or smaller uses the small arc")
	}
}

func TestNewPie_ColorsCycle(t *testing.T) {
	p, err := NewPie("t", []string{"a", "b", "c", "d"}, []int{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, ColorPrimary, p.Slices[3].Color)
}

func TestNewPie_SingleCategory(t *testing.T) {
	p, err := NewPie("t", []string{"Equity"}, []int{3})
	require.NoError(t, err)
	require.Len(t, p.Slices, 1)
	assert.True(t, p.Slices[0].Full())
	assert.Equal(t, "100.0%", p.Slices[0].PercentLabel())
	assert.Equal(t, p.Center, p.Slices[0].Text)
}

func TestNewPie_LargeArc(t *testing.T) {
	p, err := NewPie("t", []string{"a", "b"}, []int{3, 1})
	require.NoError(t, err)
	assert.Contains(t, p.Slices[0].Path, " 0 1 0 ")
}

func TestNewPie_Empty(t *testing.T) {
	p, err := NewPie("t", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Slices)

	_, err = NewPie("t", []string{"a"}, []int{-1})
	assert.Error(t, err)
}
