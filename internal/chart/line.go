package chart

import (
	"fmt"
	"math"
	"strings"
)

const (
	lineWidth   = 480.0
	lineHeight  = 300.0
	marginLeft  = 56.0
	marginRight = 20.0
	marginTop   = 36.0
	marginBot   = 48.0
	yTickCount  = 5
)

// Tick is an axis tick with its label.
type Tick struct {
	Pos   float64
	Label string
}

// P is the tick position formatted for SVG attributes.
func (t Tick) P() string { return num(t.Pos) }

// Line is a single-series line chart over categorical x values.
type Line struct {
	Title       string
	XLabel      string
	YLabel      string
	Width       float64
	Height      float64
	LineColor   string
	MarkerColor string

	Plot   Rect
	Points []Point
	Values []float64
	XTicks []Tick
	YTicks []Tick
}

// Rect is the plotting area.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Polyline returns the points attribute for an SVG polyline.
func (l Line) Polyline() string {
	parts := make([]string, len(l.Points))
	for i, p := range l.Points {
		parts[i] = p.SX() + "," + p.SY()
	}
	return strings.Join(parts, " ")
}

// NewLine lays out values against the given category labels. labels and
// values must have the same length.
func NewLine(title, xLabel, yLabel string, labels []string, values []float64) (Line, error) {
	if len(labels) != len(values) {
		return Line{}, fmt.Errorf("line chart: %d labels for %d values", len(labels), len(values))
	}
	if len(values) == 0 {
		return Line{}, fmt.Errorf("line chart: no values")
	}

	l := Line{
		Title:       title,
		XLabel:      xLabel,
		YLabel:      yLabel,
		Width:       lineWidth,
		Height:      lineHeight,
		LineColor:   ColorPrimary,
		MarkerColor: ColorSecondary,
		Plot: Rect{
			Left:   marginLeft,
			Top:    marginTop,
			Right:  lineWidth - marginRight,
			Bottom: lineHeight - marginBot,
		},
		Values: append([]float64(nil), values...),
	}

	lo, hi := yRange(values)
	plotW := l.Plot.Right - l.Plot.Left
	plotH := l.Plot.Bottom - l.Plot.Top

	// Categories sit in the middle of equal-width bands.
	band := plotW / float64(len(values))
	for i, v := range values {
		x := l.Plot.Left + band*(float64(i)+0.5)
		y := l.Plot.Bottom - (v-lo)/(hi-lo)*plotH
		l.Points = append(l.Points, Point{X: x, Y: y})
		l.XTicks = append(l.XTicks, Tick{Pos: x, Label: labels[i]})
	}

	step := (hi - lo) / float64(yTickCount-1)
	for i := 0; i < yTickCount; i++ {
		v := lo + step*float64(i)
		y := l.Plot.Bottom - (v-lo)/(hi-lo)*plotH
		l.YTicks = append(l.YTicks, Tick{Pos: y, Label: fmt.Sprintf("%.1f", v)})
	}
	return l, nil
}

// yRange pads the data range by one unit on each side and keeps it non-empty.
func yRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	lo = math.Floor(lo) - 1
	hi = math.Ceil(hi) + 1
	if lo < 0 && lo > -1 {
		lo = 0
	}
	return lo, hi
}
