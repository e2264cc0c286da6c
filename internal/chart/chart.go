// Package chart computes SVG geometry for the dashboard charts.
//
// It only produces coordinates and path strings; markup lives in the
// templates so styling stays next to the rest of the page.
package chart

import (
	"math"
	"strconv"
)

// Palette used by the dashboard charts.
const (
	ColorPrimary   = "#FF5733"
	ColorSecondary = "#33FFBD"
	ColorTertiary  = "#4A90E2"
)

// PieColors are cycled across slices.
var PieColors = []string{ColorPrimary, ColorSecondary, ColorTertiary}

// Point is an SVG coordinate.
type Point struct {
	X float64
	Y float64
}

// SX and SY are the coordinates formatted for SVG attributes.
func (p Point) SX() string { return num(p.X) }
func (p Point) SY() string { return num(p.Y) }

func num(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
