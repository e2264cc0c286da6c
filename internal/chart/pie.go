package chart

import (
	"fmt"
	"math"
)

const (
	pieSize   = 320.0
	pieRadius = 120.0
	// StartAngle is where the first slice begins, in degrees counterclockwise
	// from three o'clock.
	StartAngle = 140.0
	labelRatio = 0.6
)

// Slice is one wedge of a pie chart.
type Slice struct {
	Label   string
	Count   int
	Percent float64
	Color   string
	// Path is empty when the slice covers the whole circle.
	Path string
	// Text is where the percentage label is drawn.
	Text Point
}

// PercentLabel renders the share with one decimal.
func (s Slice) PercentLabel() string {
	return fmt.Sprintf("%.1f%%", s.Percent)
}

// Full reports whether this slice is the whole pie.
func (s Slice) Full() bool {
	return s.Path == "" && s.Count > 0
}

// Pie is a pie chart drawn counterclockwise from StartAngle.
type Pie struct {
	Title  string
	Size   float64
	Center Point
	Radius float64
	Slices []Slice
}

// NewPie builds the wedges for counts. Zero counts produce no wedge.
func NewPie(title string, labels []string, counts []int) (Pie, error) {
	if len(labels) != len(counts) {
		return Pie{}, fmt.Errorf("pie chart: %d labels for %d counts", len(labels), len(counts))
	}
	total := 0
	for _, c := range counts {
		if c < 0 {
			return Pie{}, fmt.Errorf("pie chart: negative count %d", c)
		}
		total += c
	}

	p := Pie{
		Title:  title,
		Size:   pieSize,
		Center: Point{X: pieSize / 2, Y: pieSize / 2},
		Radius: pieRadius,
	}
	if total == 0 {
		return p, nil
	}

	angle := StartAngle
	for i, c := range counts {
		if c == 0 {
			continue
		}
		frac := float64(c) / float64(total)
		sweep := frac * 360
		s := Slice{
			Label:   labels[i],
			Count:   c,
			Percent: frac * 100,
			Color:   PieColors[len(p.Slices)%len(PieColors)],
		}
		mid := angle + sweep/2
		s.Text = p.at(mid, p.Radius*labelRatio)
		if c < total {
			s.Path = p.wedge(angle, angle+sweep)
		} else {
			s.Text = p.Center
		}
		p.Slices = append(p.Slices, s)
		angle += sweep
	}
	return p, nil
}

// at returns the point at deg degrees and distance r from the center.
// SVG y grows downward, so the sine is subtracted.
func (p Pie) at(deg, r float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: p.Center.X + r*math.Cos(rad),
		Y: p.Center.Y - r*math.Sin(rad),
	}
}

func (p Pie) wedge(from, to float64) string {
	start := p.at(from, p.Radius)
	end := p.at(to, p.Radius)
	large := 0
	if to-from > 180 {
		large = 1
	}
	// sweep-flag 0 draws counterclockwise on screen.
	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 0 %s %s Z",
		p.Center.SX(), p.Center.SY(),
		start.SX(), start.SY(),
		num(p.Radius), num(p.Radius), large,
		end.SX(), end.SY())
}
