package chart

import (
	"fmt"
	"math"

	"reactorviz/domain/bucket"
)

const (
	donutSector = 180.0
	donutHole   = 0.3
	sliceAlpha  = 0.6
)

// Slice is one bucket of a half donut. Angles are in degrees measured
// clockwise from the left end of the arc.
type Slice struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Start  float64 `json:"start"`
	Width  float64 `json:"width"`
	Theta  float64 `json:"theta"`
	Color  Color   `json:"-"`
	LabelX float64 `json:"label_x"`
	LabelY float64 `json:"label_y"`
}

// Donut is the layout of a half-donut bucket chart.
type Donut struct {
	Title  string  `json:"title"`
	Slices []Slice `json:"slices"`
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	Sector float64 `json:"sector"`
	Hole   float64 `json:"hole"`
}

// NewDonut lays the histogram out over a 180 degree arc, each bucket taking
// a share proportional to its count. Empty buckets keep a zero-width slice
// so the legend still lists them.
func NewDonut(h bucket.Histogram, p *Palette) Donut {
	d := Donut{
		Title:  h.Scheme.Title,
		Total:  h.Total,
		Mean:   h.Mean,
		Sector: donutSector,
		Hole:   donutHole,
	}

	start := 0.0
	for i, label := range h.Scheme.Labels {
		width := h.Proportion(i) * donutSector
		theta := start + width/2
		rad := theta * math.Pi / 180
		d.Slices = append(d.Slices, Slice{
			Label:  label,
			Count:  h.Counts[i],
			Start:  start,
			Width:  width,
			Theta:  theta,
			Color:  p.Series(i).WithAlpha(sliceAlpha),
			LabelX: -0.35*math.Cos(rad) + 0.5,
			LabelY: 0.7 * math.Sin(rad),
		})
		start += width
	}
	return d
}

// CenterLines is the caption shown inside the arc.
func (d Donut) CenterLines() []string {
	return []string{
		fmt.Sprintf("%d Reactor Units", d.Total),
		"Mean Age",
		fmt.Sprintf("%.1f Years", d.Mean),
	}
}

// Angle converts a clockwise chart angle into a counter-clockwise math
// angle in radians, with 0 degrees at the left end of the arc.
func Angle(theta float64) float64 {
	return math.Pi - theta*math.Pi/180
}
