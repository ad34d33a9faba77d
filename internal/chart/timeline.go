package chart

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal/analysis"
)

const axisStep = 10.0

// Point is one reactor bubble. Y is positive for operating units and
// negative for decommissioned ones.
type Point struct {
	Entry reactor.Entry `json:"-"`
	X     time.Time     `json:"x"`
	Y     float64       `json:"y"`
	Size  float64       `json:"size"`
	Hover string        `json:"hover"`
}

// Series holds the bubbles of one country.
type Series struct {
	Country                  string  `json:"country"`
	Color                    Color   `json:"-"`
	Operating                []Point `json:"operating"`
	Decommissioned           []Point `json:"decommissioned"`
	ShowOperatingLegend      bool    `json:"show_operating_legend"`
	ShowDecommissionedLegend bool    `json:"show_decommissioned_legend"`
}

// Regression is the trend of age at decommissioning over shutdown date.
type Regression struct {
	From time.Time    `json:"from"`
	To   time.Time    `json:"to"`
	Y0   float64      `json:"y0"`
	Y1   float64      `json:"y1"`
	Fit  analysis.Fit `json:"fit"`
}

// AgeTrend is the change of the age at decommissioning in years per calendar
// year. The fit runs over day ordinals against negated ages.
func (r Regression) AgeTrend() float64 {
	return -r.Fit.Slope * 365.25
}

// Timeline is the layout of the commissioning/decommissioning bubble chart.
type Timeline struct {
	Window     reactor.YearWindow `json:"window"`
	Series     []Series           `json:"series"`
	Count      int                `json:"count"`
	XMin       time.Time          `json:"x_min"`
	XMax       time.Time          `json:"x_max"`
	YMin       float64            `json:"y_min"`
	YMax       float64            `json:"y_max"`
	Regression *Regression        `json:"regression,omitempty"`
}

// TimelineOptions configures NewTimeline.
type TimelineOptions struct {
	Window  reactor.YearWindow
	Palette *Palette

	SizeMode      analysis.SizeMode
	MinSize       float64
	MaxSize       float64
	RelativeScale float64

	// TightRange clamps the x axis to the window instead of padding it by a
	// year on each side.
	TightRange bool
}

// NewTimeline filters entries to the window and lays them out per country.
func NewTimeline(entries []reactor.Entry, opts TimelineOptions) (Timeline, error) {
	if err := opts.Window.Validate(); err != nil {
		return Timeline{}, err
	}

	var data []reactor.Entry
	for _, e := range reactor.Filter(entries, opts.Window) {
		if e.Metrics.OperationalAge != nil {
			data = append(data, e)
		}
	}

	tl := Timeline{Window: opts.Window, Count: len(data)}
	if opts.TightRange {
		tl.XMin, tl.XMax = opts.Window.From(), opts.Window.To()
	} else {
		padded := reactor.YearWindow{Start: opts.Window.Start - 1, End: opts.Window.End + 1}
		tl.XMin, tl.XMax = padded.From(), padded.To()
	}

	sizes := logSizes(data, opts)

	var operatingAges, closedAges, closedX, closedY []float64
	for _, country := range reactor.Countries(data) {
		s := Series{Country: country, Color: opts.Palette.Country(country)}
		for i, e := range data {
			if e.Reactor.Country != country {
				continue
			}
			age := *e.Metrics.OperationalAge
			switch e.Reactor.Status {
			case reactor.StatusOperating:
				s.Operating = append(s.Operating, Point{
					Entry: e, X: e.Reactor.CommercialOperation.Time, Y: age, Size: sizes[i],
					Hover: hoverText(e, "Commissioned", e.Reactor.CommercialOperation, "Current age", age),
				})
				operatingAges = append(operatingAges, age)
			case reactor.StatusDecommissioned:
				s.Decommissioned = append(s.Decommissioned, Point{
					Entry: e, X: e.Reactor.Shutdown.Time, Y: -age, Size: sizes[i],
					Hover: hoverText(e, "Decommissioned", e.Reactor.Shutdown, "Age at decommissioning", age),
				})
				closedAges = append(closedAges, age)
				closedX = append(closedX, float64(e.Reactor.Shutdown.Ordinal()))
				closedY = append(closedY, -age)
			}
		}
		if opts.SizeMode == analysis.SizeRelative {
			applyRelative(s.Operating, opts.RelativeScale)
			applyRelative(s.Decommissioned, opts.RelativeScale)
		}
		s.ShowOperatingLegend = len(s.Operating) > 0
		s.ShowDecommissionedLegend = len(s.Operating) == 0 && len(s.Decommissioned) > 0
		tl.Series = append(tl.Series, s)
	}

	tl.YMin = -analysis.CeilTo(analysis.MaxOr(closedAges, 0), axisStep)
	tl.YMax = analysis.CeilTo(analysis.MaxOr(operatingAges, 0), axisStep)

	if seg, fit, err := analysis.RegressionLine(closedX, closedY); err == nil {
		tl.Regression = &Regression{
			From: core.FromOrdinal(int(seg.X0)),
			To:   core.FromOrdinal(int(seg.X1)),
			Y0:   seg.Y0,
			Y1:   seg.Y1,
			Fit:  fit,
		}
	}
	return tl, nil
}

func logSizes(data []reactor.Entry, opts TimelineOptions) []float64 {
	caps := make([]float64, len(data))
	for i, e := range data {
		caps[i] = e.Reactor.NetCapacityMW
	}
	return analysis.BubbleSizes(caps, opts.MinSize, opts.MaxSize)
}

func applyRelative(points []Point, scale float64) {
	caps := make([]float64, len(points))
	for i, p := range points {
		caps[i] = p.Entry.Reactor.NetCapacityMW
	}
	for i, size := range analysis.RelativeSizes(caps, scale) {
		points[i].Size = size
	}
}

func hoverText(e reactor.Entry, event string, when core.Date, ageLabel string, age float64) string {
	r := e.Reactor
	lines := []string{
		r.Country,
		r.DisplayName(),
		fmt.Sprintf("%s: %s", event, when.Time.Format("January 2006")),
		fmt.Sprintf("%s: %.2f years", ageLabel, age),
	}
	if r.HasCapacity {
		lines = append(lines, "Net capacity: "+strconv.FormatFloat(r.NetCapacityMW, 'f', -1, 64)+" MW")
	}
	return strings.Join(lines, "<br>")
}

// Points flattens every bubble of the timeline.
func (t Timeline) Points() []Point {
	var out []Point
	for _, s := range t.Series {
		out = append(out, s.Operating...)
		out = append(out, s.Decommissioned...)
	}
	return out
}
