package plotly

import (
	"strconv"
	"time"

	"reactorviz/domain/core"
	"reactorviz/internal/chart"
)

const (
	timelineWidth  = 997
	timelineHeight = 580
	gridColor      = "rgba(128, 128, 128, 0.1)"
	hoverTemplate  = "%{text}<extra></extra>"
)

// TimelineLabels carries the text of a timeline figure.
type TimelineLabels struct {
	Title  string
	XTitle string
	YTitle string
}

// DefaultTimelineLabels are the English captions of the bubble timeline.
func DefaultTimelineLabels(startYear int) TimelineLabels {
	return TimelineLabels{
		Title: "Evolution of Nuclear Power Plants in Europe since " + strconv.Itoa(startYear) +
			":<br>Commissioning and Decommissioning of Reactors",
		XTitle: "Year of Commissioning or Decommissioning",
		YTitle: "Current Operational Age or Age at Decommissioning",
	}
}

func date(t time.Time) string {
	return t.Format(core.DateLayout)
}

// Timeline renders the bubble timeline: a baseline, two traces per country
// sharing a legend group, and the decommissioning trend line.
func Timeline(tl chart.Timeline, labels TimelineLabels) Figure {
	fig := Figure{Layout: timelineLayout(tl, labels)}

	for _, s := range tl.Series {
		if len(s.Operating) > 0 {
			fig.Data = append(fig.Data, scatter(s, s.Operating, s.ShowOperatingLegend))
		}
		if len(s.Decommissioned) > 0 {
			fig.Data = append(fig.Data, scatter(s, s.Decommissioned, s.ShowDecommissionedLegend))
		}
	}

	if r := tl.Regression; r != nil {
		fig.Data = append(fig.Data, Trace{
			Type: "scatter",
			Name: "Regression line",
			Mode: "lines",
			X:    []any{date(r.From), date(r.To)},
			Y:    []float64{r.Y0, r.Y1},
			Line: &Line{Color: "black", Dash: "dash", Width: 2},
		})
	}
	return fig
}

func scatter(s chart.Series, points []chart.Point, showLegend bool) Trace {
	t := Trace{
		Type:          "scatter",
		Name:          s.Country,
		Mode:          "markers",
		HoverTemplate: hoverTemplate,
		LegendGroup:   s.Country,
		ShowLegend:    showLegend,
		Marker:        &Marker{Color: s.Color.CSS()},
	}
	for _, p := range points {
		t.X = append(t.X, date(p.X))
		t.Y = append(t.Y, p.Y)
		t.Text = append(t.Text, p.Hover)
		t.Marker.Size = append(t.Marker.Size, p.Size)
	}
	return t
}

func timelineLayout(tl chart.Timeline, labels TimelineLabels) Layout {
	return Layout{
		Title:      &Title{Text: labels.Title},
		Width:      timelineWidth,
		Height:     timelineHeight,
		PlotBG:     transparent,
		PaperBG:    transparent,
		Font:       &Font{Family: "Roboto", Color: "black", Size: 12},
		HoverLabel: &HoverLabel{Font: Font{Size: 16}},
		XAxis: &Axis{
			Title:     &Title{Text: labels.XTitle},
			Range:     []any{date(tl.XMin), date(tl.XMax)},
			ShowGrid:  boolPtr(true),
			GridWidth: 1,
			GridColor: gridColor,
		},
		YAxis: &Axis{
			Title:     &Title{Text: labels.YTitle},
			Range:     []any{tl.YMin, tl.YMax},
			ShowGrid:  boolPtr(true),
			GridWidth: 1,
			GridColor: gridColor,
		},
		Legend: &Legend{TraceGroupGap: 4},
		Shapes: []Shape{{
			Type: "line",
			X0:   date(tl.Window.From()),
			X1:   date(tl.Window.To()),
			Y0:   0,
			Y1:   0,
			XRef: "x",
			YRef: "y",
			Line: &Line{Color: "black", Width: 1},
		}},
		Annotations: []Annotation{{
			Text:    "Commissioning<br>Decommissioning",
			X:       date(tl.Window.From()),
			Y:       0,
			XRef:    "x",
			YRef:    "y",
			XAnchor: "left",
			YAnchor: "middle",
			Align:   "left",
		}},
	}
}
