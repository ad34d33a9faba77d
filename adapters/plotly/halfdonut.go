package plotly

import (
	"fmt"
	"strings"

	"reactorviz/internal/chart"
)

const (
	donutWidth  = 997
	donutHeight = 580
)

// HalfDonut renders a bucket layout as one barpolar trace per bucket.
func HalfDonut(d chart.Donut, heading string) Figure {
	fig := Figure{Layout: donutLayout(d, heading)}

	for _, s := range d.Slices {
		fig.Data = append(fig.Data, Trace{
			Type:       "barpolar",
			Name:       s.Label,
			R:          []float64{1},
			Theta:      []float64{s.Theta},
			Width:      []float64{s.Width},
			ShowLegend: true,
			Marker: &Marker{
				Color: s.Color.CSS(),
				Line:  &Line{Width: 0},
			},
		})
		fig.Layout.Annotations = append(fig.Layout.Annotations, Annotation{
			Text:      fmt.Sprintf("%d", s.Count),
			X:         s.LabelX,
			Y:         s.LabelY,
			XRef:      "paper",
			YRef:      "paper",
			Font:      &Font{Size: 14, Color: "black"},
			TextAngle: 0,
		})
	}

	lines := d.CenterLines()
	fig.Layout.Annotations = append(fig.Layout.Annotations, Annotation{
		Text:    fmt.Sprintf("<b>%s</b><br>%s<br><b>%s</b>", lines[0], lines[1], lines[2]),
		X:       0.5,
		Y:       0,
		XRef:    "paper",
		YRef:    "paper",
		XAnchor: "center",
		YAnchor: "bottom",
		Align:   "center",
		Font:    &Font{Size: 16},
	})
	return fig
}

func donutLayout(d chart.Donut, heading string) Layout {
	title := heading
	if d.Title != "" {
		title = strings.Join([]string{heading, d.Title}, "<br>")
	}
	return Layout{
		Title:      &Title{Text: title},
		Width:      donutWidth,
		Height:     donutHeight,
		PlotBG:     transparent,
		PaperBG:    transparent,
		Font:       &Font{Family: "sans-serif", Color: "black", Size: 12},
		HoverLabel: &HoverLabel{Font: Font{Size: 12}},
		ShowLegend: boolPtr(true),
		Polar: &Polar{
			Hole:   d.Hole,
			Sector: []float64{0, d.Sector},
			BarGap: 0,
			RadialAxis: &Axis{
				Visible:        boolPtr(false),
				Range:          []any{0, 1},
				ShowTickLabels: boolPtr(false),
			},
			AngularAxis: &Axis{
				ShowGrid:       boolPtr(false),
				Direction:      "clockwise",
				Rotation:       180,
				ShowTickLabels: boolPtr(false),
			},
		},
		Legend: &Legend{
			Orientation:   "h",
			YAnchor:       "top",
			Y:             -0.1,
			XAnchor:       "center",
			X:             0.5,
			TraceOrder:    "normal",
			TraceGroupGap: 20,
			ItemWidth:     60,
		},
	}
}
