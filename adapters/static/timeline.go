package static

import (
	"image/color"

	"reactorviz/internal/chart"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var black = color.NRGBA{A: 255}

func unix(p chart.Point) float64 {
	return float64(p.X.Unix())
}

func bubbles(points []chart.Point, c chart.Color) (*plotter.Scatter, error) {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: unix(p), Y: p.Y}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	fill := c.WithAlpha(0.8).NRGBA()
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  fill,
			Radius: vg.Points(points[i].Size / 2),
			Shape:  draw.CircleGlyph{},
		}
	}
	return sc, nil
}

// Timeline draws the commissioning/decommissioning bubble chart.
func (r *Renderer) Timeline(tl chart.Timeline, captions Captions) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = plain(captions.Title)
	p.X.Label.Text = captions.XTitle
	p.Y.Label.Text = captions.YTitle
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Add(plotter.NewGrid())

	baseline, err := plotter.NewLine(plotter.XYs{
		{X: float64(tl.Window.From().Unix()), Y: 0},
		{X: float64(tl.Window.To().Unix()), Y: 0},
	})
	if err != nil {
		return nil, err
	}
	baseline.Color = black
	baseline.Width = vg.Points(1)
	p.Add(baseline)

	for _, s := range tl.Series {
		for _, group := range []struct {
			points []chart.Point
			legend bool
		}{
			{s.Operating, s.ShowOperatingLegend},
			{s.Decommissioned, s.ShowDecommissionedLegend},
		} {
			if len(group.points) == 0 {
				continue
			}
			sc, err := bubbles(group.points, s.Color)
			if err != nil {
				return nil, err
			}
			p.Add(sc)
			if group.legend {
				p.Legend.Add(s.Country, swatch{color: s.Color.NRGBA()})
			}
		}
	}

	if reg := tl.Regression; reg != nil {
		line, err := plotter.NewLine(plotter.XYs{
			{X: float64(reg.From.Unix()), Y: reg.Y0},
			{X: float64(reg.To.Unix()), Y: reg.Y1},
		})
		if err != nil {
			return nil, err
		}
		line.Color = black
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(line)
	}

	p.X.Min, p.X.Max = float64(tl.XMin.Unix()), float64(tl.XMax.Unix())
	p.Y.Min, p.Y.Max = tl.YMin, tl.YMax
	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}
