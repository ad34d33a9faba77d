package static

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"reactorviz/internal/chart"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// degrees of arc per polygon segment
const arcStep = 2.0

// wedges draws the donut slices in data coordinates, outer radius 1.
type wedges struct {
	donut chart.Donut
}

func (w wedges) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	at := func(theta, radius float64) vg.Point {
		a := chart.Angle(theta)
		return vg.Point{X: trX(radius * math.Cos(a)), Y: trY(radius * math.Sin(a))}
	}

	for _, s := range w.donut.Slices {
		if s.Width <= 0 {
			continue
		}
		steps := int(math.Max(2, math.Ceil(s.Width/arcStep)))

		var path vg.Path
		for i := 0; i <= steps; i++ {
			theta := s.Start + s.Width*float64(i)/float64(steps)
			if i == 0 {
				path.Move(at(theta, 1))
			} else {
				path.Line(at(theta, 1))
			}
		}
		for i := steps; i >= 0; i-- {
			path.Line(at(s.Start+s.Width*float64(i)/float64(steps), w.donut.Hole))
		}
		path.Close()

		c.SetColor(s.Color.NRGBA())
		c.Fill(path)
	}
}

func (w wedges) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1.05, 1.05, -0.3, 1.05
}

// swatch is a filled legend thumbnail.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

// HalfDonut draws a bucket layout as a half ring with count labels.
func (r *Renderer) HalfDonut(d chart.Donut, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = plain(title)
	if d.Title != "" {
		p.Title.Text += "\n" + d.Title
	}
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.HideAxes()

	p.Add(wedges{donut: d})

	var xys plotter.XYs
	var labels []string
	mid := (1 + d.Hole) / 2
	for _, s := range d.Slices {
		p.Legend.Add(s.Label, swatch{color: s.Color.NRGBA()})
		if s.Count == 0 {
			continue
		}
		a := chart.Angle(s.Theta)
		xys = append(xys, plotter.XY{X: mid * math.Cos(a), Y: mid * math.Sin(a)})
		labels = append(labels, strconv.Itoa(s.Count))
	}
	xys = append(xys, plotter.XY{X: 0, Y: -0.2})
	labels = append(labels, strings.Join(d.CenterLines(), "\n"))

	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(l)

	p.Legend.Top = true
	return p, nil
}
