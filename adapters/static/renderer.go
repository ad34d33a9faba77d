package static

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Captions are the texts of a rendered chart. Plotly line breaks ("<br>")
// are accepted and converted.
type Captions struct {
	Title  string
	XTitle string
	YTitle string
}

// Renderer draws chart layouts to raster and vector images.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer sized like the interactive figures.
func NewRenderer() *Renderer {
	return &Renderer{
		Width:  10.4 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Save writes p to path; the extension selects the format (png, svg, pdf, ...).
func (r *Renderer) Save(p *plot.Plot, path string) error {
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Write encodes p in the given format to w.
func (r *Renderer) Write(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(r.Width, r.Height, format)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func plain(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<b>", "")
	return strings.ReplaceAll(s, "</b>", "")
}
