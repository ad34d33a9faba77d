package chart

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"strconv"
	"strings"
)

// Color is an sRGB color with straight (non-premultiplied) alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// ParseHex reads "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
}

// WithAlpha returns c with opacity a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// CSS renders the color for plotly and HTML.
func (c Color) CSS() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, c.A)
}

// NRGBA converts to an image/color value for raster output.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(c.A*255 + 0.5)}
}

// Palette assigns colors to countries and to bucket series.
type Palette struct {
	countries map[string]Color
	series    []Color
}

// NewPalette parses hex colors keyed by country name plus an ordered series
// palette used for buckets and for countries without an assigned color.
func NewPalette(countries map[string]string, series []string) (*Palette, error) {
	p := &Palette{countries: make(map[string]Color, len(countries))}
	for name, hex := range countries {
		c, err := ParseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("country %s: %w", name, err)
		}
		p.countries[name] = c
	}
	for _, hex := range series {
		c, err := ParseHex(hex)
		if err != nil {
			return nil, err
		}
		p.series = append(p.series, c)
	}
	if len(p.series) == 0 {
		return nil, fmt.Errorf("palette needs at least one series color")
	}
	return p, nil
}

// Country returns the configured color, or a stable series color chosen by
// hashing the name.
func (p *Palette) Country(name string) Color {
	if c, ok := p.countries[name]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return p.series[int(h.Sum32()%uint32(len(p.series)))]
}

// Series returns the i-th series color, cycling.
func (p *Palette) Series(i int) Color {
	return p.series[i%len(p.series)]
}
