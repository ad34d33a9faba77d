package config

import (
	_ "embed"
	"fmt"
	"os"

	"reactorviz/domain/bucket"
	"reactorviz/domain/reactor"
	"reactorviz/internal/analysis"
	"reactorviz/internal/chart"
	"reactorviz/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

// Presets collect the chart settings the original scripts hard-coded:
// bucket boundaries, palettes, year windows and column names.
type Presets struct {
	Heading       string                   `yaml:"heading"`
	Timeline      TimelinePreset           `yaml:"timeline"`
	Dashboard     DashboardPreset          `yaml:"dashboard"`
	Buckets       map[string]bucket.Scheme `yaml:"buckets"`
	SeriesColors  []string                 `yaml:"series_colors"`
	CountryColors map[string]string        `yaml:"country_colors"`
	Columns       map[string][]string      `yaml:"columns"`
}

type BubblePreset struct {
	Mode          analysis.SizeMode `yaml:"mode"`
	MinSize       float64           `yaml:"min_size"`
	MaxSize       float64           `yaml:"max_size"`
	RelativeScale float64           `yaml:"relative_scale"`
}

type TimelinePreset struct {
	Window reactor.YearWindow `yaml:"window"`
	Bubble BubblePreset       `yaml:"bubble"`
}

type DashboardPreset struct {
	Window   reactor.YearWindow `yaml:"window"`
	MarkStep int                `yaml:"mark_step"`
}

// DefaultPresets returns the embedded presets.
func DefaultPresets() (*Presets, error) {
	p := &Presets{}
	if err := yaml.Unmarshal(defaultPresets, p); err != nil {
		return nil, errors.Wrap(err, "failed to parse embedded presets")
	}
	return p, p.Validate()
}

// LoadPresets reads the embedded presets and, when path is set, decodes the
// file at path over them. Keys absent from the file keep their defaults.
func LoadPresets(path string) (*Presets, error) {
	p, err := DefaultPresets()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read presets file %s", path)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse presets file %s", path))
	}
	return p, p.Validate()
}

// Validate checks every scheme and window.
func (p *Presets) Validate() error {
	for name, s := range p.Buckets {
		m, err := reactor.ParseMetric(name)
		if err != nil {
			return errors.WithCode(errors.CodeConfigInvalid, err)
		}
		s.Metric = m
		if err := s.Validate(); err != nil {
			return errors.WithCode(errors.CodeConfigInvalid, err)
		}
	}
	if err := p.Timeline.Window.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := p.Dashboard.Window.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	switch p.Timeline.Bubble.Mode {
	case analysis.SizeLog, analysis.SizeRelative:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown bubble mode %q", p.Timeline.Bubble.Mode))
	}
	if len(p.SeriesColors) == 0 {
		return errors.ConfigInvalid("series_colors must not be empty")
	}
	return nil
}

// Scheme returns the bucket scheme configured for m.
func (p *Presets) Scheme(m reactor.Metric) (bucket.Scheme, error) {
	s, ok := p.Buckets[string(m)]
	if !ok {
		return bucket.Scheme{}, errors.NotFound(fmt.Sprintf("bucket scheme %s", m))
	}
	s.Metric = m
	if s.Title == "" {
		s.Title = m.Title()
	}
	return s, nil
}

// Metrics lists the metrics that have a bucket scheme, in display order.
func (p *Presets) Metrics() []reactor.Metric {
	var out []reactor.Metric
	for _, m := range reactor.AllMetrics {
		if _, ok := p.Buckets[string(m)]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Palette builds the chart palette.
func (p *Presets) Palette() (*chart.Palette, error) {
	palette, err := chart.NewPalette(p.CountryColors, p.SeriesColors)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return palette, nil
}

// TimelineOptions turns the timeline preset into layout options.
func (p *Presets) TimelineOptions(palette *chart.Palette, window reactor.YearWindow) chart.TimelineOptions {
	b := p.Timeline.Bubble
	return chart.TimelineOptions{
		Window:        window,
		Palette:       palette,
		SizeMode:      b.Mode,
		MinSize:       b.MinSize,
		MaxSize:       b.MaxSize,
		RelativeScale: b.RelativeScale,
	}
}
