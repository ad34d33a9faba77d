package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reactorviz/domain/reactor"
	"reactorviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATA_FILE", "YEAR_START", "YEAR_END", "NOW", "IMAGE_FORMAT", "PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data/nuclear_power_plants.xlsx", cfg.Data.File)
	assert.Equal(t, "8050", cfg.Server.Port)
	assert.Equal(t, "png", cfg.Output.ImageFormat)
	assert.Equal(t, 5*time.Minute, cfg.Data.CacheTTL)
	assert.Nil(t, cfg.Window)
	assert.True(t, cfg.Now.IsZero())
}

func TestLoad_WindowAndNow(t *testing.T) {
	t.Setenv("YEAR_START", "1980")
	t.Setenv("YEAR_END", "2023")
	t.Setenv("NOW", "2023-04-21")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Window)
	assert.Equal(t, reactor.YearWindow{Start: 1980, End: 2023}, *cfg.Window)
	assert.Equal(t, 2023, cfg.Now.Year())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"half window", map[string]string{"YEAR_START": "1990", "YEAR_END": ""}},
		{"inverted window", map[string]string{"YEAR_START": "2020", "YEAR_END": "1990"}},
		{"bad now", map[string]string{"NOW": "April 2023"}},
		{"bad format", map[string]string{"IMAGE_FORMAT": "gif"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"YEAR_START", "YEAR_END", "NOW", "IMAGE_FORMAT"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestDefaultPresets(t *testing.T) {
	p, err := DefaultPresets()
	require.NoError(t, err)

	s, err := p.Scheme(reactor.MetricClosingAge)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 11, 21, 31, 41, math.Inf(1)}, s.Bins)
	assert.Equal(t, "41 Years and Over", s.Labels[4])
	assert.Equal(t, reactor.MetricClosingAge, s.Metric)

	assert.Equal(t, reactor.YearWindow{Start: 1990, End: 2023}, p.Timeline.Window)
	assert.Equal(t, reactor.YearWindow{Start: 1980, End: 2023}, p.Dashboard.Window)
	assert.Len(t, p.Metrics(), 4)
	assert.Contains(t, p.Columns["commercial_operation"], "Kommerzieller Betrieb (geplant)")
	assert.Contains(t, p.Columns["grid_sync"], "Grid Sync")

	palette, err := p.Palette()
	require.NoError(t, err)
	assert.Equal(t, palette.Country("Germany"), palette.Country("Deutschland"))
}

func TestLoadPresets_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timeline:
  window: {start: 2000, end: 2010}
buckets:
  construction_aborted_time:
    bins: [0, 5, .inf]
    labels: ["short", "long"]
`), 0o644))

	p, err := LoadPresets(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, p.Timeline.Window.Start)
	assert.Equal(t, 5.0, p.Timeline.Bubble.MinSize)

	s, err := p.Scheme(reactor.MetricConstructionAbortedTime)
	require.NoError(t, err)
	assert.Equal(t, []string{"short", "long"}, s.Labels)
	assert.Equal(t, reactor.MetricConstructionAbortedTime.Title(), s.Title)

	_, err = p.Scheme(reactor.MetricClosingAge)
	assert.NoError(t, err)
}

func TestLoadPresets_InvalidScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
buckets:
  closing_age:
    bins: [0, 10]
    labels: ["a", "b"]
`), 0o644))

	_, err := LoadPresets(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
