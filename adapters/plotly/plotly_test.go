package plotly

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"reactorviz/domain/bucket"
	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal/chart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func palette(t *testing.T) *chart.Palette {
	t.Helper()
	p, err := chart.NewPalette(map[string]string{"Sweden": "#2ca02c"}, []string{"#1f77b4", "#ff7f0e"})
	require.NoError(t, err)
	return p
}

func TestHalfDonut(t *testing.T) {
	h, err := bucket.Count(bucket.Scheme{
		Title:  "Construction Time",
		Bins:   []float64{0, 6, math.Inf(1)},
		Labels: []string{"0 – 5 Years", "6 Years and Over"},
	}, []float64{3, 8, 9})
	require.NoError(t, err)

	fig := HalfDonut(chart.NewDonut(h, palette(t)), "Evolution of Nuclear Power Plants in Europe")
	require.Len(t, fig.Data, 2)
	assert.Equal(t, "barpolar", fig.Data[0].Type)
	assert.InDelta(t, 60.0, fig.Data[0].Width[0], 1e-9)
	assert.Equal(t, "rgba(31, 119, 180, 0.6)", fig.Data[0].Marker.Color)

	// one count label per bucket plus the centre caption
	require.Len(t, fig.Layout.Annotations, 3)
	assert.Equal(t, "1", fig.Layout.Annotations[0].Text)
	assert.Contains(t, fig.Layout.Annotations[2].Text, "<b>3 Reactor Units</b>")
	assert.Equal(t, []float64{0, 180}, fig.Layout.Polar.Sector)
	assert.Contains(t, fig.Layout.Title.Text, "<br>Construction Time")
}

func TestTimeline(t *testing.T) {
	now := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := reactor.DeriveAll([]reactor.Reactor{
		{Country: "Sweden", Name: "Barsebäck", Block: "1", Status: reactor.StatusDecommissioned,
			NetCapacityMW: 600, HasCapacity: true,
			CommercialOperation: core.DateOf(1975, 7, 1), Shutdown: core.DateOf(1999, 11, 30)},
		{Country: "Sweden", Name: "Barsebäck", Block: "2", Status: reactor.StatusDecommissioned,
			NetCapacityMW: 600, HasCapacity: true,
			CommercialOperation: core.DateOf(1977, 7, 1), Shutdown: core.DateOf(2005, 5, 31)},
		{Country: "Sweden", Name: "Forsmark", Block: "3", Status: reactor.StatusOperating,
			NetCapacityMW: 1172, HasCapacity: true,
			CommercialOperation: core.DateOf(1985, 8, 18)},
	}, now)

	tl, err := chart.NewTimeline(entries, chart.TimelineOptions{
		Window:  reactor.YearWindow{Start: 1980, End: 2023},
		Palette: palette(t),
		MinSize: 5,
		MaxSize: 30,
	})
	require.NoError(t, err)

	fig := Timeline(tl, DefaultTimelineLabels(1980))
	require.Len(t, fig.Data, 3)
	assert.Equal(t, "Sweden", fig.Data[0].LegendGroup)
	assert.True(t, fig.Data[0].ShowLegend)
	assert.False(t, fig.Data[1].ShowLegend)
	assert.Equal(t, "lines", fig.Data[2].Mode)
	assert.Equal(t, []any{"1999-11-30", "2005-05-31"}, fig.Data[2].X)
	assert.Equal(t, []any{"1979-01-01", "2024-12-31"}, fig.Layout.XAxis.Range)
	assert.Equal(t, "1980-01-01", fig.Layout.Shapes[0].X0)
	assert.True(t, strings.HasSuffix(fig.Layout.Title.Text, "Decommissioning of Reactors"))
}

func TestWriteHTML(t *testing.T) {
	fig := Figure{Data: []Trace{{Type: "scatter", Name: "<script>"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "Reactors & Ages", fig))

	page := buf.String()
	assert.Contains(t, page, ScriptURL)
	assert.Contains(t, page, "Reactors &amp; Ages")
	assert.Contains(t, page, `Plotly.newPlot("figure"`)
	assert.NotContains(t, page, `"name":"<script>"`)
}

func TestFigureJSON_ShowLegendAlwaysEncoded(t *testing.T) {
	raw, err := Figure{Data: []Trace{{Type: "scatter"}}}.JSON()
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["data"][0]["showlegend"])
}
