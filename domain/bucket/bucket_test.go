package bucket

import (
	"encoding/json"
	"math"
	"testing"

	"reactorviz/domain/core"
	"reactorviz/domain/reactor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closingAge() Scheme {
	return Scheme{
		Metric: reactor.MetricClosingAge,
		Bins:   []float64{0, 11, 21, 31, 41, math.Inf(1)},
		Labels: []string{"0 – 10 Years", "11 – 20 Years", "21 – 30 Years", "31 – 40 Years", "41 Years and Over"},
	}
}

func TestClassify(t *testing.T) {
	s := closingAge()
	tests := []struct {
		value float64
		want  int
	}{
		{0, 0},
		{10.4, 0},
		{10.5, 0}, // half-to-even rounds down to 10
		{10.6, 1},
		{11.5, 1}, // rounds up to 12
		{20.49, 1},
		{40.5, 3},
		{41, 4},
		{73.2, 4},
		{-0.4, 0},
		{-0.6, -1},
		{math.NaN(), -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Classify(tt.value), "value %v", tt.value)
	}
}

func TestCount(t *testing.T) {
	h, err := Count(closingAge(), []float64{0, 5, 12, 35.2, 44, 51, -3})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1, 0, 1, 2}, h.Counts)
	assert.Equal(t, 6, h.Total)
	assert.Equal(t, 1, h.Skipped)
	assert.Equal(t, 7, h.Values)
	assert.InDelta(t, (0+5+12+35.2+44+51-3)/7.0, h.Mean, 1e-9)
	assert.InDelta(t, 2.0/6.0, h.Proportion(0), 1e-9)
}

func TestCount_Empty(t *testing.T) {
	h, err := Count(closingAge(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Total)
	assert.Equal(t, 0.0, h.Proportion(2))
	assert.Len(t, h.Counts, 5)
}

func TestValidate(t *testing.T) {
	s := closingAge()
	s.Labels = s.Labels[:3]
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScheme)

	s = closingAge()
	s.Bins[2] = 5
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScheme)

	_, err := Count(Scheme{Bins: []float64{0}}, []float64{1})
	assert.ErrorIs(t, err, core.ErrInvalidScheme)
}

func TestScheme_MarshalJSONInfiniteEdge(t *testing.T) {
	s := Scheme{
		Metric: reactor.MetricClosingAge,
		Title:  "Age",
		Bins:   []float64{0, 11, math.Inf(1)},
		Labels: []string{"young", "old"},
	}
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"metric":"closing_age","title":"Age","bins":[0,11,null],"labels":["young","old"]}`, string(raw))
}
