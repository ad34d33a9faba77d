package bucket

import (
	"encoding/json"
	"fmt"
	"math"

	"reactorviz/domain/core"
	"reactorviz/domain/reactor"

	"github.com/montanaflynn/stats"
)

// Scheme partitions a duration into labeled, left-closed bins.
type Scheme struct {
	Metric reactor.Metric `json:"metric" yaml:"-"`
	Title  string         `json:"title" yaml:"title"`
	Bins   []float64      `json:"bins" yaml:"bins"`
	Labels []string       `json:"labels" yaml:"labels"`
}

// Validate checks that edges ascend strictly and that every bin has a label.
func (s Scheme) Validate() error {
	if len(s.Bins) < 2 {
		return fmt.Errorf("%w: %s needs at least two edges", core.ErrInvalidScheme, s.Metric)
	}
	if len(s.Labels) != len(s.Bins)-1 {
		return fmt.Errorf("%w: %s has %d bins but %d labels",
			core.ErrInvalidScheme, s.Metric, len(s.Bins)-1, len(s.Labels))
	}
	for i := 1; i < len(s.Bins); i++ {
		if math.IsNaN(s.Bins[i]) || !(s.Bins[i] > s.Bins[i-1]) {
			return fmt.Errorf("%w: %s edges not strictly ascending at %d", core.ErrInvalidScheme, s.Metric, i)
		}
	}
	return nil
}

// MarshalJSON writes an infinite upper edge as null, which JSON cannot
// otherwise represent.
func (s Scheme) MarshalJSON() ([]byte, error) {
	bins := make([]*float64, len(s.Bins))
	for i := range s.Bins {
		if !math.IsInf(s.Bins[i], 0) {
			bins[i] = &s.Bins[i]
		}
	}
	return json.Marshal(struct {
		Metric reactor.Metric `json:"metric"`
		Title  string         `json:"title"`
		Bins   []*float64     `json:"bins"`
		Labels []string       `json:"labels"`
	}{s.Metric, s.Title, bins, s.Labels})
}

// Classify returns the bin index of v, or -1 when v falls outside every bin.
// Values are rounded half-to-even to whole years first, so 10.5 lands in
// the bin holding 10 and 11.5 in the bin holding 12.
func (s Scheme) Classify(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	r := math.RoundToEven(v)
	for i := 0; i < len(s.Bins)-1; i++ {
		if r >= s.Bins[i] && r < s.Bins[i+1] {
			return i
		}
	}
	return -1
}

// Histogram is the per-bucket count of a metric.
type Histogram struct {
	Scheme  Scheme  `json:"scheme"`
	Counts  []int   `json:"counts"`
	Total   int     `json:"total"`
	Skipped int     `json:"skipped"`
	Values  int     `json:"values"`
	Mean    float64 `json:"mean"`
}

// Count builds the histogram of values. Every label gets a count, zero
// included. Mean covers all values, bucketed or not.
func Count(s Scheme, values []float64) (Histogram, error) {
	if err := s.Validate(); err != nil {
		return Histogram{}, err
	}

	h := Histogram{
		Scheme: s,
		Counts: make([]int, len(s.Labels)),
	}

	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		finite = append(finite, v)
		if idx := s.Classify(v); idx >= 0 {
			h.Counts[idx]++
			h.Total++
		} else {
			h.Skipped++
		}
	}

	h.Values = len(finite)
	if len(finite) > 0 {
		mean, err := stats.Mean(finite)
		if err != nil {
			return Histogram{}, err
		}
		h.Mean = mean
	}
	return h, nil
}

// Proportion is the share of bucket i in the bucketed total.
func (h Histogram) Proportion(i int) float64 {
	if h.Total == 0 {
		return 0
	}
	return float64(h.Counts[i]) / float64(h.Total)
}
