package analysis

import (
	"fmt"

	"reactorviz/domain/core"

	"github.com/montanaflynn/stats"
)

// Summary describes the distribution of a metric.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes summary statistics of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("%w: no values to summarize", core.ErrInsufficientData)
	}

	data := stats.Float64Data(values)
	s := Summary{Count: len(values)}

	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return Summary{}, err
	}
	if s.Median, err = data.Median(); err != nil {
		return Summary{}, err
	}
	if s.Min, err = data.Min(); err != nil {
		return Summary{}, err
	}
	if s.Max, err = data.Max(); err != nil {
		return Summary{}, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return Summary{}, err
	}

	if s.P25, err = data.Percentile(25); err != nil {
		return Summary{}, err
	}
	if s.P75, err = data.Percentile(75); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// MaxOr returns the largest value, or fallback for empty input.
func MaxOr(values []float64, fallback float64) float64 {
	m, err := stats.Max(values)
	if err != nil {
		return fallback
	}
	return m
}
