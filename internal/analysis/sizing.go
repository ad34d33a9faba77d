package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
)

// SizeMode selects how net capacity maps to bubble size.
type SizeMode string

const (
	// SizeLog normalizes log10 capacity over the whole selection.
	SizeLog SizeMode = "log"
	// SizeRelative scales capacity by the group maximum.
	SizeRelative SizeMode = "relative"
)

// BubbleSizes maps capacities into [minSize, maxSize] on a log10 scale.
// Non-positive capacities get minSize. When all capacities are equal every
// bubble gets the midpoint.
func BubbleSizes(capacities []float64, minSize, maxSize float64) []float64 {
	sizes := make([]float64, len(capacities))
	logs := make([]float64, 0, len(capacities))
	for _, c := range capacities {
		if c > 0 {
			logs = append(logs, math.Log10(c))
		}
	}
	if len(logs) == 0 {
		for i := range sizes {
			sizes[i] = minSize
		}
		return sizes
	}

	lo, _ := stats.Min(logs)
	hi, _ := stats.Max(logs)
	for i, c := range capacities {
		switch {
		case c <= 0:
			sizes[i] = minSize
		case hi == lo:
			sizes[i] = (minSize + maxSize) / 2
		default:
			norm := (math.Log10(c) - lo) / (hi - lo)
			sizes[i] = minSize + norm*(maxSize-minSize)
		}
	}
	return sizes
}

// RelativeSizes scales capacities linearly so the largest gets scale.
func RelativeSizes(capacities []float64, scale float64) []float64 {
	sizes := make([]float64, len(capacities))
	hi, err := stats.Max(capacities)
	if err != nil || hi <= 0 {
		return sizes
	}
	for i, c := range capacities {
		if c > 0 {
			sizes[i] = scale * c / hi
		}
	}
	return sizes
}
