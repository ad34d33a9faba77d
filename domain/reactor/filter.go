package reactor

import (
	"fmt"
	"time"

	"reactorviz/domain/core"
)

// YearWindow is an inclusive range of calendar years.
type YearWindow struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Validate rejects inverted windows.
func (w YearWindow) Validate() error {
	if w.Start > w.End {
		return fmt.Errorf("%w: start %d after end %d", core.ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// Contains reports whether year y lies within the window.
func (w YearWindow) Contains(y int) bool {
	return y >= w.Start && y <= w.End
}

// From is January 1st of the start year.
func (w YearWindow) From() time.Time {
	return time.Date(w.Start, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// To is December 31st of the end year.
func (w YearWindow) To() time.Time {
	return time.Date(w.End, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// InWindow selects operating units commissioned within w and
// decommissioned units shut down within w.
func InWindow(e Entry, w YearWindow) bool {
	switch e.Reactor.Status {
	case StatusOperating:
		return e.Metrics.CommissioningYear != nil && w.Contains(*e.Metrics.CommissioningYear)
	case StatusDecommissioned:
		return e.Metrics.ShutdownYear != nil && w.Contains(*e.Metrics.ShutdownYear)
	default:
		return false
	}
}

// Filter keeps entries inside w in their original order.
func Filter(entries []Entry, w YearWindow) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if InWindow(e, w) {
			out = append(out, e)
		}
	}
	return out
}

// Countries lists distinct countries in order of first appearance.
func Countries(entries []Entry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if !seen[e.Reactor.Country] {
			seen[e.Reactor.Country] = true
			out = append(out, e.Reactor.Country)
		}
	}
	return out
}

// ByStatus keeps entries with the given status.
func ByStatus(entries []Entry, s Status) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Reactor.Status == s {
			out = append(out, e)
		}
	}
	return out
}
