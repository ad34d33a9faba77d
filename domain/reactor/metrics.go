package reactor

import (
	"fmt"
	"time"

	"reactorviz/domain/core"
)

// Metric names a derivable duration.
type Metric string

const (
	MetricClosingAge              Metric = "closing_age"
	MetricConstructionTime        Metric = "construction_time"
	MetricConstructionAbortedTime Metric = "construction_aborted_time"
	MetricOperationalAge          Metric = "operational_age"
)

// AllMetrics lists metrics in display order.
var AllMetrics = []Metric{
	MetricClosingAge,
	MetricConstructionTime,
	MetricConstructionAbortedTime,
	MetricOperationalAge,
}

// ParseMetric validates a metric name.
func ParseMetric(name string) (Metric, error) {
	for _, m := range AllMetrics {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrMetricNotFound, name)
}

// Title is the human readable name of the metric.
func (m Metric) Title() string {
	switch m {
	case MetricClosingAge:
		return "Age at Decommissioning"
	case MetricConstructionTime:
		return "Construction Time"
	case MetricConstructionAbortedTime:
		return "Construction Time of Abandoned Projects"
	case MetricOperationalAge:
		return "Operational Age"
	default:
		return string(m)
	}
}

// Value extracts the metric from derived metrics.
func (m Metric) Value(mt Metrics) *float64 {
	switch m {
	case MetricClosingAge:
		return mt.ClosingAge
	case MetricConstructionTime:
		return mt.ConstructionTime
	case MetricConstructionAbortedTime:
		return mt.ConstructionAbortedTime
	case MetricOperationalAge:
		return mt.OperationalAge
	default:
		return nil
	}
}

// Values collects the non-null values of m across entries, in entry order.
func Values(entries []Entry, m Metric) []float64 {
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		if v := m.Value(e.Metrics); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// neverOperated reports a unit whose shutdown date is its abandonment date:
// construction stopped before commercial operation.
func neverOperated(r Reactor) bool {
	return r.Shutdown.Equal(r.Abandoned)
}

func span(from, to core.Date) *float64 {
	if !from.Valid || !to.Valid {
		return nil
	}
	v := core.YearsBetween(from.Time, to.Time)
	return &v
}

// ClosingAge is the age at decommissioning. Units that never operated
// close at age zero.
func ClosingAge(r Reactor) *float64 {
	if neverOperated(r) {
		zero := 0.0
		return &zero
	}
	return span(r.CommercialOperation, r.Shutdown)
}

// ConstructionTime runs from construction start to commercial operation,
// or to shutdown for units that never operated.
func ConstructionTime(r Reactor) *float64 {
	if neverOperated(r) {
		return span(r.ConstructionStart, r.Shutdown)
	}
	return span(r.ConstructionStart, r.CommercialOperation)
}

// ConstructionAbortedTime is defined only for projects abandoned during
// construction without a recorded shutdown.
func ConstructionAbortedTime(r Reactor) *float64 {
	if r.Shutdown.Valid || !r.ConstructionStart.Valid || !r.Abandoned.Valid {
		return nil
	}
	return span(r.ConstructionStart, r.Abandoned)
}

// OperationalAge is the current age of operating units and the age at
// shutdown for everything else.
func OperationalAge(r Reactor, now time.Time) *float64 {
	if r.Status == StatusOperating {
		return span(r.CommercialOperation, core.NewDate(now))
	}
	return span(r.CommercialOperation, r.Shutdown)
}

func yearOf(d core.Date) *int {
	y, ok := d.Year()
	if !ok {
		return nil
	}
	return &y
}

// Derive computes all metrics of r relative to now.
func Derive(r Reactor, now time.Time) Metrics {
	m := Metrics{
		ClosingAge:              ClosingAge(r),
		ConstructionTime:        ConstructionTime(r),
		ConstructionAbortedTime: ConstructionAbortedTime(r),
		OperationalAge:          OperationalAge(r, now),
		ConstructionYear:        yearOf(r.ConstructionStart),
		CommissioningYear:       yearOf(r.CommercialOperation),
		ShutdownYear:            yearOf(r.Shutdown),
	}
	if m.ConstructionYear != nil && m.CommissioningYear != nil {
		d := *m.CommissioningYear - *m.ConstructionYear
		m.ConstructionYears = &d
	}
	return m
}

// DeriveAll derives metrics for every record, preserving order.
func DeriveAll(reactors []Reactor, now time.Time) []Entry {
	entries := make([]Entry, len(reactors))
	for i, r := range reactors {
		entries[i] = Entry{Reactor: r, Metrics: Derive(r, now)}
	}
	return entries
}
