package reactor

import (
	"strings"
	"time"

	"reactorviz/domain/core"
)

// Status is the normalized lifecycle state of a reactor unit.
type Status string

const (
	StatusOperating         Status = "operating"
	StatusDecommissioned    Status = "decommissioned"
	StatusUnderConstruction Status = "under_construction"
	StatusAbandoned         Status = "abandoned"
	StatusUnknown           Status = "unknown"
)

// statusAliases maps lowercased sheet values onto statuses. The source
// workbooks are German; English spellings appear in exported variants.
var statusAliases = map[string]Status{
	"in betrieb":          StatusOperating,
	"operating":           StatusOperating,
	"operational":         StatusOperating,
	"in operation":        StatusOperating,
	"stillgelegt":         StatusDecommissioned,
	"abgeschaltet":        StatusDecommissioned,
	"decommissioned":      StatusDecommissioned,
	"shut down":           StatusDecommissioned,
	"shutdown":            StatusDecommissioned,
	"permanent shutdown":  StatusDecommissioned,
	"im bau":              StatusUnderConstruction,
	"under construction":  StatusUnderConstruction,
	"bau eingestellt":     StatusAbandoned,
	"projekt eingestellt": StatusAbandoned,
	"abandoned":           StatusAbandoned,
	"cancelled":           StatusAbandoned,
	"canceled":            StatusAbandoned,
}

// ParseStatus normalizes a raw sheet value. Unrecognized values map to
// StatusUnknown.
func ParseStatus(raw string) Status {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusUnknown
}

// Label returns the English display name used in charts and reports.
func (s Status) Label() string {
	switch s {
	case StatusOperating:
		return "In Operation"
	case StatusDecommissioned:
		return "Decommissioned"
	case StatusUnderConstruction:
		return "Under Construction"
	case StatusAbandoned:
		return "Abandoned"
	default:
		return "Unknown"
	}
}

// Reactor is one row of the source sheet: a single power plant unit.
type Reactor struct {
	Row                 int       `json:"row"`
	Country             string    `json:"country"`
	Name                string    `json:"name"`
	Block               string    `json:"block"`
	NetCapacityMW       float64   `json:"net_capacity_mw"`
	HasCapacity         bool      `json:"has_capacity"`
	ConstructionStart   core.Date `json:"construction_start"`
	GridSync            core.Date `json:"grid_sync"`
	CommercialOperation core.Date `json:"commercial_operation"`
	Shutdown            core.Date `json:"shutdown"`
	Abandoned           core.Date `json:"abandoned"`
	Status              Status    `json:"status"`
	RawStatus           string    `json:"raw_status,omitempty"`
}

// DisplayName renders "Name, Block N" the way the hover labels show units.
func (r Reactor) DisplayName() string {
	if r.Block == "" {
		return r.Name
	}
	return r.Name + ", Block " + r.Block
}

// InferStatus guesses a status from the dates when the sheet has none.
func InferStatus(r Reactor) Status {
	switch {
	case r.Shutdown.Valid && !r.Shutdown.Equal(r.Abandoned):
		return StatusDecommissioned
	case r.Abandoned.Valid:
		return StatusAbandoned
	case r.CommercialOperation.Valid:
		return StatusOperating
	case r.ConstructionStart.Valid:
		return StatusUnderConstruction
	default:
		return StatusUnknown
	}
}

// Metrics holds the durations derived from a record. Nil means the inputs
// needed for that metric were missing.
type Metrics struct {
	ClosingAge              *float64 `json:"closing_age"`
	ConstructionTime        *float64 `json:"construction_time"`
	ConstructionAbortedTime *float64 `json:"construction_aborted_time"`
	OperationalAge          *float64 `json:"operational_age"`

	ConstructionYear  *int `json:"construction_year"`
	CommissioningYear *int `json:"commissioning_year"`
	ShutdownYear      *int `json:"shutdown_year"`
	ConstructionYears *int `json:"construction_years"`
}

// Entry pairs a record with its derived metrics.
type Entry struct {
	Reactor Reactor `json:"reactor"`
	Metrics Metrics `json:"metrics"`
}

// ImportRun identifies one publication of a derived dataset. Fingerprint is
// the digest of the published records.
type ImportRun struct {
	ID          string    `json:"id" db:"id"`
	Source      string    `json:"source" db:"source"`
	Count       int       `json:"count" db:"reactor_count"`
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
