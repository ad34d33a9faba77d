package excel

// Field names of the reactor columns a sheet can carry.
const (
	FieldCountry             = "country"
	FieldName                = "name"
	FieldBlock               = "block"
	FieldNetCapacity         = "net_capacity"
	FieldConstructionStart   = "construction_start"
	FieldGridSync            = "grid_sync"
	FieldCommercialOperation = "commercial_operation"
	FieldShutdown            = "shutdown"
	FieldAbandoned           = "abandoned"
	FieldStatus              = "status"
)

var requiredFields = []string{FieldCountry, FieldName}

// ExcelConfig holds configuration for the reactor spreadsheet
type ExcelConfig struct {
	FilePath string              `json:"file_path"`
	Sheet    string              `json:"sheet"`
	Columns  map[string][]string `json:"columns"`
}

// DefaultColumns are the headers of the German source workbook. Presets
// usually supply a longer alias list.
func DefaultColumns() map[string][]string {
	return map[string][]string{
		FieldCountry:             {"Land", "Country"},
		FieldName:                {"Name"},
		FieldBlock:               {"Block", "Unit"},
		FieldNetCapacity:         {"Leistung, Netto in MW", "Net Capacity (MW)"},
		FieldConstructionStart:   {"Baubeginn", "Construction Start"},
		FieldGridSync:            {"erste Netzsynchronisation", "Grid Connection", "Grid Sync"},
		FieldCommercialOperation: {"Kommerzieller Betrieb", "Kommerzieller Betrieb (geplant)", "Commercial Operation"},
		FieldShutdown:            {"Abschaltung", "Abschaltung (geplant)", "Shutdown"},
		FieldAbandoned:           {"Bau/Projekt eingestellt", "Abandoned"},
		FieldStatus:              {"Status"},
	}
}

// DefaultExcelConfig returns defaults for the given workbook
func DefaultExcelConfig(path string) ExcelConfig {
	return ExcelConfig{
		FilePath: path,
		Columns:  DefaultColumns(),
	}
}
