package excel

// RawRowData represents a row of raw sheet data as header -> cell text
type RawRowData map[string]string

// ExcelData represents the complete sheet
type ExcelData struct {
	Sheet   string       // Sheet the rows came from, empty for CSV
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows; Rows[i] is sheet row i+2
}

// SheetRow converts a Rows index into the 1-based sheet row number.
func SheetRow(i int) int {
	return i + 2
}
