package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/errors"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order for text cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
	"2.1.2006",
	"02.01.2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"January 2006",
	"Jan 2006",
}

// Bare integers in this range are years, not Excel serials.
const (
	minYearCell = 1900
	maxYearCell = 2100
)

// RecordMapper turns sheet rows into reactor records using a resolved
// field -> header mapping.
type RecordMapper struct {
	columns map[string]string
	logger  *internal.Logger
}

// NewRecordMapper resolves every field against headers. Header matching is
// case-insensitive and the first alias present wins. Country and name are
// required; every other column may be missing.
func NewRecordMapper(headers []string, aliases map[string][]string, logger *internal.Logger) (*RecordMapper, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if len(aliases) == 0 {
		aliases = DefaultColumns()
	}

	index := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = h
		}
	}

	columns := make(map[string]string)
	for field, names := range aliases {
		for _, name := range names {
			if h, ok := index[normalizeHeader(name)]; ok {
				columns[field] = h
				break
			}
		}
	}

	for _, field := range requiredFields {
		if _, ok := columns[field]; !ok {
			return nil, errors.WithCode(errors.CodeDataError,
				fmt.Errorf("%w: %s (tried %s)", core.ErrColumnNotFound, field, strings.Join(aliases[field], ", ")))
		}
	}
	for field, h := range columns {
		logger.Debug("[RecordMapper] %s -> %q", field, h)
	}
	return &RecordMapper{columns: columns, logger: logger}, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// Column returns the header resolved for field.
func (m *RecordMapper) Column(field string) (string, bool) {
	h, ok := m.columns[field]
	return h, ok
}

func (m *RecordMapper) cell(row RawRowData, field string) string {
	h, ok := m.columns[field]
	if !ok {
		return ""
	}
	return row[h]
}

// MapRow maps one row. Rows without country and name report skip=true.
func (m *RecordMapper) MapRow(row RawRowData, sheetRow int) (r reactor.Reactor, skip bool, err error) {
	r = reactor.Reactor{
		Row:     sheetRow,
		Country: m.cell(row, FieldCountry),
		Name:    m.cell(row, FieldName),
		Block:   normalizeBlock(m.cell(row, FieldBlock)),
	}
	if r.Country == "" && r.Name == "" {
		return r, true, nil
	}

	if raw := m.cell(row, FieldNetCapacity); raw != "" {
		v, ok, err := ParseNumber(raw)
		if err != nil {
			return r, false, core.NewCellError(sheetRow, m.columns[FieldNetCapacity], err)
		}
		r.NetCapacityMW, r.HasCapacity = v, ok
	}

	dates := []struct {
		field string
		dst   *core.Date
	}{
		{FieldConstructionStart, &r.ConstructionStart},
		{FieldGridSync, &r.GridSync},
		{FieldCommercialOperation, &r.CommercialOperation},
		{FieldShutdown, &r.Shutdown},
		{FieldAbandoned, &r.Abandoned},
	}
	for _, d := range dates {
		v, err := ParseDate(m.cell(row, d.field))
		if err != nil {
			return r, false, core.NewCellError(sheetRow, m.columns[d.field], err)
		}
		*d.dst = v
	}

	r.RawStatus = m.cell(row, FieldStatus)
	if r.RawStatus == "" {
		r.Status = reactor.InferStatus(r)
	} else {
		r.Status = reactor.ParseStatus(r.RawStatus)
	}
	return r, false, nil
}

// MapAll maps every data row and stops at the first malformed cell.
func (m *RecordMapper) MapAll(data *ExcelData) ([]reactor.Reactor, error) {
	out := make([]reactor.Reactor, 0, len(data.Rows))
	skipped := 0
	for i, row := range data.Rows {
		r, skip, err := m.MapRow(row, SheetRow(i))
		if err != nil {
			return nil, errors.DataError("failed to map reactor row", err)
		}
		if skip {
			skipped++
			m.logger.Warn("[RecordMapper] Skipping row %d: no country or name", SheetRow(i))
			continue
		}
		if r.Status == reactor.StatusUnknown && r.RawStatus != "" {
			m.logger.Debug("[RecordMapper] Row %d: unrecognized status %q", r.Row, r.RawStatus)
		}
		out = append(out, r)
	}
	m.logger.Info("[RecordMapper] Mapped %d reactors (%d rows skipped)", len(out), skipped)
	return out, nil
}

// normalizeBlock drops the ".0" a numeric block cell gains in raw mode.
func normalizeBlock(s string) string {
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func isBlank(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "-", "–", "n/a", "N/A", "NaT", "NaN":
		return true
	}
	return false
}

// ParseNumber reads a decimal using either '.' or ',' as the decimal mark.
// Blank cells return ok=false.
func ParseNumber(s string) (v float64, ok bool, err error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if isBlank(s) {
		return 0, false, nil
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%w: %q", core.ErrInvalidNumber, s)
	}
	return v, true, nil
}

// ParseDate reads an Excel serial, a bare year or one of dateLayouts.
// Blank cells yield an absent date.
func ParseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if isBlank(s) {
		return core.NullDate(), nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == math.Trunc(f) && f >= minYearCell && f <= maxYearCell {
			return core.DateOf(int(f), time.January, 1), nil
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return core.NullDate(), fmt.Errorf("%w: serial %s", core.ErrInvalidDate, s)
		}
		return core.NewDate(t.UTC()), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.UTC()), nil
		}
	}
	return core.NullDate(), fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}
