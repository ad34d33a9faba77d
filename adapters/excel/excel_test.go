package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reactorviz/domain/bucket"
	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// writeWorkbook builds a German-headed sheet like the source data.
func writeWorkbook(t *testing.T, sheet string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	rows := [][]interface{}{
		{"Land", "Name", "Block", "Leistung, Netto in MW", "Baubeginn", "erste Netzsynchronisation",
			"Kommerzieller Betrieb (geplant)", "Abschaltung (geplant)", "Bau/Projekt eingestellt", "Status"},
		{"Deutschland", "Biblis", 1, 1167, day(1969, 1, 1), day(1974, 8, 25), day(1975, 2, 26), day(2011, 8, 6), nil, "Stillgelegt"},
		{"Frankreich", "Flamanville", "3", "1.600,5", day(2007, 12, 3), nil, nil, nil, nil, "Im Bau"},
		{nil, nil, nil, nil, nil, nil, nil, nil, nil, nil},
		{"Österreich", "Zwentendorf", "1", "692", "01.04.1972", nil, nil, "1978-12-15", "1978-12-15", "Projekt eingestellt"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "reactors.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSource_LoadWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Kraftwerke")
	src := NewSource(DefaultExcelConfig(path), internal.NewNopLogger())

	reactors, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reactors, 3)
	assert.Equal(t, path, src.Describe())

	biblis := reactors[0]
	assert.Equal(t, 2, biblis.Row)
	assert.Equal(t, "Biblis, Block 1", biblis.DisplayName())
	assert.True(t, biblis.HasCapacity)
	assert.Equal(t, 1167.0, biblis.NetCapacityMW)
	assert.True(t, biblis.CommercialOperation.Time.Equal(day(1975, 2, 26)))
	assert.True(t, biblis.Shutdown.Time.Equal(day(2011, 8, 6)))
	assert.False(t, biblis.Abandoned.Valid)
	assert.Equal(t, reactor.StatusDecommissioned, biblis.Status)

	flamanville := reactors[1]
	assert.Equal(t, 1600.5, flamanville.NetCapacityMW)
	assert.False(t, flamanville.GridSync.Valid)
	assert.Equal(t, reactor.StatusUnderConstruction, flamanville.Status)

	zwentendorf := reactors[2]
	assert.Equal(t, 5, zwentendorf.Row)
	assert.True(t, zwentendorf.ConstructionStart.Time.Equal(day(1972, 4, 1)))
	assert.True(t, zwentendorf.Shutdown.Equal(zwentendorf.Abandoned))
	assert.Equal(t, reactor.StatusAbandoned, zwentendorf.Status)
}

func TestSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSource(DefaultExcelConfig("missing.xlsx"), internal.NewNopLogger()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx"), "", internal.NewNopLogger()).ReadData()
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestDataReader_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1")
	_, err := NewDataReader(path, "Missing", internal.NewNopLogger()).ReadData()
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataError, errors.GetCode(err))
}

func TestDataReader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactors.csv")
	content := "\ufeffCountry,Name,Block,Commercial Operation,Shutdown,Status\n" +
		"Belgium,Doel,1,1975-02-15,2022-02-14,Shut down\n" +
		"Belgium,Doel,4,1985-07-01,,Operational\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := NewDataReader(path, "", internal.NewNopLogger()).ReadData()
	require.NoError(t, err)
	assert.Equal(t, "Country", data.Headers[0])
	assert.Len(t, data.Rows, 2)

	mapper, err := NewRecordMapper(data.Headers, nil, internal.NewNopLogger())
	require.NoError(t, err)
	reactors, err := mapper.MapAll(data)
	require.NoError(t, err)
	require.Len(t, reactors, 2)
	assert.Equal(t, reactor.StatusOperating, reactors[1].Status)
	assert.False(t, reactors[1].Shutdown.Valid)
}

func TestRecordMapper_MissingRequiredColumn(t *testing.T) {
	_, err := NewRecordMapper([]string{"Name", "Block"}, nil, internal.NewNopLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.Equal(t, errors.CodeDataError, errors.GetCode(err))
}

func TestRecordMapper_CellErrorLocatesRow(t *testing.T) {
	data := &ExcelData{
		Headers: []string{"Land", "Name", "Baubeginn"},
		Rows: []RawRowData{
			{"Land": "Schweiz", "Name": "Beznau", "Baubeginn": "1965-09-01"},
			{"Land": "Schweiz", "Name": "Gösgen", "Baubeginn": "sometime"},
		},
	}
	mapper, err := NewRecordMapper(data.Headers, nil, internal.NewNopLogger())
	require.NoError(t, err)

	_, err = mapper.MapAll(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	assert.Contains(t, err.Error(), `row 3, column "Baubeginn"`)
}

func TestRecordMapper_InfersStatusWithoutColumn(t *testing.T) {
	data := &ExcelData{
		Headers: []string{"Country", "Name", "Commercial Operation"},
		Rows:    []RawRowData{{"Country": "Finland", "Name": "Olkiluoto", "Commercial Operation": "1979-10-10"}},
	}
	mapper, err := NewRecordMapper(data.Headers, nil, internal.NewNopLogger())
	require.NoError(t, err)
	_, ok := mapper.Column(FieldStatus)
	assert.False(t, ok)

	reactors, err := mapper.MapAll(data)
	require.NoError(t, err)
	assert.Equal(t, reactor.StatusOperating, reactors[0].Status)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1167", 1167, true},
		{"1167.5", 1167.5, true},
		{"1167,5", 1167.5, true},
		{"1.167,5", 1167.5, true},
		{" 900 ", 900, true},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok, err := ParseNumber(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, _, err := ParseNumber("approx. 900")
	assert.ErrorIs(t, err, core.ErrInvalidNumber)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"1975-02-26", day(1975, 2, 26)},
		{"1975-02-26 00:00:00", day(1975, 2, 26)},
		{"26.02.1975", day(1975, 2, 26)},
		{"2/26/1975", day(1975, 2, 26)},
		{"25569", day(1970, 1, 1)},
		{"1985", day(1985, 1, 1)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Valid, tt.in)
		assert.True(t, got.Time.Equal(tt.want), "%s: got %s", tt.in, got.Time)
	}

	blank, err := ParseDate("NaT")
	require.NoError(t, err)
	assert.False(t, blank.Valid)

	_, err = ParseDate("next spring")
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestWriter_Write(t *testing.T) {
	closing := 36.44
	entries := []reactor.Entry{{
		Reactor: reactor.Reactor{
			Row: 2, Country: "Deutschland", Name: "Biblis", Block: "1",
			NetCapacityMW: 1167, HasCapacity: true,
			CommercialOperation: core.DateOf(1975, 2, 26),
			Shutdown:            core.DateOf(2011, 8, 6),
			Status:              reactor.StatusDecommissioned,
		},
		Metrics: reactor.Metrics{ClosingAge: &closing},
	}}
	hist := bucket.Histogram{
		Scheme: bucket.Scheme{Metric: reactor.MetricClosingAge, Bins: []float64{0, 20, 40}, Labels: []string{"young", "old"}},
		Counts: []int{0, 1},
		Total:  1,
		Values: 1,
		Mean:   closing,
	}

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, NewWriter(internal.NewNopLogger()).Write(path, entries, []bucket.Histogram{hist}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{MetricsSheet, BucketsSheet}, f.GetSheetList())

	rows, err := f.GetRows(MetricsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Country", rows[0][1])
	assert.Equal(t, "Biblis", rows[1][2])
	assert.Equal(t, "Decommissioned", rows[1][5])

	buckets, err := f.GetRows(BucketsSheet)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"closing_age", "old", "1", "1"}, buckets[2][:4])
}

func TestWriter_ExportReloads(t *testing.T) {
	entries := []reactor.Entry{{
		Reactor: reactor.Reactor{
			Row: 2, Country: "Deutschland", Name: "Biblis", Block: "1",
			NetCapacityMW: 1167, HasCapacity: true,
			ConstructionStart:   core.DateOf(1969, 1, 1),
			GridSync:            core.DateOf(1974, 8, 25),
			CommercialOperation: core.DateOf(1975, 2, 26),
			Shutdown:            core.DateOf(2011, 8, 6),
			Status:              reactor.StatusDecommissioned,
		},
	}}
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, NewWriter(internal.NewNopLogger()).Write(path, entries, nil))

	reactors, err := NewSource(DefaultExcelConfig(path), internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reactors, 1)

	biblis := reactors[0]
	assert.Equal(t, "Biblis, Block 1", biblis.DisplayName())
	assert.Equal(t, 1167.0, biblis.NetCapacityMW)
	require.True(t, biblis.GridSync.Valid)
	assert.True(t, biblis.GridSync.Time.Equal(day(1974, 8, 25)))
	assert.True(t, biblis.ConstructionStart.Time.Equal(day(1969, 1, 1)))
	assert.True(t, biblis.Shutdown.Time.Equal(day(2011, 8, 6)))
}
