package excel

import (
	"fmt"

	"reactorviz/domain/bucket"
	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	MetricsSheet = "metrics"
	BucketsSheet = "buckets"

	// built-in "m/d/yy" format, shown as a localized short date
	dateNumFmt = 14
)

var metricsHeader = []interface{}{
	"Row", "Country", "Name", "Block", "Net Capacity (MW)", "Status",
	"Construction Start", "Grid Sync", "Commercial Operation", "Shutdown", "Abandoned",
	"Closing Age", "Construction Time", "Construction Aborted Time", "Operational Age",
}

var bucketsHeader = []interface{}{"Metric", "Bucket", "Count", "Proportion", "Mean", "Unbucketed"}

// Writer exports derived data to a new workbook
type Writer struct {
	logger *internal.Logger
}

// NewWriter creates a workbook writer
func NewWriter(logger *internal.Logger) *Writer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Writer{logger: logger}
}

// Write saves entries to the metrics sheet and histograms to the buckets
// sheet of a new workbook at path.
func (w *Writer) Write(path string, entries []reactor.Entry, hists []bucket.Histogram) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MetricsSheet); err != nil {
		return errors.DataError("failed to name metrics sheet", err)
	}
	if _, err := f.NewSheet(BucketsSheet); err != nil {
		return errors.DataError("failed to add buckets sheet", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: dateNumFmt})
	if err != nil {
		return errors.DataError("failed to create date style", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.DataError("failed to create header style", err)
	}

	if err := writeMetrics(f, entries, dateStyle); err != nil {
		return err
	}
	if err := writeBuckets(f, hists); err != nil {
		return err
	}
	for _, sheet := range []string{MetricsSheet, BucketsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, boldStyle); err != nil {
			return errors.DataError("failed to style header", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return errors.DataError("failed to freeze header", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.DataError(fmt.Sprintf("failed to save workbook %s", path), err)
	}
	w.logger.Info("[Writer] Exported %d reactors and %d histograms to %s", len(entries), len(hists), path)
	return nil
}

func writeMetrics(f *excelize.File, entries []reactor.Entry, dateStyle int) error {
	if err := f.SetSheetRow(MetricsSheet, "A1", &metricsHeader); err != nil {
		return errors.DataError("failed to write metrics header", err)
	}
	for i, e := range entries {
		r, m := e.Reactor, e.Metrics
		row := []interface{}{
			r.Row, r.Country, r.Name, r.Block, capacityCell(r), r.Status.Label(),
			dateCell(r.ConstructionStart), dateCell(r.GridSync), dateCell(r.CommercialOperation),
			dateCell(r.Shutdown), dateCell(r.Abandoned),
			floatCell(m.ClosingAge), floatCell(m.ConstructionTime),
			floatCell(m.ConstructionAbortedTime), floatCell(m.OperationalAge),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.DataError("invalid cell", err)
		}
		if err := f.SetSheetRow(MetricsSheet, cell, &row); err != nil {
			return errors.DataError(fmt.Sprintf("failed to write row %d", i+2), err)
		}
	}
	if len(entries) > 0 {
		from, _ := excelize.CoordinatesToCellName(7, 2)
		to, _ := excelize.CoordinatesToCellName(11, len(entries)+1)
		if err := f.SetCellStyle(MetricsSheet, from, to, dateStyle); err != nil {
			return errors.DataError("failed to style date columns", err)
		}
	}
	return nil
}

func writeBuckets(f *excelize.File, hists []bucket.Histogram) error {
	if err := f.SetSheetRow(BucketsSheet, "A1", &bucketsHeader); err != nil {
		return errors.DataError("failed to write buckets header", err)
	}
	row := 2
	for _, h := range hists {
		for i, label := range h.Scheme.Labels {
			values := []interface{}{string(h.Scheme.Metric), label, h.Counts[i], h.Proportion(i), h.Mean, h.Skipped}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(BucketsSheet, cell, &values); err != nil {
				return errors.DataError(fmt.Sprintf("failed to write bucket row %d", row), err)
			}
			row++
		}
	}
	return nil
}

func dateCell(d core.Date) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Time
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func capacityCell(r reactor.Reactor) interface{} {
	if !r.HasCapacity {
		return nil
	}
	return r.NetCapacityMW
}
