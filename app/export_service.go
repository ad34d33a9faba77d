package app

import (
	"context"

	"reactorviz/adapters/excel"
	"reactorviz/domain/bucket"
)

// ExportService writes the derived dataset to a workbook
type ExportService struct {
	buckets *BucketService
	writer  *excel.Writer
}

// NewExportService creates an export service
func NewExportService(buckets *BucketService, writer *excel.Writer) *ExportService {
	return &ExportService{buckets: buckets, writer: writer}
}

// Export writes entries and histograms to path
func (s *ExportService) Export(ctx context.Context, path string) error {
	data, err := s.buckets.pipeline.Dataset(ctx)
	if err != nil {
		return err
	}
	charts, err := s.buckets.BuildAll(ctx)
	if err != nil {
		return err
	}
	hists := make([]bucket.Histogram, len(charts))
	for i, c := range charts {
		hists[i] = c.Histogram
	}
	return s.writer.Write(path, data.Entries, hists)
}
