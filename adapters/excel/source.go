package excel

import (
	"context"

	"reactorviz/domain/reactor"
	"reactorviz/internal"
)

// Source reads reactors from a workbook or CSV file
type Source struct {
	config ExcelConfig
	logger *internal.Logger
}

// NewSource creates a spreadsheet-backed reactor source
func NewSource(config ExcelConfig, logger *internal.Logger) *Source {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Source{config: config, logger: logger}
}

// Describe returns the file path
func (s *Source) Describe() string {
	return s.config.FilePath
}

// Load reads the sheet and maps every row
func (s *Source) Load(ctx context.Context) ([]reactor.Reactor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := NewDataReader(s.config.FilePath, s.config.Sheet, s.logger).ReadData()
	if err != nil {
		return nil, err
	}

	mapper, err := NewRecordMapper(data.Headers, s.config.Columns, s.logger)
	if err != nil {
		return nil, err
	}
	return mapper.MapAll(data)
}
