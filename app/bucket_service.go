package app

import (
	"context"

	"reactorviz/adapters/plotly"
	"reactorviz/domain/bucket"
	"reactorviz/domain/reactor"
	"reactorviz/internal/chart"
	"reactorviz/internal/config"
	"reactorviz/internal/errors"
)

// BucketChart is a histogram with its half-donut layout and figure
type BucketChart struct {
	Metric    reactor.Metric   `json:"metric"`
	Histogram bucket.Histogram `json:"histogram"`
	Donut     chart.Donut      `json:"donut"`
	Figure    plotly.Figure    `json:"figure"`
}

// BucketService builds age group charts
type BucketService struct {
	pipeline *Pipeline
	presets  *config.Presets
	palette  *chart.Palette
}

// NewBucketService creates a bucket service
func NewBucketService(pipeline *Pipeline, presets *config.Presets, palette *chart.Palette) *BucketService {
	return &BucketService{pipeline: pipeline, presets: presets, palette: palette}
}

// Metrics lists the metrics with a configured scheme
func (s *BucketService) Metrics() []reactor.Metric {
	return s.presets.Metrics()
}

// Heading is the title shared by every bucket chart
func (s *BucketService) Heading() string {
	return s.presets.Heading
}

// Build counts the metric over the whole dataset and lays out its chart
func (s *BucketService) Build(ctx context.Context, m reactor.Metric) (*BucketChart, error) {
	scheme, err := s.presets.Scheme(m)
	if err != nil {
		return nil, err
	}
	data, err := s.pipeline.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.build(scheme, data.Entries)
}

// BuildAll builds every configured metric from one dataset snapshot
func (s *BucketService) BuildAll(ctx context.Context) ([]*BucketChart, error) {
	data, err := s.pipeline.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	var out []*BucketChart
	for _, m := range s.Metrics() {
		scheme, err := s.presets.Scheme(m)
		if err != nil {
			return nil, err
		}
		c, err := s.build(scheme, data.Entries)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *BucketService) build(scheme bucket.Scheme, entries []reactor.Entry) (*BucketChart, error) {
	h, err := bucket.Count(scheme, reactor.Values(entries, scheme.Metric))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	d := chart.NewDonut(h, s.palette)
	return &BucketChart{
		Metric:    scheme.Metric,
		Histogram: h,
		Donut:     d,
		Figure:    plotly.HalfDonut(d, s.presets.Heading),
	}, nil
}
