package app

import (
	"context"

	"reactorviz/adapters/plotly"
	"reactorviz/domain/reactor"
	"reactorviz/internal/analysis"
	"reactorviz/internal/chart"
	"reactorviz/internal/config"
	"reactorviz/internal/errors"
)

// TimelineRequest selects the window and flavour of a timeline
type TimelineRequest struct {
	Window reactor.YearWindow
	// Dashboard switches to per-country relative bubble sizes and an x axis
	// clamped to the window.
	Dashboard bool
}

// TimelineChart is a timeline layout with its figure
type TimelineChart struct {
	Window reactor.YearWindow    `json:"window"`
	Layout chart.Timeline        `json:"layout"`
	Labels plotly.TimelineLabels `json:"labels"`
	Figure plotly.Figure         `json:"figure"`
}

// TimelineService builds commissioning/decommissioning timelines
type TimelineService struct {
	pipeline *Pipeline
	presets  *config.Presets
	palette  *chart.Palette
	window   reactor.YearWindow
}

// NewTimelineService creates a timeline service. A nil override keeps the
// preset window.
func NewTimelineService(pipeline *Pipeline, presets *config.Presets, palette *chart.Palette, override *reactor.YearWindow) *TimelineService {
	window := presets.Timeline.Window
	if override != nil {
		window = *override
	}
	return &TimelineService{pipeline: pipeline, presets: presets, palette: palette, window: window}
}

// DefaultWindow is the window of the static timeline
func (s *TimelineService) DefaultWindow() reactor.YearWindow {
	return s.window
}

// DashboardWindow is the full range of the dashboard slider
func (s *TimelineService) DashboardWindow() reactor.YearWindow {
	return s.presets.Dashboard.Window
}

// MarkStep is the spacing of the slider marks in years
func (s *TimelineService) MarkStep() int {
	if s.presets.Dashboard.MarkStep <= 0 {
		return 5
	}
	return s.presets.Dashboard.MarkStep
}

// Build filters the dataset to the window and lays out the timeline
func (s *TimelineService) Build(ctx context.Context, req TimelineRequest) (*TimelineChart, error) {
	if err := req.Window.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	data, err := s.pipeline.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	opts := s.presets.TimelineOptions(s.palette, req.Window)
	if req.Dashboard {
		opts.SizeMode = analysis.SizeRelative
		opts.TightRange = true
	}
	tl, err := chart.NewTimeline(data.Entries, opts)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	labels := plotly.DefaultTimelineLabels(req.Window.Start)
	return &TimelineChart{
		Window: req.Window,
		Layout: tl,
		Labels: labels,
		Figure: plotly.Timeline(tl, labels),
	}, nil
}
