package app

import (
	"context"
	"fmt"
	"strings"

	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var reportStatuses = []reactor.Status{
	reactor.StatusOperating,
	reactor.StatusDecommissioned,
	reactor.StatusUnderConstruction,
	reactor.StatusAbandoned,
	reactor.StatusUnknown,
}

// ReportService writes a summary of the dataset and every chart
type ReportService struct {
	buckets  *BucketService
	timeline *TimelineService
}

// NewReportService creates a report service
func NewReportService(buckets *BucketService, timeline *TimelineService) *ReportService {
	return &ReportService{buckets: buckets, timeline: timeline}
}

// Markdown renders the report as GitHub flavoured markdown
func (s *ReportService) Markdown(ctx context.Context) (string, error) {
	data, err := s.buckets.pipeline.Dataset(ctx)
	if err != nil {
		return "", err
	}
	charts, err := s.buckets.BuildAll(ctx)
	if err != nil {
		return "", err
	}
	window := s.timeline.DefaultWindow()
	tl, err := s.timeline.Build(ctx, TimelineRequest{Window: window})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.buckets.presets.Heading)
	fmt.Fprintf(&b, "%d reactor units from `%s`, ages as of %s.\n\n",
		len(data.Entries), data.Source, data.Now.Format(core.DateLayout))

	b.WriteString("## Status\n\n")
	b.WriteString("| Status | Units | Net capacity (MW) |\n|---|---:|---:|\n")
	for _, st := range reportStatuses {
		units := reactor.ByStatus(data.Entries, st)
		if len(units) == 0 {
			continue
		}
		capacity := 0.0
		for _, e := range units {
			if e.Reactor.HasCapacity {
				capacity += e.Reactor.NetCapacityMW
			}
		}
		fmt.Fprintf(&b, "| %s | %d | %.0f |\n", st.Label(), len(units), capacity)
	}
	b.WriteString("\n")

	for _, c := range charts {
		fmt.Fprintf(&b, "## %s\n\n", c.Donut.Title)
		b.WriteString("| Age group | Units | Share |\n|---|---:|---:|\n")
		for i, label := range c.Histogram.Scheme.Labels {
			fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", label, c.Histogram.Counts[i], 100*c.Histogram.Proportion(i))
		}
		b.WriteString("\n")

		sum, err := analysis.Summarize(reactor.Values(data.Entries, c.Metric))
		if err != nil {
			b.WriteString("No values.\n\n")
			continue
		}
		fmt.Fprintf(&b, "%d values: mean %.1f, median %.1f, range %.1f to %.1f, interquartile %.1f to %.1f years.\n\n",
			sum.Count, sum.Mean, sum.Median, sum.Min, sum.Max, sum.P25, sum.P75)
	}

	fmt.Fprintf(&b, "## Commissioning and decommissioning %d to %d\n\n", window.Start, window.End)
	operating, closed := 0, 0
	for _, series := range tl.Layout.Series {
		operating += len(series.Operating)
		closed += len(series.Decommissioned)
	}
	fmt.Fprintf(&b, "- Commissioned and still operating: %d\n", operating)
	fmt.Fprintf(&b, "- Decommissioned: %d\n", closed)
	fmt.Fprintf(&b, "- Countries: %d\n", len(tl.Layout.Series))
	if r := tl.Layout.Regression; r != nil {
		fmt.Fprintf(&b, "- Age at decommissioning trend: %+.2f years per year", r.AgeTrend())
		if r.Fit.PValue != nil {
			fmt.Fprintf(&b, " (p = %.3f, n = %d)", *r.Fit.PValue, r.Fit.N)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// HTML renders the markdown report to an HTML fragment
func (s *ReportService) HTML(ctx context.Context) ([]byte, error) {
	md, err := s.Markdown(ctx)
	if err != nil {
		return nil, err
	}
	return RenderMarkdown(md), nil
}

// RenderMarkdown converts markdown with tables to HTML
func RenderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}
