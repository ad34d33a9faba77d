package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"reactorviz/adapters/plotly"
	"reactorviz/adapters/static"
	"reactorviz/domain/core"
	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/errors"

	"golang.org/x/sync/errgroup"
)

const ManifestFile = "manifest.json"

// Artifact is one file written by a render
type Artifact struct {
	Chart  string `json:"chart"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Manifest describes a render run
type Manifest struct {
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Fingerprint core.Hash          `json:"fingerprint"`
	Now         time.Time          `json:"now"`
	CreatedAt   time.Time          `json:"created_at"`
	Window      reactor.YearWindow `json:"window"`
	Artifacts   []Artifact         `json:"artifacts"`
}

// RenderService writes every chart as an HTML page and a static image
type RenderService struct {
	buckets  *BucketService
	timeline *TimelineService
	renderer *static.Renderer
	format   string
	logger   *internal.Logger
}

// NewRenderService creates a render service. format is the image extension
// (png, svg, pdf, jpg).
func NewRenderService(buckets *BucketService, timeline *TimelineService, renderer *static.Renderer, format string, logger *internal.Logger) *RenderService {
	if renderer == nil {
		renderer = static.NewRenderer()
	}
	if format == "" {
		format = "png"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RenderService{buckets: buckets, timeline: timeline, renderer: renderer, format: format, logger: logger}
}

// RenderAll renders the bucket charts and the timeline concurrently into dir
// and writes manifest.json next to them.
func (s *RenderService) RenderAll(ctx context.Context, dir string) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.RenderError("output directory", err)
	}

	data, err := s.buckets.pipeline.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		ID:          core.NewID().String(),
		Source:      data.Source,
		Fingerprint: data.Fingerprint,
		Now:         data.Now,
		CreatedAt:   time.Now().UTC(),
		Window:      s.timeline.DefaultWindow(),
	}
	var mu sync.Mutex
	record := func(a ...Artifact) {
		mu.Lock()
		manifest.Artifacts = append(manifest.Artifacts, a...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range s.buckets.Metrics() {
		m := m
		g.Go(func() error {
			artifacts, err := s.renderBucket(gctx, dir, m)
			if err != nil {
				return err
			}
			record(artifacts...)
			return nil
		})
	}
	g.Go(func() error {
		artifacts, err := s.renderTimeline(gctx, dir)
		if err != nil {
			return err
		}
		record(artifacts...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(manifest.Artifacts, func(i, j int) bool {
		return manifest.Artifacts[i].Path < manifest.Artifacts[j].Path
	})
	if err := writeManifest(filepath.Join(dir, ManifestFile), manifest); err != nil {
		return nil, err
	}
	s.logger.Info("[RenderService] Rendered %d files to %s (run %s)", len(manifest.Artifacts), dir, manifest.ID)
	return manifest, nil
}

func (s *RenderService) renderBucket(ctx context.Context, dir string, m reactor.Metric) ([]Artifact, error) {
	c, err := s.buckets.Build(ctx, m)
	if err != nil {
		return nil, err
	}
	name := string(m)

	htmlPath := filepath.Join(dir, name+".html")
	if err := plotly.SaveHTML(htmlPath, c.Donut.Title, c.Figure); err != nil {
		return nil, errors.RenderError(name, err)
	}

	p, err := s.renderer.HalfDonut(c.Donut, s.buckets.Heading())
	if err != nil {
		return nil, errors.RenderError(name, err)
	}
	imgPath := filepath.Join(dir, name+"."+s.format)
	if err := s.renderer.Save(p, imgPath); err != nil {
		return nil, errors.RenderError(name, err)
	}
	s.logger.Debug("[RenderService] %s: %d reactors bucketed", name, c.Histogram.Total)

	return []Artifact{
		{Chart: name, Format: "html", Path: htmlPath},
		{Chart: name, Format: s.format, Path: imgPath},
	}, nil
}

func (s *RenderService) renderTimeline(ctx context.Context, dir string) ([]Artifact, error) {
	const name = "timeline"
	c, err := s.timeline.Build(ctx, TimelineRequest{Window: s.timeline.DefaultWindow()})
	if err != nil {
		return nil, err
	}

	htmlPath := filepath.Join(dir, name+".html")
	if err := plotly.SaveHTML(htmlPath, "Timeline", c.Figure); err != nil {
		return nil, errors.RenderError(name, err)
	}

	p, err := s.renderer.Timeline(c.Layout, static.Captions{
		Title:  c.Labels.Title,
		XTitle: c.Labels.XTitle,
		YTitle: c.Labels.YTitle,
	})
	if err != nil {
		return nil, errors.RenderError(name, err)
	}
	imgPath := filepath.Join(dir, name+"."+s.format)
	if err := s.renderer.Save(p, imgPath); err != nil {
		return nil, errors.RenderError(name, err)
	}

	return []Artifact{
		{Chart: name, Format: "html", Path: htmlPath},
		{Chart: name, Format: s.format, Path: imgPath},
	}, nil
}

func writeManifest(path string, m *Manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.RenderError("manifest", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.RenderError("manifest", err)
	}
	return nil
}
