package container

import (
	"context"

	"reactorviz/adapters/excel"
	"reactorviz/adapters/postgres"
	"reactorviz/adapters/static"
	"reactorviz/app"
	"reactorviz/internal"
	"reactorviz/internal/chart"
	"reactorviz/internal/config"
	"reactorviz/internal/errors"
	"reactorviz/ports"
	"reactorviz/ui"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config  *config.Config
	Presets *config.Presets
	Logger  *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Source  ports.ReactorSource
	Clock   ports.Clock
	Palette *chart.Palette
	RunRepo ports.RunRepository

	// Services
	Pipeline *app.Pipeline
	Buckets  *app.BucketService
	Timeline *app.TimelineService
	Render   *app.RenderService
	Report   *app.ReportService
	Export   *app.ExportService
	Publish  *app.PublishService
}

// New wires the spreadsheet source and every service. The database is
// optional and attached with InitWithDatabase.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	}

	presets, err := config.LoadPresets(cfg.Data.PresetsFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load presets")
	}
	palette, err := presets.Palette()
	if err != nil {
		return nil, err
	}

	columns := excel.DefaultColumns()
	for field, aliases := range presets.Columns {
		columns[field] = aliases
	}
	source := excel.NewSource(excel.ExcelConfig{
		FilePath: cfg.Data.File,
		Sheet:    cfg.Data.Sheet,
		Columns:  columns,
	}, logger)

	c := &Container{
		Config:  cfg,
		Presets: presets,
		Logger:  logger,
		Source:  source,
		Clock:   ports.ClockFor(cfg.Now),
		Palette: palette,
	}
	c.initServices()
	return c, nil
}

func (c *Container) initServices() {
	c.Pipeline = app.NewPipeline(c.Source, c.Clock, c.Config.Data.CacheTTL, c.Logger)
	c.Buckets = app.NewBucketService(c.Pipeline, c.Presets, c.Palette)
	c.Timeline = app.NewTimelineService(c.Pipeline, c.Presets, c.Palette, c.Config.Window)
	c.Render = app.NewRenderService(c.Buckets, c.Timeline, static.NewRenderer(), c.Config.Output.ImageFormat, c.Logger)
	c.Report = app.NewReportService(c.Buckets, c.Timeline)
	c.Export = app.NewExportService(c.Buckets, excel.NewWriter(c.Logger))
	c.Publish = app.NewPublishService(c.Pipeline, nil, c.Logger)
}

// InitWithDatabase opens DATABASE_URL and attaches the publication store.
func (c *Container) InitWithDatabase(ctx context.Context) error {
	db, err := postgres.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.RunRepo = postgres.NewReactorRepository(db)
	c.Publish = app.NewPublishService(c.Pipeline, c.RunRepo, c.Logger)
	c.Logger.Info("[Container] Publication database attached")
	return nil
}

// UIServices hands the dashboard its services. Publication endpoints stay
// disabled until a database is attached.
func (c *Container) UIServices() ui.Services {
	s := ui.Services{
		Pipeline: c.Pipeline,
		Buckets:  c.Buckets,
		Timeline: c.Timeline,
		Report:   c.Report,
		Renderer: static.NewRenderer(),
	}
	if c.RunRepo != nil {
		s.Publish = c.Publish
	}
	return s
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	defer c.Logger.Sync()
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
