package ui

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"runtime"
	"time"

	"reactorviz/adapters/static"
	"reactorviz/app"
	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"
)

// Services are the application services the UI reads from
type Services struct {
	Pipeline *app.Pipeline
	Buckets  *app.BucketService
	Timeline *app.TimelineService
	Report   *app.ReportService
	// Publish is nil when no database is configured
	Publish  *app.PublishService
	Renderer *static.Renderer
}

// App represents the dashboard application
type App struct {
	router    *chi.Mux
	services  Services
	templates *template.Template
	logger    *internal.Logger
	server    *http.Server

	// renders bounds concurrent static image rendering
	renders *semaphore.Weighted
}

// Config holds UI application configuration. GinMode, when set, is applied
// to the gin API before it is built.
type Config struct {
	Port    string
	GinMode string
}

// NewApp creates the dashboard with its chi page routes and the gin API
// mounted at /api
func NewApp(config Config, services Services, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if services.Renderer == nil {
		services.Renderer = static.NewRenderer()
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}
	if config.Port == "" {
		config.Port = "8050"
	}
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	a := &App{
		router:    chi.NewRouter(),
		services:  services,
		templates: templates,
		logger:    logger,
		renders:   semaphore.NewWeighted(int64(max(runtime.NumCPU(), timelineCost))),
	}
	a.server = &http.Server{
		Addr:              ":" + config.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleDashboard)
	a.router.Get("/charts/{metric}", a.handleChart)
	a.router.Get("/charts/{metric}/image", a.handleChartImage)
	a.router.Get("/timeline/image", a.handleTimelineImage)
	a.router.Get("/report", a.handleReport)
	a.router.Get("/healthz", a.handleHealth)

	a.router.Mount("/api", a.newAPI())
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start serves until Shutdown is called
func (a *App) Start() error {
	a.logger.Info("[UI] Dashboard listening on %s", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("[UI] Error writing JSON response: %v", err)
	}
}

// writeError renders service errors for page routes
func (a *App) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("[UI] %v", err)
	}
	http.Error(w, err.Error(), status)
}

func timelineRequest(w reactor.YearWindow) app.TimelineRequest {
	return app.TimelineRequest{Window: w, Dashboard: true}
}
