package ui

import (
	"html/template"
	"net/http"
	"strings"

	"reactorviz/adapters/static"
	"reactorviz/domain/reactor"
	"reactorviz/internal/errors"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/plot"
)

type dashboardPage struct {
	page
	Figure template.JS
	Min    int
	Max    int
	Start  int
	End    int
	Marks  []int
	Count  int
}

type bucketRow struct {
	Label string
	Count int
}

type chartPage struct {
	page
	Metric     reactor.Metric
	Figure     template.JS
	Rows       []bucketRow
	Unbucketed int
}

type reportPage struct {
	page
	Body template.HTML
}

// Render costs against App.renders
const (
	donutCost    = 1
	timelineCost = 2
)

var imageTypes = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
	"pdf": "application/pdf",
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	window := a.services.Timeline.DashboardWindow()
	chart, err := a.services.Timeline.Build(r.Context(), timelineRequest(window))
	if err != nil {
		a.writeError(w, err)
		return
	}
	raw, err := chart.Figure.JSON()
	if err != nil {
		a.writeError(w, errors.RenderError("timeline", err))
		return
	}

	step := a.services.Timeline.MarkStep()
	var marks []int
	for y := window.Start; y <= window.End; y += step {
		marks = append(marks, y)
	}

	a.renderTemplate(w, "dashboard.html", dashboardPage{
		page:   a.page("Nuclear Power Plants in Europe"),
		Figure: template.JS(raw),
		Min:    window.Start,
		Max:    window.End,
		Start:  window.Start,
		End:    window.End,
		Marks:  marks,
		Count:  chart.Layout.Count,
	})
}

func (a *App) metricParam(r *http.Request) (reactor.Metric, error) {
	m, err := reactor.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		return "", errors.WithCode(errors.CodeNotFound, err)
	}
	return m, nil
}

func (a *App) handleChart(w http.ResponseWriter, r *http.Request) {
	m, err := a.metricParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	chart, err := a.services.Buckets.Build(r.Context(), m)
	if err != nil {
		a.writeError(w, err)
		return
	}
	raw, err := chart.Figure.JSON()
	if err != nil {
		a.writeError(w, errors.RenderError(string(m), err))
		return
	}

	rows := make([]bucketRow, len(chart.Histogram.Counts))
	for i, n := range chart.Histogram.Counts {
		rows[i] = bucketRow{Label: chart.Histogram.Scheme.Labels[i], Count: n}
	}
	a.renderTemplate(w, "chart.html", chartPage{
		page:       a.page(chart.Donut.Title),
		Metric:     m,
		Figure:     template.JS(raw),
		Rows:       rows,
		Unbucketed: chart.Histogram.Skipped,
	})
}

func imageFormat(r *http.Request) (string, string, error) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}
	contentType, ok := imageTypes[format]
	if !ok {
		return "", "", errors.InvalidInput("format must be png, svg or pdf")
	}
	return format, contentType, nil
}

// acquireRender waits for rendering capacity. The caller must release cost
// when it returns true.
func (a *App) acquireRender(w http.ResponseWriter, r *http.Request, cost int64) bool {
	if err := a.renders.Acquire(r.Context(), cost); err != nil {
		http.Error(w, "rendering capacity unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (a *App) writeImage(w http.ResponseWriter, p *plot.Plot, format, contentType string) {
	w.Header().Set("Content-Type", contentType)
	if err := a.services.Renderer.Write(w, p, format); err != nil {
		a.logger.Error("[UI] Error writing %s image: %v", format, err)
	}
}

func (a *App) handleChartImage(w http.ResponseWriter, r *http.Request) {
	m, err := a.metricParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	format, contentType, err := imageFormat(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	chart, err := a.services.Buckets.Build(r.Context(), m)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !a.acquireRender(w, r, donutCost) {
		return
	}
	defer a.renders.Release(donutCost)

	p, err := a.services.Renderer.HalfDonut(chart.Donut, a.services.Buckets.Heading())
	if err != nil {
		a.writeError(w, errors.RenderError(string(m), err))
		return
	}
	a.writeImage(w, p, format, contentType)
}

func (a *App) handleTimelineImage(w http.ResponseWriter, r *http.Request) {
	format, contentType, err := imageFormat(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	window, err := a.parseWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	chart, err := a.services.Timeline.Build(r.Context(), timelineRequest(window))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !a.acquireRender(w, r, timelineCost) {
		return
	}
	defer a.renders.Release(timelineCost)

	p, err := a.services.Renderer.Timeline(chart.Layout, static.Captions{
		Title:  chart.Labels.Title,
		XTitle: chart.Labels.XTitle,
		YTitle: chart.Labels.YTitle,
	})
	if err != nil {
		a.writeError(w, errors.RenderError("timeline", err))
		return
	}
	a.writeImage(w, p, format, contentType)
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	body, err := a.services.Report.HTML(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.renderTemplate(w, "report.html", reportPage{
		page: a.page("Report"),
		Body: template.HTML(body),
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}
	if data, err := a.services.Pipeline.Dataset(r.Context()); err != nil {
		status["status"] = "degraded"
		status["error"] = err.Error()
	} else {
		status["reactors"] = len(data.Entries)
		status["fingerprint"] = data.Fingerprint
		status["loaded_at"] = data.LoadedAt
	}
	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	a.writeJSON(w, code, status)
}
