package ui

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"reactorviz/adapters/plotly"
	"reactorviz/domain/reactor"
)

//go:embed templates/*.html
var templateFiles embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFiles, "templates/*.html")
}

// page carries the fields the shared header needs
type page struct {
	Title     string
	ScriptURL string
	Metrics   []reactor.Metric
}

func (a *App) page(title string) page {
	return page{Title: title, ScriptURL: plotly.ScriptURL, Metrics: a.services.Buckets.Metrics()}
}

// renderTemplate executes into a buffer first so a failing template never
// leaves a half-written page.
func (a *App) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("[UI] Template error for %s: %v", name, err)
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn("[UI] Error writing template response: %v", err)
	}
}
