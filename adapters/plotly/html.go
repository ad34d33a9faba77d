package plotly

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ScriptURL is the plotly.js bundle referenced by generated pages.
const ScriptURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/figure.html"))

type pageData struct {
	Title     string
	ScriptURL string
	Figure    template.JS
}

// JSON encodes the figure for plotly.js.
func (f Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// WriteHTML writes a standalone page that draws the figure.
func WriteHTML(w io.Writer, title string, fig Figure) error {
	raw, err := fig.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{
		Title:     title,
		ScriptURL: ScriptURL,
		Figure:    template.JS(raw),
	}); err != nil {
		return fmt.Errorf("failed to render figure page: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// SaveHTML writes the page to path.
func SaveHTML(path, title string, fig Figure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteHTML(f, title, fig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
