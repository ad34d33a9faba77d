package plotly

// Figure is the JSON document plotly.js renders: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace covers the scatter and barpolar traces used by the charts.
type Trace struct {
	Type          string    `json:"type"`
	Name          string    `json:"name,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	X             []any     `json:"x,omitempty"`
	Y             []float64 `json:"y,omitempty"`
	R             []float64 `json:"r,omitempty"`
	Theta         []float64 `json:"theta,omitempty"`
	Width         []float64 `json:"width,omitempty"`
	Text          []string  `json:"text,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	LegendGroup   string    `json:"legendgroup,omitempty"`
	ShowLegend    bool      `json:"showlegend"`
	Marker        *Marker   `json:"marker,omitempty"`
	Line          *Line     `json:"line,omitempty"`
}

type Marker struct {
	Color any       `json:"color,omitempty"`
	Size  []float64 `json:"size,omitempty"`
	Line  *Line     `json:"line,omitempty"`
}

type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

type Font struct {
	Family string `json:"family,omitempty"`
	Color  string `json:"color,omitempty"`
	Size   int    `json:"size,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type HoverLabel struct {
	Font Font `json:"font"`
}

// Layout is the subset of plotly layout attributes the charts set.
type Layout struct {
	Title       *Title       `json:"title,omitempty"`
	Width       int          `json:"width,omitempty"`
	Height      int          `json:"height,omitempty"`
	PlotBG      string       `json:"plot_bgcolor,omitempty"`
	PaperBG     string       `json:"paper_bgcolor,omitempty"`
	Font        *Font        `json:"font,omitempty"`
	HoverLabel  *HoverLabel  `json:"hoverlabel,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	Polar       *Polar       `json:"polar,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	Legend      *Legend      `json:"legend,omitempty"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

type Axis struct {
	Title          *Title  `json:"title,omitempty"`
	Range          []any   `json:"range,omitempty"`
	Visible        *bool   `json:"visible,omitempty"`
	ShowGrid       *bool   `json:"showgrid,omitempty"`
	GridWidth      float64 `json:"gridwidth,omitempty"`
	GridColor      string  `json:"gridcolor,omitempty"`
	ShowTickLabels *bool   `json:"showticklabels,omitempty"`
	Direction      string  `json:"direction,omitempty"`
	Rotation       float64 `json:"rotation,omitempty"`
}

type Polar struct {
	Hole        float64   `json:"hole"`
	Sector      []float64 `json:"sector"`
	BarGap      float64   `json:"bargap"`
	RadialAxis  *Axis     `json:"radialaxis,omitempty"`
	AngularAxis *Axis     `json:"angularaxis,omitempty"`
}

type Legend struct {
	Orientation   string  `json:"orientation,omitempty"`
	X             float64 `json:"x,omitempty"`
	Y             float64 `json:"y,omitempty"`
	XAnchor       string  `json:"xanchor,omitempty"`
	YAnchor       string  `json:"yanchor,omitempty"`
	TraceOrder    string  `json:"traceorder,omitempty"`
	TraceGroupGap int     `json:"tracegroupgap,omitempty"`
	ItemWidth     int     `json:"itemwidth,omitempty"`
}

type Shape struct {
	Type string  `json:"type"`
	X0   any     `json:"x0"`
	X1   any     `json:"x1"`
	Y0   float64 `json:"y0"`
	Y1   float64 `json:"y1"`
	XRef string  `json:"xref,omitempty"`
	YRef string  `json:"yref,omitempty"`
	Line *Line   `json:"line,omitempty"`
}

type Annotation struct {
	Text      string  `json:"text"`
	X         any     `json:"x"`
	Y         any     `json:"y"`
	XRef      string  `json:"xref,omitempty"`
	YRef      string  `json:"yref,omitempty"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
	ShowArrow bool    `json:"showarrow"`
	Align     string  `json:"align,omitempty"`
	Font      *Font   `json:"font,omitempty"`
	TextAngle float64 `json:"textangle"`
}

func boolPtr(b bool) *bool { return &b }

const transparent = "rgba(0, 0, 0, 0)"
