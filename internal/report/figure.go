package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// plotlyFigure mirrors the subset of the Plotly figure schema we emit: an
// empty data array and a layout whose background image is the rendered PNG.
// The raster stays the source of truth; Plotly supplies the interactive
// container (pan, zoom disabled axes, export toolbar).
type plotlyFigure struct {
	Data   []any        `json:"data"`
	Layout plotlyLayout `json:"layout"`
}

type plotlyLayout struct {
	Title   plotlyTitle   `json:"title"`
	XAxis   plotlyAxis    `json:"xaxis"`
	YAxis   plotlyAxis    `json:"yaxis"`
	Images  []plotlyImage `json:"images"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Margin  plotlyMargin  `json:"margin"`
	PaperBG string        `json:"paper_bgcolor"`
	PlotBG  string        `json:"plot_bgcolor"`
}

type plotlyTitle struct {
	Text string     `json:"text"`
	Font plotlyFont `json:"font"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
}

type plotlyFont struct {
	Size   int    `json:"size"`
	Family string `json:"family"`
}

type plotlyAxis struct {
	Visible bool `json:"visible"`
}

type plotlyImage struct {
	Source string  `json:"source"`
	XRef   string  `json:"xref"`
	YRef   string  `json:"yref"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	SizeX  float64 `json:"sizex"`
	SizeY  float64 `json:"sizey"`
	Sizing string  `json:"sizing"`
	Layer  string  `json:"layer"`
}

type plotlyMargin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// wrapPNG embeds a rendered PNG into a Plotly figure and returns its JSON.
func wrapPNG(png []byte, title string, width, height int) (string, error) {
	fig := plotlyFigure{
		Data: []any{},
		Layout: plotlyLayout{
			Title: plotlyTitle{
				Text: title,
				Font: plotlyFont{Size: 20, Family: "Arial Black"},
				X:    0.5,
				Y:    0.98,
			},
			XAxis: plotlyAxis{Visible: false},
			YAxis: plotlyAxis{Visible: false},
			Images: []plotlyImage{{
				Source: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
				XRef:   "paper",
				YRef:   "paper",
				X:      0,
				Y:      1,
				SizeX:  1,
				SizeY:  1,
				Sizing: "stretch",
				Layer:  "below",
			}},
			Width:   width,
			Height:  height,
			Margin:  plotlyMargin{L: 0, R: 0, T: 50, B: 0},
			PaperBG: "white",
			PlotBG:  "white",
		},
	}
	b, err := json.Marshal(fig)
	if err != nil {
		return "", fmt.Errorf("marshal figure: %w", err)
	}
	return string(b), nil
}
