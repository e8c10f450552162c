package report

import (
	"bytes"
	"fmt"
	"html/template"
)

// StatCard is one summary widget at the top of the report.
type StatCard struct {
	Title string
	Value string
}

// ChartSlot is one chart position in the document. Exactly one of Script,
// NoData or Err is meaningful; a failed or empty chart keeps its slot.
type ChartSlot struct {
	ID     string
	Title  string
	Script template.JS
	NoData bool
	Err    string
}

// Page is the template payload for the assembled report.
type Page struct {
	Title       string
	GeneratedAt string
	RunID       string
	Cards       []StatCard
	Charts      []ChartSlot
}

const plotlyCDN = "https://cdn.plot.ly/plotly-2.27.0.min.js"

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <script src="` + plotlyCDN + `"></script>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
        h1 { color: white; text-align: center; padding: 20px;
             background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
             border-radius: 10px; margin-bottom: 30px; }
        h2 { color: #34495e; margin-top: 30px; padding-bottom: 10px;
             border-bottom: 2px solid #3498db; }
        .chart-container { margin: 20px 0; background: white; padding: 20px;
             border-radius: 10px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .stats { display: grid; grid-template-columns: repeat(4, 1fr); gap: 20px; margin: 20px 0; }
        .stat-card { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
             color: white; padding: 20px; border-radius: 10px; text-align: center;
             box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .stat-card h3 { margin: 0 0 10px 0; font-size: 16px; opacity: 0.9; }
        .stat-card p { margin: 0; font-size: 24px; font-weight: bold; }
        .footer { text-align: center; margin-top: 30px; color: #7f8c8d;
             padding: 20px; border-top: 1px solid #ddd; }
        .timestamp { text-align: right; color: #7f8c8d; margin-bottom: 20px; font-style: italic; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="timestamp">Generated on: {{.GeneratedAt}}</div>

    <div class="stats">
{{- range .Cards}}
        <div class="stat-card"><h3>{{.Title}}</h3><p>{{.Value}}</p></div>
{{- end}}
    </div>

{{- range .Charts}}
    <div class="chart-container"><h2>{{.Title}}</h2>
{{- if .Err}}
        <p style="color:red">Error generating chart: {{.Err}}</p>
{{- else if .NoData}}
        <p style="color:orange">No data available for this chart</p>
{{- else}}
        <div id="{{.ID}}"></div>
        <script>{{.Script}}</script>
{{- end}}
    </div>
{{- end}}

    <div class="footer">
        <p>Report generated automatically by the TB surveillance reporting pipeline</p>
        <p>Data source: WHO TB surveillance data</p>
        <p>Run {{.RunID}}</p>
    </div>
</body>
</html>
`))

// chartScript builds the inline bootstrap for one Plotly container.
func chartScript(id, figureJSON string) template.JS {
	return template.JS(fmt.Sprintf("var %sFig = %s; Plotly.newPlot(%q, %sFig.data, %sFig.layout);",
		id, figureJSON, id, id, id))
}

// renderHTML executes the page template.
func renderHTML(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}
