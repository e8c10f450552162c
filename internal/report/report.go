// Package report renders the chart set and assembles the static HTML
// report. Each chart renders to a raster image wrapped in an interactive
// Plotly container; a failing chart degrades to an inline placeholder and
// never aborts the report.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/epidash/tbreport-cli/internal/analysis"
	"github.com/epidash/tbreport-cli/internal/dataset"
	"github.com/epidash/tbreport-cli/internal/utils"
)

// Reporter builds the report document from a processed table.
type Reporter struct {
	table    *dataset.Table
	an       *analysis.Analyzer
	renderer *Renderer
	topN     int
	runID    string
}

// NewReporter builds a reporter over a processed table. topN bounds the
// country ranking chart.
func NewReporter(t *dataset.Table, topN int) *Reporter {
	if topN <= 0 {
		topN = 10
	}
	return &Reporter{
		table:    t,
		an:       analysis.New(t),
		renderer: NewRenderer(),
		topN:     topN,
		runID:    uuid.NewString(),
	}
}

// RunID identifies this report generation.
func (r *Reporter) RunID() string { return r.runID }

// Generate renders all charts in fixed order and assembles the HTML
// document. Chart failures are isolated per slot.
func (r *Reporter) Generate() ([]byte, error) {
	page := Page{
		Title:       "TB Data Analysis Report",
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		RunID:       r.runID,
		Cards:       r.statCards(),
	}

	cases, _ := r.table.Numeric("pulm_labconf_new")
	mdr, _ := r.table.Numeric("mdr_new")
	regionLabels := r.regionLabels()

	charts := []struct {
		id    string
		title string
		fn    func() (string, error)
	}{
		{"line", "TB Cases Over Years", func() (string, error) {
			tr, ok := r.an.YearlyTrends()["pulm_labconf_new"]
			if !ok {
				return "", ErrNoData
			}
			return r.renderer.LineChart(tr)
		}},
		{"bar", "Top Countries by TB Cases", func() (string, error) {
			return r.renderer.BarChart(r.an.TopCountries("pulm_labconf_new", r.topN))
		}},
		{"pie", "Regional Distribution", func() (string, error) {
			return r.renderer.PieChart(r.an.RegionalSummary())
		}},
		{"correlation", "Correlation Matrix", func() (string, error) {
			return r.renderer.HeatmapChart(r.an.CorrelationAnalysis())
		}},
		{"scatter", "TB vs MDR-TB Cases", func() (string, error) {
			return r.renderer.ScatterChart(cases, mdr, regionLabels)
		}},
		{"boxplot", "Distribution of TB Cases", func() (string, error) {
			return r.renderer.BoxPlot(cases)
		}},
		{"regionBoxplot", "Distribution by Region", func() (string, error) {
			return r.renderer.RegionBoxPlot(cases, regionLabels)
		}},
	}

	for _, c := range charts {
		page.Charts = append(page.Charts, r.renderSlot(c.id, c.title, c.fn))
	}
	return renderHTML(page)
}

// renderSlot runs one chart builder, converting panics and errors into
// placeholder slots so a single chart cannot abort the report.
func (r *Reporter) renderSlot(id, title string, fn func() (string, error)) (slot ChartSlot) {
	slot = ChartSlot{ID: id, Title: title}
	defer func() {
		if p := recover(); p != nil {
			slog.Error("chart panicked", slog.String("chart", id), slog.Any("panic", p))
			slot.Err = fmt.Sprintf("%v", p)
		}
	}()
	slog.Debug("generating chart", slog.String("chart", id))
	figJSON, err := fn()
	switch {
	case errors.Is(err, ErrNoData):
		slot.NoData = true
	case err != nil:
		slog.Error("chart failed", slog.String("chart", id), slog.String("error", err.Error()))
		slot.Err = err.Error()
	default:
		slot.Script = chartScript(id, figJSON)
	}
	return slot
}

// WriteFile generates the report and writes it to path, creating the
// directory if needed.
func (r *Reporter) WriteFile(path string) error {
	html, err := r.Generate()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	if err := utils.SafeWriteFile(path, html); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("report written", slog.String("path", path), slog.String("run_id", r.runID))
	return nil
}

// statCards computes the summary widgets shown above the charts.
func (r *Reporter) statCards() []StatCard {
	sum := func(col string) float64 {
		vals, ok := r.table.Numeric(col)
		if !ok {
			return 0
		}
		total := 0.0
		for _, v := range vals {
			if !math.IsNaN(v) {
				total += v
			}
		}
		return total
	}
	yearsRange := "N/A"
	if years, ok := r.table.Numeric("year"); ok {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, y := range years {
			if math.IsNaN(y) {
				continue
			}
			lo = math.Min(lo, y)
			hi = math.Max(hi, y)
		}
		if lo <= hi {
			yearsRange = fmt.Sprintf("%d-%d", int(lo), int(hi))
		}
	}
	return []StatCard{
		{Title: "Total TB Cases", Value: humanCount(sum("pulm_labconf_new"))},
		{Title: "Total MDR-TB", Value: humanCount(sum("mdr_new"))},
		{Title: "Total XDR-TB", Value: humanCount(sum("xdr"))},
		{Title: "Years", Value: yearsRange},
	}
}

// regionLabels prefers the WHO region code column over the derived Region
// column.
func (r *Reporter) regionLabels() []string {
	if labels, ok := r.table.Strings("g_whoregion"); ok {
		return labels
	}
	labels, _ := r.table.Strings("Region")
	return labels
}
