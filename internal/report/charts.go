package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/epidash/tbreport-cli/internal/analysis"
	"github.com/epidash/tbreport-cli/internal/regions"
)

// ErrNoData marks a chart whose required columns or values are absent. The
// report shows the slot as "no data" instead of failing.
var ErrNoData = errors.New("no data available for chart")

// Renderer draws charts to PNG and wraps them in Plotly containers. The
// mutex serializes access to the shared plot state (font handling, glyph
// caches) for the full draw-and-serialize step of each chart.
type Renderer struct {
	mu sync.Mutex
}

// NewRenderer returns a chart renderer.
func NewRenderer() *Renderer { return &Renderer{} }

func renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write png: %w", err)
	}
	return buf.Bytes(), nil
}

// LineChart draws yearly case totals with per-point value labels and a
// fitted trend line.
func (r *Renderer) LineChart(tr analysis.Trend) (string, error) {
	if len(tr.Years) == 0 {
		return "", ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := plot.New()
	p.Title.Text = "Total Pulmonary Lab Confirmed TB Cases Over Years"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Number of Cases"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(tr.Years))
	labelPts := make(plotter.XYs, len(tr.Years))
	labels := make([]string, len(tr.Years))
	xs := make([]float64, len(tr.Years))
	for i, y := range tr.Years {
		pts[i].X = float64(y)
		pts[i].Y = tr.Values[i]
		labelPts[i] = pts[i]
		labels[i] = humanCount(tr.Values[i])
		xs[i] = float64(y)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", fmt.Errorf("line: %w", err)
	}
	line.LineStyle.Width = vg.Points(3)
	line.LineStyle.Color = hexColor("#FF0E0E")

	markers, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("markers: %w", err)
	}
	markers.GlyphStyle.Shape = draw.CircleGlyph{}
	markers.GlyphStyle.Radius = vg.Points(5)
	markers.GlyphStyle.Color = hexColor("#03F32B")

	valueLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelPts, Labels: labels})
	if err != nil {
		return "", fmt.Errorf("labels: %w", err)
	}

	p.Add(line, markers, valueLabels)

	if len(tr.Years) >= 2 {
		alpha, beta := stat.LinearRegression(xs, tr.Values, nil, false)
		trend, err := plotter.NewLine(plotter.XYs{
			{X: xs[0], Y: alpha + beta*xs[0]},
			{X: xs[len(xs)-1], Y: alpha + beta*xs[len(xs)-1]},
		})
		if err != nil {
			return "", fmt.Errorf("trend line: %w", err)
		}
		trend.LineStyle.Color = color.Black
		trend.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(trend)
		p.Legend.Add(fmt.Sprintf("Trend Line (slope=%s cases/year)", humanCount(beta)), trend)
		p.Legend.Top = true
	}

	yearTicks := make([]plot.Tick, len(tr.Years))
	for i, y := range tr.Years {
		yearTicks[i] = plot.Tick{Value: float64(y), Label: strconv.Itoa(y)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(yearTicks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight

	png, err := renderPNG(p, 12*vg.Inch, 6*vg.Inch)
	if err != nil {
		return "", err
	}
	return wrapPNG(png, p.Title.Text, 1200, 600)
}

// BarChart draws the top countries by total cases.
func (r *Renderer) BarChart(top []analysis.CountryTotal) (string, error) {
	if len(top) == 0 {
		return "", ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Countries with Highest TB Cases", len(top))
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = "Total Cases"
	p.X.Label.Text = "Country"

	values := make(plotter.Values, len(top))
	names := make([]string, len(top))
	for i, ct := range top {
		values[i] = ct.Value
		names[i] = ct.Country
	}
	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return "", fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = hexColor("#E8713A")
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight

	png, err := renderPNG(p, 14*vg.Inch, 8*vg.Inch)
	if err != nil {
		return "", err
	}
	return wrapPNG(png, p.Title.Text, 1400, 800)
}

// PieChart draws the regional case distribution with percentage labels.
func (r *Renderer) PieChart(sums []analysis.RegionSummary) (string, error) {
	if len(sums) == 0 {
		return "", ErrNoData
	}
	total := 0.0
	for _, s := range sums {
		total += s.CasesSum
	}
	if total == 0 {
		return "", ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]chart.Value, 0, len(sums))
	for _, s := range sums {
		if s.CasesSum <= 0 {
			continue
		}
		pct := s.CasesSum / total * 100
		values = append(values, chart.Value{
			Value: s.CasesSum,
			Label: fmt.Sprintf("%s %.1f%% (%s)", regions.WHORegionName(s.Region), pct, humanCount(s.CasesSum)),
		})
	}
	pie := chart.PieChart{Width: 1000, Height: 800, Values: values}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("pie chart: %w", err)
	}
	return wrapPNG(buf.Bytes(), "TB Cases Distribution by WHO Region", 1000, 800)
}

// corrGrid adapts a correlation matrix to the heat map grid interface,
// masking the diagonal and upper triangle.
type corrGrid struct {
	cols   []string
	matrix [][]float64
}

func (g corrGrid) Dims() (c, r int) { return len(g.cols), len(g.cols) }
func (g corrGrid) X(c int) float64  { return float64(c) }
func (g corrGrid) Y(r int) float64  { return float64(r) }

func (g corrGrid) Z(c, r int) float64 {
	if c >= r {
		return math.NaN()
	}
	return g.matrix[r][c]
}

// HeatmapChart draws the lower triangle of the correlation matrix.
func (r *Renderer) HeatmapChart(corr *analysis.Correlation) (string, error) {
	if corr == nil || len(corr.Columns) < 2 {
		return "", ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := plot.New()
	p.Title.Text = "Correlation Matrix of Key TB Indicators"
	p.Title.TextStyle.Font.Size = vg.Points(16)

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	h := plotter.NewHeatMap(corrGrid{cols: corr.Columns, matrix: corr.Matrix}, cm.Palette(255))
	h.Min, h.Max = -1, 1
	p.Add(h)

	ticks := make([]plot.Tick, len(corr.Columns))
	for i, c := range corr.Columns {
		ticks[i] = plot.Tick{Value: float64(i), Label: c}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight

	png, err := renderPNG(p, 12*vg.Inch, 9*vg.Inch)
	if err != nil {
		return "", err
	}
	return wrapPNG(png, p.Title.Text, 1600, 1200)
}

var regionColors = map[string]string{
	"Africa":                "#FF6B6B",
	"Americas":              "#4ECDC4",
	"Eastern Mediterranean": "#45B7D1",
	"Europe":                "#96CEB4",
	"South-East Asia":       "#FFE194",
	"Western Pacific":       "#D4A5A5",
}

// ScatterChart draws new cases against MDR cases per region on log-log
// axes, with a linear trend and the Pearson correlation in the legend.
func (r *Renderer) ScatterChart(cases, mdr []float64, regionLabels []string) (string, error) {
	if len(cases) == 0 || len(mdr) == 0 || len(cases) != len(mdr) {
		return "", ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := plot.New()
	p.Title.Text = "Relationship Between New TB Cases and MDR-TB Cases by WHO Region"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Pulmonary Lab Confirmed New TB Cases"
	p.Y.Label.Text = "MDR-TB Cases"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	// Log axes require strictly positive coordinates.
	byRegion := map[string]plotter.XYs{}
	var xs, ys []float64
	for i := range cases {
		if math.IsNaN(cases[i]) || math.IsNaN(mdr[i]) {
			continue
		}
		xs = append(xs, cases[i])
		ys = append(ys, mdr[i])
		if cases[i] <= 0 || mdr[i] <= 0 {
			continue
		}
		label := ""
		if i < len(regionLabels) {
			label = regions.WHORegionName(regionLabels[i])
		}
		byRegion[label] = append(byRegion[label], plotter.XY{X: cases[i], Y: mdr[i]})
	}
	if len(byRegion) == 0 || len(xs) < 2 {
		return "", ErrNoData
	}

	names := make([]string, 0, len(byRegion))
	for name := range byRegion {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sc, err := plotter.NewScatter(byRegion[name])
		if err != nil {
			return "", fmt.Errorf("scatter %s: %w", name, err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		if hex, ok := regionColors[name]; ok {
			sc.GlyphStyle.Color = hexColor(hex)
		}
		p.Add(sc)
		p.Legend.Add(name, sc)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	pearson := stat.Correlation(xs, ys, nil)
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	var trendPts plotter.XYs
	for _, x := range sorted {
		y := alpha + beta*x
		if x > 0 && y > 0 {
			trendPts = append(trendPts, plotter.XY{X: x, Y: y})
		}
	}
	if len(trendPts) >= 2 {
		trend, err := plotter.NewLine(trendPts)
		if err != nil {
			return "", fmt.Errorf("trend line: %w", err)
		}
		trend.LineStyle.Color = hexColor("#D63031")
		trend.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(4)}
		p.Add(trend)
		p.Legend.Add(fmt.Sprintf("Trend (slope=%.4f, r=%.3f)", beta, pearson), trend)
	}
	p.Legend.Top = true

	png, err := renderPNG(p, 12*vg.Inch, 8*vg.Inch)
	if err != nil {
		return "", err
	}
	return wrapPNG(png, p.Title.Text, 1200, 800)
}

// BoxPlot draws the case distribution with dashed quartile markers.
func (r *Renderer) BoxPlot(values []float64) (string, error) {
	vals := dropNaN(values)
	if len(vals) == 0 {
		return "", ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := plot.New()
	p.Title.Text = "Distribution of New Pulmonary TB Cases"
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Y.Label.Text = "Number of Cases"
	p.Y.Min = 0

	b, err := plotter.NewBoxPlot(vg.Points(50), 0, plotter.Values(vals))
	if err != nil {
		return "", fmt.Errorf("box plot: %w", err)
	}
	b.FillColor = hexColor("#74B9FF")
	p.Add(b)
	p.NominalX("New Pulmonary TB Cases")

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	for _, q := range []float64{0.25, 0.5, 0.75} {
		v := stat.Quantile(q, stat.LinInterp, sorted, nil)
		marker, err := plotter.NewLine(plotter.XYs{{X: 0.2, Y: v}, {X: 0.45, Y: v}})
		if err != nil {
			return "", fmt.Errorf("quartile marker: %w", err)
		}
		marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		if q == 0.5 {
			marker.LineStyle.Color = hexColor("#E17055")
		} else {
			marker.LineStyle.Color = hexColor("#0984E3")
		}
		p.Add(marker)
	}

	png, err := renderPNG(p, 12*vg.Inch, 8*vg.Inch)
	if err != nil {
		return "", err
	}
	return wrapPNG(png, p.Title.Text, 1200, 800)
}

// RegionBoxPlot draws one box per region, colored by median.
func (r *Renderer) RegionBoxPlot(values []float64, regionLabels []string) (string, error) {
	if len(values) == 0 || len(values) != len(regionLabels) {
		return "", ErrNoData
	}
	byRegion := map[string][]float64{}
	for i, v := range values {
		label := regionLabels[i]
		if math.IsNaN(v) || label == "" || label == "NaN" {
			continue
		}
		name := regions.WHORegionName(label)
		byRegion[name] = append(byRegion[name], v)
	}
	if len(byRegion) == 0 {
		return "", ErrNoData
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(byRegion))
	for name := range byRegion {
		names = append(names, name)
	}
	sort.Strings(names)

	medians := make([]float64, len(names))
	minMed, maxMed := math.Inf(1), math.Inf(-1)
	for i, name := range names {
		sorted := append([]float64(nil), byRegion[name]...)
		sort.Float64s(sorted)
		medians[i] = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
		minMed = math.Min(minMed, medians[i])
		maxMed = math.Max(maxMed, medians[i])
	}

	p := plot.New()
	p.Title.Text = "TB Cases Distribution by WHO Region"
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Y.Label.Text = "Number of New Pulmonary Cases"
	p.X.Label.Text = "WHO Region"
	p.Y.Min = 0

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)
	for i, name := range names {
		b, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(byRegion[name]))
		if err != nil {
			return "", fmt.Errorf("box plot %s: %w", name, err)
		}
		norm := (medians[i] - minMed) / (maxMed - minMed + 1e-10)
		if c, err := cm.At(norm); err == nil {
			b.FillColor = c
		}
		p.Add(b)
	}
	p.NominalX(names...)

	png, err := renderPNG(p, 14*vg.Inch, 8*vg.Inch)
	if err != nil {
		return "", err
	}
	return wrapPNG(png, p.Title.Text, 1400, 800)
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// humanCount formats a count with thousands separators, no decimals.
func humanCount(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)
	var b []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, c)
	}
	if neg {
		return "-" + string(b)
	}
	return string(b)
}

// hexColor parses #RRGGBB; falls back to black on malformed input.
func hexColor(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{A: 255}
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}
}
