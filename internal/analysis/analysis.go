// Package analysis computes descriptive statistics over a processed
// observation table. All operations are stateless reads that degrade to
// empty results when a required column is absent.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/epidash/tbreport-cli/internal/dataset"
)

// KeyMetrics are the TB indicator columns summarized by default.
var KeyMetrics = []string{"pulm_labconf_new", "mdr_new", "xdr"}

// CorrelationVars are the variables considered for pairwise correlation.
var CorrelationVars = []string{"pulm_labconf_new", "mdr_new", "xdr", "year"}

// MetricStats holds descriptive statistics for one metric.
type MetricStats struct {
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Trend holds per-year sums and the two-point growth rate.
type Trend struct {
	Years      []int     `json:"years"`
	Values     []float64 `json:"values"`
	GrowthRate float64   `json:"growth_rate"`
}

// CountryTotal is one row of a top-N ranking.
type CountryTotal struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// RegionSummary aggregates cases per region.
type RegionSummary struct {
	Region    string  `json:"region"`
	CasesSum  float64 `json:"cases_sum"`
	CasesMean float64 `json:"cases_mean"`
	Count     int     `json:"count"`
	MDRSum    float64 `json:"mdr_sum"`
	XDRSum    float64 `json:"xdr_sum"`
}

// CorrPair is one pairwise Pearson correlation.
type CorrPair struct {
	Var1 string  `json:"var1"`
	Var2 string  `json:"var2"`
	R    float64 `json:"correlation"`
}

// Correlation holds the matrix over available variables plus the strongest
// pairs ranked by |r|.
type Correlation struct {
	Columns  []string    `json:"columns"`
	Matrix   [][]float64 `json:"matrix"`
	Pairs    []CorrPair  `json:"pairs"`
	TopPairs []CorrPair  `json:"top_pairs"`
}

// Analyzer reads a processed table.
type Analyzer struct {
	t *dataset.Table
}

// New builds an analyzer over t.
func New(t *dataset.Table) *Analyzer {
	return &Analyzer{t: t}
}

// SummaryStatistics returns total/mean/median/std/min/max for each key
// metric present in the table.
func (a *Analyzer) SummaryStatistics() map[string]MetricStats {
	out := make(map[string]MetricStats)
	for _, metric := range KeyMetrics {
		vals, ok := a.observed(metric)
		if !ok || len(vals) == 0 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		out[metric] = MetricStats{
			Total:  floats.Sum(vals),
			Mean:   stat.Mean(vals, nil),
			Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
			Std:    stat.StdDev(vals, nil),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
		}
	}
	return out
}

// YearlyTrends returns per-year sums and growth rate for each key metric.
// Empty map when the table has no year column.
func (a *Analyzer) YearlyTrends() map[string]Trend {
	out := make(map[string]Trend)
	if !a.t.HasColumn("year") {
		return out
	}
	for _, metric := range KeyMetrics {
		if tr, ok := a.yearlySums(metric); ok {
			out[metric] = tr
		}
	}
	return out
}

// MDRTrend returns the multidrug-resistant TB per-year sums.
func (a *Analyzer) MDRTrend() (Trend, bool) {
	if !a.t.HasColumn("year") {
		return Trend{}, false
	}
	return a.yearlySums("mdr_new")
}

// yearlySums groups the metric by year. The growth rate compares the first
// and last year-group only.
func (a *Analyzer) yearlySums(metric string) (Trend, bool) {
	vals, ok := a.t.Numeric(metric)
	if !ok {
		return Trend{}, false
	}
	years, ok := a.t.Numeric("year")
	if !ok {
		return Trend{}, false
	}
	sums := map[int]float64{}
	for i, y := range years {
		if math.IsNaN(y) || math.IsNaN(vals[i]) {
			continue
		}
		sums[int(y)] += vals[i]
	}
	tr := Trend{Years: make([]int, 0, len(sums)), Values: make([]float64, 0, len(sums))}
	for y := range sums {
		tr.Years = append(tr.Years, y)
	}
	sort.Ints(tr.Years)
	for _, y := range tr.Years {
		tr.Values = append(tr.Values, sums[y])
	}
	tr.GrowthRate = growthRate(tr.Values)
	return tr, true
}

// growthRate is the two-point rate between first and last value, percent.
// Zero for fewer than two points or a zero first value.
func growthRate(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	return (values[len(values)-1] - values[0]) / values[0] * 100
}

// TopCountries ranks countries by summed metric value, descending, at most
// n entries. Nil when the metric or country column is absent.
func (a *Analyzer) TopCountries(metric string, n int) []CountryTotal {
	vals, ok := a.t.Numeric(metric)
	if !ok {
		return nil
	}
	countries, ok := a.t.Strings("country")
	if !ok {
		return nil
	}
	sums := map[string]float64{}
	var order []string
	for i, c := range countries {
		if c == "" || c == "NaN" || math.IsNaN(vals[i]) {
			continue
		}
		if _, seen := sums[c]; !seen {
			order = append(order, c)
		}
		sums[c] += vals[i]
	}
	out := make([]CountryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, CountryTotal{Country: c, Value: sums[c]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RegionalSummary aggregates cases per region, preferring the WHO region
// code column over the derived Region column. Sorted by region name.
func (a *Analyzer) RegionalSummary() []RegionSummary {
	regionCol := "g_whoregion"
	if !a.t.HasColumn(regionCol) {
		regionCol = "Region"
	}
	labels, ok := a.t.Strings(regionCol)
	if !ok {
		return nil
	}
	cases, haveCases := a.t.Numeric("pulm_labconf_new")
	mdr, haveMDR := a.t.Numeric("mdr_new")
	xdr, haveXDR := a.t.Numeric("xdr")
	if !haveCases {
		return nil
	}

	byRegion := map[string]*RegionSummary{}
	for i, label := range labels {
		if label == "" || label == "NaN" {
			continue
		}
		rs := byRegion[label]
		if rs == nil {
			rs = &RegionSummary{Region: label}
			byRegion[label] = rs
		}
		if !math.IsNaN(cases[i]) {
			rs.CasesSum += cases[i]
			rs.Count++
		}
		if haveMDR && !math.IsNaN(mdr[i]) {
			rs.MDRSum += mdr[i]
		}
		if haveXDR && !math.IsNaN(xdr[i]) {
			rs.XDRSum += xdr[i]
		}
	}
	out := make([]RegionSummary, 0, len(byRegion))
	for _, rs := range byRegion {
		if rs.Count > 0 {
			rs.CasesMean = rs.CasesSum / float64(rs.Count)
		}
		out = append(out, *rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

// CorrelationAnalysis computes the Pearson matrix over the available
// correlation variables plus the five strongest pairs by |r|. Nil when
// fewer than two variables are present.
func (a *Analyzer) CorrelationAnalysis() *Correlation {
	var cols []string
	data := map[string][]float64{}
	for _, v := range CorrelationVars {
		if vals, ok := a.t.Numeric(v); ok {
			cols = append(cols, v)
			data[v] = vals
		}
	}
	if len(cols) < 2 {
		return nil
	}

	n := len(cols)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	var pairs []CorrPair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pairwiseCorrelation(data[cols[i]], data[cols[j]])
			matrix[i][j], matrix[j][i] = r, r
			pairs = append(pairs, CorrPair{Var1: cols[i], Var2: cols[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	top := pairs
	if len(top) > 5 {
		top = top[:5]
	}
	return &Correlation{Columns: cols, Matrix: matrix, Pairs: pairs, TopPairs: top}
}

// pairwiseCorrelation computes Pearson r over rows where both values are
// observed; 0 when fewer than two complete pairs or zero variance.
func pairwiseCorrelation(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// observed returns a metric's non-NaN values, false when the column is
// absent.
func (a *Analyzer) observed(metric string) ([]float64, bool) {
	vals, ok := a.t.Numeric(metric)
	if !ok {
		return nil, false
	}
	out := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, true
}
