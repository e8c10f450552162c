// Package preprocess cleans the observation table: duplicate removal,
// region assignment and k-nearest-neighbour imputation of missing numeric
// values.
package preprocess

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/epidash/tbreport-cli/internal/dataset"
	"github.com/epidash/tbreport-cli/internal/regions"
)

// ErrNoData is returned when Preprocess is called without an input table.
var ErrNoData = errors.New("no data to preprocess")

// Preprocessor runs the cleaning pipeline. The raw table is retained
// untouched for before/after comparison.
type Preprocessor struct {
	raw       *dataset.Table
	processed *dataset.Table

	numericCols     []string
	categoricalCols []string
	k               int
}

// Summary describes what preprocessing did.
type Summary struct {
	OriginalShape      [2]int         `json:"original_shape"`
	FinalShape         [2]int         `json:"final_shape"`
	NumericalColumns   []string       `json:"numerical_columns"`
	CategoricalColumns []string       `json:"categorical_columns"`
	MissingBefore      map[string]int `json:"missing_values_before"`
	MissingAfter       map[string]int `json:"missing_values_after"`
}

// New builds a preprocessor over raw. k is the neighbour count for
// imputation; values below 1 fall back to 3.
func New(raw *dataset.Table, k int) *Preprocessor {
	if k < 1 {
		k = 3
	}
	return &Preprocessor{raw: raw, k: k}
}

// Preprocess runs the three ordered phases: deduplication, region
// assignment, imputation. The result has no duplicate rows and no missing
// numeric values; categorical columns are carried through unchanged.
func (p *Preprocessor) Preprocess() (*dataset.Table, error) {
	if p == nil || p.raw == nil {
		return nil, ErrNoData
	}
	slog.Info("starting preprocessing", slog.Int("rows", p.raw.Rows()), slog.Int("cols", p.raw.Cols()))

	t, err := p.raw.Dedup()
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}
	slog.Info("after removing duplicates", slog.Int("rows", t.Rows()))

	t, err = p.addRegionColumn(t)
	if err != nil {
		return nil, err
	}

	p.numericCols = t.NumericColumns()
	p.categoricalCols = t.CategoricalColumns()

	t, err = p.imputeMissing(t)
	if err != nil {
		return nil, err
	}

	p.processed = t
	slog.Info("preprocessing complete", slog.Int("rows", t.Rows()), slog.Int("cols", t.Cols()))
	return t, nil
}

// addRegionColumn maps each row's country to a continental region. Unmatched
// countries take the catch-all label.
func (p *Preprocessor) addRegionColumn(t *dataset.Table) (*dataset.Table, error) {
	countries, ok := t.Strings("country")
	if !ok {
		return nil, errors.New("preprocess: column country not found")
	}
	vals := make([]string, len(countries))
	for i, c := range countries {
		vals[i] = regions.Classify(c)
	}
	out, err := t.WithColumn("Region", vals)
	if err != nil {
		return nil, fmt.Errorf("add region column: %w", err)
	}
	return out, nil
}

// imputeMissing one-hot encodes the categorical columns, concatenates them
// with the numeric ones into a single matrix, runs KNN imputation over it,
// and reassembles a table with the imputed numeric columns and the original
// categorical columns reattached unchanged. Only numeric missingness is
// repaired; the encoded block exists purely to give the imputer categorical
// context.
func (p *Preprocessor) imputeMissing(t *dataset.Table) (*dataset.Table, error) {
	rows := t.Rows()
	nNum := len(p.numericCols)

	encoded := encodeCategoricals(t, p.categoricalCols)
	width := nNum + len(encoded)
	if rows == 0 || width == 0 {
		return t, nil
	}

	m := mat.NewDense(rows, width, nil)
	for j, col := range p.numericCols {
		vals, _ := t.Numeric(col)
		for i := 0; i < rows; i++ {
			m.Set(i, j, vals[i])
		}
	}
	for j, col := range encoded {
		for i := 0; i < rows; i++ {
			m.Set(i, nNum+j, col[i])
		}
	}

	imputed := KNNImpute(m, p.k)

	ses := make([]series.Series, 0, nNum+len(p.categoricalCols))
	for j, col := range p.numericCols {
		vals := make([]float64, rows)
		for i := 0; i < rows; i++ {
			vals[i] = imputed.At(i, j)
		}
		ses = append(ses, series.New(vals, series.Float, col))
	}
	for _, col := range p.categoricalCols {
		recs, _ := t.Strings(col)
		ses = append(ses, series.New(recs, series.String, col))
	}
	df := dataframe.New(ses...)
	return dataset.FromDataFrame(df)
}

// GetSummary reports shapes, the column split and missingness before and
// after the run. Valid after Preprocess.
func (p *Preprocessor) GetSummary() *Summary {
	s := &Summary{
		NumericalColumns:   p.numericCols,
		CategoricalColumns: p.categoricalCols,
		MissingBefore:      map[string]int{},
		MissingAfter:       map[string]int{},
	}
	if p.raw != nil {
		s.OriginalShape = [2]int{p.raw.Rows(), p.raw.Cols()}
		s.MissingBefore = p.raw.MissingCounts()
	}
	if p.processed != nil {
		s.FinalShape = [2]int{p.processed.Rows(), p.processed.Cols()}
		s.MissingAfter = p.processed.MissingCounts()
	}
	return s
}
