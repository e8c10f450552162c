// Package dataset loads the TB surveillance table from cache or the remote
// source and exposes shape, dtype and preview metadata.
package dataset

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is the observation table: rows keyed by (country, year) with
// numeric indicator columns and categorical context columns.
type Table struct {
	df dataframe.DataFrame
}

// rowKeySep joins cell values into a dedup key. Unit separator to avoid
// collisions with commas inside values.
const rowKeySep = "\x1f"

// FromDataFrame wraps an existing dataframe.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("dataframe: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// ReadCSV parses a CSV stream into a table with detected column types.
func ReadCSV(r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", "NA", "NaN"}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// FromRecords builds a table from raw records, header row first.
func FromRecords(records [][]string) (*Table, error) {
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", "NA", "NaN"}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// DataFrame exposes the underlying dataframe.
func (t *Table) DataFrame() dataframe.DataFrame { return t.df }

// Rows returns the number of observation rows.
func (t *Table) Rows() int { return t.df.Nrow() }

// Cols returns the number of columns.
func (t *Table) Cols() int { return t.df.Ncol() }

// Names returns the column names in order.
func (t *Table) Names() []string { return t.df.Names() }

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// NumericColumns returns the names of int- and float-typed columns.
func (t *Table) NumericColumns() []string {
	var out []string
	types := t.df.Types()
	for i, n := range t.df.Names() {
		if types[i] == series.Int || types[i] == series.Float {
			out = append(out, n)
		}
	}
	return out
}

// CategoricalColumns returns the names of string-typed columns.
func (t *Table) CategoricalColumns() []string {
	var out []string
	types := t.df.Types()
	for i, n := range t.df.Names() {
		if types[i] == series.String {
			out = append(out, n)
		}
	}
	return out
}

// Numeric extracts a column as floats, NaN for missing values. The second
// return is false when the column is absent.
func (t *Table) Numeric(name string) ([]float64, bool) {
	if !t.HasColumn(name) {
		return nil, false
	}
	return t.df.Col(name).Float(), true
}

// Strings extracts a column as raw string records.
func (t *Table) Strings(name string) ([]string, bool) {
	if !t.HasColumn(name) {
		return nil, false
	}
	return t.df.Col(name).Records(), true
}

// WithColumn returns a new table with a string column added or replaced.
func (t *Table) WithColumn(name string, values []string) (*Table, error) {
	if len(values) != t.Rows() {
		return nil, fmt.Errorf("column %s: %d values for %d rows", name, len(values), t.Rows())
	}
	df := t.df.Mutate(series.New(values, series.String, name))
	if df.Err != nil {
		return nil, fmt.Errorf("mutate %s: %w", name, df.Err)
	}
	return &Table{df: df}, nil
}

// Records returns all rows as strings, header row first.
func (t *Table) Records() [][]string { return t.df.Records() }

// Head returns up to n data rows (header excluded).
func (t *Table) Head(n int) [][]string {
	recs := t.df.Records()
	if len(recs) <= 1 {
		return nil
	}
	body := recs[1:]
	if n < len(body) {
		body = body[:n]
	}
	out := make([][]string, len(body))
	for i, r := range body {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Dedup drops exact duplicate rows by full-row equality, keeping the first
// occurrence.
func (t *Table) Dedup() (*Table, error) {
	recs := t.df.Records()
	if len(recs) <= 1 {
		return t, nil
	}
	out := [][]string{recs[0]}
	seen := make(map[string]bool, len(recs)-1)
	for _, row := range recs[1:] {
		key := strings.Join(row, rowKeySep)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	if len(out) == len(recs) {
		return t, nil
	}
	return FromRecords(out)
}

// MissingCounts counts missing cells per column: NaN in numeric columns,
// empty or NaN records in categorical ones.
func (t *Table) MissingCounts() map[string]int {
	out := make(map[string]int, t.Cols())
	types := t.df.Types()
	for i, name := range t.df.Names() {
		n := 0
		switch types[i] {
		case series.String:
			for _, v := range t.df.Col(name).Records() {
				if v == "" || v == "NaN" {
					n++
				}
			}
		default:
			for _, v := range t.df.Col(name).Float() {
				if math.IsNaN(v) {
					n++
				}
			}
		}
		out[name] = n
	}
	return out
}

// Unique returns the number of distinct non-missing values in a column,
// or 0 when the column is absent.
func (t *Table) Unique(name string) int {
	vals, ok := t.Strings(name)
	if !ok {
		return 0
	}
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		if v == "" || v == "NaN" {
			continue
		}
		set[v] = true
	}
	return len(set)
}

// WriteCSV serializes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	if err := t.df.WriteCSV(w, dataframe.WriteHeader(true)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
