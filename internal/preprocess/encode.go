package preprocess

import (
	"sort"

	"github.com/epidash/tbreport-cli/internal/dataset"
)

// encodeCategoricals one-hot encodes the given categorical columns into 0/1
// indicator columns. The first category of each column (sorted order) is
// dropped as the reference; missing or unseen values encode to all zeros.
func encodeCategoricals(t *dataset.Table, cols []string) [][]float64 {
	rows := t.Rows()
	var out [][]float64
	for _, col := range cols {
		recs, ok := t.Strings(col)
		if !ok {
			continue
		}
		cats := distinctCategories(recs)
		if len(cats) < 2 {
			// A single category carries no information once the
			// reference is dropped.
			continue
		}
		for _, cat := range cats[1:] {
			ind := make([]float64, rows)
			for i, v := range recs {
				if v == cat {
					ind[i] = 1
				}
			}
			out = append(out, ind)
		}
	}
	return out
}

// distinctCategories returns the sorted distinct non-missing values.
func distinctCategories(recs []string) []string {
	set := map[string]bool{}
	for _, v := range recs {
		if v == "" || v == "NaN" {
			continue
		}
		set[v] = true
	}
	cats := make([]string, 0, len(set))
	for v := range set {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	return cats
}
