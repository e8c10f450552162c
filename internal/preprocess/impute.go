package preprocess

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KNNImpute returns a copy of m with every NaN entry replaced by the mean
// of that column over the k nearest rows, measured by NaN-aware Euclidean
// distance on the remaining columns. Donor rows always contribute their
// original (pre-imputation) values. When no donor is reachable the column
// mean is used; a column with no observed values at all imputes to zero.
func KNNImpute(m *mat.Dense, k int) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.DenseCopyOf(m)
	if rows == 0 || cols == 0 {
		return out
	}
	if k < 1 {
		k = 1
	}

	colMeans := columnMeans(m)

	type donor struct {
		row  int
		dist float64
	}

	for i := 0; i < rows; i++ {
		var missing []int
		for j := 0; j < cols; j++ {
			if math.IsNaN(m.At(i, j)) {
				missing = append(missing, j)
			}
		}
		if len(missing) == 0 {
			continue
		}

		// Distance from row i to every other row, over mutually
		// observed coordinates, scaled back up to full width
		// (scikit-learn's nan_euclidean convention).
		dists := make([]float64, rows)
		for r := 0; r < rows; r++ {
			if r == i {
				dists[r] = math.NaN()
				continue
			}
			dists[r] = nanEuclidean(m.RawRowView(i), m.RawRowView(r))
		}

		for _, j := range missing {
			var cands []donor
			for r := 0; r < rows; r++ {
				if math.IsNaN(dists[r]) || math.IsNaN(m.At(r, j)) {
					continue
				}
				cands = append(cands, donor{row: r, dist: dists[r]})
			}
			if len(cands) == 0 {
				out.Set(i, j, colMeans[j])
				continue
			}
			sort.Slice(cands, func(a, b int) bool {
				if cands[a].dist == cands[b].dist {
					return cands[a].row < cands[b].row
				}
				return cands[a].dist < cands[b].dist
			})
			n := k
			if len(cands) < n {
				n = len(cands)
			}
			sum := 0.0
			for _, d := range cands[:n] {
				sum += m.At(d.row, j)
			}
			out.Set(i, j, sum/float64(n))
		}
	}
	return out
}

// nanEuclidean computes the Euclidean distance between two rows over their
// mutually observed coordinates, scaled by sqrt(total/observed). NaN when
// no coordinate is shared.
func nanEuclidean(a, b []float64) float64 {
	var ss float64
	obs := 0
	for idx := range a {
		if math.IsNaN(a[idx]) || math.IsNaN(b[idx]) {
			continue
		}
		d := a[idx] - b[idx]
		ss += d * d
		obs++
	}
	if obs == 0 {
		return math.NaN()
	}
	return math.Sqrt(ss * float64(len(a)) / float64(obs))
}

// columnMeans computes per-column means ignoring NaN; all-NaN columns mean
// to zero.
func columnMeans(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum, n := 0.0, 0
		for i := 0; i < rows; i++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			means[j] = sum / float64(n)
		}
	}
	return means
}
