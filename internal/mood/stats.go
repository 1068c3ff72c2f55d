package mood

import (
	"math"
	"sort"
)

// pearson computes the standard correlation coefficient. Degenerate inputs
// (n <= 1 or zero variance on either side) return 0 rather than NaN; callers
// treat that as "no measurable correlation", not an error.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n <= 1 || n != len(ys) {
		return 0
	}
	mx, my := meanOf(xs), meanOf(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// spearman is Pearson over average ranks (ties share the mean rank).
func spearman(xs, ys []float64) float64 {
	return pearson(ranks(xs), ranks(ys))
}

func ranks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		// Average rank for the tie run [i, j].
		avg := (float64(i) + float64(j)) / 2.0
		for k := i; k <= j; k++ {
			out[idx[k]] = avg + 1
		}
		i = j + 1
	}
	return out
}

func meanAbsoluteError(errors []float64) float64 {
	if len(errors) == 0 {
		return 0
	}
	var sum float64
	for _, e := range errors {
		sum += math.Abs(e)
	}
	return sum / float64(len(errors))
}

func rootMeanSquareError(errors []float64) float64 {
	if len(errors) == 0 {
		return 0
	}
	var sum float64
	for _, e := range errors {
		sum += e * e
	}
	return math.Sqrt(sum / float64(len(errors)))
}
