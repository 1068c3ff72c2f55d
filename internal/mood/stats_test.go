package mood

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPearsonPerfectCorrelation(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 4, 6, 8, 10}
	if r := pearson(xs, ys); !almostEqual(r, 1.0, 1e-9) {
		t.Errorf("pearson = %v, want 1.0", r)
	}
}

func TestPearsonPerfectInverse(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{8, 6, 4, 2}
	if r := pearson(xs, ys); !almostEqual(r, -1.0, 1e-9) {
		t.Errorf("pearson = %v, want -1.0", r)
	}
}

func TestPearsonDegenerate(t *testing.T) {
	cases := []struct {
		name string
		xs   []float64
		ys   []float64
	}{
		{"empty", nil, nil},
		{"single point", []float64{3}, []float64{4}},
		{"zero variance x", []float64{5, 5, 5}, []float64{1, 2, 3}},
		{"zero variance y", []float64{1, 2, 3}, []float64{7, 7, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if r := pearson(tc.xs, tc.ys); r != 0 {
				t.Errorf("pearson = %v, want 0", r)
			}
		})
	}
}

func TestSpearmanMonotonicNonlinear(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{1, 4, 9, 16, 25}
	if r := spearman(xs, ys); !almostEqual(r, 1.0, 1e-9) {
		t.Errorf("spearman = %v, want 1.0", r)
	}
}

func TestRanksTieAveraging(t *testing.T) {
	got := ranks([]float64{1, 2, 2, 3})
	want := []float64{1, 2.5, 2.5, 4}
	if len(got) != len(want) {
		t.Fatalf("ranks returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-9) {
			t.Errorf("ranks[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestErrorMetrics(t *testing.T) {
	errs := []float64{1, -1, 2, -2}
	if mae := meanAbsoluteError(errs); !almostEqual(mae, 1.5, 1e-9) {
		t.Errorf("mae = %v, want 1.5", mae)
	}
	wantRMSE := math.Sqrt(2.5)
	if rmse := rootMeanSquareError(errs); !almostEqual(rmse, wantRMSE, 1e-9) {
		t.Errorf("rmse = %v, want %v", rmse, wantRMSE)
	}
	if mae := meanAbsoluteError(nil); mae != 0 {
		t.Errorf("mae of empty = %v, want 0", mae)
	}
}
