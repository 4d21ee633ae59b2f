package gradcheck

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/e4040/softmaxloss/metrics"
	"github.com/e4040/softmaxloss/pkg/errors"
	"github.com/e4040/softmaxloss/softmax"
)

func randomProblem(seed uint64, n, d, c int) (*mat.Dense, *mat.Dense, []int) {
	rng := rand.New(rand.NewPCG(seed, seed))

	W := mat.NewDense(d, c, nil)
	W.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() * 0.01 }, W)

	X := mat.NewDense(n, d, nil)
	X.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() }, X)

	y := make([]int, n)
	for i := range y {
		y[i] = rng.IntN(c)
	}
	return W, X, y
}

func TestNumerical_Quadratic(t *testing.T) {
	// f(W) = Σ w², ∇f = 2W
	f := func(W *mat.Dense) (float64, error) {
		var sum float64
		r, c := W.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				sum += W.At(i, j) * W.At(i, j)
			}
		}
		return sum, nil
	}
	W := mat.NewDense(2, 3, []float64{1, -2, 0.5, 0, 3, -1})

	grad, err := Numerical(f, W, DefaultStep)
	if err != nil {
		t.Fatalf("Numerical() error = %v", err)
	}

	var want mat.Dense
	want.Scale(2, W)
	if !mat.EqualApprox(grad, &want, 1e-8) {
		t.Errorf("Numerical() =\n%v\nwant\n%v", mat.Formatted(grad), mat.Formatted(&want))
	}
	if W.At(0, 1) != -2 {
		t.Error("Numerical must restore W")
	}
}

func TestNumerical_MatchesSoftmaxGradient(t *testing.T) {
	// 10×8 = 80 entries, above parallelThreshold
	W, X, y := randomProblem(1, 30, 10, 8)

	variants := []struct {
		name string
		fn   softmax.LossFunc
	}{
		{"naive", softmax.LossNaive},
		{"vectorized", softmax.LossVectorized},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			_, analytic, err := v.fn(W, X, y, 0)
			if err != nil {
				t.Fatal(err)
			}
			numerical, err := Numerical(FromLoss(v.fn, X, y, 0), W, DefaultStep)
			if err != nil {
				t.Fatal(err)
			}

			diff, err := metrics.MaxAbsDiff(numerical, analytic)
			if err != nil {
				t.Fatal(err)
			}
			if diff > 1e-7 {
				t.Errorf("max |numerical - analytic| = %v", diff)
			}
		})
	}
}

func TestNumerical_RegularizationGradient(t *testing.T) {
	W, X, y := randomProblem(2, 20, 6, 4)
	reg := 1.0

	// 既定の dW は正則化項の勾配を含まないので数値勾配と一致しない
	_, plain, err := softmax.LossVectorized(W, X, y, reg)
	if err != nil {
		t.Fatal(err)
	}
	numerical, err := Numerical(FromLoss(softmax.LossVectorized, X, y, reg), W, DefaultStep)
	if err != nil {
		t.Fatal(err)
	}
	if diff, _ := metrics.MaxAbsDiff(numerical, plain); diff < 1e-4 {
		t.Errorf("expected a visible mismatch without the reg gradient, got %v", diff)
	}

	_, full, err := softmax.LossVectorized(W, X, y, reg, softmax.WithRegGradient(true))
	if err != nil {
		t.Fatal(err)
	}
	if diff, _ := metrics.MaxAbsDiff(numerical, full); diff > 1e-7 {
		t.Errorf("max |numerical - analytic| with reg gradient = %v", diff)
	}
}

func TestNumerical_PropagatesErrors(t *testing.T) {
	W, X, _ := randomProblem(3, 5, 3, 2)
	bad := []int{0, 1, 2, 0, 1} // label 2 is out of range for 2 classes

	_, err := Numerical(FromLoss(softmax.LossNaive, X, bad, 0), W, DefaultStep)
	var labelErr *errors.LabelRangeError
	if !errors.As(err, &labelErr) {
		t.Fatalf("expected *LabelRangeError, got %v", err)
	}

	if _, err := Numerical(FromLoss(softmax.LossNaive, X, bad, 0), W, 0); err == nil {
		t.Error("expected an error for a non-positive step")
	}
}

func TestCheckSparse(t *testing.T) {
	W, X, y := randomProblem(4, 25, 7, 5)
	_, analytic, err := softmax.LossNaive(W, X, y, 0)
	if err != nil {
		t.Fatal(err)
	}
	f := FromLoss(softmax.LossNaive, X, y, 0)

	samples, err := CheckSparse(f, W, analytic, 10, DefaultStep, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatalf("CheckSparse() error = %v", err)
	}
	if len(samples) != 10 {
		t.Fatalf("len(samples) = %d, want 10", len(samples))
	}
	for _, s := range samples {
		if math.Abs(s.Numerical-s.Analytic) > 1e-7 {
			t.Errorf("probe (%d, %d): numerical %v vs analytic %v", s.Row, s.Col, s.Numerical, s.Analytic)
		}
		if s.Analytic != analytic.At(s.Row, s.Col) {
			t.Errorf("probe (%d, %d) recorded the wrong analytic value", s.Row, s.Col)
		}
	}

	// 同じシードなら同じ位置を調べる
	again, err := CheckSparse(f, W, analytic, 10, DefaultStep, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatal(err)
	}
	for k := range samples {
		if samples[k].Row != again[k].Row || samples[k].Col != again[k].Col {
			t.Fatalf("probe %d differs between identical seeds", k)
		}
	}

	worst := Worst(samples)
	for _, s := range samples {
		if s.RelError > worst.RelError {
			t.Errorf("Worst() missed a larger error: %v > %v", s.RelError, worst.RelError)
		}
	}
}

func TestWorst(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		wantRow int
		wantNaN bool
	}{
		{name: "empty", samples: nil, wantRow: 0},
		{
			name: "largest error",
			samples: []Sample{
				{Row: 1, RelError: 1e-9},
				{Row: 2, RelError: 3e-7},
				{Row: 3, RelError: 2e-8},
			},
			wantRow: 2,
		},
		{
			name: "NaN wins over finite errors",
			samples: []Sample{
				{Row: 1, RelError: 0.5},
				{Row: 4, RelError: math.NaN()},
				{Row: 5, RelError: math.NaN()},
			},
			wantRow: 4,
			wantNaN: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Worst(tt.samples)
			if got.Row != tt.wantRow {
				t.Errorf("Worst().Row = %d, want %d", got.Row, tt.wantRow)
			}
			if math.IsNaN(got.RelError) != tt.wantNaN {
				t.Errorf("Worst().RelError = %v, wantNaN %v", got.RelError, tt.wantNaN)
			}
		})
	}
}

func TestCheckSparse_Validation(t *testing.T) {
	W, X, y := randomProblem(5, 5, 3, 2)
	f := FromLoss(softmax.LossNaive, X, y, 0)
	rng := rand.New(rand.NewPCG(1, 1))

	if _, err := CheckSparse(f, W, mat.NewDense(3, 3, nil), 5, DefaultStep, rng); err == nil {
		t.Error("expected a DimensionError for a mis-shaped analytic gradient")
	}
	if _, err := CheckSparse(f, W, mat.NewDense(3, 2, nil), 0, DefaultStep, rng); err == nil {
		t.Error("expected a ValidationError for numChecks = 0")
	}
}
