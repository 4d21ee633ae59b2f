// Package gradcheck verifies analytic gradients against centered finite
// differences: (f(W+h·e_ij) - f(W-h·e_ij)) / 2h.
package gradcheck

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/e4040/softmaxloss/core/parallel"
	"github.com/e4040/softmaxloss/metrics"
	"github.com/e4040/softmaxloss/pkg/errors"
	"github.com/e4040/softmaxloss/pkg/log"
	"github.com/e4040/softmaxloss/softmax"
)

// DefaultStep is the finite-difference step used by the example command.
const DefaultStep = 1e-5

// entries at or below this count are differenced on the calling goroutine
const parallelThreshold = 64

// Objective is a scalar function of the weight matrix. Implementations must
// not retain W and must be safe for concurrent use.
type Objective func(W *mat.Dense) (float64, error)

// FromLoss adapts a softmax loss function with fixed data into an Objective.
func FromLoss(f softmax.LossFunc, X mat.Matrix, y []int, reg float64, opts ...softmax.Option) Objective {
	return func(W *mat.Dense) (float64, error) {
		loss, _, err := f(W, X, y, reg, opts...)
		return loss, err
	}
}

// Sample is one sparse gradient-check probe.
type Sample struct {
	Row, Col  int
	Numerical float64
	Analytic  float64
	RelError  float64
}

// Numerical returns the centered-difference gradient of f at W for every
// entry. Entries are split across goroutines, each perturbing its own copy of W.
func Numerical(f Objective, W mat.Matrix, h float64) (*mat.Dense, error) {
	if h <= 0 {
		return nil, errors.NewValidationError("h", "must be positive", h)
	}
	d, c := W.Dims()
	if d == 0 || c == 0 {
		return nil, errors.NewValueErrorWrap("gradcheck.Numerical", errors.ErrEmptyData)
	}
	grad := mat.NewDense(d, c, nil)

	var (
		mu       sync.Mutex
		firstErr error
	)
	parallel.ParallelizeWithThreshold(d*c, parallelThreshold, func(start, end int) {
		w := mat.DenseCopyOf(W)
		for k := start; k < end; k++ {
			i, j := k/c, k%c
			g, err := centered(f, w, i, j, h)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			grad.Set(i, j, g)
		}
	})
	if firstErr != nil {
		return nil, errors.Wrap(firstErr, "gradcheck: numerical gradient")
	}
	return grad, nil
}

// CheckSparse compares analytic against the numerical gradient at
// numChecks entries drawn uniformly from rng.
func CheckSparse(f Objective, W, analytic mat.Matrix, numChecks int, h float64, rng *rand.Rand) ([]Sample, error) {
	const op = "gradcheck.CheckSparse"

	if numChecks <= 0 {
		return nil, errors.NewValidationError("numChecks", "must be positive", numChecks)
	}
	if h <= 0 {
		return nil, errors.NewValidationError("h", "must be positive", h)
	}
	d, c := W.Dims()
	if d == 0 || c == 0 {
		return nil, errors.NewValueErrorWrap(op, errors.ErrEmptyData)
	}
	ad, ac := analytic.Dims()
	if ad != d {
		return nil, errors.NewDimensionError(op, d, ad, 0)
	}
	if ac != c {
		return nil, errors.NewDimensionError(op, c, ac, 1)
	}

	logger := log.GetLoggerWithName("gradcheck")
	debug := logger.Enabled(context.Background(), log.LevelDebug)

	w := mat.DenseCopyOf(W)
	samples := make([]Sample, 0, numChecks)
	for k := 0; k < numChecks; k++ {
		i, j := rng.IntN(d), rng.IntN(c)
		num, err := centered(f, w, i, j, h)
		if err != nil {
			return nil, errors.Wrapf(err, "gradcheck: probe (%d, %d)", i, j)
		}
		ana := analytic.At(i, j)
		s := Sample{Row: i, Col: j, Numerical: num, Analytic: ana, RelError: metrics.RelativeError(num, ana)}
		samples = append(samples, s)

		if debug {
			logger.Debug("gradient probe",
				log.OperationKey, log.OperationGradientCheck,
				"row", i,
				"col", j,
				"numerical", num,
				"analytic", ana,
				log.RelErrorKey, s.RelError,
			)
		}
	}
	return samples, nil
}

// Worst returns the sample with the largest relative error. A NaN error
// counts as the worst and the first one is returned.
func Worst(samples []Sample) Sample {
	var worst Sample
	for _, s := range samples {
		if math.IsNaN(s.RelError) {
			return s
		}
		if s.RelError > worst.RelError {
			worst = s
		}
	}
	return worst
}

func centered(f Objective, w *mat.Dense, i, j int, h float64) (float64, error) {
	orig := w.At(i, j)
	defer w.Set(i, j, orig)

	w.Set(i, j, orig+h)
	plus, err := f(w)
	if err != nil {
		return 0, err
	}
	w.Set(i, j, orig-h)
	minus, err := f(w)
	if err != nil {
		return 0, err
	}
	return (plus - minus) / (2 * h), nil
}
