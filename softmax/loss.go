// Package softmax computes the cross-entropy loss of a linear softmax
// classifier and its gradient with respect to the weight matrix.
//
// Shapes: W is D×C, X is N×D, y holds N class indices in [0, C).
//
//	loss = mean_i(-log p[i][y[i]]) + 0.5*reg*||W||_F
//	dW   = Xᵗ·(p - onehot(y)) / N
//
// p is the row-wise softmax of X·W. Two entry points share this contract:
// LossNaive iterates over examples, LossVectorized uses whole-array
// operations only. By default scores are exponentiated without a row-max
// shift and dW omits the regularization gradient; see WithStableExp and
// WithRegGradient.
package softmax

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/e4040/softmaxloss/core/tensor"
	"github.com/e4040/softmaxloss/pkg/errors"
	"github.com/e4040/softmaxloss/pkg/log"
)

// LossFunc is the contract shared by LossNaive and LossVectorized.
type LossFunc func(W, X mat.Matrix, y []int, reg float64, opts ...Option) (float64, *mat.Dense, error)

var (
	_ LossFunc = LossNaive
	_ LossFunc = LossVectorized
)

type shape struct {
	n, d, c int
}

// LossNaive computes the loss and gradient with explicit loops over the
// minibatch for the loss accumulation and the one-hot subtraction.
func LossNaive(W, X mat.Matrix, y []int, reg float64, opts ...Option) (loss float64, dW *mat.Dense, err error) {
	const op = "softmax.LossNaive"
	defer errors.Recover(&err, op)

	cfg := newConfig(opts)
	s, err := validate(op, W, X, y, reg)
	if err != nil {
		return 0, nil, err
	}

	scores := mat.NewDense(s.n, s.c, nil)
	scores.Mul(X, W)
	if cfg.stableExp {
		row := make([]float64, s.c)
		for i := 0; i < s.n; i++ {
			mat.Row(row, i, scores)
			floats.AddConst(-floats.Max(row), row)
			scores.SetRow(i, row)
		}
	}
	h := tensor.NormalizeRows(tensor.Exp(scores))

	n := float64(s.n)
	for i := 0; i < s.n; i++ {
		loss += -math.Log(h.At(i, y[i])) / n
	}
	loss += regPenalty(W, reg)

	for i := 0; i < s.n; i++ {
		h.Set(i, y[i], h.At(i, y[i])-1)
	}
	dW = mat.NewDense(s.d, s.c, nil)
	dW.Mul(X.T(), h)
	dW.Scale(1/n, dW)
	if cfg.regGradient {
		addRegGradient(dW, W, reg)
	}

	report(cfg, log.VariantNaive, s, reg, loss, dW)
	return loss, dW, nil
}

// LossVectorized computes the same result as LossNaive using only
// whole-array operations.
func LossVectorized(W, X mat.Matrix, y []int, reg float64, opts ...Option) (loss float64, dW *mat.Dense, err error) {
	const op = "softmax.LossVectorized"
	defer errors.Recover(&err, op)

	cfg := newConfig(opts)
	s, err := validate(op, W, X, y, reg)
	if err != nil {
		return 0, nil, err
	}

	scores := mat.NewDense(s.n, s.c, nil)
	scores.Mul(X, W)
	var shifted mat.Matrix = scores
	if cfg.stableExp {
		shifted = tensor.SubRowMax(scores)
	}
	probs := tensor.NormalizeRows(tensor.Exp(shifted))

	picked, err := tensor.Take(probs, y)
	if err != nil {
		return 0, nil, err
	}
	loss = stat.Mean(tensor.NegLog(picked), nil) + regPenalty(W, reg)

	if err := tensor.AddAt(probs, y, -1); err != nil {
		return 0, nil, err
	}
	dW = mat.NewDense(s.d, s.c, nil)
	dW.Mul(X.T(), probs)
	dW.Scale(1/float64(s.n), dW)
	if cfg.regGradient {
		addRegGradient(dW, W, reg)
	}

	report(cfg, log.VariantVectorized, s, reg, loss, dW)
	return loss, dW, nil
}

// CheckFinite returns a NumericalInstabilityError if loss or any entry of
// dW is NaN or Inf. The loss functions themselves return such values as is.
func CheckFinite(loss float64, dW mat.Matrix) error {
	if err := errors.CheckScalar("softmax.loss", loss); err != nil {
		return err
	}
	return errors.CheckMatrix("softmax.gradient", dW)
}

func validate(op string, W, X mat.Matrix, y []int, reg float64) (shape, error) {
	if W == nil || X == nil {
		return shape{}, errors.NewValueError(op, "W and X must not be nil")
	}
	d, c := W.Dims()
	n, xCols := X.Dims()
	if n == 0 || d == 0 || c == 0 {
		return shape{}, errors.NewValueErrorWrap(op, errors.ErrEmptyData)
	}
	if xCols != d {
		return shape{}, errors.NewDimensionError(op, d, xCols, 1)
	}
	if len(y) != n {
		return shape{}, errors.NewDimensionError(op, n, len(y), 0)
	}
	if reg < 0 || math.IsNaN(reg) {
		return shape{}, errors.NewValidationError("reg", "must be non-negative", reg)
	}
	for i, label := range y {
		if label < 0 || label >= c {
			return shape{}, errors.NewLabelRangeError(op, i, label, c)
		}
	}
	return shape{n: n, d: d, c: c}, nil
}

// regPenalty is 0.5*reg*||W||_F, the Frobenius norm itself rather than its square.
func regPenalty(W mat.Matrix, reg float64) float64 {
	return 0.5 * reg * mat.Norm(W, 2)
}

// addRegGradient adds d(regPenalty)/dW = 0.5*reg*W/||W||_F to dW.
// The penalty is not differentiable at W = 0; the zero subgradient is used there.
func addRegGradient(dW *mat.Dense, W mat.Matrix, reg float64) {
	norm := mat.Norm(W, 2)
	if norm == 0 {
		return
	}
	var g mat.Dense
	g.Scale(0.5*reg/norm, W)
	dW.Add(dW, &g)
}

func report(cfg *config, variant string, s shape, reg, loss float64, dW *mat.Dense) {
	if err := CheckFinite(loss, dW); err != nil {
		if cfg.ownLogger {
			cfg.logger.Warn("non-finite softmax loss",
				log.OperationKey, log.OperationLoss,
				log.VariantKey, variant,
				log.LossKey, loss,
				"warning", err,
			)
		} else {
			errors.Warn(err)
		}
	}

	if !cfg.logger.Enabled(context.Background(), log.LevelDebug) {
		return
	}
	cfg.logger.Debug("softmax loss computed",
		log.OperationKey, log.OperationLoss,
		log.VariantKey, variant,
		log.SamplesKey, s.n,
		log.FeaturesKey, s.d,
		log.ClassesKey, s.c,
		log.RegularizationKey, reg,
		log.LossKey, loss,
		log.GradNormKey, mat.Norm(dW, 2),
	)
}
