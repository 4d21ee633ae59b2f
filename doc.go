// Package softmaxloss computes the softmax cross-entropy loss of a linear
// classifier and its gradient with respect to the weight matrix, in an
// explicit-loop form and a vectorized form that agree to 1e-8.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/e4040/softmaxloss/softmax"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    W := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 0, 0}) // D×C
//	    X := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1}) // N×D
//	    y := []int{0, 1}
//
//	    loss, dW, err := softmax.LossVectorized(W, X, y, 0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(loss, mat.Formatted(dW))
//	}
//
// # Packages
//
//   - softmax: LossNaive and LossVectorized with functional options
//   - gradcheck: centered finite-difference gradients and sparse spot checks
//   - metrics: relative error and max-difference comparisons of matrices
//   - core/tensor: row-wise reductions, gather and scatter on gonum matrices
//   - core/parallel: chunked fan-out over index ranges
//   - pkg/errors: typed errors with stack traces and panic recovery
//   - pkg/log: structured logging backed by zerolog
//
// # Numerical behavior
//
// Scores are exponentiated without subtracting the row maximum and the
// returned gradient omits the regularization term. Both are reference
// behaviors; enable softmax.WithStableExp and softmax.WithRegGradient to
// change them. Non-finite results are returned as is and reported through
// errors.Warn.
//
// The examples/softmax_check command runs both variants on random data and
// checks the gradient numerically.
package softmaxloss
