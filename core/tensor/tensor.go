// Package tensor provides whole-array operations on gonum matrices that the
// mat package does not offer directly: row-wise reductions and broadcasts,
// one-hot encoding, and numpy-style gather/scatter along rows.
//
// Every function allocates its result and leaves its arguments untouched,
// except AddAt which scatters into its receiver.
package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/e4040/softmaxloss/pkg/errors"
)

// Exp returns exp(a) elementwise.
func Exp(a mat.Matrix) *mat.Dense {
	var e mat.Dense
	e.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, a)
	return &e
}

// RowSums returns the vector of row sums of a, computed as a·1.
func RowSums(a mat.Matrix) *mat.VecDense {
	r, c := a.Dims()
	ones := make([]float64, c)
	floats.AddConst(1, ones)

	sums := mat.NewVecDense(r, nil)
	sums.MulVec(a, mat.NewVecDense(c, ones))
	return sums
}

// NormalizeRows divides every row of a by its sum. Rows are scaled
// independently, so a non-finite row leaves the others untouched.
func NormalizeRows(a mat.Matrix) *mat.Dense {
	r, _ := a.Dims()
	sums := RowSums(a).RawVector().Data

	recip := make([]float64, r)
	floats.AddConst(1, recip)
	floats.Div(recip, sums)

	var out mat.Dense
	out.Apply(func(i, _ int, v float64) float64 { return v * recip[i] }, a)
	return &out
}

// SubRowMax subtracts each row's maximum from that row.
func SubRowMax(a mat.Matrix) *mat.Dense {
	r, c := a.Dims()
	maxes := make([]float64, r)
	row := make([]float64, c)
	for i := range maxes {
		maxes[i] = floats.Max(mat.Row(row, i, a))
	}

	var out mat.Dense
	out.Apply(func(i, _ int, v float64) float64 { return v - maxes[i] }, a)
	return &out
}

// OneHot returns the len(y)×c indicator matrix with a 1 at (i, y[i]).
func OneHot(y []int, c int) (*mat.Dense, error) {
	if err := checkIndices("tensor.OneHot", y, c); err != nil {
		return nil, err
	}
	data := make([]float64, len(y)*c)
	for i, label := range y {
		data[i*c+label] = 1
	}
	return mat.NewDense(len(y), c, data), nil
}

// Take gathers a[i, cols[i]] for every row i, the equivalent of
// a[range(N), cols] in numpy.
func Take(a mat.Matrix, cols []int) ([]float64, error) {
	r, c := a.Dims()
	if len(cols) != r {
		return nil, errors.NewDimensionError("tensor.Take", r, len(cols), 0)
	}
	if err := checkIndices("tensor.Take", cols, c); err != nil {
		return nil, err
	}
	out := make([]float64, r)
	for i, j := range cols {
		out[i] = a.At(i, j)
	}
	return out, nil
}

// AddAt adds v to a[i, cols[i]] for every row i in place, the equivalent of
// a[range(N), cols] += v in numpy.
func AddAt(a *mat.Dense, cols []int, v float64) error {
	r, c := a.Dims()
	if len(cols) != r {
		return errors.NewDimensionError("tensor.AddAt", r, len(cols), 0)
	}
	if err := checkIndices("tensor.AddAt", cols, c); err != nil {
		return err
	}
	for i, j := range cols {
		a.Set(i, j, a.At(i, j)+v)
	}
	return nil
}

// NegLog returns -log(s) elementwise.
func NegLog(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = -math.Log(v)
	}
	return out
}

func checkIndices(op string, idx []int, n int) error {
	for i, j := range idx {
		if j < 0 || j >= n {
			return errors.NewLabelRangeError(op, i, j, n)
		}
	}
	return nil
}
