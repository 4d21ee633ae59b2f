// Package metrics は解析的勾配と数値勾配を比較するための指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/e4040/softmaxloss/pkg/errors"
)

// relErrorEps は両方の値がほぼ0のときの分母の下駄
const relErrorEps = 1e-8

// RelativeError は |a - b| / (|a| + |b| + eps) を計算する
func RelativeError(a, b float64) float64 {
	return math.Abs(a-b) / (math.Abs(a) + math.Abs(b) + relErrorEps)
}

// MaxRelativeError は2つの行列の要素ごとの相対誤差の最大値を計算する
func MaxRelativeError(a, b mat.Matrix) (float64, error) {
	return maxElementwise("MaxRelativeError", a, b, RelativeError)
}

// MaxAbsDiff は2つの行列の要素ごとの絶対誤差の最大値を計算する
func MaxAbsDiff(a, b mat.Matrix) (float64, error) {
	return maxElementwise("MaxAbsDiff", a, b, func(x, y float64) float64 {
		return math.Abs(x - y)
	})
}

func maxElementwise(op string, a, b mat.Matrix, fn func(x, y float64) float64) (float64, error) {
	// 入力検証
	ra, ca := a.Dims()
	rb, cb := b.Dims()

	if ra == 0 || ca == 0 {
		return 0, errors.NewValueError(op, "empty matrix")
	}
	if ra != rb {
		return 0, errors.NewDimensionError(op, ra, rb, 0)
	}
	if ca != cb {
		return 0, errors.NewDimensionError(op, ca, cb, 1)
	}

	// NaN は最大値として伝播させる
	var worst float64
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			v := fn(a.At(i, j), b.At(i, j))
			if math.IsNaN(v) {
				return v, nil
			}
			if v > worst {
				worst = v
			}
		}
	}
	return worst, nil
}
