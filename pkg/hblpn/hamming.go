package hblpn

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"
)

// Weight returns the Hamming weight of v after reducing every entry modulo 2.
// Arbitrary integers are accepted, including negatives (-1 counts as 1), so
// integer matrix-vector products can be passed without a separate reduction.
func Weight[T constraints.Integer](v []T) int {
	w := 0
	for _, x := range v {
		if x%2 != 0 {
			w++
		}
	}
	return w
}

// WeightVec is Weight for gonum vectors holding integer-valued floats, such as
// the residual A·c + b computed in float64 arithmetic.
func WeightVec(v mat.Vector) int {
	w := 0
	for i := 0; i < v.Len(); i++ {
		w += int(parity(v.AtVec(i)))
	}
	return w
}

func parity(x float64) uint8 {
	n := int64(math.Round(x))
	if n%2 != 0 {
		return 1
	}
	return 0
}
