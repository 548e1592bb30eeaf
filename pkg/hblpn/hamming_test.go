package hblpn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestWeight_Binary(t *testing.T) {
	assert.Equal(t, 0, Weight([]uint8{}))
	assert.Equal(t, 0, Weight([]uint8{0, 0, 0}))
	assert.Equal(t, 3, Weight([]uint8{1, 0, 1, 1}))
}

func TestWeight_InvariantUnderModTwo(t *testing.T) {
	cases := [][]int{
		{2, 3, 4, 5},
		{-1, -2, 7, 0},
		{10, 11, 12, 13, 14, 15},
		{-3, -5, -8},
	}
	for _, v := range cases {
		reduced := make([]int, len(v))
		for i, x := range v {
			reduced[i] = ((x % 2) + 2) % 2
		}
		assert.Equal(t, Weight(reduced), Weight(v), "vector %v", v)
	}
	assert.Equal(t, 2, Weight([]int64{-1, 3, 4}))
}

func TestWeightVec(t *testing.T) {
	v := mat.NewVecDense(5, []float64{0, 1, 2, 3, 4})
	assert.Equal(t, 2, WeightVec(v))
}
