package hblpn

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// MaxEnumerableDimension is the largest dimension whose candidate space
// still fits a uint64 index.
const MaxEnumerableDimension = 62

// BitVector is a vector over GF(2). Every entry is 0 or 1.
// It is used for secrets and for candidates alike.
type BitVector []uint8

// NewBitVector copies bits into a new BitVector, rejecting entries other than 0 and 1.
func NewBitVector(bits ...uint8) (BitVector, error) {
	v := make(BitVector, len(bits))
	for i, b := range bits {
		if b > 1 {
			return nil, fmt.Errorf("%w: bit %d has value %d", ErrInvalidParameter, i, b)
		}
		v[i] = b
	}
	return v, nil
}

// MustBitVector is like NewBitVector but panics on invalid input.
// Intended for tests and literals.
func MustBitVector(bits ...uint8) BitVector {
	v, err := NewBitVector(bits...)
	if err != nil {
		panic(err)
	}
	return v
}

// CandidateAt maps an index in [0, 2^dim) to its candidate in binary counting
// order. The first coordinate is the most significant bit, so for dim 3 the
// order is 000, 001, 010, ..., 111.
func CandidateAt(index uint64, dim int) BitVector {
	v := make(BitVector, dim)
	for i := 0; i < dim; i++ {
		v[i] = uint8((index >> uint(dim-1-i)) & 1)
	}
	return v
}

// RandomBitVector draws a uniform vector of length dim.
func RandomBitVector(rng *rand.Rand, dim int) BitVector {
	v := make(BitVector, dim)
	for i := range v {
		v[i] = uint8(rng.Uint64() & 1)
	}
	return v
}

// Index is the inverse of CandidateAt. Only meaningful for
// len(v) <= MaxEnumerableDimension.
func (v BitVector) Index() uint64 {
	var idx uint64
	for _, b := range v {
		idx = idx<<1 | uint64(b&1)
	}
	return idx
}

// Validate checks that every entry is a bit.
func (v BitVector) Validate() error {
	for i, b := range v {
		if b > 1 {
			return fmt.Errorf("%w: bit %d has value %d", ErrInvalidParameter, i, b)
		}
	}
	return nil
}

// Clone returns an independent copy.
func (v BitVector) Clone() BitVector {
	if v == nil {
		return nil
	}
	out := make(BitVector, len(v))
	copy(out, v)
	return out
}

// Equal reports whether both vectors have the same length and entries.
func (v BitVector) Equal(other BitVector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// Distance returns the number of coordinates in which v and other differ.
// It returns -1 when the lengths differ.
func (v BitVector) Distance(other BitVector) int {
	if len(v) != len(other) {
		return -1
	}
	d := 0
	for i := range v {
		if v[i] != other[i] {
			d++
		}
	}
	return d
}

// String renders the vector as "[1 0 1]".
func (v BitVector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, b := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + b)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Vec returns v as a float vector for use with gonum.
func (v BitVector) Vec() *mat.VecDense {
	data := make([]float64, len(v))
	for i, b := range v {
		data[i] = float64(b)
	}
	return mat.NewVecDense(len(v), data)
}

// BitVectorFromVec converts a predicted label vector back into bits.
// Entries are rounded and reduced modulo 2.
func BitVectorFromVec(x mat.Vector) BitVector {
	v := make(BitVector, x.Len())
	for i := range v {
		v[i] = parity(x.AtVec(i))
	}
	return v
}

// StandardBasis returns the dim x dim identity matrix. Row i probes
// coordinate i of a learned predictor.
func StandardBasis(dim int) *mat.Dense {
	eye := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		eye.Set(i, i, 1)
	}
	return eye
}
