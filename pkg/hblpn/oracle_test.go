package hblpn

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOracle_InvalidParameters(t *testing.T) {
	src := NewSeededSource(1)
	cases := []struct {
		name   string
		secret BitVector
		rate   float64
	}{
		{"empty secret", BitVector{}, 0.1},
		{"zero rate", MustBitVector(1, 0), 0},
		{"half rate", MustBitVector(1, 0), 0.5},
		{"negative rate", MustBitVector(1, 0), -0.1},
		{"rate above one", MustBitVector(1, 0), 1.2},
		{"NaN rate", MustBitVector(1, 0), math.NaN()},
		{"non-bit secret", BitVector{1, 2}, 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOracle(tc.secret, tc.rate, src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
		})
	}

	_, err := NewOracle(MustBitVector(1), 0.1, nil)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestOracle_SampleRejectsNonPositive(t *testing.T) {
	o, err := NewOracle(MustBitVector(1, 0, 1), 0.1, NewSeededSource(1))
	require.NoError(t, err)

	for _, n := range []int{0, -5} {
		_, err := o.Sample(n)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "n=%d", n)
	}
}

func TestOracle_SampleShapeAndNoise(t *testing.T) {
	secret := MustBitVector(1, 0, 1, 1, 0)
	o, err := NewOracle(secret, 0.125, NewSeededSource(2024))
	require.NoError(t, err)

	batch, err := o.Sample(1000)
	require.NoError(t, err)

	r, c := batch.A.Dims()
	assert.Equal(t, 1000, r)
	assert.Equal(t, 5, c)
	assert.Equal(t, 1000, batch.B.Len())

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := batch.A.At(i, j)
			require.True(t, v == 0 || v == 1, "A[%d][%d] = %v", i, j, v)
		}
		v := batch.B.AtVec(i)
		require.True(t, v == 0 || v == 1, "b[%d] = %v", i, v)
	}

	rate, err := EmpiricalNoiseRate(batch, secret)
	require.NoError(t, err)
	se := math.Sqrt(0.125 * 0.875 / 1000)
	assert.InDelta(t, 0.125, rate, 3*se)
}

func TestOracle_RowsAreUniform(t *testing.T) {
	o, err := NewOracle(MustBitVector(0, 1, 1, 0, 1, 0, 0, 1), 0.2, NewSeededSource(5))
	require.NoError(t, err)

	batch, err := o.Sample(4000)
	require.NoError(t, err)

	rows, cols := batch.A.Dims()
	for j := 0; j < cols; j++ {
		ones := 0.0
		for i := 0; i < rows; i++ {
			ones += batch.A.At(i, j)
		}
		// 5 standard errors of a fair coin over 4000 draws.
		assert.InDelta(t, 0.5, ones/float64(rows), 5*math.Sqrt(0.25/float64(rows)), "column %d", j)
	}
}

func TestOracle_ReproducibleWithSeed(t *testing.T) {
	secret := MustBitVector(1, 1, 0)
	o1, err := NewOracle(secret, 0.1, NewSeededSource(99))
	require.NoError(t, err)
	o2, err := NewOracle(secret, 0.1, NewSeededSource(99))
	require.NoError(t, err)

	b1, err := o1.Sample(50)
	require.NoError(t, err)
	b2, err := o2.Sample(50)
	require.NoError(t, err)

	assert.Equal(t, b1.A.RawMatrix().Data, b2.A.RawMatrix().Data)
	assert.Equal(t, b1.B.RawVector().Data, b2.B.RawVector().Data)

	// Fresh batches differ from previous ones.
	b3, err := o1.Sample(50)
	require.NoError(t, err)
	assert.NotEqual(t, b1.A.RawMatrix().Data, b3.A.RawMatrix().Data)
}

func TestOracle_KeyedSourceReproducible(t *testing.T) {
	secret := MustBitVector(1, 0, 0, 1)
	s1, err := NewKeyedSource([]byte("hb"))
	require.NoError(t, err)
	s2, err := NewKeyedSource([]byte("hb"))
	require.NoError(t, err)

	o1, err := NewOracle(secret, 0.125, s1)
	require.NoError(t, err)
	o2, err := NewOracle(secret, 0.125, s2)
	require.NoError(t, err)

	b1, err := o1.Sample(64)
	require.NoError(t, err)
	b2, err := o2.Sample(64)
	require.NoError(t, err)
	assert.Equal(t, b1.B.RawVector().Data, b2.B.RawVector().Data)
}

func TestOracle_SecretIsCopied(t *testing.T) {
	secret := MustBitVector(1, 0, 1)
	o, err := NewOracle(secret, 0.1, NewSeededSource(1))
	require.NoError(t, err)

	secret[0] = 0
	got := o.Secret()
	assert.Equal(t, BitVector{1, 0, 1}, got)

	got[1] = 1
	assert.Equal(t, BitVector{1, 0, 1}, o.Secret())
	assert.Equal(t, 3, o.Dimension())
	assert.Equal(t, 0.1, o.ErrorRate())
}

func TestSampleBatch_ResidualOfTrueSecretIsNoise(t *testing.T) {
	secret := MustBitVector(1, 1, 0, 1)
	o, err := NewOracle(secret, 0.05, NewSeededSource(11))
	require.NoError(t, err)

	batch, err := o.Sample(2000)
	require.NoError(t, err)

	wTrue, err := batch.ResidualWeight(secret)
	require.NoError(t, err)
	wWrong, err := batch.ResidualWeight(MustBitVector(0, 1, 0, 1))
	require.NoError(t, err)

	assert.Less(t, wTrue, 200)
	assert.Greater(t, wWrong, 800)

	_, err = batch.ResidualWeight(MustBitVector(1))
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestNewNoiseModel(t *testing.T) {
	_, err := NewNoiseModel(0.5)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	n, err := NewNoiseModel(0.25)
	require.NoError(t, err)

	bits := n.Bits(rand.New(NewSeededSource(8)), 10000)
	require.Len(t, bits, 10000)
	assert.InDelta(t, 0.25, float64(Weight(bits))/10000, 5*math.Sqrt(0.25*0.75/10000))
}
