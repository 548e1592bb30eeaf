package hblpn

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// Oracle is the HB protocol tag: it holds a secret and answers each query
// with noisy parities b_i = <A_i, secret> + e_i mod 2.
//
// An Oracle may be sampled concurrently; its generator is guarded by a mutex.
// Given the same source and call sequence, sampling is reproducible.
type Oracle struct {
	secret    BitVector
	errorRate float64
	noise     *NoiseModel

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOracle validates the parameters and builds an oracle drawing its
// randomness from src. The secret is copied.
func NewOracle(secret BitVector, errorRate float64, src rand.Source) (*Oracle, error) {
	var err error
	if len(secret) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: dimension must be positive", ErrInvalidParameter))
	}
	err = multierr.Append(err, secret.Validate())
	err = multierr.Append(err, validateErrorRate(errorRate))
	if src == nil {
		err = multierr.Append(err, fmt.Errorf("%w: nil random source", ErrInvalidParameter))
	}
	if err != nil {
		return nil, err
	}

	return &Oracle{
		secret:    secret.Clone(),
		errorRate: errorRate,
		noise:     &NoiseModel{P: errorRate},
		rng:       rand.New(src),
	}, nil
}

// Dimension is the secret length.
func (o *Oracle) Dimension() int {
	return len(o.secret)
}

// ErrorRate is the Bernoulli noise probability.
func (o *Oracle) ErrorRate() float64 {
	return o.errorRate
}

// Secret returns a copy of the secret. Attacks must not use it; it exists for
// verification and reporting.
func (o *Oracle) Secret() BitVector {
	return o.secret.Clone()
}

// SampleBatch holds n noisy relations: A is n x dim, B has length n.
// Entries of both are 0 or 1.
type SampleBatch struct {
	A *mat.Dense
	B *mat.VecDense
}

// Rows is the number of relations in the batch.
func (s *SampleBatch) Rows() int {
	r, _ := s.A.Dims()
	return r
}

// Dimension is the number of columns of A.
func (s *SampleBatch) Dimension() int {
	_, c := s.A.Dims()
	return c
}

// Residual computes A·candidate + b over the integers. Reduce it with WeightVec.
func (s *SampleBatch) Residual(candidate BitVector) (*mat.VecDense, error) {
	if len(candidate) != s.Dimension() {
		return nil, fmt.Errorf("%w: candidate length %d, batch dimension %d",
			ErrInvalidParameter, len(candidate), s.Dimension())
	}
	r := mat.NewVecDense(s.Rows(), nil)
	r.MulVec(s.A, candidate.Vec())
	r.AddVec(r, s.B)
	return r, nil
}

// ResidualWeight is WeightVec(Residual(candidate)).
func (s *SampleBatch) ResidualWeight(candidate BitVector) (int, error) {
	r, err := s.Residual(candidate)
	if err != nil {
		return 0, err
	}
	return WeightVec(r), nil
}

// Subset copies the given rows into a new batch.
func (s *SampleBatch) Subset(rows []int) *SampleBatch {
	dim := s.Dimension()
	a := mat.NewDense(len(rows), dim, nil)
	b := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		a.SetRow(i, s.A.RawRowView(r))
		b.SetVec(i, s.B.AtVec(r))
	}
	return &SampleBatch{A: a, B: b}
}

// Sample draws n fresh relations. Rows of A are uniform over {0,1}^dim and
// noise bits are independent Bernoulli(ErrorRate).
func (o *Oracle) Sample(n int) (*SampleBatch, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample count %d must be positive", ErrInvalidParameter, n)
	}
	dim := len(o.secret)
	a := make([]float64, n*dim)
	b := make([]float64, n)

	o.mu.Lock()
	defer o.mu.Unlock()

	for i := 0; i < n; i++ {
		row := a[i*dim : (i+1)*dim]
		var word uint64
		var parityBit uint8
		for j := 0; j < dim; j++ {
			if j%64 == 0 {
				word = o.rng.Uint64()
			}
			bit := uint8(word & 1)
			word >>= 1
			row[j] = float64(bit)
			parityBit ^= bit & o.secret[j]
		}
		b[i] = float64(parityBit ^ o.noise.Bit(o.rng))
	}

	return &SampleBatch{
		A: mat.NewDense(n, dim, a),
		B: mat.NewVecDense(n, b),
	}, nil
}
