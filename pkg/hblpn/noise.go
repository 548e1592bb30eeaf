package hblpn

import (
	"fmt"
	"math/rand/v2"
)

// NoiseModel draws i.i.d. Bernoulli(P) noise bits.
type NoiseModel struct {
	P float64
}

// NewNoiseModel validates that p lies in the open interval (0, 0.5).
func NewNoiseModel(p float64) (*NoiseModel, error) {
	if err := validateErrorRate(p); err != nil {
		return nil, err
	}
	return &NoiseModel{P: p}, nil
}

// Bit returns 1 with probability P.
func (n *NoiseModel) Bit(rng *rand.Rand) uint8 {
	if rng.Float64() < n.P {
		return 1
	}
	return 0
}

// Bits draws count independent noise bits.
func (n *NoiseModel) Bits(rng *rand.Rand, count int) []uint8 {
	out := make([]uint8, count)
	for i := range out {
		out[i] = n.Bit(rng)
	}
	return out
}

func validateErrorRate(p float64) error {
	// The negated form also rejects NaN.
	if !(p > 0 && p < 0.5) {
		return fmt.Errorf("%w: error rate %v outside (0, 0.5)", ErrInvalidParameter, p)
	}
	return nil
}
