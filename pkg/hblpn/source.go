package hblpn

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/tuneinsight/lattigo/v4/utils"
)

// NewSeededSource returns a fast deterministic PCG source.
func NewSeededSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// KeyedSource adapts lattigo's BLAKE2b keyed PRNG to math/rand/v2.
// The stream is fully determined by the key.
type KeyedSource struct {
	prng utils.PRNG
	buf  [8]byte
}

// NewKeyedSource creates a keyed source. An empty key is allowed.
func NewKeyedSource(key []byte) (*KeyedSource, error) {
	prng, err := utils.NewKeyedPRNG(key)
	if err != nil {
		return nil, fmt.Errorf("keyed prng: %w", err)
	}
	return &KeyedSource{prng: prng}, nil
}

// Uint64 implements rand.Source.
func (s *KeyedSource) Uint64() uint64 {
	if _, err := io.ReadFull(s.prng, s.buf[:]); err != nil {
		// The XOF never runs dry; a failure here is a broken invariant.
		panic(fmt.Sprintf("keyed prng read: %v", err))
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}
