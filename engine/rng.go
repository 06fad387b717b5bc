package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// RNG is the deterministic generator owned by a battle session. Every random
// decision inside a simulation goes through it.
type RNG struct {
	seed uint64
	r    *rand.Rand
}

func NewRNG(seed uint64) *RNG {
	return &RNG{seed: seed, r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *RNG) Seed() uint64 { return g.seed }

// Index returns a value in [0, n). n <= 0 yields 0 without consuming state.
func (g *RNG) Index(n int) int {
	if n <= 0 {
		return 0
	}
	return g.r.IntN(n)
}

// NewSeed draws a battle seed from crypto/rand. It must never be called from
// inside a simulation.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
