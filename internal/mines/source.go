package mines

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

// Source is the randomness used for mine placement. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewSource returns a PCG-backed source whose state is derived from seed, so
// the same seed always produces the same boards.
func NewSource(seed string) *rand.Rand {
	sum := blake2b.Sum256([]byte(seed))
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(sum[:8]),
		binary.LittleEndian.Uint64(sum[8:16]),
	))
}

// RandomSeed draws a fresh seed string from r.
func RandomSeed(r *rand.Rand) string {
	return fmt.Sprintf("%016x%016x", r.Uint64(), r.Uint64())
}
