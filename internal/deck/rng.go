package deck

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// RandomSource abstracts randomness so shuffles are seedable in tests
// and in the simulator.
type RandomSource interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n)
}

// crypto random : default shuffle source
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53bit random => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func (cryptoRNG) IntN(n int) int {
	if n <= 0 {
		panic("deck: IntN with non-positive n")
	}
	// Rejection sampling: discard the top sliver of the uint64 range that
	// does not divide evenly by n, so every residue is equally likely.
	limit := math.MaxUint64 - math.MaxUint64%uint64(n)
	for {
		var buf [8]byte
		if _, err := cryptoRand.Read(buf[:]); err != nil {
			return rand.IntN(n)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % uint64(n))
		}
	}
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (e.g. Monte Carlo)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
func (s *seededRNG) IntN(n int) int   { return s.r.IntN(n) }
