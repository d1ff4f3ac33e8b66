// Package entropy provides the single random source every stochastic draw in
// the game goes through. Seeded sources make whole games reproducible; a zero
// seed pulls a fresh one from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	mrand "math/rand/v2"

	"github.com/google/uuid"
)

// Source is a deterministic PRNG. It is not safe for concurrent use; the game
// serializes all access behind its own mutex.
type Source struct {
	seed int64
	pcg  *mrand.PCG
	rng  *mrand.Rand
}

// New returns a source seeded with seed, or with a crypto-random seed when
// seed is zero.
func New(seed int64) *Source {
	if seed == 0 {
		seed = CryptoSeed()
	}
	pcg := mrand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b"))
	return &Source{
		seed: seed,
		pcg:  pcg,
		// Non-cryptographic PRNG is intentional for deterministic simulation behavior.
		// #nosec G404
		rng: mrand.New(pcg),
	}
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Seed returns the seed the source was built from.
func (s *Source) Seed() int64 {
	return s.seed
}

// State returns the generator position so a saved game resumes the same stream.
func (s *Source) State() ([]byte, error) {
	return s.pcg.MarshalBinary()
}

// Restore rewinds the generator to a position returned by State.
func (s *Source) Restore(state []byte) error {
	if len(state) == 0 {
		return nil
	}
	if err := s.pcg.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("restore rng: %w", err)
	}
	return nil
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Float returns a uniform value in [min, max).
func (s *Source) Float(min, max float64) float64 {
	return s.rng.Float64()*(max-min) + min
}

// Int returns a uniform integer in [min, max], both ends inclusive.
func (s *Source) Int(min, max int) int {
	if max <= min {
		return min
	}
	return s.rng.IntN(max-min+1) + min
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// Weighted picks an index with probability proportional to its weight.
// Non-positive weights never win. Returns -1 when nothing can win.
func (s *Source) Weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := s.rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return last
}

// Read fills p with pseudo-random bytes so the source can back uuid generation.
func (s *Source) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], s.rng.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// ID returns a version-4 UUID drawn from the source.
func (s *Source) ID() string {
	id, err := uuid.NewRandomFromReader(s)
	if err != nil {
		// Read never fails, but keep ids flowing if it ever does.
		return uuid.NewString()
	}
	return id.String()
}

// Choice returns a uniformly chosen element of items. items must be non-empty.
func Choice[T any](s *Source, items []T) T {
	return items[s.rng.IntN(len(items))]
}

// CryptoSeed returns a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but fall back to a fixed seed.
		return 0x5eed
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
