package show

import (
	"strings"

	"github.com/google/uuid"
)

// Rand128 is a xoroshiro128+ engine seeded through a SplitMix64 expansion.
// Reproducibility is load-bearing: two engines constructed from the same
// seed must emit identical sequences forever, so nothing here may depend on
// anything but s0/s1. Not safe for concurrent use — each engine belongs to
// one call site (a single shuffle build, or one cursor's main section).
type Rand128 struct {
	s0, s1 uint64
}

// splitMix64Next is the classic fixed-point seed expander used to turn a single
// 64-bit seed into the two 64-bit words xoroshiro128+ needs.
func splitMix64Next(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// NewRand128 constructs an engine from a plain 64-bit seed.
func NewRand128(seed uint64) *Rand128 {
	state := seed
	s0 := splitMix64Next(&state)
	s1 := splitMix64Next(&state)
	return &Rand128{s0: s0, s1: s1}
}

// NewRand128FromUUID constructs an engine from a 128-bit UUID, hyphens
// stripped, taken as the seed material. The UUID's low 64 bits feed the
// SplitMix64 expander exactly the way a plain uint64 seed would.
func NewRand128FromUUID(id string) *Rand128 {
	stripped := strings.ReplaceAll(id, "-", "")
	parsed, err := uuid.Parse(id)
	if err != nil {
		// Malformed UUID text: fold the stripped hex string into a seed via
		// the same splitmix expander rather than failing outright — the
		// shuffle generator always needs a deterministic engine.
		var acc uint64
		for i := 0; i < len(stripped); i++ {
			acc = acc*31 + uint64(stripped[i])
		}
		return NewRand128(acc)
	}
	lo := uint64(0)
	b := parsed[8:16]
	for _, c := range b {
		lo = (lo << 8) | uint64(c)
	}
	return NewRand128(lo)
}

// CombineSeed folds a numeric seed together with a playlist's UUID, as
// the two are added and the low 64 bits taken. Combining this way
// (rather than re-deriving an engine from the UUID alone) is what keeps
// shuffle output byte-identical across implementations that share the same
// pipeline.
func CombineSeed(seed int64, playlistUUID string) uint64 {
	parsed, err := uuid.Parse(playlistUUID)
	if err != nil {
		// Fall back to folding the raw bytes; still deterministic.
		var lo uint64
		stripped := strings.ReplaceAll(playlistUUID, "-", "")
		for i := 0; i < len(stripped); i++ {
			lo = lo*31 + uint64(stripped[i])
		}
		return uint64(seed) + lo
	}
	var uuidLow uint64
	for _, c := range parsed[8:16] {
		uuidLow = (uuidLow << 8) | uint64(c)
	}
	return uint64(seed) + uuidLow
}

func rotl(x uint64, k uint) uint64 {
	return (x << k) | (x >> (64 - k))
}

// NextUint64 advances the engine and returns the next 64-bit output, per the
// xoroshiro128+ algorithm.
func (r *Rand128) NextUint64() uint64 {
	s0 := r.s0
	s1 := r.s1
	result := s0 + s1

	s1 ^= s0
	r.s0 = rotl(s0, 55) ^ s1 ^ (s1 << 14)
	r.s1 = rotl(s1, 36)

	return result
}

// NextFloat64 maps the high 53 bits of the next output into [0, 1).
func (r *Rand128) NextFloat64() float64 {
	v := r.NextUint64()
	return float64(v>>11) / float64(1<<53)
}

// NextInt returns a uniform integer in [0, n). Callers must pass n > 0.
func (r *Rand128) NextInt(n int) int {
	if n <= 0 {
		return 0
	}
	f := r.NextFloat64()
	k := int(f * float64(n))
	if k >= n {
		k = n - 1
	}
	return k
}
