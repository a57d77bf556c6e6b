package show

import (
	"testing"

	"github.com/matryer/is"
)

func TestRand128Reproducible(t *testing.T) {
	is := is.New(t)
	a := NewRand128(42)
	b := NewRand128(42)
	for i := 0; i < 50; i++ {
		is.Equal(a.NextUint64(), b.NextUint64())
	}
}

func TestRand128DifferentSeedsDiverge(t *testing.T) {
	is := is.New(t)
	a := NewRand128(1)
	b := NewRand128(2)
	same := true
	for i := 0; i < 20; i++ {
		if a.NextUint64() != b.NextUint64() {
			same = false
			break
		}
	}
	is.True(!same) // different seeds must eventually diverge
}

func TestCombineSeedReproducible(t *testing.T) {
	is := is.New(t)
	c1 := CombineSeed(7, "playlist-a")
	c2 := CombineSeed(7, "playlist-a")
	is.Equal(c1, c2)

	c3 := CombineSeed(7, "playlist-b")
	is.True(c1 != c3) // distinct playlist ids must combine to distinct state
}

func TestNextIntWithinBounds(t *testing.T) {
	is := is.New(t)
	r := NewRand128(123)
	for i := 0; i < 1000; i++ {
		n := r.NextInt(7)
		is.True(n >= 0 && n < 7)
	}
}

func TestNextFloat64WithinUnitRange(t *testing.T) {
	is := is.New(t)
	r := NewRand128(9001)
	for i := 0; i < 1000; i++ {
		f := r.NextFloat64()
		is.True(f >= 0 && f < 1)
	}
}
