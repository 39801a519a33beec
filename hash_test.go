package thetadup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashKeyDeterministic(t *testing.T) {
	a := hashKey([]byte("alpha"), DefaultSeed)
	b := hashKey([]byte("alpha"), DefaultSeed)
	require.Equal(t, a, b, "hashing the same bytes under the same seed must be deterministic")
	require.Less(t, a, uint64(1)<<63, "hashKey must fit in 63 bits")
}

func TestHashKeyDiffersBySeed(t *testing.T) {
	a := hashKey([]byte("alpha"), DefaultSeed)
	b := hashKey([]byte("alpha"), DefaultSeed+1)
	require.NotEqual(t, a, b, "different seeds should (almost always) produce different hashes")
}

func TestSeedHashOfStable(t *testing.T) {
	h1 := seedHashOf(DefaultSeed)
	h2 := seedHashOf(DefaultSeed)
	require.Equal(t, h1, h2)
	h3 := seedHashOf(DefaultSeed + 1)
	require.NotEqual(t, h1, h3)
}

func TestCanonicalizeFloat64(t *testing.T) {
	require.Equal(t, canonicalizeFloat64(0.0), canonicalizeFloat64(math.Copysign(0, -1)),
		"+0.0 and -0.0 must canonicalize identically")
	require.Equal(t, uint64(0x7ff8000000000000), canonicalizeFloat64(math.NaN()))
	require.Equal(t, uint64(0x7ff8000000000000), canonicalizeFloat64(math.Sqrt(-1)),
		"a different NaN payload must still canonicalize to the same bit pattern")
	require.Equal(t, math.Float64bits(3.5), canonicalizeFloat64(3.5))
}
