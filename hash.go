package thetadup

import (
	"encoding/binary"
	"math"

	"github.com/twmb/murmur3"
)

// DefaultSeed is the hash seed used when a Builder is not given one
// explicitly. It matches the conventional default seed used throughout the
// datasketches family so sketches built with default settings stay
// cross-compatible.
const DefaultSeed uint64 = 9001

// MaxTheta is the maximum positive signed 64-bit value. Theta lives in
// [0, MaxTheta]; the sampling fraction is theta / MaxTheta.
const MaxTheta uint64 = math.MaxInt64

// hash128 returns the two 64-bit halves of the MurmurHash3 x64-128 digest of
// data under seed.
func hash128(data []byte, seed uint64) (h1, h2 uint64) {
	return murmur3.SeedSum128(seed, seed, data)
}

// hashKey reduces an arbitrary byte range to a 63-bit sampling key: the high
// half of the MurmurHash3 digest, shifted right one bit so the result is
// never negative when read as a signed 64-bit integer.
func hashKey(data []byte, seed uint64) uint64 {
	h1, _ := hash128(data, seed)
	return h1 >> 1
}

// seedHashOf computes the 16-bit fingerprint of seed used in serialized
// headers: the low 16 bits of h1 when hashing the 8-byte little-endian
// encoding of seed with a seed argument of zero.
func seedHashOf(seed uint64) uint16 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h1, _ := hash128(buf[:], 0)
	return uint16(h1)
}

// canonicalizeFloat64 maps +0.0/-0.0 to 0.0 and any NaN to the bit pattern
// Java's Double.doubleToLongBits() uses for NaN, so floating point updates
// hash identically regardless of platform or NaN payload.
func canonicalizeFloat64(v float64) uint64 {
	switch {
	case v == 0.0:
		return 0
	case math.IsNaN(v):
		return 0x7ff8000000000000
	default:
		return math.Float64bits(v)
	}
}

func int64Bytes(v int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return buf[:]
}

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}
