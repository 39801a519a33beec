package thetadup

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateSketchRoundTrip(t *testing.T) {
	s := newTestSketch(t, 10)
	for i := 0; i < 500; i++ {
		s.UpdateUint64(uint64(i))
	}
	s.UpdateUint64(7)
	s.RemoveUint64(7)
	s.UpdateUint64(7)

	encoded := s.ToBytes(0)
	decoded, err := DeserializeUpdateSketch(encoded, DefaultSeed, nil)
	require.NoError(t, err)

	require.Equal(t, s.NumRetained(), decoded.NumRetained())
	require.Equal(t, s.Theta64(), decoded.Theta64())
	require.Equal(t, s.IsEmpty(), decoded.IsEmpty())
	require.InDelta(t, s.Estimate(), decoded.Estimate(), 0.001)
	require.True(t, s.EqualSet(decoded))
}

func TestUpdateSketchRoundTripWithHeaderOffset(t *testing.T) {
	s := newTestSketch(t, 8)
	s.UpdateUint64(1)
	s.UpdateUint64(2)

	encoded := s.ToBytes(16)
	decoded, err := DeserializeUpdateSketch(encoded[16:], DefaultSeed, nil)
	require.NoError(t, err)
	require.True(t, s.EqualSet(decoded))
}

func TestCompactSketchRoundTrip(t *testing.T) {
	s := newTestSketch(t, 10)
	for i := 0; i < 300; i++ {
		s.UpdateUint64(uint64(i))
	}
	c := s.Compact(true)

	encoded := c.ToBytes(0)
	decoded, err := DeserializeCompactSketch(encoded, DefaultSeed)
	require.NoError(t, err)
	require.Equal(t, c.NumRetained(), decoded.NumRetained())
	require.Equal(t, c.Theta64(), decoded.Theta64())
	require.True(t, c.EqualSet(decoded))
}

func TestCompactSketchRoundTripEmpty(t *testing.T) {
	s := newTestSketch(t, 10)
	c := s.Compact(true)
	encoded := c.ToBytes(0)

	decoded, err := DeserializeCompactSketch(encoded, DefaultSeed)
	require.NoError(t, err)
	require.True(t, decoded.IsEmpty())
	require.Equal(t, uint32(0), decoded.NumRetained())
}

func TestDeserializeRejectsWrongSeed(t *testing.T) {
	s := newTestSketch(t, 10)
	s.UpdateUint64(1)
	c := s.Compact(true)
	encoded := c.ToBytes(0)

	_, err := DeserializeCompactSketch(encoded, DefaultSeed+1)
	require.ErrorIs(t, err, ErrSeedMismatch)
}

func TestDeserializeRejectsWrongType(t *testing.T) {
	s := newTestSketch(t, 10)
	s.UpdateUint64(1)
	encoded := s.ToBytes(0)

	_, err := DeserializeCompactSketch(encoded, DefaultSeed)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDeserializeRejectsTruncatedInput(t *testing.T) {
	s := newTestSketch(t, 10)
	s.UpdateUint64(1)
	c := s.Compact(true)
	encoded := c.ToBytes(0)

	_, err := DeserializeCompactSketch(encoded[:4], DefaultSeed)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDeserializeRejectsVersionMismatch(t *testing.T) {
	s := newTestSketch(t, 10)
	s.UpdateUint64(1)
	c := s.Compact(true)
	encoded := c.ToBytes(0)
	encoded[1] = serialVersion + 1

	_, err := DeserializeCompactSketch(encoded, DefaultSeed)
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestDeserializeDispatch(t *testing.T) {
	s := newTestSketch(t, 10)
	s.UpdateUint64(1)

	updSketch, err := Deserialize(s.ToBytes(0), DefaultSeed)
	require.NoError(t, err)
	_, ok := updSketch.(*UpdateSketch)
	require.True(t, ok)

	compactSketch, err := Deserialize(s.Compact(true).ToBytes(0), DefaultSeed)
	require.NoError(t, err)
	_, ok = compactSketch.(*CompactSketch)
	require.True(t, ok)
}

func TestUpdateSketchByteLayout(t *testing.T) {
	s := newTestSketch(t, MinLgK)
	s.UpdateUint64(1)

	encoded := s.ToBytes(0)
	require.Equal(t, byte(3)|byte(s.rf)<<resizeFactorShift, encoded[0], "byte 0 packs preamble_longs and resize_factor")
	require.Equal(t, byte(serialVersion), encoded[1])
	require.Equal(t, byte(sketchTypeUpdate), encoded[2])
	require.Equal(t, s.lgNomSize, encoded[3])
	require.Equal(t, s.lgCurSize, encoded[4])
	require.Equal(t, s.SeedHash(), binary.LittleEndian.Uint16(encoded[6:8]))

	require.Equal(t, s.numKeys, binary.LittleEndian.Uint32(encoded[8:12]))
	require.Equal(t, s.p, math.Float32frombits(binary.LittleEndian.Uint32(encoded[12:16])), "p must be serialized as a 4-byte f32, not a float64")
	require.Equal(t, s.theta, binary.LittleEndian.Uint64(encoded[16:24]))

	tableLen := int(uint32(1) << s.lgCurSize)
	require.Len(t, encoded, 24+tableLen*entryBytes, "the full table, including empty slots, must be serialized")
}

func TestCompactSketchSingleItemFastPath(t *testing.T) {
	s := newTestSketch(t, 10)
	s.UpdateUint64(42)
	c := s.Compact(true)
	require.Equal(t, uint32(1), c.NumRetained())
	require.False(t, c.IsEstimationMode())

	encoded := c.ToBytes(0)
	require.Equal(t, byte(1), encoded[0]&preambleLongsField, "a single exact-mode entry takes the 1-long fast path")
	require.Len(t, encoded, headerBytes+entryBytes, "no num_keys or theta field in the fast path")

	decoded, err := DeserializeCompactSketch(encoded, DefaultSeed)
	require.NoError(t, err)
	require.True(t, c.EqualSet(decoded))
	require.Equal(t, uint64(MaxTheta), decoded.Theta64())
}

func TestCompactSketchMultiItemLayoutHasNumKeysAndReservedBytes(t *testing.T) {
	s := newTestSketch(t, 10)
	s.UpdateUint64(1)
	s.UpdateUint64(2)
	c := s.Compact(true)
	require.False(t, c.IsEstimationMode())

	encoded := c.ToBytes(0)
	require.Equal(t, byte(2), encoded[0]&preambleLongsField)
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(encoded[8:12]))
	require.Equal(t, []byte{0, 0, 0, 0}, encoded[12:16], "4 reserved bytes follow num_keys")
	require.Len(t, encoded, headerBytes+8+2*entryBytes)
}

func TestWriteToWritesSameBytesAsToBytes(t *testing.T) {
	s := newTestSketch(t, 8)
	s.UpdateUint64(1)
	c := s.Compact(true)

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len(c.ToBytes(0))), n)
	require.Equal(t, c.ToBytes(0), buf.Bytes())
}
