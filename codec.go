package thetadup

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/sawmills/thetadup/internal/obslog"
)

// Wire format constants. Every multi-byte field is little-endian. Both
// sketch kinds share an 8-byte preamble head:
//
//	byte 0: preamble_longs (bits 0-5) | resize_factor (bits 6-7)
//	byte 1: serial version
//	byte 2: sketch type id (sketchTypeUpdate or sketchTypeCompact)
//	bytes 3-4: lg_nom_size, lg_cur_size (update); two reserved zero bytes
//	           (compact)
//	byte 5: flags (see flag* constants)
//	bytes 6-7: seed hash, u16
//
// Following the head:
//
//	update sketch (preamble_longs always 3): num_keys (u32), p (f32),
//	theta (u64), then the full table as 2^lg_cur_size entries of
//	(hash u64, count u64), including empty slots.
//
//	compact sketch: if IS_EMPTY, nothing follows. If preamble_longs == 1
//	and not empty, exactly one (hash, count) entry follows directly (the
//	single-item fast path; num_keys and theta are implied: 1 and
//	MaxTheta). Otherwise num_keys (u32) and 4 reserved zero bytes follow,
//	then theta (u64) if preamble_longs > 2, then num_keys entries of
//	(hash u64, count u64).
//
// The seed itself is never serialized: only its 16-bit fingerprint is, and
// the seed used to compute it must be supplied externally at deserialize
// time.
const (
	serialVersion = 3

	sketchTypeUpdate  = 2
	sketchTypeCompact = 3

	preambleLongsField = 0x3F
	resizeFactorShift  = 6

	flagBigEndian = 1 << 0
	flagReadOnly  = 1 << 1
	flagEmpty     = 1 << 2
	flagCompact   = 1 << 3
	flagOrdered   = 1 << 4

	headerBytes = 8
	entryBytes  = 16
)

func checkTruncated(data []byte, need int) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input where a sketch header is expected", ErrInvalidArgument)
	}
	if len(data) < need {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, need, len(data))
	}
	return nil
}

func readHeader(data []byte) (preambleLongs int, sketchType, flags byte, seedHash uint16) {
	preambleLongs = int(data[0] & preambleLongsField)
	sketchType = data[2]
	flags = data[5]
	seedHash = binary.LittleEndian.Uint16(data[6:8])
	return
}

func checkHeader(data []byte, wantType byte, seed uint64) error {
	if err := checkTruncated(data, headerBytes); err != nil {
		return err
	}
	if data[1] != serialVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, data[1], serialVersion)
	}
	if data[2] != wantType {
		return fmt.Errorf("%w: got type id %d, want %d", ErrTypeMismatch, data[2], wantType)
	}
	wantSeedHash := seedHashOf(seed)
	gotSeedHash := binary.LittleEndian.Uint16(data[6:8])
	if gotSeedHash != wantSeedHash {
		return fmt.Errorf("%w: got %d, want %d", ErrSeedMismatch, gotSeedHash, wantSeedHash)
	}
	return nil
}

// ToBytes serializes the update sketch. headerSizeBytes reserved leading
// bytes (for embedding the sketch inside a larger framed message) are
// emitted as zero and must be skipped by the caller on read; pass 0 for a
// plain, self-contained encoding. The full table (including empty slots)
// is written, not just live entries, so the exact table layout survives a
// round trip.
func (s *UpdateSketch) ToBytes(headerSizeBytes int) []byte {
	const preambleLongs = 3
	tableEntries := len(s.table)
	out := make([]byte, headerSizeBytes+preambleLongs*8+tableEntries*entryBytes)
	body := out[headerSizeBytes:]

	body[0] = byte(preambleLongs) | byte(s.rf)<<resizeFactorShift
	body[1] = serialVersion
	body[2] = sketchTypeUpdate
	body[3] = s.lgNomSize
	body[4] = s.lgCurSize
	flags := byte(0)
	if s.isEmpty {
		flags |= flagEmpty
	}
	body[5] = flags
	binary.LittleEndian.PutUint16(body[6:8], s.SeedHash())

	binary.LittleEndian.PutUint32(body[8:12], s.numKeys)
	binary.LittleEndian.PutUint32(body[12:16], math.Float32bits(s.p))
	binary.LittleEndian.PutUint64(body[16:24], s.theta)

	off := preambleLongs * 8
	for _, e := range s.table {
		binary.LittleEndian.PutUint64(body[off:off+8], e.Hash)
		binary.LittleEndian.PutUint64(body[off+8:off+16], e.Count)
		off += entryBytes
	}
	return out
}

// WriteTo writes the serialized update sketch to w, satisfying io.WriterTo.
func (s *UpdateSketch) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.ToBytes(0))
	if err != nil {
		return int64(n), fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	return int64(n), nil
}

// DeserializeUpdateSketch parses a buffer produced by UpdateSketch.ToBytes,
// validating it against seed. logger, if non-nil, receives codec error
// events; pass nil for silent operation.
func DeserializeUpdateSketch(data []byte, seed uint64, logger *obslog.Logger) (*UpdateSketch, error) {
	if logger == nil {
		logger = obslog.Nop()
	}
	if err := checkHeader(data, sketchTypeUpdate, seed); err != nil {
		logger.CodecError("deserialize-update", err)
		return nil, err
	}

	const preambleBytes = 3 * 8
	if err := checkTruncated(data, preambleBytes); err != nil {
		logger.CodecError("deserialize-update", err)
		return nil, err
	}

	_, _, flags, _ := readHeader(data)
	lgNomSize := data[3]
	lgCurSize := data[4]
	rf := ResizeFactor(data[0] >> resizeFactorShift)
	numKeys := binary.LittleEndian.Uint32(data[8:12])
	p := math.Float32frombits(binary.LittleEndian.Uint32(data[12:16]))
	theta := binary.LittleEndian.Uint64(data[16:24])

	tableLen := int(uint32(1) << lgCurSize)
	need := preambleBytes + tableLen*entryBytes
	if err := checkTruncated(data, need); err != nil {
		logger.CodecError("deserialize-update", err)
		return nil, err
	}

	table := make([]entry, tableLen)
	off := preambleBytes
	for i := range table {
		table[i] = entry{
			Hash:  binary.LittleEndian.Uint64(data[off : off+8]),
			Count: binary.LittleEndian.Uint64(data[off+8 : off+16]),
		}
		off += entryBytes
	}

	s := &UpdateSketch{
		lgCurSize: lgCurSize,
		lgNomSize: lgNomSize,
		table:     table,
		numKeys:   numKeys,
		rf:        rf,
		p:         p,
		seed:      seed,
		isEmpty:   flags&flagEmpty != 0,
		theta:     theta,
		logger:    logger,
	}
	s.capacity = getCapacity(s.lgCurSize, s.lgNomSize)
	return s, nil
}

// ToBytes serializes the compact sketch, taking the single-item fast path
// when the sketch holds exactly one entry in non-estimation mode, and
// omitting num_keys/theta entirely when the sketch is empty, per the
// preamble length rules documented on this file.
func (c *CompactSketch) ToBytes(headerSizeBytes int) []byte {
	var preambleLongs int
	switch {
	case c.isEmpty:
		preambleLongs = 1
	case c.theta == MaxTheta && len(c.entries) == 1:
		preambleLongs = 1
	case c.theta == MaxTheta:
		preambleLongs = 2
	default:
		preambleLongs = 3
	}

	bodyLen := preambleLongs * 8
	out := make([]byte, headerSizeBytes+bodyLen+len(c.entries)*entryBytes)
	body := out[headerSizeBytes:]

	body[0] = byte(preambleLongs)
	body[1] = serialVersion
	body[2] = sketchTypeCompact
	flags := byte(flagCompact | flagReadOnly)
	if c.isEmpty {
		flags |= flagEmpty
	}
	if c.isOrdered {
		flags |= flagOrdered
	}
	body[5] = flags
	binary.LittleEndian.PutUint16(body[6:8], c.seedHash)

	off := bodyLen
	switch {
	case c.isEmpty:
		// nothing follows the header.
	case preambleLongs == 1:
		// single-item fast path: the entry follows directly, no
		// num_keys/theta fields.
		binary.LittleEndian.PutUint64(body[8:16], c.entries[0].Hash)
		binary.LittleEndian.PutUint64(body[16:24], c.entries[0].Count)
		return out
	default:
		binary.LittleEndian.PutUint32(body[8:12], uint32(len(c.entries)))
		// body[12:16] left as reserved zero bytes.
		if preambleLongs > 2 {
			binary.LittleEndian.PutUint64(body[16:24], c.theta)
		}
	}

	for _, e := range c.entries {
		binary.LittleEndian.PutUint64(body[off:off+8], e.Hash)
		binary.LittleEndian.PutUint64(body[off+8:off+16], e.Count)
		off += entryBytes
	}
	return out
}

// WriteTo writes the serialized compact sketch to w, satisfying
// io.WriterTo.
func (c *CompactSketch) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.ToBytes(0))
	if err != nil {
		return int64(n), fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	return int64(n), nil
}

// DeserializeCompactSketch parses a buffer produced by
// CompactSketch.ToBytes, validating it against seed.
func DeserializeCompactSketch(data []byte, seed uint64) (*CompactSketch, error) {
	if err := checkHeader(data, sketchTypeCompact, seed); err != nil {
		return nil, err
	}
	preambleLongs, _, flags, seedHash := readHeader(data)
	isEmpty := flags&flagEmpty != 0
	isOrdered := flags&flagOrdered != 0

	if isEmpty {
		return &CompactSketch{
			isEmpty:   true,
			theta:     MaxTheta,
			entries:   nil,
			seedHash:  seedHash,
			isOrdered: isOrdered,
		}, nil
	}

	if preambleLongs == 1 {
		if err := checkTruncated(data, headerBytes+entryBytes); err != nil {
			return nil, err
		}
		entries := []entry{{
			Hash:  binary.LittleEndian.Uint64(data[8:16]),
			Count: binary.LittleEndian.Uint64(data[16:24]),
		}}
		return &CompactSketch{
			isEmpty:   false,
			theta:     MaxTheta,
			entries:   entries,
			seedHash:  seedHash,
			isOrdered: isOrdered,
		}, nil
	}

	bodyLen := preambleLongs * 8
	if err := checkTruncated(data, bodyLen); err != nil {
		return nil, err
	}
	numKeys := binary.LittleEndian.Uint32(data[8:12])
	theta := MaxTheta
	if preambleLongs > 2 {
		theta = binary.LittleEndian.Uint64(data[16:24])
	}

	need := bodyLen + int(numKeys)*entryBytes
	if err := checkTruncated(data, need); err != nil {
		return nil, err
	}
	entries := make([]entry, numKeys)
	off := bodyLen
	for i := range entries {
		entries[i] = entry{
			Hash:  binary.LittleEndian.Uint64(data[off : off+8]),
			Count: binary.LittleEndian.Uint64(data[off+8 : off+16]),
		}
		off += entryBytes
	}

	return &CompactSketch{
		isEmpty:   false,
		theta:     theta,
		entries:   entries,
		seedHash:  seedHash,
		isOrdered: isOrdered,
	}, nil
}

// Deserialize inspects the sketch type byte and dispatches to
// DeserializeUpdateSketch or DeserializeCompactSketch, returning the result
// as the shared Sketch interface.
func Deserialize(data []byte, seed uint64) (Sketch, error) {
	if err := checkTruncated(data, headerBytes); err != nil {
		return nil, err
	}
	switch data[2] {
	case sketchTypeUpdate:
		return DeserializeUpdateSketch(data, seed, nil)
	case sketchTypeCompact:
		return DeserializeCompactSketch(data, seed)
	default:
		return nil, fmt.Errorf("%w: unrecognized sketch type id %d", ErrTypeMismatch, data[2])
	}
}
