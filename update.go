package thetadup

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/sawmills/thetadup/internal/obslog"
)

// resizeThreshold governs growth while the table has not yet grown past its
// nominal size: resize once live entries exceed resizeThreshold * table
// length.
const resizeThreshold = 0.5

// rebuildThreshold governs growth once the table has grown past its nominal
// size: rebuild (lower theta) once live entries exceed rebuildThreshold *
// table length.
const rebuildThreshold = 15.0 / 16.0

// UpdateSketch is the mutable, growable side of a theta sketch with
// duplicates and deletions. Construct one with Builder. It is not safe for
// concurrent use; callers needing concurrency must serialize access
// externally.
type UpdateSketch struct {
	lgCurSize uint8
	lgNomSize uint8
	table     []entry
	numKeys   uint32
	rf        ResizeFactor
	p         float32
	seed      uint64
	capacity  uint32
	isEmpty   bool
	theta     uint64
	logger    *obslog.Logger
}

var _ Sketch = (*UpdateSketch)(nil)

// IsEmpty reports whether this sketch represents an empty set. This is not
// the same as having no retained entries: a sketch that has seen updates
// and removes which all canceled out is non-empty with zero retained keys.
func (s *UpdateSketch) IsEmpty() bool { return s.isEmpty }

// IsOrdered reports whether retained entries are sorted by hash. Update
// sketches never are; only Compact can produce an ordered snapshot.
func (s *UpdateSketch) IsOrdered() bool { return false }

// NumRetained returns the number of live entries currently in the table.
func (s *UpdateSketch) NumRetained() uint32 { return s.numKeys }

// Theta returns theta as a fraction in [0,1], the effective sampling rate.
func (s *UpdateSketch) Theta() float64 { return float64(s.theta) / float64(MaxTheta) }

// Theta64 returns the raw 64-bit theta cutoff.
func (s *UpdateSketch) Theta64() uint64 { return s.theta }

// SeedHash returns the 16-bit fingerprint of this sketch's hash seed.
func (s *UpdateSketch) SeedHash() uint16 { return seedHashOf(s.seed) }

// IsEstimationMode reports whether theta has dropped below MaxTheta, making
// Estimate a statistical estimate rather than an exact count.
func (s *UpdateSketch) IsEstimationMode() bool {
	return s.theta < MaxTheta && !s.isEmpty
}

// Estimate returns the estimated distinct count of the input stream.
func (s *UpdateSketch) Estimate() float64 {
	return estimate(s.numKeys, s.theta)
}

// LowerBound returns the approximate lower confidence bound for the given
// number of standard deviations (1, 2, or 3).
func (s *UpdateSketch) LowerBound(numStdDevs uint8) (float64, error) {
	return lowerBound(s.numKeys, s.theta, s.IsEstimationMode(), numStdDevs)
}

// UpperBound returns the approximate upper confidence bound for the given
// number of standard deviations (1, 2, or 3).
func (s *UpdateSketch) UpperBound(numStdDevs uint8) (float64, error) {
	return upperBound(s.numKeys, s.theta, s.IsEstimationMode(), numStdDevs)
}

// All iterates the live (hash, multiplicity) pairs in table order (not
// sorted).
func (s *UpdateSketch) All() iter.Seq2[uint64, uint64] {
	return func(yield func(uint64, uint64) bool) {
		for _, e := range s.table {
			if e.Hash == 0 {
				continue
			}
			if !yield(e.Hash, e.Count) {
				return
			}
		}
	}
}

// String returns a human-readable summary, optionally including every
// retained entry.
func (s *UpdateSketch) String(printItems bool) string {
	var b strings.Builder
	fmt.Fprintln(&b, "### Update Theta sketch summary:")
	fmt.Fprintf(&b, "   lg nominal size      : %d\n", s.lgNomSize)
	fmt.Fprintf(&b, "   lg current size      : %d\n", s.lgCurSize)
	fmt.Fprintf(&b, "   num retained keys    : %d\n", s.numKeys)
	fmt.Fprintf(&b, "   resize factor        : x%d\n", 1<<s.rf)
	fmt.Fprintf(&b, "   sampling probability : %v\n", s.p)
	fmt.Fprintf(&b, "   seed hash            : %d\n", s.SeedHash())
	fmt.Fprintf(&b, "   empty?               : %v\n", s.IsEmpty())
	fmt.Fprintf(&b, "   ordered?             : %v\n", s.IsOrdered())
	fmt.Fprintf(&b, "   estimation mode?     : %v\n", s.IsEstimationMode())
	fmt.Fprintf(&b, "   theta (fraction)     : %v\n", s.Theta())
	fmt.Fprintf(&b, "   theta (raw 64-bit)   : %d\n", s.theta)
	fmt.Fprintf(&b, "   estimate             : %v\n", s.Estimate())
	fmt.Fprintln(&b, "### End sketch summary")
	if printItems {
		fmt.Fprintln(&b, "### Retained keys")
		for h, c := range s.All() {
			fmt.Fprintf(&b, "   %d x%d\n", h, c)
		}
		fmt.Fprintln(&b, "### End retained keys")
	}
	return b.String()
}

// Equal compares two sketches by theta alone, the weak equality semantic
// this sketch family has always exposed: two sketches fed disjoint data at
// the same sampling rate compare equal under it. See EqualSet for a
// stronger, set-based comparison.
func (s *UpdateSketch) Equal(other Sketch) bool {
	return s.theta == other.Theta64()
}

// EqualSet reports whether s and other retain exactly the same set of
// hashes (multiplicity and order ignored). Unlike Equal, this actually
// compares content, not just sampling rate.
func (s *UpdateSketch) EqualSet(other Sketch) bool {
	return equalRetainedSets(s, other)
}

// Update hashes an arbitrary byte range under the sketch's seed and folds it
// into the table. An empty range is a no-op: it does not touch the table
// and does not clear IsEmpty.
func (s *UpdateSketch) Update(data []byte) {
	if len(data) == 0 {
		return
	}
	s.internalUpdate(hashKey(data, s.seed))
}

// UpdateUint64 updates the sketch with a uint64, hashed as its 8 raw bytes.
func (s *UpdateSketch) UpdateUint64(v uint64) { s.Update(uint64Bytes(v)) }

// UpdateInt64 updates the sketch with an int64, hashed as its 8 raw bytes.
func (s *UpdateSketch) UpdateInt64(v int64) { s.Update(int64Bytes(v)) }

// UpdateUint32 updates the sketch with a uint32, widened the same way the
// Java-compatible reference implementation does: reinterpreted as int32,
// then sign-extended to int64 before hashing.
func (s *UpdateSketch) UpdateUint32(v uint32) { s.UpdateInt64(int64(int32(v))) }

// UpdateInt32 updates the sketch with an int32, sign-extended to int64.
func (s *UpdateSketch) UpdateInt32(v int32) { s.UpdateInt64(int64(v)) }

// UpdateUint16 updates the sketch with a uint16, widened via int16 then
// sign-extended to int64.
func (s *UpdateSketch) UpdateUint16(v uint16) { s.UpdateInt64(int64(int16(v))) }

// UpdateInt16 updates the sketch with an int16, sign-extended to int64.
func (s *UpdateSketch) UpdateInt16(v int16) { s.UpdateInt64(int64(v)) }

// UpdateUint8 updates the sketch with a uint8, widened via int8 then
// sign-extended to int64.
func (s *UpdateSketch) UpdateUint8(v uint8) { s.UpdateInt64(int64(int8(v))) }

// UpdateInt8 updates the sketch with an int8, sign-extended to int64.
func (s *UpdateSketch) UpdateInt8(v int8) { s.UpdateInt64(int64(v)) }

// UpdateFloat64 updates the sketch with a float64, canonicalizing +/-0.0
// and every NaN payload so they always hash identically.
func (s *UpdateSketch) UpdateFloat64(v float64) { s.UpdateUint64(canonicalizeFloat64(v)) }

// UpdateFloat32 updates the sketch with a float32, widened to float64 first.
func (s *UpdateSketch) UpdateFloat32(v float32) { s.UpdateFloat64(float64(v)) }

// UpdateString updates the sketch with the UTF-8 bytes of s. An empty
// string is a no-op.
func (s *UpdateSketch) UpdateString(str string) { s.Update([]byte(str)) }

// Remove hashes an arbitrary byte range under the sketch's seed and removes
// one occurrence of it from the table. Removing a value that was not
// present, or whose slot has been scattered by earlier deletes, is a silent
// no-op: it never returns an error and never panics. An empty range is also
// a no-op and does not clear IsEmpty.
func (s *UpdateSketch) Remove(data []byte) {
	if len(data) == 0 {
		return
	}
	s.internalRemove(hashKey(data, s.seed))
}

// RemoveUint64 removes one occurrence of a uint64 previously updated.
func (s *UpdateSketch) RemoveUint64(v uint64) { s.Remove(uint64Bytes(v)) }

// RemoveInt64 removes one occurrence of an int64 previously updated.
func (s *UpdateSketch) RemoveInt64(v int64) { s.Remove(int64Bytes(v)) }

// RemoveUint32 removes one occurrence of a uint32 previously updated.
func (s *UpdateSketch) RemoveUint32(v uint32) { s.RemoveInt64(int64(int32(v))) }

// RemoveInt32 removes one occurrence of an int32 previously updated.
func (s *UpdateSketch) RemoveInt32(v int32) { s.RemoveInt64(int64(v)) }

// RemoveUint16 removes one occurrence of a uint16 previously updated.
func (s *UpdateSketch) RemoveUint16(v uint16) { s.RemoveInt64(int64(int16(v))) }

// RemoveInt16 removes one occurrence of an int16 previously updated.
func (s *UpdateSketch) RemoveInt16(v int16) { s.RemoveInt64(int64(v)) }

// RemoveUint8 removes one occurrence of a uint8 previously updated.
func (s *UpdateSketch) RemoveUint8(v uint8) { s.RemoveInt64(int64(int8(v))) }

// RemoveInt8 removes one occurrence of an int8 previously updated.
func (s *UpdateSketch) RemoveInt8(v int8) { s.RemoveInt64(int64(v)) }

// RemoveFloat64 removes one occurrence of a float64 previously updated,
// applying the same +/-0.0 and NaN canonicalization as UpdateFloat64.
func (s *UpdateSketch) RemoveFloat64(v float64) { s.RemoveUint64(canonicalizeFloat64(v)) }

// RemoveFloat32 removes one occurrence of a float32 previously updated.
func (s *UpdateSketch) RemoveFloat32(v float32) { s.RemoveFloat64(float64(v)) }

// RemoveString removes one occurrence of a string previously updated. An
// empty string is a no-op.
func (s *UpdateSketch) RemoveString(str string) { s.Remove([]byte(str)) }

// Trim forces a rebuild (theta lowering) if the table currently holds more
// than the nominal 2^lg_k entries; otherwise it is a no-op.
func (s *UpdateSketch) Trim() {
	nominal := uint32(1) << s.lgNomSize
	if s.numKeys > nominal {
		before := s.numKeys
		s.rebuild()
		s.logger.Trim(before, s.numKeys)
	}
}

// Compact produces an immutable snapshot of the live entries. If ordered,
// the snapshot's entries are sorted ascending by hash; the source sketch is
// left unchanged either way.
func (s *UpdateSketch) Compact(ordered bool) *CompactSketch {
	entries := make([]entry, 0, s.numKeys)
	for _, e := range s.table {
		if e.Hash != 0 {
			entries = append(entries, e)
		}
	}
	if ordered {
		sortEntries(entries)
	}
	return &CompactSketch{
		isEmpty:   s.isEmpty,
		theta:     s.theta,
		entries:   entries,
		seedHash:  s.SeedHash(),
		isOrdered: ordered,
	}
}

func (s *UpdateSketch) internalUpdate(hash uint64) {
	s.isEmpty = false
	if hash >= s.theta || hash == 0 {
		return
	}
	inserted, err := searchOrInsert(s.table, s.lgCurSize, hash)
	if err != nil {
		s.logger.CodecError("update", err)
		return
	}
	if !inserted {
		return
	}
	s.numKeys++
	if s.numKeys > s.capacity {
		if s.lgCurSize <= s.lgNomSize {
			s.resize()
		} else {
			s.rebuild()
		}
	}
}

func (s *UpdateSketch) internalRemove(hash uint64) {
	s.isEmpty = false
	if hash >= s.theta || hash == 0 {
		return
	}
	if searchOrDecrement(s.table, s.lgCurSize, hash) {
		s.numKeys--
	}
}

func (s *UpdateSketch) resize() {
	lgTgtSize := s.lgNomSize + 1
	factor := clampFactor(uint8(s.rf), lgTgtSize-s.lgCurSize)
	lgNewSize := s.lgCurSize + factor
	newTable := make([]entry, uint32(1)<<lgNewSize)
	for _, e := range s.table {
		if e.Hash != 0 {
			if err := placeDistinct(newTable, lgNewSize, e); err != nil {
				s.logger.CodecError("resize", err)
			}
		}
	}
	oldLg := s.lgCurSize
	s.table = newTable
	s.lgCurSize = lgNewSize
	s.capacity = getCapacity(s.lgCurSize, s.lgNomSize)
	s.logger.Resize(oldLg, lgNewSize)
}

// rebuild lowers theta to the (2^lg_nom_size + 1)-th smallest live hash and
// rebuilds a same-sized table containing only entries below the new theta,
// preserving each surviving entry's multiplicity exactly.
func (s *UpdateSketch) rebuild() {
	live := make([]entry, 0, s.numKeys)
	for _, e := range s.table {
		if e.Hash != 0 {
			live = append(live, e)
		}
	}
	sortEntries(live)

	nominal := int(uint32(1) << s.lgNomSize)
	if nominal < len(live) {
		s.theta = live[nominal].Hash
	}

	newTable := make([]entry, len(s.table))
	numKeys := uint32(0)
	for _, e := range live {
		if e.Hash < s.theta {
			if err := placeDistinct(newTable, s.lgCurSize, e); err != nil {
				s.logger.CodecError("rebuild", err)
				continue
			}
			numKeys++
		}
	}
	s.table = newTable
	s.numKeys = numKeys
	s.logger.Rebuild(s.theta, s.numKeys)
}

func clampFactor(rf uint8, ceiling uint8) uint8 {
	factor := rf
	if factor > ceiling {
		factor = ceiling
	}
	if factor < 1 {
		factor = 1
	}
	return factor
}

func getCapacity(lgCurSize, lgNomSize uint8) uint32 {
	fraction := rebuildThreshold
	if lgCurSize <= lgNomSize {
		fraction = resizeThreshold
	}
	return uint32(math.Floor(fraction * float64(uint32(1)<<lgCurSize)))
}

func sortEntries(entries []entry) {
	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case a.Hash < b.Hash:
			return -1
		case a.Hash > b.Hash:
			return 1
		default:
			return 0
		}
	})
}
