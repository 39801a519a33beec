package thetadup

import "iter"

// Sketch is the read-only surface shared by UpdateSketch and CompactSketch:
// everything needed to query a sketch's estimate, bounds, and retained
// entries without caring whether it is still growable.
type Sketch interface {
	// IsEmpty reports whether the sketch represents the empty set.
	IsEmpty() bool
	// IsOrdered reports whether retained entries are sorted by hash.
	IsOrdered() bool
	// NumRetained returns the number of live (hash, multiplicity) entries.
	NumRetained() uint32
	// Theta returns theta as a fraction of MaxTheta in [0,1].
	Theta() float64
	// Theta64 returns the raw 64-bit theta cutoff.
	Theta64() uint64
	// SeedHash returns the 16-bit fingerprint of the hash seed in use.
	SeedHash() uint16
	// IsEstimationMode reports whether Estimate is a statistical estimate
	// rather than an exact count.
	IsEstimationMode() bool
	// Estimate returns the estimated distinct count of the input stream.
	Estimate() float64
	// LowerBound returns the approximate lower confidence bound for
	// numStdDevs standard deviations (1, 2, or 3).
	LowerBound(numStdDevs uint8) (float64, error)
	// UpperBound returns the approximate upper confidence bound for
	// numStdDevs standard deviations (1, 2, or 3).
	UpperBound(numStdDevs uint8) (float64, error)
	// String returns a human-readable summary, optionally listing every
	// retained entry.
	String(printItems bool) string
	// All iterates the live (hash, multiplicity) pairs.
	All() iter.Seq2[uint64, uint64]
}

// equalRetainedSets reports whether a and b retain exactly the same hashes,
// ignoring multiplicity and iteration order.
func equalRetainedSets(a, b Sketch) bool {
	if a.NumRetained() != b.NumRetained() {
		return false
	}
	seen := make(map[uint64]struct{}, a.NumRetained())
	for h := range a.All() {
		seen[h] = struct{}{}
	}
	for h := range b.All() {
		if _, ok := seen[h]; !ok {
			return false
		}
		delete(seen, h)
	}
	return len(seen) == 0
}
