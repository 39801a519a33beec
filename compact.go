package thetadup

import (
	"fmt"
	"iter"
	"strings"
)

// CompactSketch is an immutable, read-only snapshot of a sketch's retained
// entries: the result of UpdateSketch.Compact or of a set operation.
type CompactSketch struct {
	isEmpty   bool
	theta     uint64
	entries   []entry
	seedHash  uint16
	isOrdered bool
}

var _ Sketch = (*CompactSketch)(nil)

// IsEmpty reports whether this sketch represents the empty set.
func (c *CompactSketch) IsEmpty() bool { return c.isEmpty }

// IsOrdered reports whether entries are sorted ascending by hash.
func (c *CompactSketch) IsOrdered() bool { return c.isOrdered }

// NumRetained returns the number of retained entries.
func (c *CompactSketch) NumRetained() uint32 { return uint32(len(c.entries)) }

// Theta returns theta as a fraction of MaxTheta in [0,1].
func (c *CompactSketch) Theta() float64 { return float64(c.theta) / float64(MaxTheta) }

// Theta64 returns the raw 64-bit theta cutoff.
func (c *CompactSketch) Theta64() uint64 { return c.theta }

// SeedHash returns the 16-bit fingerprint of the hash seed the source
// sketch was built with.
func (c *CompactSketch) SeedHash() uint16 { return c.seedHash }

// IsEstimationMode reports whether Estimate is a statistical estimate
// rather than an exact count.
func (c *CompactSketch) IsEstimationMode() bool {
	return c.theta < MaxTheta && !c.isEmpty
}

// Estimate returns the estimated distinct count of the input stream.
func (c *CompactSketch) Estimate() float64 {
	return estimate(uint32(len(c.entries)), c.theta)
}

// LowerBound returns the approximate lower confidence bound for numStdDevs
// standard deviations (1, 2, or 3).
func (c *CompactSketch) LowerBound(numStdDevs uint8) (float64, error) {
	return lowerBound(uint32(len(c.entries)), c.theta, c.IsEstimationMode(), numStdDevs)
}

// UpperBound returns the approximate upper confidence bound for numStdDevs
// standard deviations (1, 2, or 3).
func (c *CompactSketch) UpperBound(numStdDevs uint8) (float64, error) {
	return upperBound(uint32(len(c.entries)), c.theta, c.IsEstimationMode(), numStdDevs)
}

// All iterates the retained (hash, multiplicity) pairs, in sorted order if
// IsOrdered, in storage order otherwise.
func (c *CompactSketch) All() iter.Seq2[uint64, uint64] {
	return func(yield func(uint64, uint64) bool) {
		for _, e := range c.entries {
			if !yield(e.Hash, e.Count) {
				return
			}
		}
	}
}

// String returns a human-readable summary, optionally listing every
// retained entry.
func (c *CompactSketch) String(printItems bool) string {
	var b strings.Builder
	fmt.Fprintln(&b, "### Compact Theta sketch summary:")
	fmt.Fprintf(&b, "   num retained keys    : %d\n", len(c.entries))
	fmt.Fprintf(&b, "   seed hash            : %d\n", c.seedHash)
	fmt.Fprintf(&b, "   empty?               : %v\n", c.isEmpty)
	fmt.Fprintf(&b, "   ordered?             : %v\n", c.isOrdered)
	fmt.Fprintf(&b, "   estimation mode?     : %v\n", c.IsEstimationMode())
	fmt.Fprintf(&b, "   theta (fraction)     : %v\n", c.Theta())
	fmt.Fprintf(&b, "   theta (raw 64-bit)   : %d\n", c.theta)
	fmt.Fprintf(&b, "   estimate             : %v\n", c.Estimate())
	fmt.Fprintln(&b, "### End sketch summary")
	if printItems {
		fmt.Fprintln(&b, "### Retained keys")
		for h, cnt := range c.All() {
			fmt.Fprintf(&b, "   %d x%d\n", h, cnt)
		}
		fmt.Fprintln(&b, "### End retained keys")
	}
	return b.String()
}

// Equal compares two sketches by theta alone, matching UpdateSketch.Equal.
func (c *CompactSketch) Equal(other Sketch) bool {
	return c.theta == other.Theta64()
}

// EqualSet reports whether c and other retain exactly the same set of
// hashes, ignoring multiplicity and order.
func (c *CompactSketch) EqualSet(other Sketch) bool {
	return equalRetainedSets(c, other)
}
