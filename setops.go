package thetadup

import "fmt"

func checkSeedHashes(sketches ...Sketch) (uint16, error) {
	if len(sketches) == 0 {
		return 0, fmt.Errorf("%w: at least one sketch is required", ErrInvalidArgument)
	}
	want := sketches[0].SeedHash()
	for _, s := range sketches[1:] {
		if s.SeedHash() != want {
			return 0, fmt.Errorf("%w: got %d, want %d", ErrSeedMismatch, s.SeedHash(), want)
		}
	}
	return want, nil
}

func minTheta(sketches ...Sketch) uint64 {
	theta := MaxTheta
	for _, s := range sketches {
		if s.Theta64() < theta {
			theta = s.Theta64()
		}
	}
	return theta
}

// Union merges any number of sketches built under the same seed into a
// compact sketch representing the union of their inputs. Set operations
// discard multiplicity: output entries always carry a count of 1, since a
// union/intersection/a-not-b result describes set membership, not how many
// times a value was inserted into any one input.
func Union(sketches ...Sketch) (*CompactSketch, error) {
	seedHash, err := checkSeedHashes(sketches...)
	if err != nil {
		return nil, err
	}
	theta := minTheta(sketches...)

	present := make(map[uint64]struct{})
	isEmpty := true
	for _, s := range sketches {
		if !s.IsEmpty() {
			isEmpty = false
		}
		for h := range s.All() {
			if h < theta {
				present[h] = struct{}{}
			}
		}
	}

	entries := make([]entry, 0, len(present))
	for h := range present {
		entries = append(entries, entry{Hash: h, Count: 1})
	}
	sortEntries(entries)

	return &CompactSketch{
		isEmpty:   isEmpty,
		theta:     theta,
		entries:   entries,
		seedHash:  seedHash,
		isOrdered: true,
	}, nil
}

// Intersection combines any number of sketches built under the same seed
// into a compact sketch representing the intersection of their inputs.
func Intersection(sketches ...Sketch) (*CompactSketch, error) {
	seedHash, err := checkSeedHashes(sketches...)
	if err != nil {
		return nil, err
	}
	theta := minTheta(sketches...)

	counts := make(map[uint64]int)
	for _, s := range sketches {
		for h := range s.All() {
			if h < theta {
				counts[h]++
			}
		}
	}

	entries := make([]entry, 0)
	for h, n := range counts {
		if n == len(sketches) {
			entries = append(entries, entry{Hash: h, Count: 1})
		}
	}
	sortEntries(entries)

	isEmpty := false
	for _, s := range sketches {
		if s.IsEmpty() {
			isEmpty = true
		}
	}

	return &CompactSketch{
		isEmpty:   isEmpty,
		theta:     theta,
		entries:   entries,
		seedHash:  seedHash,
		isOrdered: true,
	}, nil
}

// ANotB returns the entries retained by a, built under the same seed as b,
// that are not retained by b: the asymmetric set difference a \ b.
func ANotB(a, b Sketch) (*CompactSketch, error) {
	seedHash, err := checkSeedHashes(a, b)
	if err != nil {
		return nil, err
	}
	theta := minTheta(a, b)

	excluded := make(map[uint64]struct{})
	for h := range b.All() {
		if h < theta {
			excluded[h] = struct{}{}
		}
	}

	entries := make([]entry, 0)
	for h := range a.All() {
		if h >= theta {
			continue
		}
		if _, ok := excluded[h]; ok {
			continue
		}
		entries = append(entries, entry{Hash: h, Count: 1})
	}
	sortEntries(entries)

	return &CompactSketch{
		isEmpty:   a.IsEmpty(),
		theta:     theta,
		entries:   entries,
		seedHash:  seedHash,
		isOrdered: true,
	}, nil
}
