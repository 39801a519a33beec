package main

import (
	"fmt"

	"github.com/sawmills/thetadup"
)

func main() {
	// Build an update sketch and feed it a stream with duplicates.
	sketch, err := thetadup.NewBuilder().WithLgK(10).Build()
	if err != nil {
		panic(err)
	}

	for i := 0; i < 5000; i++ {
		sketch.UpdateUint64(uint64(i % 2000))
	}
	fmt.Printf("after inserts: estimate=%.0f retained=%d\n", sketch.Estimate(), sketch.NumRetained())

	// Remove half the range; multiplicity tracking means values inserted
	// more than once survive a single Remove call.
	for i := 0; i < 1000; i++ {
		sketch.RemoveUint64(uint64(i))
	}
	fmt.Printf("after removes: estimate=%.0f retained=%d\n", sketch.Estimate(), sketch.NumRetained())

	lower, _ := sketch.LowerBound(2)
	upper, _ := sketch.UpperBound(2)
	fmt.Printf("95%% confidence bounds: [%.0f, %.0f]\n", lower, upper)

	// Build a second sketch under the same seed and combine them.
	other, err := thetadup.NewBuilder().WithLgK(10).Build()
	if err != nil {
		panic(err)
	}
	for i := 1500; i < 3500; i++ {
		other.UpdateUint64(uint64(i))
	}

	union, err := thetadup.Union(sketch, other)
	if err != nil {
		panic(err)
	}
	fmt.Printf("union estimate: %.0f\n", union.Estimate())

	inter, err := thetadup.Intersection(sketch, other)
	if err != nil {
		panic(err)
	}
	fmt.Printf("intersection estimate: %.0f\n", inter.Estimate())

	diff, err := thetadup.ANotB(sketch, other)
	if err != nil {
		panic(err)
	}
	fmt.Printf("a-not-b estimate: %.0f\n", diff.Estimate())

	// Round-trip through the binary codec.
	compact := sketch.Compact(true)
	encoded := compact.ToBytes(0)
	decoded, err := thetadup.DeserializeCompactSketch(encoded, thetadup.DefaultSeed)
	if err != nil {
		panic(err)
	}
	fmt.Printf("round-tripped estimate: %.0f\n", decoded.Estimate())
}
