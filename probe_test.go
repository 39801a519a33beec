package thetadup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchOrInsertBasic(t *testing.T) {
	const lgSize = 4
	table := make([]entry, 1<<lgSize)

	inserted, err := searchOrInsert(table, lgSize, 42)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = searchOrInsert(table, lgSize, 42)
	require.NoError(t, err)
	require.False(t, inserted, "second insert of the same hash must not report as a fresh insert")

	found, err := search(table, lgSize, 42)
	require.NoError(t, err)
	require.True(t, found)

	var count uint64
	for _, e := range table {
		if e.Hash == 42 {
			count = e.Count
		}
	}
	require.Equal(t, uint64(2), count, "a repeated insert must bump multiplicity, not duplicate the slot")
}

func TestSearchOrDecrementClearsSlotAtZero(t *testing.T) {
	const lgSize = 4
	table := make([]entry, 1<<lgSize)
	_, err := searchOrInsert(table, lgSize, 7)
	require.NoError(t, err)

	removed := searchOrDecrement(table, lgSize, 7)
	require.True(t, removed)

	found, err := search(table, lgSize, 7)
	require.NoError(t, err)
	require.False(t, found, "decrementing a multiplicity-1 entry to zero must clear the slot")
}

func TestSearchOrDecrementPreservesMultiplicity(t *testing.T) {
	const lgSize = 4
	table := make([]entry, 1<<lgSize)
	_, err := searchOrInsert(table, lgSize, 7)
	require.NoError(t, err)
	_, err = searchOrInsert(table, lgSize, 7)
	require.NoError(t, err)

	removed := searchOrDecrement(table, lgSize, 7)
	require.False(t, removed, "decrementing from 2 to 1 must not report the slot as cleared")

	found, err := search(table, lgSize, 7)
	require.NoError(t, err)
	require.True(t, found)
}

func TestSearchOrDecrementAbsentKeyIsNoOp(t *testing.T) {
	const lgSize = 4
	table := make([]entry, 1<<lgSize)
	_, err := searchOrInsert(table, lgSize, 7)
	require.NoError(t, err)

	removed := searchOrDecrement(table, lgSize, 999)
	require.False(t, removed, "removing a key never inserted must be a silent no-op, never a fault")
}

func TestPlaceDistinctPreservesCount(t *testing.T) {
	const lgSize = 4
	table := make([]entry, 1<<lgSize)
	err := placeDistinct(table, lgSize, entry{Hash: 13, Count: 9})
	require.NoError(t, err)

	found, err := search(table, lgSize, 13)
	require.NoError(t, err)
	require.True(t, found)

	var got entry
	for _, e := range table {
		if e.Hash == 13 {
			got = e
		}
	}
	require.Equal(t, uint64(9), got.Count, "placeDistinct must carry the source multiplicity forward, not reset it to 1")
}

func TestStrideIsOdd(t *testing.T) {
	for h := uint64(0); h < 1000; h++ {
		s := stride(h, 10)
		require.Equal(t, uint32(1), s%2, "stride must always be odd so the probe sequence visits every slot")
	}
}
