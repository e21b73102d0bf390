package skipscan

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
)

func TestIntersect_ClipsSlots(t *testing.T) {
	f, err := New([][]keyrange.KeyRange{
		{keyrange.Point(u32(1)), keyrange.Point(u32(3)), keyrange.Point(u32(5)), keyrange.Point(u32(7))},
		{keyrange.Point(u32(10)), keyrange.Point(u32(60))},
	}, twoInts)
	require.NoError(t, err)

	f.Intersect(intKey(3, 50), intKey(6, 0))
	require.False(t, f.IsNothing())
	require.Len(t, f.Slots()[0], 2, "3 and 5 survive, 7 lies past the end")
	require.Equal(t, keyrange.Point(u32(3)), f.Slots()[0][0])
	// slot 0 still spans two values, so slot 1 keeps 10 for the rows of 5
	require.Len(t, f.Slots()[1], 2)
	require.Equal(t, intKey(3, 10), f.NextKeyHint())
}

func TestIntersect_PinnedBoundaryNarrowsNextSlot(t *testing.T) {
	f, err := New([][]keyrange.KeyRange{
		{keyrange.Point(u32(1)), keyrange.Point(u32(3))},
		{keyrange.Point(u32(10)), keyrange.Point(u32(60))},
	}, twoInts)
	require.NoError(t, err)

	f.Intersect(intKey(3, 50), nil)
	require.Len(t, f.Slots()[0], 1)
	require.Len(t, f.Slots()[1], 1)
	require.Equal(t, keyrange.Point(u32(60)), f.Slots()[1][0])
	require.Equal(t, intKey(3, 60), f.NextKeyHint())

	g, err := New([][]keyrange.KeyRange{
		{keyrange.Point(u32(1)), keyrange.Point(u32(3))},
		{keyrange.Point(u32(10)), keyrange.Point(u32(60))},
	}, twoInts)
	require.NoError(t, err)
	g.Intersect(nil, intKey(1, 10))
	require.True(t, g.IsNothing(), "(1,10) itself is excluded")
}

func TestIntersect_UnalignedBoundaries(t *testing.T) {
	f := newTwoIntsFilter(t)

	// too short to decode a field, so both ends are open
	f.Intersect([]byte{0}, []byte{0xff})
	require.Len(t, f.Slots(), 2)
	require.Len(t, f.Slots()[0], 2)
	require.Equal(t, intKey(1, 10), f.NextKeyHint())
}

func TestIntersect_ResetsCursor(t *testing.T) {
	f := newTwoIntsFilter(t)

	d, err := f.Navigate(intKey(3, 25))
	require.NoError(t, err)
	require.Equal(t, StopScan, d)

	f.Intersect(intKey(2, 0), nil)
	require.False(t, f.FilterAllRemaining())
	require.Equal(t, intKey(3, 10), f.NextKeyHint())

	d, err = f.Navigate(intKey(3, 12))
	require.NoError(t, err)
	require.Equal(t, Include, d)
}

func TestIntersect_MatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for iter := 0; iter < 1000; iter++ {
		schema := randomSchema(rnd)
		f := randomFilter(t, rnd, schema)
		keys := randomKeys(rnd, schema, 1+rnd.Intn(200))

		lower := randomBoundary(rnd, keys)
		upper := randomBoundary(rnd, keys)
		if lower != nil && upper != nil && bytes.Compare(lower, upper) > 0 {
			lower, upper = upper, lower
		}

		from := 0
		if lower != nil {
			from = sort.Search(len(keys), func(i int) bool { return bytes.Compare(keys[i], lower) >= 0 })
		}
		to := len(keys)
		if upper != nil {
			to = sort.Search(len(keys), func(i int) bool { return bytes.Compare(keys[i], upper) >= 0 })
		}
		region := keys[from:to]

		clipped := f.Clone()
		clipped.Intersect(lower, upper)
		want := expected(t, f, region)
		if clipped.IsNothing() {
			require.Empty(t, want, "iteration %d: clipped to nothing but rows match", iter)
			continue
		}
		got := drive(t, clipped, f, region)
		require.Equal(t, want, got, "iteration %d filter %s clipped %s", iter, f, clipped)
	}
}

// randomBoundary picks nil, a stored key or a prefix of one.
func randomBoundary(rnd *rand.Rand, keys [][]byte) []byte {
	switch rnd.Intn(4) {
	case 0:
		return nil
	case 1:
		return keys[rnd.Intn(len(keys))]
	default:
		key := keys[rnd.Intn(len(keys))]
		return key[:rnd.Intn(len(key)+1)]
	}
}
