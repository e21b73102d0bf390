package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/metrics"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
	"github.com/S0me0neR0man/skipstash/internal/skipscan"
)

func TestFilterCache_Get(t *testing.T) {
	c, err := newFilterCache(2, getTestLogger(), metrics.NilMetrics())
	require.NoError(t, err)

	f, err := skipscan.New([][]keyrange.KeyRange{
		{keyrange.Point(rowkey.Uint32(1)), keyrange.Point(rowkey.Uint32(3))},
	}, twoInts)
	require.NoError(t, err)
	raw, err := f.MarshalBinary()
	require.NoError(t, err)

	first, err := c.get(raw)
	require.NoError(t, err)
	require.True(t, f.Equal(first))
	require.Equal(t, 1, c.lru.Len())
	// templates are keyed by the filter fingerprint
	require.True(t, c.lru.Contains(f.Hash()))

	// a scan consumes its copy, the next one starts over
	d, err := first.Navigate(twoInts.MustKey(rowkey.Uint32(9), rowkey.Uint32(0)))
	require.NoError(t, err)
	require.Equal(t, skipscan.StopScan, d)

	second, err := c.get(raw)
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.False(t, second.FilterAllRemaining())
	require.Equal(t, 1, c.lru.Len())

	_, err = c.get(raw[:len(raw)-1])
	require.ErrorIs(t, err, skipscan.ErrCorruptFilter)
	require.Equal(t, 1, c.lru.Len())
}
