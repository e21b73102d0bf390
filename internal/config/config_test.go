package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse([]string{"-ADDRESS", ":4000", "-STORE_INTERVAL", "1m", "-RESTORE=false"})
	require.NoError(t, err)
	require.Equal(t, ":4000", c.Address)
	require.Equal(t, time.Minute, c.StoreInterval)
	require.False(t, c.Restore)
	require.Equal(t, Default().StoreFile, c.StoreFile)
}

func TestParse_EnvOverridesFlags(t *testing.T) {
	t.Setenv("STORE_FILE", "db/test_stash.data")
	t.Setenv("FILTER_CACHE_SIZE", "7")

	c, err := Parse([]string{"-STORE_FILE", "other.data"})
	require.NoError(t, err)
	require.Equal(t, "db/test_stash.data", c.StoreFile)
	require.Equal(t, 7, c.FilterCacheSize)

	t.Setenv("STORE_INTERVAL", "soon")
	_, err = Parse(nil)
	require.Error(t, err)
}

func TestParse_UnknownFlag(t *testing.T) {
	_, err := Parse([]string{"-NOPE"})
	require.Error(t, err)
}
