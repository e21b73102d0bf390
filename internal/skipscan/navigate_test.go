package skipscan

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
)

var (
	fixed1Domain = [][]byte{{0x00}, {0x01}, {0x02}, {0x03}, {0x04}, {0x05}, {0xfe}, {0xff}}
	fixed2Domain = [][]byte{{0x00, 0x00}, {0x00, 0xff}, {0x01, 0x00}, {0x01, 0x01}, {0xff, 0xfe}, {0xff, 0xff}}
	varDomain    = [][]byte{{}, []byte("a"), []byte("aa"), []byte("ab"), []byte("b"), []byte("ba"), []byte("c"), {0xff}, {0xff, 0xff}}
)

func domainOf(f rowkey.Field) [][]byte {
	switch {
	case !f.FixedWidth:
		return varDomain
	case f.ByteSize == 1:
		return fixed1Domain
	default:
		return fixed2Domain
	}
}

func randomSchema(rnd *rand.Rand) *rowkey.Schema {
	fields := make([]rowkey.Field, 1+rnd.Intn(3))
	for i := range fields {
		switch rnd.Intn(3) {
		case 0:
			fields[i] = rowkey.Fixed(1)
		case 1:
			fields[i] = rowkey.Fixed(2)
		default:
			fields[i] = rowkey.Variable()
		}
	}
	return rowkey.MustSchema(fields...)
}

// randomSlot builds sorted disjoint ranges from an increasing pick of domain values.
func randomSlot(rnd *rand.Rand, domain [][]byte) []keyrange.KeyRange {
	var values [][]byte
	for _, v := range domain {
		if len(v) > 0 && rnd.Intn(2) == 0 {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return []keyrange.KeyRange{keyrange.Everything}
	}

	var slot []keyrange.KeyRange
	for i := 0; i < len(values); i++ {
		switch {
		case i == 0 && rnd.Intn(6) == 0:
			slot = append(slot, keyrange.New(nil, false, values[i], rnd.Intn(2) == 0))
		case i == len(values)-1 && rnd.Intn(6) == 0:
			slot = append(slot, keyrange.New(values[i], rnd.Intn(2) == 0, nil, false))
		case i+1 < len(values) && rnd.Intn(2) == 0:
			slot = append(slot, keyrange.New(values[i], rnd.Intn(2) == 0, values[i+1], rnd.Intn(2) == 0))
			i++
		default:
			slot = append(slot, keyrange.Point(values[i]))
		}
	}
	return slot
}

func randomFilter(t *testing.T, rnd *rand.Rand, schema *rowkey.Schema) *Filter {
	slots := make([][]keyrange.KeyRange, 1+rnd.Intn(schema.FieldCount()))
	for i := range slots {
		slots[i] = randomSlot(rnd, domainOf(schema.Field(i)))
	}
	f, err := New(slots, schema)
	require.NoError(t, err)
	return f
}

// randomKeys returns sorted distinct full keys.
func randomKeys(rnd *rand.Rand, schema *rowkey.Schema, n int) [][]byte {
	seen := make(map[string]bool)
	var keys [][]byte
	for i := 0; i < n; i++ {
		values := make([][]byte, schema.FieldCount())
		for j := range values {
			domain := domainOf(schema.Field(j))
			values[j] = domain[rnd.Intn(len(domain))]
		}
		key := schema.MustKey(values...)
		if !seen[string(key)] {
			seen[string(key)] = true
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys
}

// matches evaluates the predicate field by field.
func matches(t *testing.T, f *Filter, key []byte) bool {
	values, err := f.Schema().Fields(key)
	require.NoError(t, err)
	for i, slot := range f.Slots() {
		in := false
		for _, r := range slot {
			if r.Contains(values[i]) {
				in = true
				break
			}
		}
		if !in {
			return false
		}
	}
	return true
}

// drive runs f over keys the way a scan would and checks every directive against oracle.
func drive(t *testing.T, f *Filter, oracle *Filter, keys [][]byte) [][]byte {
	var included [][]byte
	var lastHint []byte
	for i := 0; i < len(keys); {
		key := keys[i]
		d, err := f.Navigate(key)
		require.NoError(t, err, "key %x filter %s", key, oracle)

		switch d {
		case Include:
			require.True(t, matches(t, oracle, key), "included %x filter %s", key, oracle)
			included = append(included, key)
			i++
		case SkipRow:
			require.False(t, matches(t, oracle, key), "skipped %x filter %s", key, oracle)
			i++
		case SeekToHint:
			hint := append([]byte(nil), f.NextKeyHint()...)
			require.EqualValues(t, 1, bytes.Compare(hint, key), "hint %x not after %x", hint, key)
			if lastHint != nil {
				require.EqualValues(t, 1, bytes.Compare(hint, lastHint), "hint went back")
			}
			lastHint = hint
			j := sort.Search(len(keys), func(j int) bool { return bytes.Compare(keys[j], hint) >= 0 })
			for k := i; k < j; k++ {
				require.False(t, matches(t, oracle, keys[k]), "seek from %x to %x jumped over %x filter %s",
					key, hint, keys[k], oracle)
			}
			i = j
		case StopScan:
			for k := i; k < len(keys); k++ {
				require.False(t, matches(t, oracle, keys[k]), "stopped at %x before %x filter %s", key, keys[k], oracle)
			}
			require.True(t, f.FilterAllRemaining())
			return included
		}
	}
	return included
}

func expected(t *testing.T, f *Filter, keys [][]byte) [][]byte {
	var want [][]byte
	for _, key := range keys {
		if matches(t, f, key) {
			want = append(want, key)
		}
	}
	return want
}

func TestNavigate_MatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(20131017))
	for iter := 0; iter < 2000; iter++ {
		schema := randomSchema(rnd)
		f := randomFilter(t, rnd, schema)
		keys := randomKeys(rnd, schema, 1+rnd.Intn(300))

		got := drive(t, f.Clone(), f, keys)
		require.Equal(t, expected(t, f, keys), got, "iteration %d filter %s", iter, f)
	}
}

func TestNavigate_CartesianProduct(t *testing.T) {
	schema := rowkey.MustSchema(rowkey.Fixed(1), rowkey.Variable(), rowkey.Fixed(2))
	f, err := New([][]keyrange.KeyRange{
		{keyrange.Point([]byte{0x01}), keyrange.Point([]byte{0x03}), keyrange.Point([]byte{0xff})},
		{keyrange.Point([]byte("a")), keyrange.Point([]byte("ab")), keyrange.Point([]byte("c"))},
		{keyrange.Point([]byte{0x00, 0xff}), keyrange.Point([]byte{0xff, 0xff})},
	}, schema)
	require.NoError(t, err)

	// every combination of the domains is stored
	var keys [][]byte
	for _, a := range fixed1Domain {
		for _, b := range varDomain {
			for _, c := range fixed2Domain {
				keys = append(keys, schema.MustKey(a, b, c))
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })

	got := drive(t, f.Clone(), f, keys)
	require.Len(t, got, 3*3*2)
	require.Equal(t, expected(t, f, keys), got)
}

func TestNavigate_VariableWidthExclusiveLower(t *testing.T) {
	schema := rowkey.MustSchema(rowkey.Variable(), rowkey.Fixed(1))
	f, err := New([][]keyrange.KeyRange{
		{keyrange.New([]byte("a"), false, []byte("b"), true)},
		{keyrange.Point([]byte{0x05})},
	}, schema)
	require.NoError(t, err)

	d, err := f.Navigate(schema.MustKey([]byte("a"), []byte{0x05}))
	require.NoError(t, err)
	require.Equal(t, SeekToHint, d)
	// every value above "a" starts at or after "a\x01"
	require.Equal(t, []byte("a\x01"), f.NextKeyHint())

	d, err = f.Navigate(schema.MustKey([]byte("a\x01"), []byte{0x05}))
	require.NoError(t, err)
	require.Equal(t, Include, d)
}

func TestNavigate_EmptyTrailingVariableField(t *testing.T) {
	schema := rowkey.MustSchema(rowkey.Fixed(1), rowkey.Variable())
	key := schema.MustKey([]byte{0x01}, []byte{})

	f, err := New([][]keyrange.KeyRange{
		{keyrange.Point([]byte{0x01})},
		{keyrange.AtLeast([]byte("a"))},
	}, schema)
	require.NoError(t, err)
	d, err := f.Navigate(key)
	require.NoError(t, err)
	require.Equal(t, SeekToHint, d)
	require.Equal(t, schema.MustKey([]byte{0x01}, []byte("a")), f.NextKeyHint())

	f, err = New([][]keyrange.KeyRange{
		{keyrange.Point([]byte{0x01})},
		{keyrange.LessThan([]byte("b"))},
	}, schema)
	require.NoError(t, err)
	d, err = f.Navigate(key)
	require.NoError(t, err)
	require.Equal(t, Include, d)
}
