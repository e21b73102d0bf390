package rowkey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchema_Navigation(t *testing.T) {
	s := MustSchema(Variable(), Fixed(4), Variable())
	key := s.MustKey([]byte("abc"), Uint32(7), []byte("xy"))
	require.Equal(t, []byte("abc\x00\x00\x00\x00\x07xy"), key)

	var ptr Ptr
	require.True(t, s.First(&ptr, key))
	require.Equal(t, []byte("abc"), ptr.Bytes())
	require.True(t, s.Next(&ptr, 1, len(key)))
	require.Equal(t, Uint32(7), ptr.Bytes())
	require.True(t, s.Next(&ptr, 2, len(key)))
	require.Equal(t, []byte("xy"), ptr.Bytes())
	require.False(t, s.Next(&ptr, 3, len(key)))

	require.True(t, s.SetAccessor(&ptr, key, 1))
	require.EqualValues(t, 4, ptr.Offset)
	require.EqualValues(t, 4, ptr.Length)
}

func TestSchema_TruncatedKey(t *testing.T) {
	s := MustSchema(Fixed(4), Fixed(4))

	var ptr Ptr
	require.False(t, s.First(&ptr, nil))
	require.False(t, s.SetAccessor(&ptr, Uint32(1), 1))
	require.False(t, s.SetAccessor(&ptr, append(Uint32(1), 1, 2), 1), "fixed field cut short")

	_, err := s.Fields(Uint32(1))
	require.ErrorIs(t, err, ErrFieldCount)
}

func TestSchema_EmptyVariableFields(t *testing.T) {
	s := MustSchema(Variable(), Variable())
	key := s.MustKey([]byte{}, []byte{})
	require.Equal(t, []byte{Separator}, key)

	values, err := s.Fields(key)
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Empty(t, values[0])
	require.Empty(t, values[1])
}

func TestSchema_EmptyTrailingVariableField(t *testing.T) {
	s := MustSchema(Fixed(1), Variable())
	key := s.MustKey([]byte{0x01}, []byte{})
	require.Equal(t, []byte{0x01}, key)

	values, err := s.Fields(key)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x01}, {}}, values)

	var ptr Ptr
	require.True(t, s.SetAccessor(&ptr, key, 1))
	require.EqualValues(t, 1, ptr.Offset)
	require.Zero(t, ptr.Length)

	single := MustSchema(Variable())
	values, err = single.Fields(single.MustKey([]byte{}))
	require.NoError(t, err)
	require.Equal(t, [][]byte{{}}, values)

	// the separator after a variable field is still required
	vv := MustSchema(Variable(), Variable())
	require.False(t, vv.SetAccessor(&ptr, []byte("a"), 1))
	// and a fixed field still has to be there
	require.False(t, MustSchema(Fixed(1), Fixed(1)).SetAccessor(&ptr, []byte{0x01}, 1))
}

func TestSchema_KeyErrors(t *testing.T) {
	s := MustSchema(Fixed(4), Variable())

	_, err := s.Key([]byte{1})
	require.ErrorIs(t, err, ErrFieldWidth)
	_, err = s.Key(Uint32(1), []byte{'a', Separator})
	require.ErrorIs(t, err, ErrSeparatorValue)
	_, err = s.Key(Uint32(1), nil, nil)
	require.ErrorIs(t, err, ErrFieldCount)

	_, err = NewSchema()
	require.ErrorIs(t, err, ErrEmptySchema)
	_, err = NewSchema(Fixed(0))
	require.ErrorIs(t, err, ErrFieldWidth)
}

func TestKeyOrder(t *testing.T) {
	s := MustSchema(Variable(), Fixed(8))

	ordered := [][]byte{
		s.MustKey([]byte(""), Int64(5)),
		s.MustKey([]byte("a"), Int64(-3)),
		s.MustKey([]byte("a"), Int64(0)),
		s.MustKey([]byte("a"), Int64(1<<40)),
		s.MustKey([]byte("ab"), Int64(-1<<40)),
		s.MustKey([]byte("b"), Int64(0)),
	}
	for i := 1; i < len(ordered); i++ {
		require.EqualValues(t, -1, bytes.Compare(ordered[i-1], ordered[i]), "key %d", i)
	}
	require.EqualValues(t, -7, DecodeInt64(Int64(-7)))
	require.EqualValues(t, 7, DecodeUint32(Uint32(7)))
	require.EqualValues(t, 9, DecodeUint64(Uint64(9)))
}

func TestSchema_WriteRead(t *testing.T) {
	s := MustSchema(Fixed(4), Variable(), Fixed(8), Variable())

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	require.EqualValues(t, 4+4*5, buf.Len())

	got, err := ReadSchema(&buf)
	require.NoError(t, err)
	require.True(t, s.Equal(got))
	require.EqualValues(t, 2, got.TerminatorCount())
	require.Equal(t, "(fixed(4), var, fixed(8), var)", got.String())
}
