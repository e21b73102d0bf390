package rowkey

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Uint32 encodes v so that byte order matches numeric order.
func Uint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func Uint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Int64 flips the sign bit so negative values sort first.
func Int64(v int64) []byte {
	return Uint64(uint64(v) ^ (1 << 63))
}

func DecodeUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func DecodeUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func DecodeInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

// Key joins field values into a row key. Fewer values than fields build a
// key prefix; a prefix does not end with a separator.
func (s *Schema) Key(values ...[]byte) ([]byte, error) {
	const msg = "Key:"
	if len(values) > len(s.fields) {
		return nil, fmt.Errorf("%s %d values for %d fields: %w", msg, len(values), len(s.fields), ErrFieldCount)
	}

	size := 0
	for _, v := range values {
		size += len(v) + 1
	}
	key := make([]byte, 0, size)
	for i, v := range values {
		f := s.fields[i]
		if f.FixedWidth {
			if len(v) != f.ByteSize {
				return nil, fmt.Errorf("%s field %d: %d bytes, want %d: %w", msg, i, len(v), f.ByteSize, ErrFieldWidth)
			}
			key = append(key, v...)
			continue
		}
		if bytes.IndexByte(v, Separator) >= 0 {
			return nil, fmt.Errorf("%s field %d: %w", msg, i, ErrSeparatorValue)
		}
		key = append(key, v...)
		if i < len(values)-1 {
			key = append(key, Separator)
		}
	}
	return key, nil
}

// MustKey is Key for tests and fixtures.
func (s *Schema) MustKey(values ...[]byte) []byte {
	key, err := s.Key(values...)
	if err != nil {
		panic(err)
	}
	return key
}

// Fields splits a full row key into its field values.
func (s *Schema) Fields(key []byte) ([][]byte, error) {
	var ptr Ptr
	values := make([][]byte, 0, len(s.fields))
	if !s.First(&ptr, key) {
		return nil, fmt.Errorf("Fields: key %x: %w", key, ErrFieldCount)
	}
	values = append(values, ptr.Bytes())
	for i := 1; i < len(s.fields); i++ {
		if !s.Next(&ptr, i, len(key)) {
			return nil, fmt.Errorf("Fields: key %x field %d: %w", key, i, ErrFieldCount)
		}
		values = append(values, ptr.Bytes())
	}
	return values, nil
}
