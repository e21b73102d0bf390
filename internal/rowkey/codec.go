package rowkey

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	kindVariable byte = 0
	kindFixed    byte = 1

	maxFields = 1 << 10
)

// Write encodes the schema as a field count followed by kind and byte size per field.
func (s *Schema) Write(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s.fields))); err != nil {
		return err
	}
	for _, f := range s.fields {
		kind := kindVariable
		if f.FixedWidth {
			kind = kindFixed
		}
		if _, err := w.Write([]byte{kind}); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(f.ByteSize)); err != nil {
			return err
		}
	}
	return nil
}

func ReadSchema(r io.Reader) (*Schema, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("field count: %w", err)
	}
	if n > maxFields {
		return nil, fmt.Errorf("field count %d: %w", n, ErrFieldCount)
	}

	fields := make([]Field, n)
	for i := range fields {
		var kind [1]byte
		if _, err := io.ReadFull(r, kind[:]); err != nil {
			return nil, fmt.Errorf("field %d kind: %w", i, err)
		}
		var size uint32
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return nil, fmt.Errorf("field %d size: %w", i, err)
		}
		fields[i] = Field{FixedWidth: kind[0] == kindFixed, ByteSize: int(size)}
	}
	return NewSchema(fields...)
}
