package skipscan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
)

const maxRangesPerSlot = 1 << 24

var ErrCorruptFilter = errors.New("corrupt skip scan filter")

// Write encodes the schema and the slots. The cursor is not part of the encoding.
func (f *Filter) Write(w io.Writer) error {
	if err := f.schema.Write(w); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(f.slots))); err != nil {
		return err
	}
	for _, slot := range f.slots {
		if err := binary.Write(w, binary.BigEndian, uint32(len(slot))); err != nil {
			return err
		}
		for _, r := range slot {
			if err := r.Write(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Read decodes a filter written by Write and validates it.
func Read(r io.Reader, opts ...Option) (*Filter, error) {
	schema, err := rowkey.ReadSchema(r)
	if err != nil {
		return nil, fmt.Errorf("%w: schema: %v", ErrCorruptFilter, err)
	}

	var nSlots uint32
	if err = binary.Read(r, binary.BigEndian, &nSlots); err != nil {
		return nil, fmt.Errorf("%w: slot count: %v", ErrCorruptFilter, err)
	}
	if int(nSlots) > schema.FieldCount() {
		return nil, fmt.Errorf("%w: %d slots for %d fields", ErrCorruptFilter, nSlots, schema.FieldCount())
	}

	slots := make([][]keyrange.KeyRange, nSlots)
	for i := range slots {
		var nRanges uint32
		if err = binary.Read(r, binary.BigEndian, &nRanges); err != nil {
			return nil, fmt.Errorf("%w: slot %d range count: %v", ErrCorruptFilter, i, err)
		}
		if nRanges > maxRangesPerSlot {
			return nil, fmt.Errorf("%w: slot %d has %d ranges", ErrCorruptFilter, i, nRanges)
		}
		prealloc := nRanges
		if prealloc > 1024 {
			prealloc = 1024
		}
		slot := make([]keyrange.KeyRange, 0, prealloc)
		for j := uint32(0); j < nRanges; j++ {
			kr, err := keyrange.Read(r)
			if err != nil {
				return nil, fmt.Errorf("%w: slot %d range %d: %v", ErrCorruptFilter, i, j, err)
			}
			slot = append(slot, kr)
		}
		slots[i] = slot
	}

	return New(slots, schema, opts...)
}

func (f *Filter) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the predicate of f and resets its cursor.
func (f *Filter) UnmarshalBinary(data []byte) error {
	decoded, err := Read(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if f.sugar != nil {
		decoded.sugar = f.sugar
	}
	*f = *decoded
	return nil
}
