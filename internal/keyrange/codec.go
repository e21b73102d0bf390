package keyrange

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	flagLowerInclusive byte = 1 << 0
	flagUpperInclusive byte = 1 << 1

	// MaxBoundLength caps a decoded bound.
	MaxBoundLength = 1 << 20
)

var ErrBoundTooLong = errors.New("bound too long")

// Write encodes r as: len(lower) u32, lower, len(upper) u32, upper, flags.
func (r KeyRange) Write(w io.Writer) error {
	if err := writeBytes(w, r.lower); err != nil {
		return err
	}
	if err := writeBytes(w, r.upper); err != nil {
		return err
	}
	var flags byte
	if r.lowerInclusive {
		flags |= flagLowerInclusive
	}
	if r.upperInclusive {
		flags |= flagUpperInclusive
	}
	_, err := w.Write([]byte{flags})
	return err
}

// Read decodes a range written by Write.
func Read(rd io.Reader) (KeyRange, error) {
	lower, err := readBytes(rd)
	if err != nil {
		return KeyRange{}, fmt.Errorf("lower bound: %w", err)
	}
	upper, err := readBytes(rd)
	if err != nil {
		return KeyRange{}, fmt.Errorf("upper bound: %w", err)
	}
	var flags [1]byte
	if _, err = io.ReadFull(rd, flags[:]); err != nil {
		return KeyRange{}, fmt.Errorf("flags: %w", err)
	}
	return New(lower, flags[0]&flagLowerInclusive != 0, upper, flags[0]&flagUpperInclusive != 0), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(rd io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(rd, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n > MaxBoundLength {
		return nil, fmt.Errorf("%w: %d", ErrBoundTooLong, n)
	}
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rd, b); err != nil {
		return nil, err
	}
	return b, nil
}
