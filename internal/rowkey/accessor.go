package rowkey

// Ptr points at one field inside an encoded row key.
type Ptr struct {
	Buf    []byte
	Offset int
	Length int
}

func (p *Ptr) Set(buf []byte, offset, length int) {
	p.Buf = buf
	p.Offset = offset
	p.Length = length
}

// Bytes returns the field the pointer spans. The result aliases Buf.
func (p *Ptr) Bytes() []byte {
	return p.Buf[p.Offset : p.Offset+p.Length : p.Offset+p.Length]
}

// End is the offset right after the field.
func (p *Ptr) End() int {
	return p.Offset + p.Length
}

// First positions ptr on field 0 of key.
func (s *Schema) First(ptr *Ptr, key []byte) bool {
	ptr.Set(key, 0, 0)
	return s.Next(ptr, 0, len(key))
}

// Next moves ptr from the field it currently spans to the field at position,
// skipping the separator of the previous field. It returns false when the
// key ends before the field or a fixed width field is truncated. A trailing
// variable width field may be empty, so a key ending right before it yields
// an empty field.
func (s *Schema) Next(ptr *Ptr, position, maxOffset int) bool {
	if position >= len(s.fields) {
		return false
	}
	offset := ptr.End()
	prevVariable := position > 0 && !s.fields[position-1].FixedWidth
	last := position == len(s.fields)-1
	if offset >= maxOffset {
		ptr.Set(ptr.Buf, maxOffset, 0)
		// Key writes an empty trailing variable width value as nothing
		return offset == maxOffset && last && !prevVariable && !s.fields[position].FixedWidth
	}
	if prevVariable {
		offset++
	}

	f := s.fields[position]
	switch {
	case f.FixedWidth:
		if offset+f.ByteSize > maxOffset {
			ptr.Set(ptr.Buf, maxOffset, 0)
			return false
		}
		ptr.Set(ptr.Buf, offset, f.ByteSize)
	case last:
		// last field has no terminator
		ptr.Set(ptr.Buf, offset, maxOffset-offset)
	default:
		end := offset
		for end < maxOffset && ptr.Buf[end] != Separator {
			end++
		}
		ptr.Set(ptr.Buf, offset, end-offset)
	}
	return true
}

// SetAccessor positions ptr on the field at position of key.
func (s *Schema) SetAccessor(ptr *Ptr, key []byte, position int) bool {
	if !s.First(ptr, key) {
		return false
	}
	for i := 1; i <= position; i++ {
		if !s.Next(ptr, i, len(key)) {
			return false
		}
	}
	return true
}
