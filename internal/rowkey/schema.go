package rowkey

import (
	"errors"
	"fmt"
	"strings"
)

// Separator terminates every variable width field except the last one of a schema.
const Separator byte = 0x00

var (
	ErrEmptySchema    = errors.New("schema has no fields")
	ErrFieldWidth     = errors.New("fixed width field must have a positive byte size")
	ErrFieldCount     = errors.New("wrong number of fields")
	ErrSeparatorValue = errors.New("variable width value contains the separator byte")
)

// Field describes one component of a row key.
type Field struct {
	FixedWidth bool
	ByteSize   int
}

func Fixed(size int) Field {
	return Field{FixedWidth: true, ByteSize: size}
}

func Variable() Field {
	return Field{}
}

func (f Field) String() string {
	if f.FixedWidth {
		return fmt.Sprintf("fixed(%d)", f.ByteSize)
	}
	return "var"
}

// Schema is the ordered list of fields a row key is built from.
type Schema struct {
	fields []Field
}

func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, ErrEmptySchema
	}
	fields = append([]Field(nil), fields...)
	for i, f := range fields {
		if f.FixedWidth && f.ByteSize <= 0 {
			return nil, fmt.Errorf("field %d: %w", i, ErrFieldWidth)
		}
		if !f.FixedWidth {
			fields[i].ByteSize = 0
		}
	}
	return &Schema{fields: fields}, nil
}

// MustSchema is NewSchema for static schemas.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) FieldCount() int {
	return len(s.fields)
}

func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// TerminatorCount is the number of variable width fields.
// The last field only carries a separator in seek and end keys.
func (s *Schema) TerminatorCount() int {
	n := 0
	for _, f := range s.fields {
		if !f.FixedWidth {
			n++
		}
	}
	return n
}

func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
