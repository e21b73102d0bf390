package skipscan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
)

var (
	ErrNilSchema              = errors.New("schema is nil")
	ErrTooManySlots           = errors.New("more slots than row key fields")
	ErrBoundWidth             = errors.New("bound does not match the fixed field width")
	ErrUnexpectedKeyStructure = errors.New("unexpected key structure")
)

// Filter decides for every row key of an ordered scan whether the row matches
// a conjunction of per field range lists, and where the next match can start.
//
// The slots and schema are immutable and may be shared between clones. The
// cursor is not safe for concurrent use; every scan needs its own Clone.
type Filter struct {
	// slots[i] is the sorted, disjoint list of ranges for row key field i.
	slots        [][]keyrange.KeyRange
	schema       *rowkey.Schema
	maxKeyLength int

	// position[i] is the candidate range index in slots[i], len(slots[i]) when exhausted.
	position []int
	// startKey holds the seek hint, nil once no further row can match.
	startKey []byte
	// endKey is the exclusive end of the run of rows known to match.
	endKey []byte

	ptr   rowkey.Ptr
	sugar *zap.SugaredLogger
}

type Option func(*Filter)

func WithLogger(logger *zap.Logger) Option {
	return func(f *Filter) {
		f.sugar = logger.Sugar()
	}
}

// New builds a filter over slots. An empty slot list is the filter that matches nothing.
func New(slots [][]keyrange.KeyRange, schema *rowkey.Schema, opts ...Option) (*Filter, error) {
	if err := validate(slots, schema); err != nil {
		return nil, err
	}

	f := &Filter{
		slots:        slots,
		schema:       schema,
		maxKeyLength: maxKeyLength(slots, schema),
		sugar:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.reset()
	return f, nil
}

func validate(slots [][]keyrange.KeyRange, schema *rowkey.Schema) error {
	if schema == nil {
		return ErrNilSchema
	}
	if len(slots) > schema.FieldCount() {
		return fmt.Errorf("%d slots for schema %s: %w", len(slots), schema, ErrTooManySlots)
	}

	var errs *multierror.Error
	for i, slot := range slots {
		if err := keyrange.ValidateSlot(slot); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("slot %d: %w", i, err))
			continue
		}
		field := schema.Field(i)
		if !field.FixedWidth {
			continue
		}
		for j, r := range slot {
			for _, bound := range []keyrange.Bound{keyrange.Lower, keyrange.Upper} {
				if !r.IsUnbound(bound) && len(r.Range(bound)) != field.ByteSize {
					errs = multierror.Append(errs, fmt.Errorf("slot %d range %d %s bound %x: %w",
						i, j, bound, r.Range(bound), ErrBoundWidth))
				}
			}
		}
	}
	return errs.ErrorOrNil()
}

func maxKeyLength(slots [][]keyrange.KeyRange, schema *rowkey.Schema) int {
	n := schema.TerminatorCount()
	for _, slot := range slots {
		longest := 0
		for _, r := range slot {
			if l := len(r.Range(keyrange.Lower)); l > longest {
				longest = l
			}
			if l := len(r.Range(keyrange.Upper)); l > longest {
				longest = l
			}
		}
		n += longest
	}
	return n
}

// reset puts the cursor back to the first possible key.
func (f *Filter) reset() {
	f.position = make([]int, len(f.slots))
	f.endKey = make([]byte, 0, f.maxKeyLength)
	if f.IsNothing() {
		f.startKey = nil
		return
	}
	f.startKey = make([]byte, 0, f.maxKeyLength)
	f.setStartKey()
}

// Clone returns a filter over the same slots with a fresh cursor.
func (f *Filter) Clone() *Filter {
	c := &Filter{
		slots:        f.slots,
		schema:       f.schema,
		maxKeyLength: f.maxKeyLength,
		sugar:        f.sugar,
	}
	c.reset()
	return c
}

// IsNothing reports whether the filter can match no row at all.
func (f *Filter) IsNothing() bool {
	return len(f.slots) == 0
}

// FilterAllRemaining reports whether the scan can stop.
func (f *Filter) FilterAllRemaining() bool {
	return f.startKey == nil
}

// NextKeyHint returns the key a SeekToHint directive refers to. Before the
// first row it is the smallest key that can match. The slice is owned by the
// filter and is only valid until the next call to Navigate.
func (f *Filter) NextKeyHint() []byte {
	return f.startKey
}

func (f *Filter) Slots() [][]keyrange.KeyRange {
	return f.slots
}

func (f *Filter) Schema() *rowkey.Schema {
	return f.schema
}

func (f *Filter) MaxKeyLength() int {
	return f.maxKeyLength
}

// Equal compares the predicates of two filters, ignoring cursor state.
func (f *Filter) Equal(o *Filter) bool {
	if f == o {
		return true
	}
	if o == nil || len(f.slots) != len(o.slots) || !f.schema.Equal(o.schema) {
		return false
	}
	for i := range f.slots {
		if len(f.slots[i]) != len(o.slots[i]) {
			return false
		}
		for j := range f.slots[i] {
			if !f.slots[i][j].Equal(o.slots[i][j]) {
				return false
			}
		}
	}
	return true
}

// Hash fingerprints the encoded predicate, so equal filters hash alike.
// It is the xxhash of the MarshalBinary encoding, so a filter can be named
// by the same number on both ends of the wire.
func (f *Filter) Hash() uint64 {
	d := xxhash.New()
	_ = f.Write(d)
	return d.Sum64()
}

func (f *Filter) String() string {
	parts := make([]string, len(f.slots))
	for i, slot := range f.slots {
		parts[i] = keyrange.SlotString(slot)
	}
	return fmt.Sprintf("SkipScanFilter %s [%s]", f.schema, strings.Join(parts, ", "))
}
