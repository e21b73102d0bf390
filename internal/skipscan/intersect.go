package skipscan

import (
	"fmt"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
)

// boundary walks the fields of one end of a key interval. A nil value means
// the boundary no longer constrains the field.
type boundary struct {
	key   []byte
	ptr   rowkey.Ptr
	value []byte
}

func (b *boundary) first(schema *rowkey.Schema) {
	if len(b.key) > 0 && schema.First(&b.ptr, b.key) {
		b.value = b.ptr.Bytes()
		return
	}
	b.value = nil
}

// next stops constraining once the boundary key is used up, an empty
// trailing field of the boundary narrows nothing.
func (b *boundary) next(schema *rowkey.Schema, position int) {
	if b.value != nil && b.ptr.End() < len(b.key) && schema.Next(&b.ptr, position, len(b.key)) {
		b.value = b.ptr.Bytes()
		return
	}
	b.value = nil
}

// continues reports whether the boundary key has bytes after the current field.
func (b *boundary) continues(schema *rowkey.Schema, position int) bool {
	rest := len(b.key) - b.ptr.End()
	if position < schema.FieldCount()-1 && !schema.Field(position).FixedWidth {
		rest--
	}
	return rest > 0
}

// pinned reports whether every range in window matches only the boundary value.
func (b *boundary) pinned(window []keyrange.KeyRange) bool {
	return len(window) == 1 && window[0].IsSingleKey() && window[0].Contains(b.value)
}

// Intersect clips the slots to the rows in [lowerInclusiveKey, upperExclusiveKey).
// An empty key leaves that side open. When no range survives the filter
// matches nothing. The cursor is reset, so Intersect belongs before the first row.
func (f *Filter) Intersect(lowerInclusiveKey, upperExclusiveKey []byte) {
	if f.IsNothing() {
		return
	}

	lower := boundary{key: lowerInclusiveKey}
	upper := boundary{key: upperExclusiveKey}
	lower.first(f.schema)
	upper.first(f.schema)

	nSlots := len(f.slots)
	newSlots := make([][]keyrange.KeyRange, 0, nSlots)
	for i := 0; i < nSlots; i++ {
		slot := f.slots[i]
		upperInclusive := upper.value != nil && upper.continues(f.schema, i)

		from := keyrange.SearchUpperAtOrAbove(slot, lower.value)
		if from >= len(slot) || slot[from].CompareLowerToUpperBound(upper.value, upperInclusive) > 0 {
			f.sugar.Warnw("skip scan filter does not intersect the key range",
				"lower", fmt.Sprintf("%x", lowerInclusiveKey),
				"upper", fmt.Sprintf("%x", upperExclusiveKey),
				"slot", i,
				"filter", f.String())
			f.slots = nil
			f.reset()
			return
		}
		to := from + 1
		for to < len(slot) && slot[to].CompareLowerToUpperBound(upper.value, upperInclusive) <= 0 {
			to++
		}
		window := slot[from:to:to]
		newSlots = append(newSlots, window)

		// a boundary narrows the next field only while the window is pinned to its value
		if lower.value != nil && lower.pinned(window) {
			lower.next(f.schema, i+1)
		} else {
			lower.value = nil
		}
		if upper.value != nil && upper.pinned(window) {
			upper.next(f.schema, i+1)
		} else {
			upper.value = nil
		}
	}

	f.slots = newSlots
	f.reset()
}
