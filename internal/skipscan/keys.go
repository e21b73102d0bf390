package skipscan

import (
	"bytes"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
)

func (f *Filter) setStartKey() {
	var ok bool
	f.startKey, ok = f.appendLower(f.startKey[:0], 0)
	if !ok {
		f.startKey = f.startKey[:0]
	}
}

// appendLower appends to key the smallest encoding of the ranges at the
// current positions of slots[from:]. It stops at the first unbound lower
// bound. It returns false when an exclusive bound can not be stepped over
// because the key is already the largest one of its length.
func (f *Filter) appendLower(key []byte, from int) ([]byte, bool) {
	last := f.schema.FieldCount() - 1
	for i := from; i < len(f.slots); i++ {
		r := f.slots[i][f.position[i]]
		if r.IsUnbound(keyrange.Lower) {
			break
		}

		fieldStart := len(key)
		field := f.schema.Field(i)
		inclusive := r.IsInclusive(keyrange.Lower)
		key = append(key, r.Range(keyrange.Lower)...)
		if !field.FixedWidth && (i < last || !inclusive) {
			key = append(key, rowkey.Separator)
		}
		if inclusive {
			continue
		}

		if !field.FixedWidth {
			// the separator becomes 0x01, above every key carrying this value
			keyrange.NextKey(key)
			break
		}
		if !keyrange.NextKey(key[fieldStart:]) {
			// no larger value fits the field, move on to the next prefix
			key = key[:fieldStart]
			if !keyrange.NextKey(key) {
				return key, false
			}
			break
		}
	}
	return key, true
}

// setEndKey stores the exclusive end of the rows that share prefix and whose
// last slot field lies in the current range of the last slot.
func (f *Filter) setEndKey(prefix []byte) {
	n := len(f.slots) - 1
	r := f.slots[n][f.position[n]]
	f.endKey = append(f.endKey[:0], prefix...)

	if r.IsUnbound(keyrange.Upper) {
		if len(f.endKey) == 0 || !keyrange.NextKey(f.endKey) {
			f.endKey = f.endKey[:0]
		}
		return
	}

	inclusive := r.IsInclusive(keyrange.Upper)
	f.endKey = append(f.endKey, r.Range(keyrange.Upper)...)
	if !f.schema.Field(n).FixedWidth && (n < f.schema.FieldCount()-1 || inclusive) {
		f.endKey = append(f.endKey, rowkey.Separator)
	}
	if inclusive && !keyrange.NextKey(f.endKey) {
		f.endKey = f.endKey[:0]
	}
}

// incrementKey advances the single key slots from i leftwards like an
// odometer. It returns the slot that stopped the carry, or -1 when every
// combination has been used.
func (f *Filter) incrementKey(i int) int {
	for i >= 0 && f.slots[i][f.position[i]].IsSingleKey() {
		f.position[i] = (f.position[i] + 1) % len(f.slots[i])
		if f.position[i] != 0 {
			break
		}
		i--
	}
	return i
}

func (f *Filter) resetPositions(from int) {
	for i := from; i < len(f.position); i++ {
		f.position[i] = 0
	}
}

func (f *Filter) exhaust() Directive {
	f.startKey = nil
	f.endKey = f.endKey[:0]
	return StopScan
}

// seekTo returns SeekToHint unless the hint would not move the scan forward.
func (f *Filter) seekTo(key []byte) Directive {
	if bytes.Compare(f.startKey, key) <= 0 {
		return SkipRow
	}
	return SeekToHint
}
