package skipscan

import (
	"bytes"
	"fmt"

	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
)

// Navigate is called for every row key of a scan in non-decreasing key order.
// After SeekToHint the next key passed must be at or after NextKeyHint.
func (f *Filter) Navigate(key []byte) (Directive, error) {
	if f.startKey == nil {
		return StopScan, nil
	}
	nSlots := len(f.slots)

	if len(f.endKey) > 0 {
		if bytes.Compare(key, f.endKey) < 0 {
			return Include, nil
		}
		// the last row matched a single key in the last slot, step to the next combination
		if f.slots[nSlots-1][f.position[nSlots-1]].IsSingleKey() && f.incrementKey(nSlots-1) < 0 {
			f.sugar.Debugw("skip scan exhausted", "key", fmt.Sprintf("%x", key))
			return f.exhaust(), nil
		}
		f.endKey = f.endKey[:0]
	}

	// cur is the key being matched: the row key, or the seek hint once it is rebuilt
	cur := key
	seek := false
	earliestRangeIndex := nSlots - 1
	if !f.schema.First(&f.ptr, cur) {
		return SkipRow, f.unexpected(key)
	}

	i := 0
	for {
		slot := f.slots[i]
		start := f.position[i]
		for f.position[i] < len(slot) && slot[f.position[i]].CompareUpperToLowerBound(f.ptr.Bytes(), true) < 0 {
			f.position[i]++
		}
		if f.position[i] != start || (f.position[i] < len(slot) && !slot[f.position[i]].IsSingleKey()) {
			// the field moved, candidates of the later slots start over
			f.resetPositions(i + 1)
		}

		switch {
		case f.position[i] >= len(slot):
			// field i is past the last range, bump an earlier field
			if i == 0 {
				return f.exhaust(), nil
			}
			seek = true
			f.resetPositions(i)
			i--
			incremented := false
			for i >= 0 && f.slots[i][f.position[i]].IsSingleKey() {
				f.position[i] = (f.position[i] + 1) % len(f.slots[i])
				if f.position[i] != 0 {
					incremented = true
					break
				}
				i--
			}
			if i < 0 {
				return f.exhaust(), nil
			}
			if !f.schema.SetAccessor(&f.ptr, cur, i) {
				return SkipRow, f.unexpected(key)
			}
			if incremented {
				// field i now sits below the next single key, the gap case builds the hint
				continue
			}

			// slot i holds a range: continue right after the current value of field i
			end := f.ptr.End()
			f.startKey = append(f.startKey[:0], cur[:end]...)
			if !f.schema.Field(i).FixedWidth {
				f.startKey = append(f.startKey, rowkey.Separator+1)
				return f.seekTo(key), nil
			}
			if !keyrange.NextKey(f.startKey[f.ptr.Offset:end]) {
				f.position[i] = len(f.slots[i])
				continue
			}
			cur = f.startKey
			f.ptr.Buf = cur

		case slot[f.position[i]].CompareLowerToUpperBound(f.ptr.Bytes(), true) > 0:
			// field i falls in the gap before the current range, seek to its lower bound
			f.resetPositions(i + 1)
			f.startKey = append(f.startKey[:0], cur[:f.ptr.Offset]...)
			var ok bool
			f.startKey, ok = f.appendLower(f.startKey, i)
			f.resetPositions(earliestRangeIndex + 1)
			if !ok {
				return SkipRow, nil
			}
			return f.seekTo(key), nil

		default:
			if !slot[f.position[i]].IsSingleKey() && i < earliestRangeIndex {
				earliestRangeIndex = i
			}
			i++
			if seek {
				// cur is the hint with field i-1 stepped forward
				var ok bool
				f.startKey, ok = f.appendLower(f.startKey[:f.ptr.End()], i)
				if !ok {
					return SkipRow, nil
				}
				return f.seekTo(key), nil
			}
			if i >= nSlots {
				f.setEndKey(cur[:f.ptr.Offset])
				if !f.slots[nSlots-1][f.position[nSlots-1]].IsSingleKey() {
					f.resetPositions(earliestRangeIndex + 1)
				}
				return Include, nil
			}
			if !f.schema.Next(&f.ptr, i, len(cur)) {
				return SkipRow, f.unexpected(key)
			}
		}
	}
}

func (f *Filter) unexpected(key []byte) error {
	return fmt.Errorf("%w for %x with slots %s", ErrUnexpectedKeyStructure, key, f)
}
