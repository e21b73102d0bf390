package keyrange

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Bound selects one side of a KeyRange.
type Bound int

const (
	Lower Bound = iota
	Upper
)

func (b Bound) String() string {
	if b == Lower {
		return "lower"
	}
	return "upper"
}

// KeyRange is an interval over the encoded bytes of a single row key field.
// An empty bound is unbound on that side and is never inclusive.
type KeyRange struct {
	lower          []byte
	lowerInclusive bool
	upper          []byte
	upperInclusive bool
}

// Everything matches any field value.
var Everything = KeyRange{}

// New returns the range between lower and upper.
func New(lower []byte, lowerInclusive bool, upper []byte, upperInclusive bool) KeyRange {
	if len(lower) == 0 {
		lower, lowerInclusive = nil, false
	}
	if len(upper) == 0 {
		upper, upperInclusive = nil, false
	}
	return KeyRange{
		lower:          lower,
		lowerInclusive: lowerInclusive,
		upper:          upper,
		upperInclusive: upperInclusive,
	}
}

// Point returns the single key range [key, key].
func Point(key []byte) KeyRange {
	return New(key, true, key, true)
}

// AtLeast returns [lower, *).
func AtLeast(lower []byte) KeyRange {
	return New(lower, true, nil, false)
}

// LessThan returns [*, upper).
func LessThan(upper []byte) KeyRange {
	return New(nil, false, upper, false)
}

// Range returns the bytes of the given bound. Nil means unbound.
func (r KeyRange) Range(b Bound) []byte {
	if b == Lower {
		return r.lower
	}
	return r.upper
}

func (r KeyRange) IsInclusive(b Bound) bool {
	if b == Lower {
		return r.lowerInclusive
	}
	return r.upperInclusive
}

func (r KeyRange) IsUnbound(b Bound) bool {
	return len(r.Range(b)) == 0
}

func (r KeyRange) LowerUnbound() bool {
	return len(r.lower) == 0
}

func (r KeyRange) UpperUnbound() bool {
	return len(r.upper) == 0
}

// IsSingleKey reports whether the range matches exactly one value.
func (r KeyRange) IsSingleKey() bool {
	return r.lowerInclusive && r.upperInclusive && !r.LowerUnbound() && bytes.Equal(r.lower, r.upper)
}

// CompareUpperToLowerBound returns the sign of (upper - b) where b is treated
// as a lower bound. A nil b is the unbounded probe and always compares below.
func (r KeyRange) CompareUpperToLowerBound(b []byte, inclusive bool) int {
	if r.UpperUnbound() || b == nil {
		return 1
	}
	cmp := bytes.Compare(r.upper, b)
	if cmp != 0 {
		return cmp
	}
	if r.upperInclusive && inclusive {
		return 0
	}
	return -1
}

// CompareLowerToUpperBound returns the sign of (lower - b) where b is treated
// as an upper bound. A nil b is the unbounded probe and always compares above.
func (r KeyRange) CompareLowerToUpperBound(b []byte, inclusive bool) int {
	if r.LowerUnbound() || b == nil {
		return -1
	}
	cmp := bytes.Compare(r.lower, b)
	if cmp != 0 {
		return cmp
	}
	if r.lowerInclusive && inclusive {
		return 0
	}
	return 1
}

// Contains reports whether the field value v lies inside the range.
func (r KeyRange) Contains(v []byte) bool {
	return r.CompareLowerToUpperBound(v, true) <= 0 && r.CompareUpperToLowerBound(v, true) >= 0
}

func (r KeyRange) Equal(o KeyRange) bool {
	return r.lowerInclusive == o.lowerInclusive &&
		r.upperInclusive == o.upperInclusive &&
		bytes.Equal(r.lower, o.lower) &&
		bytes.Equal(r.upper, o.upper)
}

func (r KeyRange) String() string {
	if r.IsSingleKey() {
		return hex.EncodeToString(r.lower)
	}
	var sb strings.Builder
	if r.lowerInclusive {
		sb.WriteByte('[')
	} else {
		sb.WriteByte('(')
	}
	if r.LowerUnbound() {
		sb.WriteByte('*')
	} else {
		sb.WriteString(hex.EncodeToString(r.lower))
	}
	sb.WriteString(", ")
	if r.UpperUnbound() {
		sb.WriteByte('*')
	} else {
		sb.WriteString(hex.EncodeToString(r.upper))
	}
	if r.upperInclusive {
		sb.WriteByte(']')
	} else {
		sb.WriteByte(')')
	}
	return sb.String()
}

// SearchUpperAtOrAbove returns the index of the first range in slot whose
// upper bound is at or above b, or len(slot) if there is none.
func SearchUpperAtOrAbove(slot []KeyRange, b []byte) int {
	return sort.Search(len(slot), func(i int) bool {
		return slot[i].CompareUpperToLowerBound(b, true) >= 0
	})
}

// NextKey increments b in place as a big-endian unsigned number.
// When every byte is 0xff, b is left untouched and false is returned.
func NextKey(b []byte) bool {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xff {
			b[i]++
			for j := i + 1; j < len(b); j++ {
				b[j] = 0
			}
			return true
		}
	}
	return false
}

// SlotString formats a list of ranges the way logs print them.
func SlotString(slot []KeyRange) string {
	parts := make([]string, len(slot))
	for i, r := range slot {
		parts[i] = r.String()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, " "))
}
