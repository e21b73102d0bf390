package keyrange

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrEmptySlot    = errors.New("slot has no ranges")
	ErrEmptyRange   = errors.New("range matches nothing")
	ErrUnsortedSlot = errors.New("ranges are not sorted or overlap")
)

// Validate checks that r matches at least one value.
func (r KeyRange) Validate() error {
	if r.LowerUnbound() || r.UpperUnbound() {
		return nil
	}
	cmp := bytes.Compare(r.lower, r.upper)
	if cmp > 0 || (cmp == 0 && !(r.lowerInclusive && r.upperInclusive)) {
		return fmt.Errorf("%w: %s", ErrEmptyRange, r)
	}
	return nil
}

// ValidateSlot checks every range of a slot and that the ranges are sorted
// and pairwise disjoint. All problems are reported together.
func ValidateSlot(slot []KeyRange) error {
	if len(slot) == 0 {
		return ErrEmptySlot
	}

	var errs *multierror.Error
	for i, r := range slot {
		if err := r.Validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("range %d: %w", i, err))
		}
		if i == 0 {
			continue
		}
		prev := slot[i-1]
		if prev.CompareUpperToLowerBound(r.lower, r.lowerInclusive) >= 0 || r.LowerUnbound() {
			errs = multierror.Append(errs, fmt.Errorf("range %d %s after %s: %w", i, r, prev, ErrUnsortedSlot))
		}
	}
	return errs.ErrorOrNil()
}
