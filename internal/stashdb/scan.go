package stashdb

import (
	"bytes"
	"context"
	"fmt"

	"github.com/S0me0neR0man/skipstash/internal/skipscan"
)

// ScanRequest describes a range scan. Empty Lower or Upper leave that side
// open. A nil Filter returns every row of the range.
type ScanRequest struct {
	Lower  []byte // inclusive
	Upper  []byte // exclusive
	Filter *skipscan.Filter
}

// ScanStats counts what a scan did
type ScanStats struct {
	Visited  int
	Included int
	Skipped  int
	Seeks    int
	Clipped  bool // the filter and the range have no row in common
}

// Scan walks the rows of req in key order and calls fn for every row the
// filter includes. The filter is intersected with the range and its cursor is
// consumed, so a filter must not be shared by concurrent scans.
//
// fn runs under the stash read lock: it must not retain key or value and must
// not write to the stash. An error from fn ends the scan.
func (s *Stash) Scan(ctx context.Context, req ScanRequest, fn func(key, value []byte) error) (ScanStats, error) {
	var stats ScanStats

	f := req.Filter
	start := req.Lower
	if f != nil {
		f.Intersect(req.Lower, req.Upper)
		if f.FilterAllRemaining() {
			stats.Clipped = true
			s.sugar.Debugw("scan clipped to nothing", "filter", f.String())
			return stats, nil
		}
		if hint := f.NextKeyHint(); bytes.Compare(hint, start) > 0 {
			start = hint
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	it := s.tree.iterator()
	for ok := it.seek(start); ok; {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		key := it.node.key
		if len(req.Upper) > 0 && bytes.Compare(key, req.Upper) >= 0 {
			break
		}
		stats.Visited++

		directive := skipscan.Include
		if f != nil {
			var err error
			if directive, err = f.Navigate(key); err != nil {
				return stats, fmt.Errorf("scan: %w", err)
			}
		}

		switch directive {
		case skipscan.Include:
			stats.Included++
			if err := fn(key, it.node.value); err != nil {
				return stats, err
			}
			ok = it.next()
		case skipscan.SkipRow:
			stats.Skipped++
			ok = it.next()
		case skipscan.SeekToHint:
			stats.Seeks++
			ok = it.seek(f.NextKeyHint())
		default:
			return stats, nil
		}
	}
	return stats, nil
}
