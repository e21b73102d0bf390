package skipscan

// Directive tells the scan driver what to do with the row it just showed the filter.
type Directive int

const (
	// Include the row.
	Include Directive = iota
	// SkipRow drops the row and continues with the next one.
	SkipRow
	// SeekToHint drops the row and repositions the scan at or after NextKeyHint.
	SeekToHint
	// StopScan drops the row; no later row can match.
	StopScan
)

func (d Directive) String() string {
	switch d {
	case Include:
		return "include"
	case SkipRow:
		return "skip"
	case SeekToHint:
		return "seek"
	case StopScan:
		return "stop"
	default:
		return "unknown"
	}
}
