package analytics

import "time"

// windowSpan is the trailing window over which per-minute rates are computed.
const windowSpan = time.Minute

// RateWindow keeps a time-ordered log of event timestamps for one metric and
// derives an events-per-minute rate from the trailing 60 seconds. Entries are
// purged lazily from the front on each Rate call, so the cost is amortized
// over the events that actually expired since the last read.
type RateWindow struct {
	entries []time.Time
}

// NewRateWindow returns an empty window.
func NewRateWindow() *RateWindow {
	return &RateWindow{}
}

// Record appends an event timestamp. Timestamps are stamped at ingestion, so
// they are non-decreasing up to scheduler jitter; a slightly out-of-order
// straggler at worst survives one extra Rate call.
func (w *RateWindow) Record(t time.Time) {
	w.entries = append(w.entries, t)
}

// Rate returns the number of events within the trailing window relative to
// now, dropping expired entries as a side effect. An empty window yields 0.
func (w *RateWindow) Rate(now time.Time) int {
	cutoff := now.Add(-windowSpan)

	i := 0
	for i < len(w.entries) && !w.entries[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.entries = w.entries[i:]
	}

	return len(w.entries)
}

// Len returns the raw entry count without purging. Used by tests.
func (w *RateWindow) Len() int {
	return len(w.entries)
}
