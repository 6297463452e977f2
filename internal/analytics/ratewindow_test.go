package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateWindow_EmptyWindow(t *testing.T) {
	w := NewRateWindow()
	assert.Equal(t, 0, w.Rate(time.Now()))
}

func TestRateWindow_CountsTrailingMinute(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := NewRateWindow()

	w.Record(base.Add(-90 * time.Second))
	w.Record(base.Add(-61 * time.Second))
	w.Record(base.Add(-59 * time.Second))
	w.Record(base.Add(-30 * time.Second))
	w.Record(base.Add(-1 * time.Second))

	assert.Equal(t, 3, w.Rate(base))
}

func TestRateWindow_PurgesExpiredEntries(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := NewRateWindow()

	for i := 0; i < 10; i++ {
		w.Record(base.Add(time.Duration(i) * time.Second))
	}
	assert.Equal(t, 10, w.Rate(base.Add(9*time.Second)))

	// Two minutes later everything has expired and been dropped.
	assert.Equal(t, 0, w.Rate(base.Add(2*time.Minute)))
	assert.Equal(t, 0, w.Len())
}

func TestRateWindow_InterleavedRecordAndRate(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := NewRateWindow()

	// Record one event every 10 seconds, querying after each. The window
	// holds at most 6 of these at a time.
	for i := 0; i < 30; i++ {
		now := base.Add(time.Duration(i) * 10 * time.Second)
		w.Record(now)

		expected := i + 1
		if expected > 6 {
			expected = 6
		}
		assert.Equal(t, expected, w.Rate(now), "at step %d", i)
	}
}

func TestRateWindow_BoundaryIsExclusive(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := NewRateWindow()

	// An entry exactly 60s old sits on the cutoff and is excluded.
	w.Record(base.Add(-60 * time.Second))
	assert.Equal(t, 0, w.Rate(base))
}
