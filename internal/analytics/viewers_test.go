package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestViewerTable_RapidRejoinSuppressed(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewViewerTable(time.Second)

	result, _ := table.Join("u1", "Alice", "", base)
	assert.Equal(t, JoinNew, result)

	// Replayed joins inside the suppression window have no effect.
	for i := 1; i <= 5; i++ {
		result, _ = table.Join("u1", "Alice", "", base.Add(time.Duration(i)*100*time.Millisecond))
		assert.Equal(t, JoinSuppressed, result)
	}

	assert.Equal(t, 1, table.UniqueViewers())
}

func TestViewerTable_RejoinAfterWindowIsReturning(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewViewerTable(time.Second)

	table.Join("u1", "Alice", "", base)
	result, v := table.Join("u1", "Alice", "", base.Add(2*time.Second))

	assert.Equal(t, JoinReturning, result)
	assert.Equal(t, 1, table.UniqueViewers())
	// Join time is preserved from the first sighting.
	assert.Equal(t, base, v.JoinTime)
}

func TestViewerTable_ActivityForUnknownViewerIsNoOp(t *testing.T) {
	table := NewViewerTable(time.Second)
	v := table.RecordActivity("ghost", ActivityLike, time.Now())
	assert.Nil(t, v)
	assert.Equal(t, 0, table.UniqueViewers())
}

func TestViewerTable_RecordActivityCounters(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewViewerTable(time.Second)
	table.Join("u1", "Alice", "", base)

	table.RecordActivity("u1", ActivityLike, base.Add(time.Second))
	table.RecordActivity("u1", ActivityLike, base.Add(2*time.Second))
	table.RecordActivity("u1", ActivityComment, base.Add(3*time.Second))
	table.RecordActivity("u1", ActivityFollow, base.Add(4*time.Second))
	table.RecordActivity("u1", ActivityFollow, base.Add(5*time.Second))

	v := table.Get("u1")
	assert.Equal(t, 2, v.Likes)
	assert.Equal(t, 1, v.Comments)
	assert.True(t, v.IsFollower)
	// Follow time is stamped once, on the first follow.
	assert.Equal(t, base.Add(4*time.Second), *v.FollowTime)
}

func TestViewerTable_SweepTransitionsOnceAndFreezesWatchTime(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewViewerTable(time.Second)
	table.Join("u1", "Alice", "", base)

	// Active for 100 seconds, then silent.
	table.RecordActivity("u1", ActivityComment, base.Add(100*time.Second))
	table.RecomputeWatchTimes(base.Add(100 * time.Second))
	assert.Equal(t, 100, table.Get("u1").WatchTime)

	// 301 seconds of silence crosses the 5 minute threshold.
	sweepAt := base.Add(401 * time.Second)
	left := table.SweepInactive(sweepAt, 5*time.Minute)
	assert.Len(t, left, 1)
	assert.False(t, table.Get("u1").IsActive)

	// A second sweep reports nothing new.
	left = table.SweepInactive(sweepAt.Add(10*time.Second), 5*time.Minute)
	assert.Empty(t, left)

	// Watch time stays frozen through later recomputes.
	table.RecomputeWatchTimes(sweepAt.Add(time.Hour))
	assert.Equal(t, 100, table.Get("u1").WatchTime)
}

func TestViewerTable_StatsOverActiveOnly(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewViewerTable(time.Second)

	table.Join("short", "A", "", base)
	table.Join("mid", "B", "", base)
	table.Join("long", "C", "", base)

	table.Get("short").WatchTime = 120
	table.Get("mid").WatchTime = 1000
	table.Get("long").WatchTime = 2400

	stats := table.Stats()
	assert.Equal(t, 3, stats.TotalUniqueViewers)
	assert.Equal(t, 3, stats.ActiveViewers)
	assert.Equal(t, 2400, stats.LongestWatchTime)
	assert.Equal(t, (120+1000+2400)/3, stats.AverageWatchTime)
	assert.Equal(t, 1, stats.ViewersByWatchTime["0-5min"])
	assert.Equal(t, 1, stats.ViewersByWatchTime["15-30min"])
	assert.Equal(t, 1, stats.ViewersByWatchTime["30min+"])

	// Deactivated viewers drop out of the aggregates.
	table.Get("long").IsActive = false
	stats = table.Stats()
	assert.Equal(t, 2, stats.ActiveViewers)
	assert.Equal(t, 1000, stats.LongestWatchTime)
	assert.Equal(t, 3, stats.TotalUniqueViewers)
}
