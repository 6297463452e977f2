package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFollowerLog_DoubleAddCountsOnce(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	log := NewFollowerLog()

	assert.True(t, log.Add("u1", "Alice", "", base))
	assert.False(t, log.Add("u1", "Alice", "", base.Add(time.Minute)))

	assert.Equal(t, 1, log.Gained())
	assert.Len(t, log.Feed(), 1)
}

func TestFollowerLog_MissingIdentityIgnored(t *testing.T) {
	log := NewFollowerLog()
	assert.False(t, log.Add("", "Alice", "", time.Now()))
	assert.False(t, log.Add("u1", "", "", time.Now()))
	assert.Equal(t, 0, log.Gained())
}

func TestFollowerLog_FeedNewestFirstAndCapped(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	log := NewFollowerLog()

	for i := 0; i < 25; i++ {
		log.Add(fmt.Sprintf("u%d", i), fmt.Sprintf("user%d", i), "", base.Add(time.Duration(i)*time.Second))
	}

	feed := log.Feed()
	assert.Len(t, feed, followerFeedCap)
	assert.Equal(t, "u24", feed[0].UserID)
	assert.Equal(t, "u5", feed[len(feed)-1].UserID)
	// The counter still reflects every distinct follower.
	assert.Equal(t, 25, log.Gained())
}

func TestFollowerLog_CleanupCollapsesDuplicates(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	log := NewFollowerLog()

	log.Add("u1", "Alice", "", base)
	log.Add("u2", "Bob", "", base.Add(time.Second))

	// Force a duplicate into the feed to simulate pre-dedup data.
	log.feed = append(log.feed, log.feed[1])

	log.Cleanup()

	feed := log.Feed()
	assert.Len(t, feed, 2)
	assert.Equal(t, "u2", feed[0].UserID)
	assert.Equal(t, "u1", feed[1].UserID)
}

func TestFollowerLog_ResetPermitsReAnnouncement(t *testing.T) {
	log := NewFollowerLog()
	log.Add("u1", "Alice", "", time.Now())
	log.Reset()

	assert.Equal(t, 0, log.Gained())
	assert.Empty(t, log.Feed())
	assert.True(t, log.Add("u1", "Alice", "", time.Now()))
}
