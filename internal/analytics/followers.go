package analytics

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/models"
)

// followerFeedCap bounds the new-follower feed exposed to dashboards.
const followerFeedCap = 20

// FollowerLog guarantees each distinct follower is counted and announced at
// most once per session. It keeps a processed-id set for the session lifetime
// plus a bounded newest-first feed.
type FollowerLog struct {
	processed map[string]bool
	feed      []models.FollowerEntry
	gained    int
}

// NewFollowerLog returns an empty log.
func NewFollowerLog() *FollowerLog {
	return &FollowerLog{processed: make(map[string]bool)}
}

// Add records a new follower. Duplicates (by id, for the session lifetime)
// are skipped with a log line and no counter movement. Returns true when the
// follower was actually added.
func (l *FollowerLog) Add(userID, nickname, profilePic string, now time.Time) bool {
	if userID == "" || nickname == "" {
		logrus.Warnf("Ignoring follower with missing identity (id=%q nickname=%q)", userID, nickname)
		return false
	}

	if l.processed[userID] {
		logrus.Debugf("Follower %s (%s) already counted this session, skipping", nickname, userID)
		return false
	}
	for _, e := range l.feed {
		if e.UserID == userID {
			logrus.Debugf("Follower %s (%s) already in feed, skipping", nickname, userID)
			return false
		}
	}

	l.feed = append([]models.FollowerEntry{{
		UserID:     userID,
		Nickname:   nickname,
		ProfilePic: profilePic,
		Timestamp:  now,
	}}, l.feed...)
	if len(l.feed) > followerFeedCap {
		l.feed = l.feed[:followerFeedCap]
	}

	l.processed[userID] = true
	l.gained++
	return true
}

// Cleanup collapses any duplicate ids in the feed, keeping the most recent
// entry per id, newest first, capped. After Cleanup no two entries share an id.
func (l *FollowerLog) Cleanup() {
	if len(l.feed) == 0 {
		return
	}

	before := len(l.feed)
	latest := make(map[string]models.FollowerEntry)
	for _, e := range l.feed {
		if cur, ok := latest[e.UserID]; !ok || e.Timestamp.After(cur.Timestamp) {
			latest[e.UserID] = e
		}
	}

	deduped := make([]models.FollowerEntry, 0, len(latest))
	for _, e := range latest {
		deduped = append(deduped, e)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Timestamp.After(deduped[j].Timestamp)
	})
	if len(deduped) > followerFeedCap {
		deduped = deduped[:followerFeedCap]
	}
	l.feed = deduped

	if removed := before - len(l.feed); removed > 0 {
		logrus.Infof("Removed %d duplicate follower feed entries", removed)
	}
}

// Feed returns a copy of the newest-first follower feed.
func (l *FollowerLog) Feed() []models.FollowerEntry {
	out := make([]models.FollowerEntry, len(l.feed))
	copy(out, l.feed)
	return out
}

// Gained returns the number of distinct followers gained this session.
func (l *FollowerLog) Gained() int {
	return l.gained
}

// Reset clears all state, permitting re-announcement after a session restart.
func (l *FollowerLog) Reset() {
	l.processed = make(map[string]bool)
	l.feed = nil
	l.gained = 0
}
