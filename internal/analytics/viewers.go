package analytics

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/models"
)

// Activity kinds accepted by RecordActivity.
const (
	ActivityLike    = "like"
	ActivityGift    = "gift"
	ActivityComment = "comment"
	ActivityShare   = "share"
	ActivityFollow  = "follow"
)

// JoinResult describes what a Join call did, so the caller can decide which
// side effects (broadcasts, welcome flows) to run.
type JoinResult int

const (
	// JoinSuppressed means the join was a rapid replay and had no effect.
	JoinSuppressed JoinResult = iota
	// JoinNew means a previously unseen viewer was created.
	JoinNew
	// JoinReturning means a known viewer was refreshed or reactivated.
	JoinReturning
)

// ViewerTable tracks every viewer identity seen during a session. Records are
// created on the first observed join and never deleted; inactivity only
// freezes them. The table is not goroutine safe; the owning session
// serializes access.
type ViewerTable struct {
	viewers           map[string]*models.ViewerRecord
	uniqueViewers     int
	rejoinSuppression time.Duration
}

// NewViewerTable returns an empty table. rejoinSuppression is the window
// within which a repeated join for the same id is treated as a network replay.
func NewViewerTable(rejoinSuppression time.Duration) *ViewerTable {
	return &ViewerTable{
		viewers:           make(map[string]*models.ViewerRecord),
		rejoinSuppression: rejoinSuppression,
	}
}

// Join registers a viewer sighting. A repeat join for the same id inside the
// suppression window is idempotent: no counter bump, no side effects.
func (t *ViewerTable) Join(userID, nickname, profilePic string, now time.Time) (JoinResult, *models.ViewerRecord) {
	if v, ok := t.viewers[userID]; ok {
		if now.Sub(v.LastJoin) < t.rejoinSuppression {
			logrus.Debugf("Suppressing rapid rejoin for %s (%s)", nickname, userID)
			return JoinSuppressed, v
		}
		v.LastJoin = now
		v.LastSeen = now
		v.IsActive = true
		if nickname != "" {
			v.Nickname = nickname
		}
		logrus.Debugf("Viewer rejoined: %s (%s)", v.Nickname, userID)
		return JoinReturning, v
	}

	v := &models.ViewerRecord{
		UserID:     userID,
		Nickname:   nickname,
		ProfilePic: profilePic,
		JoinTime:   now,
		LastSeen:   now,
		LastJoin:   now,
		IsActive:   true,
	}
	t.viewers[userID] = v
	t.uniqueViewers++
	logrus.Infof("New viewer joined: %s (%s)", nickname, userID)
	return JoinNew, v
}

// RecordActivity bumps the viewer's last-seen time and the counter matching
// kind. Activity for an id that never joined is a no-op: the event predates
// any observed join, which is acceptable under a lossy upstream feed.
func (t *ViewerTable) RecordActivity(userID, kind string, now time.Time) *models.ViewerRecord {
	v, ok := t.viewers[userID]
	if !ok {
		return nil
	}

	v.LastSeen = now
	v.IsActive = true

	switch kind {
	case ActivityLike:
		v.Likes++
	case ActivityGift:
		v.Gifts++
	case ActivityComment:
		v.Comments++
	case ActivityShare:
		v.Shares++
	case ActivityFollow:
		if !v.IsFollower {
			v.IsFollower = true
			ft := now
			v.FollowTime = &ft
		}
	}

	return v
}

// AddGiftValue attributes a gift's diamond and USD value to the viewer.
func (t *ViewerTable) AddGiftValue(userID string, diamonds int, usd float64) {
	if v, ok := t.viewers[userID]; ok {
		v.Diamonds += diamonds
		v.GiftUSD += usd
	}
}

// Get returns the record for userID, or nil.
func (t *ViewerTable) Get(userID string) *models.ViewerRecord {
	return t.viewers[userID]
}

// UniqueViewers returns the count of distinct viewers seen this session.
func (t *ViewerTable) UniqueViewers() int {
	return t.uniqueViewers
}

// Active returns all currently active records.
func (t *ViewerTable) Active() []*models.ViewerRecord {
	var active []*models.ViewerRecord
	for _, v := range t.viewers {
		if v.IsActive {
			active = append(active, v)
		}
	}
	return active
}

// SweepInactive deactivates every active viewer silent for longer than
// threshold and returns the records that transitioned, so the caller can emit
// a "viewer left" side effect exactly once per transition. Watch time freezes
// at its last computed value.
func (t *ViewerTable) SweepInactive(now time.Time, threshold time.Duration) []*models.ViewerRecord {
	var left []*models.ViewerRecord
	for _, v := range t.viewers {
		if v.IsActive && now.Sub(v.LastSeen) > threshold {
			v.IsActive = false
			left = append(left, v)
			logrus.Infof("Viewer marked inactive: %s (watch time %ds)", v.Nickname, v.WatchTime)
		}
	}
	return left
}

// RecomputeWatchTimes refreshes watch time for active viewers only; inactive
// records keep their frozen value.
func (t *ViewerTable) RecomputeWatchTimes(now time.Time) {
	for _, v := range t.viewers {
		if v.IsActive {
			v.WatchTime = int(now.Sub(v.JoinTime) / time.Second)
		}
	}
}

// Stats derives watch-time aggregates from currently active records.
func (t *ViewerTable) Stats() models.ViewerStats {
	stats := models.ViewerStats{
		TotalUniqueViewers: t.uniqueViewers,
		ViewersByWatchTime: map[string]int{
			"0-5min":   0,
			"5-15min":  0,
			"15-30min": 0,
			"30min+":   0,
		},
	}

	total := 0
	for _, v := range t.viewers {
		if !v.IsActive {
			continue
		}
		stats.ActiveViewers++
		total += v.WatchTime
		if v.WatchTime > stats.LongestWatchTime {
			stats.LongestWatchTime = v.WatchTime
		}
		switch {
		case v.WatchTime < 300:
			stats.ViewersByWatchTime["0-5min"]++
		case v.WatchTime < 900:
			stats.ViewersByWatchTime["5-15min"]++
		case v.WatchTime < 1800:
			stats.ViewersByWatchTime["15-30min"]++
		default:
			stats.ViewersByWatchTime["30min+"]++
		}
	}

	if stats.ActiveViewers > 0 {
		stats.AverageWatchTime = total / stats.ActiveViewers
	}

	return stats
}
