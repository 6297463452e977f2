package analytics

import (
	"sort"

	"github.com/streampulse/streampulse-bot/internal/models"
)

// Engagement score weights. Gifts and comments dominate; watch time is worth
// three orders of magnitude less than any interaction so passive watching
// never outranks participation.
const (
	likeWeight      = 8
	giftWeight      = 50
	commentWeight   = 15
	shareWeight     = 20
	diamondWeight   = 1
	watchTimeWeight = 0.0001
)

// EngagementRanking computes the leaderboard over currently active viewers.
// Viewers with no likes, gifts, comments, or shares are excluded regardless
// of watch time. Ordering is score descending, ties broken by earlier join
// time. An empty result is valid when nobody qualifies.
func EngagementRanking(viewers []*models.ViewerRecord) []models.RankEntry {
	entries := make([]models.RankEntry, 0, len(viewers))
	joinTimes := make(map[string]int64, len(viewers))

	for _, v := range viewers {
		if !v.IsActive {
			continue
		}
		if v.Likes == 0 && v.Gifts == 0 && v.Comments == 0 && v.Shares == 0 {
			continue
		}

		base := float64(v.Likes)*likeWeight +
			float64(v.Gifts)*giftWeight +
			float64(v.Comments)*commentWeight +
			float64(v.Shares)*shareWeight +
			float64(v.Diamonds)*diamondWeight +
			float64(v.WatchTime)*watchTimeWeight

		diversity := 0
		for _, engaged := range []bool{v.Likes > 0, v.Gifts > 0, v.Comments > 0, v.Shares > 0} {
			if engaged {
				diversity++
			}
		}

		multiplier := 1.0
		switch {
		case diversity >= 3:
			multiplier = 1.5
		case diversity == 2:
			multiplier = 1.25
		}

		entries = append(entries, models.RankEntry{
			UserID:     v.UserID,
			Nickname:   v.Nickname,
			WatchTime:  v.WatchTime,
			Likes:      v.Likes,
			Gifts:      v.Gifts,
			Comments:   v.Comments,
			Shares:     v.Shares,
			Diamonds:   v.Diamonds,
			IsFollower: v.IsFollower,
			Score:      base * multiplier,
			Multiplier: multiplier,
			Diversity:  diversity,
		})
		joinTimes[v.UserID] = v.JoinTime.UnixNano()
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return joinTimes[entries[i].UserID] < joinTimes[entries[j].UserID]
	})

	return entries
}
