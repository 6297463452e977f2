package analytics

import (
	"sort"
	"time"

	"github.com/streampulse/streampulse-bot/internal/gifts"
	"github.com/streampulse/streampulse-bot/internal/models"
	"github.com/streampulse/streampulse-bot/internal/sentiment"
)

// Bounded feed and history sizes.
const (
	recentCommentCap = 50
	recentGiftCap    = 20
	recentShareCap   = 20
	viewerHistoryCap = 60
)

// trendSpan is how much comment history the engagement trend reads, split
// into one-minute buckets.
const (
	trendSpan    = 4 * time.Minute
	trendBuckets = 4
)

// Stream phase values, derived from elapsed stream time.
const (
	PhaseStart = "start"
	PhaseMid   = "mid"
	PhaseEnd   = "end"
)

// Engagement trend values.
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
	TrendDeclining  = "declining"
)

// SessionOptions tune a session's behavior. Zero values get sensible
// defaults from NewSession.
type SessionOptions struct {
	RejoinSuppression   time.Duration
	InactivityThreshold time.Duration
	TopKeywords         int
}

// Session is the complete per-broadcast analytics state: lifetime counters,
// trailing rate windows, viewer and follower tracking, rolling sentiment,
// keyword frequencies, question log, recent-event feeds, and viewer-count
// history. It is not goroutine safe; the owning handler serializes access.
type Session struct {
	opts   SessionOptions
	scorer sentiment.Scorer

	startTime          time.Time
	currentViewerCount int

	totalLikes        int
	totalComments     int
	totalGiftCount    int
	totalGiftDiamonds int
	totalGiftUSD      float64
	totalShares       int

	likeRate    *RateWindow
	commentRate *RateWindow
	giftRate    *RateWindow
	shareRate   *RateWindow
	followRate  *RateWindow

	viewers    *ViewerTable
	followers  *FollowerLog
	sentiments *SentimentBuffer
	questions  *QuestionLog

	keywords map[string]int

	recentComments []models.CommentRecord
	recentGifts    []models.GiftRecord
	recentShares   []models.ShareRecord
	viewerHistory  []models.ViewerCountSample

	commentTimes []time.Time
}

// NewSession returns a fresh session whose stream clock starts at now.
func NewSession(scorer sentiment.Scorer, opts SessionOptions, now time.Time) *Session {
	if opts.RejoinSuppression <= 0 {
		opts.RejoinSuppression = time.Second
	}
	if opts.InactivityThreshold <= 0 {
		opts.InactivityThreshold = 5 * time.Minute
	}
	if opts.TopKeywords <= 0 {
		opts.TopKeywords = 10
	}

	return &Session{
		opts:        opts,
		scorer:      scorer,
		startTime:   now,
		likeRate:    NewRateWindow(),
		commentRate: NewRateWindow(),
		giftRate:    NewRateWindow(),
		shareRate:   NewRateWindow(),
		followRate:  NewRateWindow(),
		viewers:     NewViewerTable(opts.RejoinSuppression),
		followers:   NewFollowerLog(),
		sentiments:  NewSentimentBuffer(),
		questions:   NewQuestionLog(),
		keywords:    make(map[string]int),
	}
}

// StartTime returns when the current session began.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Viewers exposes the viewer table for the owning handler.
func (s *Session) Viewers() *ViewerTable {
	return s.viewers
}

// RecordJoin registers a viewer sighting.
func (s *Session) RecordJoin(userID, nickname, profilePic string, now time.Time) (JoinResult, *models.ViewerRecord) {
	return s.viewers.Join(userID, nickname, profilePic, now)
}

// RecordLike ingests a like event carrying count likes. reportedTotal, when
// positive, is the upstream's running total; the session counter only ever
// rises to meet it, never falls.
func (s *Session) RecordLike(userID string, count, reportedTotal int, now time.Time) {
	if count < 1 {
		count = 1
	}

	s.totalLikes += count
	if reportedTotal > s.totalLikes {
		s.totalLikes = reportedTotal
	}

	for i := 0; i < count; i++ {
		s.likeRate.Record(now)
	}

	if v := s.viewers.RecordActivity(userID, ActivityLike, now); v != nil && count > 1 {
		v.Likes += count - 1
	}
}

// RecordComment ingests a comment. Every comment counts toward the raw
// comment rate; only non-trivial comments feed sentiment, keywords, question
// detection, and the recent-comment feed. Returns the accepted record and the
// detected question, either of which may be nil.
func (s *Session) RecordComment(userID, nickname, text string, now time.Time) (*models.CommentRecord, *models.Question) {
	s.totalComments++
	s.commentRate.Record(now)
	s.commentTimes = append(s.commentTimes, now)
	s.pruneCommentTimes(now)
	s.viewers.RecordActivity(userID, ActivityComment, now)

	cleaned, ok := NormalizeComment(text)
	if !ok {
		return nil, nil
	}

	score := s.scorer.Score(cleaned)
	s.sentiments.Append(score)

	for _, kw := range ExtractKeywords(cleaned) {
		s.keywords[kw]++
	}

	question := s.questions.Detect(cleaned, userID, nickname, now)

	record := models.CommentRecord{
		UserID:     userID,
		Nickname:   nickname,
		Comment:    cleaned,
		Sentiment:  score,
		IsQuestion: question != nil,
		Timestamp:  now,
	}
	s.recentComments = append([]models.CommentRecord{record}, s.recentComments...)
	if len(s.recentComments) > recentCommentCap {
		s.recentComments = s.recentComments[:recentCommentCap]
	}

	return &record, question
}

// RecordGift ingests a gift event, resolving its value through the catalog.
func (s *Session) RecordGift(userID, nickname, giftName string, diamonds, repeat int, now time.Time) *models.GiftRecord {
	value := gifts.Resolve(giftName, diamonds, repeat)

	s.totalGiftCount++
	s.totalGiftDiamonds += value.Diamonds
	s.totalGiftUSD += value.USD
	s.giftRate.Record(now)

	s.viewers.RecordActivity(userID, ActivityGift, now)
	s.viewers.AddGiftValue(userID, value.Diamonds, value.USD)

	record := models.GiftRecord{
		UserID:    userID,
		Nickname:  nickname,
		GiftName:  giftName,
		Diamonds:  value.Diamonds,
		ValueUSD:  value.USD,
		Timestamp: now,
	}
	s.recentGifts = append([]models.GiftRecord{record}, s.recentGifts...)
	if len(s.recentGifts) > recentGiftCap {
		s.recentGifts = s.recentGifts[:recentGiftCap]
	}

	return &record
}

// RecordFollow ingests a follow event. Returns true when this is the first
// follow observed for the user this session.
func (s *Session) RecordFollow(userID, nickname, profilePic string, now time.Time) bool {
	s.viewers.RecordActivity(userID, ActivityFollow, now)

	if !s.followers.Add(userID, nickname, profilePic, now) {
		return false
	}
	s.followRate.Record(now)
	return true
}

// RecordShare ingests a share event. reportedTotal behaves as in RecordLike.
func (s *Session) RecordShare(userID string, reportedTotal int, now time.Time) {
	s.totalShares++
	if reportedTotal > s.totalShares {
		s.totalShares = reportedTotal
	}
	s.shareRate.Record(now)
	s.viewers.RecordActivity(userID, ActivityShare, now)

	record := models.ShareRecord{UserID: userID, Timestamp: now}
	if v := s.viewers.Get(userID); v != nil {
		record.Nickname = v.Nickname
	}
	s.recentShares = append([]models.ShareRecord{record}, s.recentShares...)
	if len(s.recentShares) > recentShareCap {
		s.recentShares = s.recentShares[:recentShareCap]
	}
}

// RecordViewerCount updates the live viewer count and its bounded history.
func (s *Session) RecordViewerCount(count int, now time.Time) {
	if count < 0 {
		count = 0
	}
	s.currentViewerCount = count
	s.viewerHistory = append(s.viewerHistory, models.ViewerCountSample{Count: count, Timestamp: now})
	if len(s.viewerHistory) > viewerHistoryCap {
		s.viewerHistory = s.viewerHistory[len(s.viewerHistory)-viewerHistoryCap:]
	}
}

// SweepInactive deactivates silent viewers and returns those that
// transitioned.
func (s *Session) SweepInactive(now time.Time) []*models.ViewerRecord {
	return s.viewers.SweepInactive(now, s.opts.InactivityThreshold)
}

// MarkQuestionAnswered resolves a pending question.
func (s *Session) MarkQuestionAnswered(id string, now time.Time) *models.Question {
	return s.questions.MarkAnswered(id, now)
}

// CleanupFollowers collapses duplicate follower feed entries.
func (s *Session) CleanupFollowers() {
	s.followers.Cleanup()
}

// CurrentViewerCount returns the latest reported live viewer count.
func (s *Session) CurrentViewerCount() int {
	return s.currentViewerCount
}

// RollingSentiment returns the mean of the sentiment buffer.
func (s *Session) RollingSentiment() float64 {
	return s.sentiments.Mean()
}

// StreamPhase classifies the stream by elapsed time: under 10 minutes is the
// opening, past 45 minutes the wind-down.
func (s *Session) StreamPhase(now time.Time) string {
	elapsed := now.Sub(s.startTime)
	switch {
	case elapsed < 10*time.Minute:
		return PhaseStart
	case elapsed > 45*time.Minute:
		return PhaseEnd
	default:
		return PhaseMid
	}
}

// EngagementTrend fits a least-squares line over the last four one-minute
// comment buckets. The slope only signals a trend when the latest minute
// confirms it, so a single quiet or busy minute does not flip the label.
func (s *Session) EngagementTrend(now time.Time) string {
	s.pruneCommentTimes(now)

	var buckets [trendBuckets]float64
	for _, t := range s.commentTimes {
		age := now.Sub(t)
		if age < 0 || age >= trendSpan {
			continue
		}
		idx := trendBuckets - 1 - int(age/time.Minute)
		buckets[idx]++
	}

	// Least-squares slope over x = 0..3.
	var sumX, sumY, sumXY, sumXX float64
	for x, y := range buckets {
		fx := float64(x)
		sumX += fx
		sumY += y
		sumXY += fx * y
		sumXX += fx * fx
	}
	n := float64(trendBuckets)
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)

	latest := buckets[trendBuckets-1]
	switch {
	case slope < -0.2 && latest < 8:
		return TrendDeclining
	case slope > 0.3 && latest > 12:
		return TrendIncreasing
	default:
		return TrendStable
	}
}

func (s *Session) pruneCommentTimes(now time.Time) {
	cutoff := now.Add(-trendSpan)
	i := 0
	for i < len(s.commentTimes) && !s.commentTimes[i].After(cutoff) {
		i++
	}
	if i > 0 {
		s.commentTimes = s.commentTimes[i:]
	}
}

// TopKeywords returns the n most frequent keywords, count descending, ties
// broken alphabetically.
func (s *Session) TopKeywords(n int) []models.KeywordCount {
	counts := make([]models.KeywordCount, 0, len(s.keywords))
	for kw, c := range s.keywords {
		counts = append(counts, models.KeywordCount{Keyword: kw, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Keyword < counts[j].Keyword
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Entertainment computes the current entertainment readout.
func (s *Session) Entertainment(now time.Time) models.EntertainmentMetrics {
	return EntertainmentLevel(EntertainmentInput{
		ViewerCount:       s.currentViewerCount,
		LikesPerMinute:    s.likeRate.Rate(now),
		CommentsPerMinute: s.commentRate.Rate(now),
		GiftsPerMinute:    s.giftRate.Rate(now),
		RecentSentiments:  s.sentiments.Recent(10),
		RecentComments:    s.recentComments,
		ViewerHistory:     s.viewerHistory,
	})
}

// Snapshot assembles the full dashboard payload. Watch times are refreshed
// for active viewers first so stats and ranking agree.
func (s *Session) Snapshot(sessionID string, now time.Time) models.Snapshot {
	s.viewers.RecomputeWatchTimes(now)

	return models.Snapshot{
		SessionID:              sessionID,
		CurrentViewerCount:     s.currentViewerCount,
		TotalLikes:             s.totalLikes,
		TotalComments:          s.totalComments,
		TotalGifts:             s.totalGiftCount,
		TotalGiftDiamonds:      s.totalGiftDiamonds,
		TotalGiftValueUSD:      s.totalGiftUSD,
		TotalShares:            s.totalShares,
		SessionFollowersGained: s.followers.Gained(),
		LikesPerMinute:         s.likeRate.Rate(now),
		CommentsPerMinute:      s.commentRate.Rate(now),
		GiftsPerMinute:         s.giftRate.Rate(now),
		SharesPerMinute:        s.shareRate.Rate(now),
		FollowersPerMinute:     s.followRate.Rate(now),
		RollingSentimentScore:  s.sentiments.Mean(),
		TopKeywords:            s.TopKeywords(s.opts.TopKeywords),
		StreamStartTime:        s.startTime,
		StreamPhase:            s.StreamPhase(now),
		EngagementTrend:        s.EngagementTrend(now),
		ViewerStats:            s.viewers.Stats(),
		EngagementRanking:      EngagementRanking(s.viewers.Active()),
		NewFollowers:           s.followers.Feed(),
		RecentComments:         append([]models.CommentRecord(nil), s.recentComments...),
		RecentGifts:            append([]models.GiftRecord(nil), s.recentGifts...),
		RecentShares:           append([]models.ShareRecord(nil), s.recentShares...),
		PendingQuestions:       s.questions.Pending(),
		QuestionStats:          s.questions.Stats(),
		Entertainment:          s.Entertainment(now),
		Timestamp:              now,
	}
}

// Reset clears every piece of session state and restarts the stream clock.
// A reset is a full new-session boundary: the follower processed set is
// dropped too, so returning followers can be announced again.
func (s *Session) Reset(now time.Time) {
	s.startTime = now
	s.currentViewerCount = 0

	s.totalLikes = 0
	s.totalComments = 0
	s.totalGiftCount = 0
	s.totalGiftDiamonds = 0
	s.totalGiftUSD = 0
	s.totalShares = 0

	s.likeRate = NewRateWindow()
	s.commentRate = NewRateWindow()
	s.giftRate = NewRateWindow()
	s.shareRate = NewRateWindow()
	s.followRate = NewRateWindow()

	s.viewers = NewViewerTable(s.opts.RejoinSuppression)
	s.followers.Reset()
	s.sentiments.Reset()
	s.questions.Reset()

	s.keywords = make(map[string]int)
	s.recentComments = nil
	s.recentGifts = nil
	s.recentShares = nil
	s.viewerHistory = nil
	s.commentTimes = nil
}
