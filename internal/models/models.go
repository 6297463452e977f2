package models

import "time"

// ViewerRecord tracks a single viewer identity for the lifetime of a session.
// Records are never deleted; inactive viewers keep their last computed watch time.
type ViewerRecord struct {
	UserID     string     `json:"user_id"`
	Nickname   string     `json:"nickname"`
	ProfilePic string     `json:"profile_pic,omitempty"`
	JoinTime   time.Time  `json:"join_time"`
	LastSeen   time.Time  `json:"last_seen"`
	LastJoin   time.Time  `json:"-"` // for rapid-rejoin replay suppression
	WatchTime  int        `json:"watch_time_seconds"`
	IsActive   bool       `json:"is_active"`
	Likes      int        `json:"likes"`
	Gifts      int        `json:"gifts"`
	Comments   int        `json:"comments"`
	Shares     int        `json:"shares"`
	Diamonds   int        `json:"diamonds_spent"`
	GiftUSD    float64    `json:"gift_value_usd"`
	IsFollower bool       `json:"is_follower"`
	FollowTime *time.Time `json:"follow_time,omitempty"`
	Welcomed   bool       `json:"welcomed"`
}

// RankEntry is a derived leaderboard row, computed fresh per ranking request.
type RankEntry struct {
	UserID     string  `json:"user_id"`
	Nickname   string  `json:"nickname"`
	WatchTime  int     `json:"watch_time_seconds"`
	Likes      int     `json:"likes"`
	Gifts      int     `json:"gifts"`
	Comments   int     `json:"comments"`
	Shares     int     `json:"shares"`
	Diamonds   int     `json:"diamonds_spent"`
	IsFollower bool    `json:"is_follower"`
	Score      float64 `json:"engagement_score"`
	Multiplier float64 `json:"engagement_multiplier"`
	Diversity  int     `json:"engagement_types"`
}

// FollowerEntry is one row of the deduplicated new-follower feed.
type FollowerEntry struct {
	UserID     string    `json:"user_id"`
	Nickname   string    `json:"nickname"`
	ProfilePic string    `json:"profile_pic,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// CommentRecord is one accepted (non-trivial) comment with its sentiment score.
type CommentRecord struct {
	UserID     string    `json:"user_id"`
	Nickname   string    `json:"nickname"`
	Comment    string    `json:"comment"`
	Sentiment  float64   `json:"sentiment_score"`
	IsQuestion bool      `json:"is_question"`
	Timestamp  time.Time `json:"timestamp"`
}

// GiftRecord is one gift event with its resolved value.
type GiftRecord struct {
	UserID    string    `json:"user_id"`
	Nickname  string    `json:"nickname"`
	GiftName  string    `json:"gift_name"`
	Diamonds  int       `json:"diamonds"`
	ValueUSD  float64   `json:"value_usd"`
	Timestamp time.Time `json:"timestamp"`
}

// ShareRecord is one share event.
type ShareRecord struct {
	UserID    string    `json:"user_id"`
	Nickname  string    `json:"nickname"`
	Timestamp time.Time `json:"timestamp"`
}

// Question is a viewer question detected in chat, waiting for or given a response.
type Question struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Nickname     string        `json:"nickname"`
	Question     string        `json:"question"`
	Priority     int           `json:"priority"` // 1 (low) to 5 (urgent)
	Status       string        `json:"status"`   // "pending" or "answered"
	ResponseTime time.Duration `json:"response_time,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// QuestionStats summarizes question handling for a session.
type QuestionStats struct {
	TotalQuestions      int     `json:"total_questions"`
	AnsweredQuestions   int     `json:"answered_questions"`
	ResponseRate        float64 `json:"response_rate"`
	AverageResponseTime float64 `json:"average_response_time_ms"`
}

// EntertainmentMetrics is the composite 0-100 entertainment readout.
type EntertainmentMetrics struct {
	Score            int     `json:"entertainment_score"`
	Intensity        float64 `json:"engagement_intensity"`
	ContentReception float64 `json:"content_reception"`
	AudienceEnergy   float64 `json:"audience_energy"`
	RetentionQuality float64 `json:"retention_quality"`
}

// ViewerStats aggregates watch-time statistics over currently active viewers.
type ViewerStats struct {
	TotalUniqueViewers int            `json:"total_unique_viewers"`
	ActiveViewers      int            `json:"active_viewers"`
	AverageWatchTime   int            `json:"average_watch_time"`
	LongestWatchTime   int            `json:"longest_watch_time"`
	ViewersByWatchTime map[string]int `json:"viewers_by_watch_time"`
}

// KeywordCount is one row of the top-N keyword report.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// ViewerCountSample is one point of the viewer-count history.
type ViewerCountSample struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// Prompt is a talking-point suggestion offered to the broadcaster.
// Source distinguishes AI-generated suggestions from the canned library.
type Prompt struct {
	Type     string         `json:"type"`
	Priority string         `json:"priority"` // "high", "medium" or "low"
	Message  string         `json:"message"`
	Trigger  string         `json:"trigger"`
	Action   string         `json:"action"`
	Source   string         `json:"source"` // "ai_generated" or "fallback"
	Context  *PromptContext `json:"context,omitempty"`
}

// PromptContext is the qualitative snapshot attached to a prompt.
type PromptContext struct {
	EngagementLevel string `json:"engagement_level"`
	Sentiment       string `json:"sentiment"`
	Growth          string `json:"growth"`
	StreamPhase     string `json:"stream_phase"`
}

// GeneratorHealth exposes the orchestrator's external-call budget state.
type GeneratorHealth struct {
	Available       bool `json:"available"`
	CallsThisMinute int  `json:"calls_this_minute"`
	Budget          int  `json:"budget"`
}

// Snapshot is the full per-session metrics payload broadcast to dashboards.
type Snapshot struct {
	SessionID              string               `json:"session_id"`
	CurrentViewerCount     int                  `json:"current_viewer_count"`
	TotalLikes             int                  `json:"total_likes"`
	TotalComments          int                  `json:"total_comments"`
	TotalGifts             int                  `json:"total_gifts"`
	TotalGiftDiamonds      int                  `json:"total_gift_diamonds"`
	TotalGiftValueUSD      float64              `json:"total_gift_value_usd"`
	TotalShares            int                  `json:"total_shares"`
	SessionFollowersGained int                  `json:"session_followers_gained"`
	LikesPerMinute         int                  `json:"likes_per_minute"`
	CommentsPerMinute      int                  `json:"comments_per_minute"`
	GiftsPerMinute         int                  `json:"gifts_per_minute"`
	SharesPerMinute        int                  `json:"shares_per_minute"`
	FollowersPerMinute     int                  `json:"followers_per_minute"`
	RollingSentimentScore  float64              `json:"rolling_sentiment_score"`
	TopKeywords            []KeywordCount       `json:"top_keywords"`
	StreamStartTime        time.Time            `json:"stream_start_time"`
	StreamPhase            string               `json:"stream_phase"`
	EngagementTrend        string               `json:"engagement_trend"`
	ViewerStats            ViewerStats          `json:"viewer_stats"`
	EngagementRanking      []RankEntry          `json:"engagement_ranking"`
	NewFollowers           []FollowerEntry      `json:"new_followers"`
	RecentComments         []CommentRecord      `json:"recent_comments"`
	RecentGifts            []GiftRecord         `json:"recent_gifts"`
	RecentShares           []ShareRecord        `json:"recent_shares"`
	PendingQuestions       []Question           `json:"pending_questions"`
	QuestionStats          QuestionStats        `json:"question_stats"`
	Entertainment          EntertainmentMetrics `json:"entertainment_metrics"`
	Timestamp              time.Time            `json:"timestamp"`
}
