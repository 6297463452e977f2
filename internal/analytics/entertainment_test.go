package analytics

import (
	"testing"
	"time"

	"github.com/streampulse/streampulse-bot/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEntertainmentLevel_DeadStreamScoresLow(t *testing.T) {
	m := EntertainmentLevel(EntertainmentInput{ViewerCount: 50})

	assert.Equal(t, 0.0, m.Intensity)
	assert.Equal(t, 0.0, m.ContentReception)
	assert.Equal(t, 0.0, m.AudienceEnergy)
	// Without enough history, retention defaults to the midpoint.
	assert.Equal(t, 0.5, m.RetentionQuality)
	assert.Equal(t, 10, m.Score)
}

func TestEntertainmentLevel_BusyStreamScoresHigh(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var history []models.ViewerCountSample
	for i := 0; i < 10; i++ {
		history = append(history, models.ViewerCountSample{Count: 200, Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	var sentiments []float64
	for i := 0; i < 10; i++ {
		sentiments = append(sentiments, 0.6)
	}

	comments := make([]models.CommentRecord, 10)
	for i := range comments {
		comments[i] = models.CommentRecord{Comment: "this gameplay is fantastic today"}
	}

	m := EntertainmentLevel(EntertainmentInput{
		ViewerCount:       200,
		LikesPerMinute:    100,
		CommentsPerMinute: 40,
		GiftsPerMinute:    12,
		RecentSentiments:  sentiments,
		RecentComments:    comments,
		ViewerHistory:     history,
	})

	assert.Greater(t, m.Score, 60)
	assert.LessOrEqual(t, m.Score, 100)
	assert.InDelta(t, 1.0, m.ContentReception, 1e-9)
}

func TestEntertainmentLevel_ScoreBounds(t *testing.T) {
	// Absurd inputs still land inside 0-100.
	m := EntertainmentLevel(EntertainmentInput{
		ViewerCount:       1,
		LikesPerMinute:    100000,
		CommentsPerMinute: 100000,
		GiftsPerMinute:    100000,
	})
	assert.LessOrEqual(t, m.Score, 100)
	assert.GreaterOrEqual(t, m.Score, 0)
}

func TestRetentionQuality_StableAudience(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var stable, volatile []models.ViewerCountSample
	for i := 0; i < 10; i++ {
		stable = append(stable, models.ViewerCountSample{Count: 100, Timestamp: base})
		count := 10
		if i%2 == 0 {
			count = 190
		}
		volatile = append(volatile, models.ViewerCountSample{Count: count, Timestamp: base})
	}

	assert.Greater(t, retentionQuality(stable), retentionQuality(volatile))
}
