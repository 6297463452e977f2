package analytics

import (
	"math"
	"strings"

	"github.com/streampulse/streampulse-bot/internal/models"
)

// EntertainmentInput carries the signals the entertainment model reads.
type EntertainmentInput struct {
	ViewerCount       int
	LikesPerMinute    int
	CommentsPerMinute int
	GiftsPerMinute    int
	RecentSentiments  []float64 // most recent last
	RecentComments    []models.CommentRecord
	ViewerHistory     []models.ViewerCountSample
}

// EntertainmentLevel scores how entertained the audience currently is on a
// 0-100 scale from four weighted components: engagement intensity (30%),
// content reception (25%), audience energy (25%), retention quality (20%).
func EntertainmentLevel(in EntertainmentInput) models.EntertainmentMetrics {
	m := models.EntertainmentMetrics{
		Intensity:        engagementIntensity(in),
		ContentReception: contentReception(in),
		AudienceEnergy:   audienceEnergy(in),
		RetentionQuality: retentionQuality(in.ViewerHistory),
	}

	weighted := m.Intensity*0.30 + m.ContentReception*0.25 + m.AudienceEnergy*0.25 + m.RetentionQuality*0.20
	m.Score = int(math.Round(weighted * 100))
	return m
}

// engagementIntensity normalizes per-viewer interaction rates to [0,1].
func engagementIntensity(in EntertainmentInput) float64 {
	viewers := float64(in.ViewerCount)
	if viewers < 1 {
		viewers = 1
	}

	weighted := float64(in.LikesPerMinute)/viewers*0.4 +
		float64(in.CommentsPerMinute)/viewers*0.4 +
		float64(in.GiftsPerMinute)/viewers*0.2

	return clamp01(weighted / 0.5)
}

// contentReception blends recent sentiment positivity, the share of
// substantial comments, and gift frequency.
func contentReception(in EntertainmentInput) float64 {
	score := 0.0

	if len(in.RecentSentiments) >= 10 {
		recent := in.RecentSentiments[len(in.RecentSentiments)-10:]
		positive := 0
		for _, s := range recent {
			if s > 0 {
				positive++
			}
		}
		score += float64(positive) / float64(len(recent)) * 0.4
	}

	if len(in.RecentComments) >= 5 {
		recent := in.RecentComments[:5]
		substantial := 0
		for _, c := range recent {
			if len(c.Comment) > 10 && !strings.ContainsAny(c.Comment, "?!") {
				substantial++
			}
		}
		score += float64(substantial) / float64(len(recent)) * 0.3
	}

	score += clamp01(float64(in.GiftsPerMinute)/10) * 0.3

	return clamp01(score)
}

// audienceEnergy blends raw interaction pace, viewer growth momentum, and
// recent chat activity.
func audienceEnergy(in EntertainmentInput) float64 {
	score := clamp01(float64(in.LikesPerMinute+in.CommentsPerMinute)/50) * 0.4

	if len(in.ViewerHistory) >= 5 {
		recent := in.ViewerHistory[len(in.ViewerHistory)-5:]
		growth := float64(recent[len(recent)-1].Count - recent[0].Count)
		score += clamp01(growth/10) * 0.3
	}

	score += clamp01(float64(len(in.RecentComments)+in.LikesPerMinute)/20) * 0.3

	return clamp01(score)
}

// retentionQuality reads viewer-count stability: low variance around the
// recent average means viewers are staying put. Defaults to 0.5 until enough
// history accumulates.
func retentionQuality(history []models.ViewerCountSample) float64 {
	if len(history) < 10 {
		return 0.5
	}

	recent := history[len(history)-10:]
	sum := 0.0
	for _, s := range recent {
		sum += float64(s.Count)
	}
	avg := sum / float64(len(recent))
	if avg == 0 {
		return 0.5
	}

	variance := 0.0
	for _, s := range recent {
		d := float64(s.Count) - avg
		variance += d * d
	}
	variance /= float64(len(recent))

	stability := 1 - variance/(avg*avg)
	if stability < 0 {
		stability = 0
	}

	return clamp01(stability*0.7 + clamp01(avg/100)*0.3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
