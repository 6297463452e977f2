// Package sentiment scores comment polarity on a [-1, 1] scale.
package sentiment

import "strings"

// Scorer produces a polarity score in [-1, 1] for a cleaned comment.
type Scorer interface {
	Score(text string) float64
}

var positiveWords = map[string]bool{
	"love": true, "amazing": true, "awesome": true, "great": true,
	"good": true, "best": true, "perfect": true, "beautiful": true,
	"fantastic": true, "excellent": true, "wonderful": true,
	"incredible": true, "fire": true, "lit": true, "goat": true,
	"king": true, "queen": true, "legend": true, "fun": true,
	"funny": true, "happy": true, "enjoy": true, "like": true,
}

var negativeWords = map[string]bool{
	"hate": true, "bad": true, "terrible": true, "awful": true,
	"worst": true, "horrible": true, "boring": true, "stupid": true,
	"trash": true, "cringe": true, "sucks": true, "disgusting": true,
	"annoying": true, "ugly": true, "lame": true, "dumb": true,
	"sad": true, "angry": true,
}

// LexiconScorer scores text by counting polarity words. It is the default
// scorer and the fallback when a remote scorer is unreachable.
type LexiconScorer struct{}

// NewLexiconScorer returns a ready scorer.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

// Score returns (positive - negative) / (positive + negative) over the
// polarity words found in text, or 0 when none match.
func (s *LexiconScorer) Score(text string) float64 {
	positive, negative := 0, 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?'\"")
		if positiveWords[word] {
			positive++
		}
		if negativeWords[word] {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}
