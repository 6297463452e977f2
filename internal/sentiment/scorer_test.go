package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexiconScorer_Score(t *testing.T) {
	scorer := NewLexiconScorer()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no polarity words", "the stream started ten minutes ago", 0},
		{"purely positive", "this is amazing and wonderful", 1},
		{"purely negative", "this is boring and terrible", -1},
		{"mixed leans positive", "great great content but boring music", 1.0 / 3.0},
		{"punctuation stripped", "amazing!", 1},
		{"case insensitive", "AWFUL", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.Score(tt.text), 1e-9)
		})
	}
}

func TestLexiconScorer_RangeBounds(t *testing.T) {
	scorer := NewLexiconScorer()
	score := scorer.Score("love love love hate")
	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, -1.0)
	assert.InDelta(t, 0.5, score, 1e-9)
}
