package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		accepts bool
	}{
		{
			name:    "plain comment passes through",
			input:   "this stream is great",
			want:    "this stream is great",
			accepts: true,
		},
		{
			name:    "emoji stripped",
			input:   "love this 🔥🔥🔥 so much",
			want:    "love this so much",
			accepts: true,
		},
		{
			name:    "mentions removed",
			input:   "@alice did you see that play",
			want:    "did you see that play",
			accepts: true,
		},
		{
			name:    "whitespace collapsed",
			input:   "what   a    save",
			want:    "what a save",
			accepts: true,
		},
		{
			name:    "trivial greeting rejected",
			input:   "hello",
			accepts: false,
		},
		{
			name:    "trivial rejected case insensitively",
			input:   "LOL",
			accepts: false,
		},
		{
			name:    "too short rejected",
			input:   "gg",
			accepts: false,
		},
		{
			name:    "emoji only rejected",
			input:   "🔥🔥🔥",
			accepts: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeComment(tt.input)
			assert.Equal(t, tt.accepts, ok)
			if tt.accepts {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "long tokens kept, stop words dropped",
			input: "the gameplay here is amazing and that strategy works",
			want:  []string{"gameplay", "amazing", "strategy", "works"},
		},
		{
			name:  "short tokens dropped",
			input: "wow gg top day",
			want:  nil,
		},
		{
			name:  "punctuation trimmed and lower-cased",
			input: "AMAZING!!! Gameplay,",
			want:  []string{"amazing", "gameplay"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.input))
		})
	}
}
