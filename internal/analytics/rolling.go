package analytics

// sentimentBufferCap bounds the rolling sentiment window.
const sentimentBufferCap = 100

// SentimentBuffer is a fixed-capacity FIFO of per-comment polarity scores
// whose mean is the session's rolling sentiment. The mean is recomputed over
// the full buffer on each read; at 100 entries that is cheaper than keeping a
// running sum that drifts under continuous add/evict.
type SentimentBuffer struct {
	scores []float64
}

// NewSentimentBuffer returns an empty buffer.
func NewSentimentBuffer() *SentimentBuffer {
	return &SentimentBuffer{}
}

// Append adds a score, evicting the oldest when the buffer is full, and
// returns the new mean.
func (b *SentimentBuffer) Append(score float64) float64 {
	if len(b.scores) == sentimentBufferCap {
		copy(b.scores, b.scores[1:])
		b.scores = b.scores[:sentimentBufferCap-1]
	}
	b.scores = append(b.scores, score)
	return b.Mean()
}

// Mean returns the arithmetic mean of the buffer, or 0 when empty.
func (b *SentimentBuffer) Mean() float64 {
	if len(b.scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range b.scores {
		sum += s
	}
	return sum / float64(len(b.scores))
}

// Len returns the current buffer length.
func (b *SentimentBuffer) Len() int {
	return len(b.scores)
}

// Recent returns up to n of the most recent scores, oldest first.
func (b *SentimentBuffer) Recent(n int) []float64 {
	if n > len(b.scores) {
		n = len(b.scores)
	}
	out := make([]float64, n)
	copy(out, b.scores[len(b.scores)-n:])
	return out
}

// Reset clears the buffer.
func (b *SentimentBuffer) Reset() {
	b.scores = nil
}
