package sentiment

import (
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// RemoteScorer calls an external sentiment service and falls back to the
// lexicon scorer when the service is unreachable or answers garbage. Scoring
// must never block comment ingestion for long, so the client carries a hard
// timeout.
type RemoteScorer struct {
	url      string
	client   *resty.Client
	fallback Scorer
}

type remoteScoreRequest struct {
	Text string `json:"text"`
}

type remoteScoreResponse struct {
	Score float64 `json:"score"`
}

// NewRemoteScorer returns a scorer backed by the service at url.
func NewRemoteScorer(url string, timeout time.Duration, fallback Scorer) *RemoteScorer {
	return &RemoteScorer{
		url:      url,
		client:   resty.New().SetTimeout(timeout),
		fallback: fallback,
	}
}

// Score asks the remote service for a polarity score, clamping the answer to
// [-1, 1]. Any failure degrades to the fallback scorer.
func (s *RemoteScorer) Score(text string) float64 {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(remoteScoreRequest{Text: text}).
		Post(s.url)

	if err != nil {
		logrus.Errorf("Sentiment service call failed: %v", err)
		return s.fallback.Score(text)
	}
	if resp.StatusCode() != 200 {
		logrus.Errorf("Sentiment service returned status %d", resp.StatusCode())
		return s.fallback.Score(text)
	}

	var scored remoteScoreResponse
	if err := json.Unmarshal(resp.Body(), &scored); err != nil {
		logrus.Errorf("Failed to parse sentiment service response: %v", err)
		return s.fallback.Score(text)
	}

	score := scored.Score
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
