package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/streampulse/streampulse-bot/internal/config"
	"github.com/streampulse/streampulse-bot/internal/sentiment"
	"github.com/stretchr/testify/assert"
)

// recordingBroadcaster captures emitted events for assertions. Safe for
// concurrent use so tests can emit from multiple goroutines.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []emitted
}

type emitted struct {
	event   string
	payload any
}

func (r *recordingBroadcaster) Emit(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{event: event, payload: payload})
}

func (r *recordingBroadcaster) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.event == event {
			n++
		}
	}
	return n
}

// actions returns the "action" field of every payload emitted under event.
func (r *recordingBroadcaster) actions(event string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.event != event {
			continue
		}
		if m, ok := e.payload.(map[string]any); ok {
			if action, ok := m["action"].(string); ok {
				out = append(out, action)
			}
		}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		RejoinSuppression:    time.Second,
		InactivityThreshold:  5 * time.Minute,
		TopKeywords:          5,
		GeminiMaxCallsPerMin: 15,
		GeminiTimeout:        5 * time.Second,
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(testConfig(), sentiment.NewLexiconScorer(), nil)
}

// slowGenerator simulates a generator that takes a long time to answer.
type slowGenerator struct {
	delay time.Duration
}

func (g *slowGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
	}
	return "Ask chat what game you should play next!", nil
}

func TestHandler_JoinEmitsWelcomeOnce(t *testing.T) {
	registry := newTestRegistry()
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)

	h.OnJoin("u1", "Alice", "")
	// Rapid replays inside the suppression window emit nothing further.
	h.OnJoin("u1", "Alice", "")
	h.OnJoin("u1", "Alice", "")

	assert.Equal(t, 1, rec.count(EventViewerUpdate))
	assert.Equal(t, []string{"join"}, rec.actions(EventViewerUpdate))
}

func TestHandler_ViewerCountEmitsUpdate(t *testing.T) {
	registry := newTestRegistry()
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)

	h.OnViewerCount(250)

	assert.Equal(t, []string{"count"}, rec.actions(EventViewerUpdate))
}

func TestHandler_SweepAnnouncesDepartures(t *testing.T) {
	cfg := testConfig()
	cfg.InactivityThreshold = time.Nanosecond
	registry := NewRegistry(cfg, sentiment.NewLexiconScorer(), nil)
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)

	h.OnJoin("u1", "Alice", "")
	h.SweepTick()
	// A second sweep finds no one left to announce.
	h.SweepTick()

	assert.Equal(t, []string{"join", "leave"}, rec.actions(EventViewerUpdate))
	assert.Empty(t, h.Viewers())
}

func TestHandler_DuplicateFollowEmitsOnce(t *testing.T) {
	registry := newTestRegistry()
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)

	h.OnJoin("u1", "Alice", "")
	h.OnFollow("u1", "Alice", "")
	h.OnFollow("u1", "Alice", "")

	assert.Equal(t, 1, rec.count(EventNewFollower))
	assert.Equal(t, 1, h.Snapshot().SessionFollowersGained)
}

func TestHandler_QuestionDetectionEmits(t *testing.T) {
	registry := newTestRegistry()
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)

	h.OnJoin("u1", "Alice", "")
	h.OnComment("u1", "Alice", "how long have you been streaming?")
	h.OnComment("u1", "Alice", "nice play there")

	assert.Equal(t, 1, rec.count(EventQuestionDetected))
	assert.Len(t, h.Snapshot().PendingQuestions, 1)
}

func TestHandler_PromptTickEmitsFallbackWithoutGenerator(t *testing.T) {
	registry := newTestRegistry()
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)

	h.PromptTick()

	assert.Equal(t, 1, rec.count(EventPromptIssued))

	health := h.PromptHealth()
	assert.False(t, health.Available)
	assert.Equal(t, 0, health.CallsThisMinute)
}

func TestHandler_IngestionNotBlockedByPromptTick(t *testing.T) {
	registry := NewRegistry(testConfig(), sentiment.NewLexiconScorer(), &slowGenerator{delay: 750 * time.Millisecond})
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)
	h.OnJoin("u1", "Alice", "")

	done := make(chan struct{})
	go func() {
		h.PromptTick()
		close(done)
	}()

	// Let the tick reach the generator before ingesting.
	time.Sleep(100 * time.Millisecond)
	start := time.Now()
	h.OnComment("u1", "Alice", "loving the energy today")
	assert.Less(t, time.Since(start), 300*time.Millisecond)

	<-done
	assert.Equal(t, 1, rec.count(EventPromptIssued))
	assert.Equal(t, 1, h.Snapshot().TotalComments)
}

func TestHandler_ViewersReturnsDetachedCopies(t *testing.T) {
	registry := newTestRegistry()
	h := registry.Create(nil)

	h.OnJoin("u1", "Alice", "")
	h.OnLike("u1", 5, 0)

	viewers := h.Viewers()
	assert.Len(t, viewers, 1)
	assert.Equal(t, 5, viewers[0].Likes)

	// Later session activity must not show through an earlier result.
	h.OnLike("u1", 4, 0)
	assert.Equal(t, 5, viewers[0].Likes)

	// Nor can a caller's writes reach the session state.
	viewers[0].Nickname = "scribbled"
	assert.Equal(t, "Alice", h.Viewers()[0].Nickname)
}

func TestHandler_SnapshotTickBroadcasts(t *testing.T) {
	registry := newTestRegistry()
	rec := &recordingBroadcaster{}
	h := registry.Create(rec)

	h.SnapshotTick()
	assert.Equal(t, 1, rec.count(EventMetricsSnapshot))
}

func TestHandler_NilBroadcasterIsSafe(t *testing.T) {
	registry := newTestRegistry()
	h := registry.Create(nil)

	h.OnJoin("u1", "Alice", "")
	h.OnComment("u1", "Alice", "is this on?")
	h.PromptTick()
	h.SnapshotTick()

	assert.Equal(t, 1, h.Snapshot().TotalComments)
}
