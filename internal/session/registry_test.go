package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/streampulse/streampulse-bot/internal/sentiment"
	"github.com/stretchr/testify/assert"
)

// countingGenerator answers every call and counts how many reached it.
type countingGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return "Shout out your newest followers by name!", nil
}

func (g *countingGenerator) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestRegistry_CreateGetDestroy(t *testing.T) {
	registry := newTestRegistry()

	h := registry.Create(nil)
	assert.NotEmpty(t, h.ID())
	assert.Equal(t, 1, registry.Len())

	got, ok := registry.Get(h.ID())
	assert.True(t, ok)
	assert.Same(t, h, got)

	assert.True(t, registry.Destroy(h.ID()))
	assert.Equal(t, 0, registry.Len())

	_, ok = registry.Get(h.ID())
	assert.False(t, ok)
	assert.False(t, registry.Destroy(h.ID()))
}

func TestRegistry_DistinctIDs(t *testing.T) {
	registry := newTestRegistry()
	a := registry.Create(nil)
	b := registry.Create(nil)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, registry.Len())
}

func TestRegistry_SessionIsolation(t *testing.T) {
	registry := newTestRegistry()
	a := registry.Create(nil)
	b := registry.Create(nil)

	// Drive a busy stream into session A only.
	a.OnJoin("u1", "Alice", "")
	a.OnLike("u1", 10, 0)
	a.OnComment("u1", "Alice", "amazing gameplay today")
	a.OnFollow("u1", "Alice", "")
	a.OnGift("u1", "Alice", "Rose", 0, 3)
	a.OnViewerCount(500)

	snapA := a.Snapshot()
	assert.Equal(t, 10, snapA.TotalLikes)
	assert.Equal(t, 1, snapA.TotalComments)
	assert.Equal(t, 1, snapA.SessionFollowersGained)

	// Session B observed none of it.
	snapB := b.Snapshot()
	assert.Equal(t, 0, snapB.TotalLikes)
	assert.Equal(t, 0, snapB.TotalComments)
	assert.Equal(t, 0, snapB.TotalGifts)
	assert.Equal(t, 0, snapB.SessionFollowersGained)
	assert.Equal(t, 0, snapB.CurrentViewerCount)
	assert.Empty(t, snapB.EngagementRanking)

	// Resetting A leaves B's state alone.
	b.OnJoin("u2", "Bob", "")
	b.OnLike("u2", 3, 0)
	a.Reset()

	assert.Equal(t, 0, a.Snapshot().TotalLikes)
	assert.Equal(t, 3, b.Snapshot().TotalLikes)
}

func TestRegistry_GeneratorBudgetIsolation(t *testing.T) {
	gen := &countingGenerator{}
	registry := NewRegistry(testConfig(), sentiment.NewLexiconScorer(), gen)
	a := registry.Create(nil)
	b := registry.Create(nil)

	now := time.Now()
	snap := a.Snapshot()
	for i := 0; i < 15; i++ {
		p := a.orchestrator.Generate(snap, now)
		assert.Equal(t, "gemini", p.Source)
	}
	assert.Equal(t, 15, gen.total())
	assert.Equal(t, 15, a.PromptHealth().CallsThisMinute)

	// A is over budget for this minute and degrades without calling out.
	p := a.orchestrator.Generate(snap, now)
	assert.Equal(t, "fallback", p.Source)
	assert.Equal(t, 15, gen.total())

	// B's budget is untouched: its next prompt still reaches the generator.
	pb := b.orchestrator.Generate(b.Snapshot(), now)
	assert.Equal(t, "gemini", pb.Source)
	assert.Equal(t, 16, gen.total())
	assert.Equal(t, 1, b.PromptHealth().CallsThisMinute)
}

func TestRegistry_AllReturnsSnapshotOfHandlers(t *testing.T) {
	registry := newTestRegistry()
	a := registry.Create(nil)
	registry.Create(nil)

	all := registry.All()
	assert.Len(t, all, 2)

	registry.Destroy(a.ID())
	assert.Len(t, all, 2)
	assert.Len(t, registry.All(), 1)
}
