package prompts

import (
	"math/rand"
	"time"

	"github.com/streampulse/streampulse-bot/internal/models"
)

// fallbackPrompts is the canned library used whenever the generator cannot
// produce a suggestion.
var fallbackPrompts = []models.Prompt{
	{
		Type:     "engagement",
		Priority: "high",
		Message:  `**Chat Engagement**: The chat is quiet right now. Ask viewers directly: "What's on your mind today?" or "Share something that made you laugh this week!"`,
		Trigger:  "fallback_engagement",
		Action:   "ask_direct_question",
	},
	{
		Type:     "growth",
		Priority: "medium",
		Message:  `**Viewer Connection**: Great energy! Personalize your ask: "If you're enjoying this, hit that follow button and let's build this community together!"`,
		Trigger:  "fallback_growth",
		Action:   "encourage_follows_personal",
	},
	{
		Type:     "interaction",
		Priority: "medium",
		Message:  `**Interactive Challenge**: Start a quick game! "Comment with your favorite emoji if you've ever been to [relevant place/topic]!" or "Type YES if you agree with this!"`,
		Trigger:  "fallback_interaction",
		Action:   "start_interactive_game",
	},
	{
		Type:     "retention",
		Priority: "high",
		Message:  `**Viewer Retention**: Connect with your audience! "I want to hear from you - what brought you to this stream today?" or "Share your experience with [current topic]!"`,
		Trigger:  "fallback_retention",
		Action:   "build_connection",
	},
	{
		Type:     "momentum",
		Priority: "medium",
		Message:  `**Keep Momentum**: The energy is building! "Let's keep this going - what's your take on [current topic]?" or "I love hearing your thoughts, keep them coming!"`,
		Trigger:  "fallback_momentum",
		Action:   "maintain_energy",
	},
}

// FallbackLibrary picks uniformly from the canned prompt library. The random
// source is injectable so selection is deterministic in tests.
type FallbackLibrary struct {
	rng *rand.Rand
}

// NewFallbackLibrary returns a library using rng, or a time-seeded source
// when rng is nil.
func NewFallbackLibrary(rng *rand.Rand) *FallbackLibrary {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FallbackLibrary{rng: rng}
}

// Pick returns a copy of a random canned prompt with a neutral context.
func (l *FallbackLibrary) Pick() models.Prompt {
	p := fallbackPrompts[l.rng.Intn(len(fallbackPrompts))]
	p.Source = "fallback"
	p.Context = &models.PromptContext{
		EngagementLevel: "unknown",
		Sentiment:       "neutral",
		Growth:          "unknown",
		StreamPhase:     "mid",
	}
	return p
}
