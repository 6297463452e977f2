package prompts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/models"
	"github.com/streampulse/streampulse-bot/internal/telemetry"
)

const (
	// maxResponseLength rejects runaway generator output, counted in runes
	// so multibyte replies are measured by length, not encoding; a usable
	// talking point fits in two sentences.
	maxResponseLength = 200

	// globalCooldown is the minimum gap between issued prompts, so the
	// broadcaster is not spammed.
	globalCooldown = time.Minute

	defaultTriggerCooldown = 3 * time.Minute
)

// triggerCooldowns space out repeats of the same suggestion category.
var triggerCooldowns = map[string]time.Duration{
	"ai_analysis":          2 * time.Minute,
	"fallback_engagement":  5 * time.Minute,
	"fallback_retention":   5 * time.Minute,
	"fallback_growth":      4 * time.Minute,
	"fallback_interaction": 4 * time.Minute,
	"fallback_momentum":    3 * time.Minute,
}

// Orchestrator decides, once per tick, whether to issue a talking-point
// prompt and where it comes from. It degrades to the canned library whenever
// the generator is unconfigured, over budget, or fails, and it rate-limits
// generator calls to a per-minute budget. Each session owns its orchestrator,
// so one busy session cannot starve another's budget.
//
// Safe for concurrent use: the mutex is held for the full tick, including the
// generator call, so overlapping ticks serialize against each other.
type Orchestrator struct {
	gen      Generator
	fallback *FallbackLibrary
	budget   int
	timeout  time.Duration

	mu          sync.Mutex
	windowStart time.Time
	calls       int
	lastPrompt  time.Time
	cooldowns   map[string]time.Time
}

// NewOrchestrator returns an orchestrator. gen may be nil when no generator
// is configured; every prompt then comes from the fallback library.
func NewOrchestrator(gen Generator, fallback *FallbackLibrary, budget int, timeout time.Duration) *Orchestrator {
	if budget <= 0 {
		budget = 15
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Orchestrator{
		gen:       gen,
		fallback:  fallback,
		budget:    budget,
		timeout:   timeout,
		cooldowns: make(map[string]time.Time),
	}
}

// Tick is the scheduler entrypoint: it applies the global and per-trigger
// cooldowns around Generate and returns nil when no prompt should be issued
// this tick. A prompt suppressed by cooldown is dropped, never retried.
func (o *Orchestrator) Tick(snap models.Snapshot, now time.Time) *models.Prompt {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.lastPrompt.IsZero() && now.Sub(o.lastPrompt) < globalCooldown {
		return nil
	}

	p := o.generate(snap, now)

	if last, ok := o.cooldowns[p.Trigger]; ok && now.Sub(last) < cooldownFor(p.Trigger) {
		logrus.Debugf("Prompt trigger %s on cooldown, dropping", p.Trigger)
		return nil
	}

	o.cooldowns[p.Trigger] = now
	o.lastPrompt = now
	return &p
}

// Generate produces exactly one prompt: from the generator when it is
// configured, under budget, and answers validly within the timeout, otherwise
// from the fallback library. Only attempted generator calls count against the
// budget.
func (o *Orchestrator) Generate(snap models.Snapshot, now time.Time) models.Prompt {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generate(snap, now)
}

func (o *Orchestrator) generate(snap models.Snapshot, now time.Time) models.Prompt {
	if o.gen == nil {
		logrus.Debug("Prompt generator not configured, using fallback")
		return o.fallback.Pick()
	}

	o.rollWindow(now)
	if o.calls >= o.budget {
		logrus.Infof("Prompt generator budget exhausted (%d/%d this minute), using fallback", o.calls, o.budget)
		return o.fallback.Pick()
	}

	o.calls++

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	text, err := o.gen.Generate(ctx, buildContext(snap, now))
	if err != nil {
		telemetry.GeneratorCalls.WithLabelValues("error").Inc()
		logrus.Errorf("Prompt generation failed: %v", err)
		return o.fallback.Pick()
	}

	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxResponseLength {
		telemetry.GeneratorCalls.WithLabelValues("invalid").Inc()
		logrus.Errorf("Prompt generator returned invalid response (%d chars), using fallback", utf8.RuneCountInString(text))
		return o.fallback.Pick()
	}

	telemetry.GeneratorCalls.WithLabelValues("success").Inc()

	return models.Prompt{
		Type:     "ai_generated",
		Priority: determinePriority(snap),
		Message:  text,
		Trigger:  "ai_analysis",
		Action:   "ai_suggestion",
		Source:   "gemini",
		Context: &models.PromptContext{
			EngagementLevel: engagementBand(snap),
			Sentiment:       sentimentBand(snap.RollingSentimentScore),
			Growth:          growthBand(snap),
			StreamPhase:     snap.StreamPhase,
		},
	}
}

// Health reports the budget state for the health endpoint. It may wait for an
// in-flight generator call to finish.
func (o *Orchestrator) Health(now time.Time) models.GeneratorHealth {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.rollWindow(now)
	return models.GeneratorHealth{
		Available:       o.gen != nil,
		CallsThisMinute: o.calls,
		Budget:          o.budget,
	}
}

// rollWindow resets the call counter at each minute boundary.
func (o *Orchestrator) rollWindow(now time.Time) {
	if o.windowStart.IsZero() || now.Sub(o.windowStart) >= time.Minute {
		o.windowStart = now
		o.calls = 0
	}
}

func cooldownFor(trigger string) time.Duration {
	if d, ok := triggerCooldowns[trigger]; ok {
		return d
	}
	return defaultTriggerCooldown
}

// determinePriority classifies how urgently the broadcaster needs a nudge.
func determinePriority(snap models.Snapshot) string {
	sentiment := snap.RollingSentimentScore
	engagement := snap.CommentsPerMinute
	viewers := snap.CurrentViewerCount

	if sentiment < -0.3 || engagement < 2 || viewers < 100 {
		return "high"
	}
	if sentiment < 0 || engagement < 5 || viewers < 500 {
		return "medium"
	}
	return "low"
}

func engagementBand(snap models.Snapshot) string {
	comments := snap.CommentsPerMinute
	likes := snap.LikesPerMinute

	switch {
	case comments > 20 && likes > 50:
		return "EXPLOSIVE - Very high engagement!"
	case comments > 10 && likes > 25:
		return "HIGH - Good engagement"
	case comments > 5 && likes > 10:
		return "MODERATE - Decent engagement"
	case comments > 2 && likes > 5:
		return "LOW - Needs attention"
	default:
		return "QUIET - Very low engagement, needs activation"
	}
}

func sentimentBand(sentiment float64) string {
	switch {
	case sentiment > 0.3:
		return "POSITIVE - Happy audience"
	case sentiment > -0.1:
		return "NEUTRAL - Mixed feelings"
	default:
		return "NEGATIVE - Audience seems down"
	}
}

func growthBand(snap models.Snapshot) string {
	switch {
	case snap.FollowersPerMinute > 3:
		return "BOOMING - Gaining followers fast!"
	case snap.SessionFollowersGained > 10:
		return "GROWING - Steady follower growth"
	case snap.SessionFollowersGained > 0:
		return "POSITIVE - Some follower gains"
	default:
		return "STABLE - No recent follower changes"
	}
}

// buildContext renders the metrics snapshot into the generator's input: the
// stream situation, current rates, and the most recent notable events.
func buildContext(snap models.Snapshot, now time.Time) string {
	duration := int(now.Sub(snap.StreamStartTime) / time.Minute)

	var events []string
	if len(snap.RecentComments) > 0 {
		c := snap.RecentComments[0]
		events = append(events, fmt.Sprintf("- Latest comment from %s: %q", c.Nickname, truncate(c.Comment, 50)))
	}
	if len(snap.RecentGifts) > 0 {
		g := snap.RecentGifts[0]
		events = append(events, fmt.Sprintf("- Recent gift from %s: %s (%d diamonds)", g.Nickname, g.GiftName, g.Diamonds))
	}
	if len(snap.NewFollowers) > 0 {
		events = append(events, fmt.Sprintf("- New follower: %s", snap.NewFollowers[0].Nickname))
	}
	if n := len(snap.PendingQuestions); n > 0 {
		events = append(events, fmt.Sprintf("- %d unanswered question(s) waiting", n))
	}
	if len(events) == 0 {
		events = append(events, "- No recent notable events")
	}

	return strings.TrimSpace(fmt.Sprintf(`
You are an enthusiastic and friendly stream co-host. Your task is to generate a short, actionable prompt for the streamer to say out loud.

STREAM CONTEXT:
- Stream Duration: %d minutes (%s phase)
- Current Viewers: %d
- Engagement Level: %s
- Sentiment: %s
- Growth: %s

REAL-TIME METRICS:
- Comments per minute: %d
- Likes per minute: %d
- Gifts per minute: %d
- Shares per minute: %d
- Followers gained this session: %d

RECENT ACTIVITY:
%s

TASK: Generate a short, energetic prompt (max 2 sentences) that the streamer can say to:
1. Address the current engagement situation
2. Encourage viewer interaction
3. Feel natural and conversational
4. Match the stream's current energy level

FORMAT: Just the prompt text, no explanations or formatting.
`,
		duration, snap.StreamPhase, snap.CurrentViewerCount,
		engagementBand(snap), sentimentBand(snap.RollingSentimentScore), growthBand(snap),
		snap.CommentsPerMinute, snap.LikesPerMinute, snap.GiftsPerMinute,
		snap.SharesPerMinute, snap.SessionFollowersGained,
		strings.Join(events, "\n")))
}

// truncate shortens s to at most n runes, never splitting a multibyte
// character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
