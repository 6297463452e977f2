package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/analytics"
	"github.com/streampulse/streampulse-bot/internal/config"
	"github.com/streampulse/streampulse-bot/internal/prompts"
	"github.com/streampulse/streampulse-bot/internal/sentiment"
	"github.com/streampulse/streampulse-bot/internal/telemetry"
)

// Registry holds every live session, keyed by uuid. Sessions share nothing:
// each gets its own analytics state and its own orchestrator, so one
// session's generator budget or reset never affects another.
type Registry struct {
	cfg    *config.Config
	scorer sentiment.Scorer
	gen    prompts.Generator

	mu       sync.RWMutex
	sessions map[string]*Handler
}

// NewRegistry returns an empty registry. gen may be nil when no generator is
// configured.
func NewRegistry(cfg *config.Config, scorer sentiment.Scorer, gen prompts.Generator) *Registry {
	return &Registry{
		cfg:      cfg,
		scorer:   scorer,
		gen:      gen,
		sessions: make(map[string]*Handler),
	}
}

// Create builds a new session bound to broadcaster and returns its handler.
func (r *Registry) Create(broadcaster Broadcaster) *Handler {
	id := uuid.NewString()
	now := time.Now()

	metrics := analytics.NewSession(r.scorer, analytics.SessionOptions{
		RejoinSuppression:   r.cfg.RejoinSuppression,
		InactivityThreshold: r.cfg.InactivityThreshold,
		TopKeywords:         r.cfg.TopKeywords,
	}, now)

	orchestrator := prompts.NewOrchestrator(
		r.gen,
		prompts.NewFallbackLibrary(nil),
		r.cfg.GeminiMaxCallsPerMin,
		r.cfg.GeminiTimeout,
	)

	h := NewHandler(id, metrics, orchestrator, broadcaster)

	r.mu.Lock()
	r.sessions[id] = h
	r.mu.Unlock()

	telemetry.ActiveSessions.Inc()
	logrus.Infof("Session created: %s", id)
	return h
}

// Get returns the handler for id.
func (r *Registry) Get(id string) (*Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[id]
	return h, ok
}

// Destroy removes a session and releases its state. Returns false when the
// id is unknown.
func (r *Registry) Destroy(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		telemetry.ActiveSessions.Dec()
		logrus.Infof("Session destroyed: %s", id)
	}
	return ok
}

// All returns the current handlers. The slice is a snapshot; sessions created
// or destroyed afterwards are not reflected.
func (r *Registry) All() []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make([]*Handler, 0, len(r.sessions))
	for _, h := range r.sessions {
		handlers = append(handlers, h)
	}
	return handlers
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
