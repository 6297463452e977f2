// Package session ties one broadcast's analytics state, prompt orchestration,
// and outbound events together behind a single lock.
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/analytics"
	"github.com/streampulse/streampulse-bot/internal/models"
	"github.com/streampulse/streampulse-bot/internal/prompts"
	"github.com/streampulse/streampulse-bot/internal/telemetry"
)

// Outbound event names. viewerUpdate carries viewer lifecycle changes
// (action join, leave, or count); viewerActivity carries engagement actions
// such as gifts.
const (
	EventMetricsSnapshot  = "metricsSnapshot"
	EventViewerUpdate     = "viewerUpdate"
	EventViewerActivity   = "viewerActivity"
	EventNewFollower      = "newFollower"
	EventPromptIssued     = "promptIssued"
	EventQuestionDetected = "questionDetected"
)

// Broadcaster delivers named events to whoever is watching this session.
// Delivery is fire-and-forget: the handler never blocks on or observes the
// outcome.
type Broadcaster interface {
	Emit(event string, payload any)
}

// nopBroadcaster drops every event. Used when a session has no dashboard.
type nopBroadcaster struct{}

func (nopBroadcaster) Emit(string, any) {}

// Handler owns one session: every inbound event and every periodic tick for
// the session goes through its mutex, so the analytics state never sees
// concurrent access. The mutex is never held across an external call; the
// orchestrator synchronizes itself, so a slow generator cannot stall
// ingestion. Event payloads are copied out before the lock is released.
type Handler struct {
	id string

	mu           sync.Mutex
	metrics      *analytics.Session
	orchestrator *prompts.Orchestrator
	broadcaster  Broadcaster
}

// NewHandler wires a handler around freshly created session state.
func NewHandler(id string, metrics *analytics.Session, orchestrator *prompts.Orchestrator, broadcaster Broadcaster) *Handler {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &Handler{
		id:           id,
		metrics:      metrics,
		orchestrator: orchestrator,
		broadcaster:  broadcaster,
	}
}

// ID returns the session id.
func (h *Handler) ID() string {
	return h.id
}

// OnJoin handles a viewer join event. The first sighting of a viewer emits a
// single viewerUpdate with action "join"; replays and rejoins emit nothing.
func (h *Handler) OnJoin(userID, nickname, profilePic string) {
	h.mu.Lock()
	now := time.Now()
	telemetry.EventsIngested.WithLabelValues("join").Inc()

	result, viewer := h.metrics.RecordJoin(userID, nickname, profilePic, now)

	var joined map[string]any
	if result == analytics.JoinNew && !viewer.Welcomed {
		viewer.Welcomed = true
		joined = map[string]any{
			"action":         "join",
			"user_id":        viewer.UserID,
			"nickname":       viewer.Nickname,
			"unique_viewers": h.metrics.Viewers().UniqueViewers(),
		}
	}
	h.mu.Unlock()

	if joined != nil {
		h.broadcaster.Emit(EventViewerUpdate, joined)
	}
}

// OnComment handles a chat comment.
func (h *Handler) OnComment(userID, nickname, text string) {
	h.mu.Lock()
	now := time.Now()
	telemetry.EventsIngested.WithLabelValues("comment").Inc()
	_, question := h.metrics.RecordComment(userID, nickname, text, now)
	h.mu.Unlock()

	if question != nil {
		logrus.Infof("Question detected from %s (priority %d): %s", nickname, question.Priority, question.Question)
		h.broadcaster.Emit(EventQuestionDetected, question)
	}
}

// OnLike handles a like event. reportedTotal may be 0 when the upstream does
// not supply a running total.
func (h *Handler) OnLike(userID string, count, reportedTotal int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	telemetry.EventsIngested.WithLabelValues("like").Inc()
	h.metrics.RecordLike(userID, count, reportedTotal, time.Now())
}

// OnGift handles a gift event.
func (h *Handler) OnGift(userID, nickname, giftName string, diamonds, repeat int) {
	h.mu.Lock()
	now := time.Now()
	telemetry.EventsIngested.WithLabelValues("gift").Inc()
	record := *h.metrics.RecordGift(userID, nickname, giftName, diamonds, repeat, now)
	h.mu.Unlock()

	logrus.Infof("Gift from %s: %s (%d diamonds)", nickname, giftName, record.Diamonds)
	h.broadcaster.Emit(EventViewerActivity, map[string]any{
		"action":   "gift",
		"user_id":  userID,
		"nickname": nickname,
		"gift":     record,
	})
}

// OnFollow handles a follow event. Duplicate follows within a session are
// absorbed silently.
func (h *Handler) OnFollow(userID, nickname, profilePic string) {
	h.mu.Lock()
	now := time.Now()
	telemetry.EventsIngested.WithLabelValues("follow").Inc()
	added := h.metrics.RecordFollow(userID, nickname, profilePic, now)
	h.mu.Unlock()

	if !added {
		return
	}

	logrus.Infof("New follower: %s (%s)", nickname, userID)
	h.broadcaster.Emit(EventNewFollower, models.FollowerEntry{
		UserID:     userID,
		Nickname:   nickname,
		ProfilePic: profilePic,
		Timestamp:  now,
	})
}

// OnShare handles a share event.
func (h *Handler) OnShare(userID string, reportedTotal int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	telemetry.EventsIngested.WithLabelValues("share").Inc()
	h.metrics.RecordShare(userID, reportedTotal, time.Now())
}

// OnViewerCount handles a live viewer-count update.
func (h *Handler) OnViewerCount(count int) {
	h.mu.Lock()
	telemetry.EventsIngested.WithLabelValues("viewer_count").Inc()
	h.metrics.RecordViewerCount(count, time.Now())
	payload := map[string]any{
		"action":               "count",
		"current_viewer_count": h.metrics.CurrentViewerCount(),
		"unique_viewers":       h.metrics.Viewers().UniqueViewers(),
	}
	h.mu.Unlock()

	h.broadcaster.Emit(EventViewerUpdate, payload)
}

// MarkQuestionAnswered resolves a pending question by id.
func (h *Handler) MarkQuestionAnswered(id string) *models.Question {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.metrics.MarkQuestionAnswered(id, time.Now())
}

// Snapshot assembles the current metrics payload.
func (h *Handler) Snapshot() models.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.metrics.Snapshot(h.id, time.Now())
}

// SnapshotTick computes and broadcasts the dashboard snapshot.
func (h *Handler) SnapshotTick() {
	h.mu.Lock()
	snap := h.metrics.Snapshot(h.id, time.Now())
	h.mu.Unlock()

	h.broadcaster.Emit(EventMetricsSnapshot, snap)
}

// SweepTick refreshes watch times and deactivates silent viewers, announcing
// each departure once. Departure payloads are copied before the lock is
// released, so later mutations of the records cannot race the broadcast.
func (h *Handler) SweepTick() {
	h.mu.Lock()
	now := time.Now()
	h.metrics.Viewers().RecomputeWatchTimes(now)

	var left []map[string]any
	for _, v := range h.metrics.SweepInactive(now) {
		left = append(left, map[string]any{
			"action":     "leave",
			"user_id":    v.UserID,
			"nickname":   v.Nickname,
			"watch_time": v.WatchTime,
		})
	}
	h.mu.Unlock()

	for _, payload := range left {
		h.broadcaster.Emit(EventViewerUpdate, payload)
	}
}

// PromptTick runs one orchestration round and broadcasts any issued prompt.
// The snapshot is taken under the session lock, then released before the
// orchestrator runs, so an in-flight generator call never blocks ingestion.
func (h *Handler) PromptTick() {
	h.mu.Lock()
	now := time.Now()
	snap := h.metrics.Snapshot(h.id, now)
	h.mu.Unlock()

	prompt := h.orchestrator.Tick(snap, now)
	if prompt == nil {
		return
	}

	telemetry.PromptsIssued.WithLabelValues(prompt.Source).Inc()
	logrus.Infof("Prompt issued (source=%s priority=%s trigger=%s)", prompt.Source, prompt.Priority, prompt.Trigger)
	h.broadcaster.Emit(EventPromptIssued, prompt)
}

// CleanupTick collapses duplicate follower feed entries.
func (h *Handler) CleanupTick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.metrics.CleanupFollowers()
}

// PromptHealth reports the orchestrator's budget state. The orchestrator
// synchronizes itself, so the session lock is not needed.
func (h *Handler) PromptHealth() models.GeneratorHealth {
	return h.orchestrator.Health(time.Now())
}

// Viewers returns copies of the active viewer records, detached from the
// live session state so callers can read or encode them without holding the
// session lock.
func (h *Handler) Viewers() []models.ViewerRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.metrics.Viewers().RecomputeWatchTimes(time.Now())
	active := h.metrics.Viewers().Active()

	out := make([]models.ViewerRecord, len(active))
	for i, v := range active {
		out[i] = *v
	}
	return out
}

// Reset drops all session state and starts a new session on the same
// connection.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logrus.Infof("Resetting session %s", h.id)
	h.metrics.Reset(time.Now())
}
