package analytics

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/streampulse/streampulse-bot/internal/models"
)

const (
	pendingQuestionCap  = 20
	answeredQuestionCap = 50
	maxQuestionPriority = 5
)

// Question status values.
const (
	QuestionPending  = "pending"
	QuestionAnswered = "answered"
)

// questionPatterns match direct questions, interrogative leads (including
// common French and Spanish forms), and request phrases.
var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\?\s*$`),
	regexp.MustCompile(`(?i)^(what|how|why|when|where|who|which|can|could|would|will|do|does|did|is|are|was|were|have|has|had)\b`),
	regexp.MustCompile(`(?i)^(are you|do you|can you|would you|will you|have you|did you)\b`),
	regexp.MustCompile(`(?i)^(tell me|explain|describe|show me|help me)\b`),
	regexp.MustCompile(`(?i)^(comment|pourquoi|quand|qui|quel|quelle|peux-tu|peut-on|est-ce|avez-vous)\b`),
	regexp.MustCompile(`(?i)^(cómo|por qué|cuándo|dónde|quién|cuál|puedes|quieres|tienes)\b`),
	regexp.MustCompile(`(?i)^(i wonder|i want to know|i'm curious|i'd like to know|can someone|does anyone)\b`),
}

var (
	urgentWords    = regexp.MustCompile(`(?i)\b(urgent|help|emergency|problem|issue|broken|error|crash)\b`)
	personalWords  = regexp.MustCompile(`(?i)\b(you|your|streamer|stream|content|game|opinion|think|feel)\b`)
	technicalWords = regexp.MustCompile(`(?i)\b(how to|tutorial|guide|explain|teach|learn|setup|config|settings)\b`)
	communityWords = regexp.MustCompile(`(?i)\b(we|us|everyone|chat|community|group|team)\b`)
)

// QuestionLog tracks viewer questions detected in chat: a bounded pending
// queue awaiting the broadcaster's response and a bounded answered history.
type QuestionLog struct {
	pending  []models.Question
	answered []models.Question
}

// NewQuestionLog returns an empty log.
func NewQuestionLog() *QuestionLog {
	return &QuestionLog{}
}

// Detect inspects a cleaned comment and, when it reads as a question, records
// it in the pending queue and returns it. Non-questions return nil.
func (l *QuestionLog) Detect(comment, userID, nickname string, now time.Time) *models.Question {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return nil
	}

	matched := false
	for _, p := range questionPatterns {
		if p.MatchString(trimmed) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	q := models.Question{
		ID:        uuid.NewString(),
		UserID:    userID,
		Nickname:  nickname,
		Question:  trimmed,
		Priority:  questionPriority(trimmed),
		Status:    QuestionPending,
		Timestamp: now,
	}

	l.pending = append(l.pending, q)
	if len(l.pending) > pendingQuestionCap {
		l.pending = l.pending[len(l.pending)-pendingQuestionCap:]
	}

	return &q
}

// questionPriority scores 1-5 from urgency, personal/technical/community
// markers, and repeated question marks.
func questionPriority(question string) int {
	priority := 1

	if urgentWords.MatchString(question) {
		priority += 3
	}
	if personalWords.MatchString(question) {
		priority += 2
	}
	if technicalWords.MatchString(question) {
		priority += 2
	}
	if communityWords.MatchString(question) {
		priority++
	}

	marks := strings.Count(question, "?")
	if marks > 2 {
		marks = 2
	}
	priority += marks

	if priority > maxQuestionPriority {
		priority = maxQuestionPriority
	}
	return priority
}

// MarkAnswered moves a pending question to the answered history, stamping its
// response time. Returns nil when the id is not pending.
func (l *QuestionLog) MarkAnswered(id string, now time.Time) *models.Question {
	for i, q := range l.pending {
		if q.ID != id {
			continue
		}
		q.Status = QuestionAnswered
		q.ResponseTime = now.Sub(q.Timestamp)
		l.pending = append(l.pending[:i], l.pending[i+1:]...)
		l.answered = append(l.answered, q)
		if len(l.answered) > answeredQuestionCap {
			l.answered = l.answered[len(l.answered)-answeredQuestionCap:]
		}
		return &q
	}
	return nil
}

// Pending returns a copy of the pending queue, oldest first.
func (l *QuestionLog) Pending() []models.Question {
	out := make([]models.Question, len(l.pending))
	copy(out, l.pending)
	return out
}

// Stats summarizes question volume and responsiveness.
func (l *QuestionLog) Stats() models.QuestionStats {
	stats := models.QuestionStats{
		TotalQuestions:    len(l.pending) + len(l.answered),
		AnsweredQuestions: len(l.answered),
	}
	if stats.TotalQuestions > 0 {
		stats.ResponseRate = float64(stats.AnsweredQuestions) / float64(stats.TotalQuestions) * 100
	}
	if len(l.answered) > 0 {
		var total time.Duration
		for _, q := range l.answered {
			total += q.ResponseTime
		}
		stats.AverageResponseTime = float64(total.Milliseconds()) / float64(len(l.answered))
	}
	return stats
}

// Reset clears both queues.
func (l *QuestionLog) Reset() {
	l.pending = nil
	l.answered = nil
}
