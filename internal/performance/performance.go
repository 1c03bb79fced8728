// Package performance tracks per-session, per-topic learning statistics.
//
// Each graded quiz feeds an upsert that accumulates counters and updates
// an exponential moving average of quiz scores. The smoothing factor is
// fixed at 0.3 so recent performance dominates: a tutor adapting to a
// student should reflect recent trends faster than a plain mean would.
package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors for performance tracking.
var (
	// ErrNotFound is returned when no record exists for a key.
	ErrNotFound = errors.New("performance record not found")

	// ErrInvalidInput indicates a contract violation by the caller.
	ErrInvalidInput = errors.New("invalid performance input")
)

// emaAlpha is the EMA smoothing factor for average_score.
const emaAlpha = 0.3

// Record is the aggregate state for one (session, topic) pair.
type Record struct {
	SessionID          string    `json:"session_id"`
	Topic              string    `json:"topic"`
	QuestionsAttempted int       `json:"questions_attempted"`
	QuestionsCorrect   int       `json:"questions_correct"`
	AverageScore       float64   `json:"average_score"` // EMA, in [0,1]
	ScoreTrend         float64   `json:"score_trend"`   // signed, positive = improving
	HintsRequested     int       `json:"hints_requested"`
	TimeOnTopicSeconds int       `json:"time_on_topic_seconds"`
	FirstAttemptAt     time.Time `json:"first_attempt_at"`
	LastAttemptAt      time.Time `json:"last_attempt_at"`
}

// Update is the per-quiz delta applied by Upsert.
type Update struct {
	QuizScore          float64
	QuestionsAttempted int
	QuestionsCorrect   int
	HintsUsed          int
	TimeSeconds        int
}

// Validate fail-fasts on contract violations. Out-of-range values here
// indicate a caller bug, not degraded data, so they are rejected rather
// than clamped.
func (u Update) Validate() error {
	if u.QuizScore < 0 || u.QuizScore > 1 {
		return fmt.Errorf("%w: quiz score %v outside [0,1]", ErrInvalidInput, u.QuizScore)
	}
	if u.QuestionsAttempted < 0 || u.QuestionsCorrect < 0 || u.HintsUsed < 0 || u.TimeSeconds < 0 {
		return fmt.Errorf("%w: negative counter", ErrInvalidInput)
	}
	if u.QuestionsCorrect > u.QuestionsAttempted {
		return fmt.Errorf("%w: correct count %d exceeds attempted %d", ErrInvalidInput, u.QuestionsCorrect, u.QuestionsAttempted)
	}
	return nil
}

// Store persists performance records keyed by (session, topic).
//
// UpdateRecord must serialize concurrent calls for the same key so the
// read-modify-write inside fn cannot lose updates.
type Store interface {
	// GetRecord returns the record for a key, or ErrNotFound.
	GetRecord(ctx context.Context, sessionID, topic string) (Record, error)

	// ListSession returns all records for a session.
	ListSession(ctx context.Context, sessionID string) ([]Record, error)

	// UpdateRecord applies fn atomically for the key. fn receives the
	// existing record (found=false on first attempt) and returns the
	// record to persist.
	UpdateRecord(ctx context.Context, sessionID, topic string, fn func(existing Record, found bool) Record) (Record, error)
}

// Tracker applies grading outcomes to performance records.
type Tracker struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewTracker creates a tracker over the given store.
func NewTracker(store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger, now: time.Now}
}

// Upsert applies one graded quiz to the (sessionID, topic) record.
//
// First attempt creates the record with average_score = quiz score and
// trend 0. Later attempts accumulate counters, fold the score into the
// EMA, and recompute trend as quiz score minus the prior average, but
// only once the record has questions actually attempted before this
// update.
func (t *Tracker) Upsert(ctx context.Context, sessionID, topic string, update Update) (Record, error) {
	if sessionID == "" || topic == "" {
		return Record{}, fmt.Errorf("%w: session id and topic are required", ErrInvalidInput)
	}
	if err := update.Validate(); err != nil {
		return Record{}, err
	}

	now := t.now()
	record, err := t.store.UpdateRecord(ctx, sessionID, topic, func(existing Record, found bool) Record {
		if !found {
			return Record{
				SessionID:          sessionID,
				Topic:              topic,
				QuestionsAttempted: update.QuestionsAttempted,
				QuestionsCorrect:   update.QuestionsCorrect,
				AverageScore:       update.QuizScore,
				ScoreTrend:         0,
				HintsRequested:     update.HintsUsed,
				TimeOnTopicSeconds: update.TimeSeconds,
				FirstAttemptAt:     now,
				LastAttemptAt:      now,
			}
		}

		// Trend needs a real prior baseline: a pre-existing record with
		// zero attempted questions (an empty quiz) provides none.
		oldAttempted := existing.QuestionsAttempted

		existing.QuestionsAttempted += update.QuestionsAttempted
		existing.QuestionsCorrect += update.QuestionsCorrect
		existing.HintsRequested += update.HintsUsed
		existing.TimeOnTopicSeconds += update.TimeSeconds
		if oldAttempted > 0 {
			existing.ScoreTrend = update.QuizScore - existing.AverageScore
		}
		existing.AverageScore = emaAlpha*update.QuizScore + (1-emaAlpha)*existing.AverageScore
		existing.LastAttemptAt = now
		return existing
	})
	if err != nil {
		return Record{}, fmt.Errorf("upserting performance record: %w", err)
	}

	UpsertsTotal.Inc()
	t.logger.Debug("performance record updated",
		zap.String("session_id", sessionID),
		zap.String("topic", topic),
		zap.Float64("average_score", record.AverageScore),
		zap.Float64("score_trend", record.ScoreTrend),
	)
	return record, nil
}

// Get returns the record for a key, or ErrNotFound.
func (t *Tracker) Get(ctx context.Context, sessionID, topic string) (Record, error) {
	return t.store.GetRecord(ctx, sessionID, topic)
}

// ListSession returns all topic records for a session.
func (t *Tracker) ListSession(ctx context.Context, sessionID string) ([]Record, error) {
	return t.store.ListSession(ctx, sessionID)
}
