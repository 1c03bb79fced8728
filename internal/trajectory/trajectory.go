// Package trajectory records tutoring decisions paired with the rewards
// they earned, for offline policy analysis and training export.
package trajectory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/tutord/internal/reward"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel errors for trajectory recording.
var (
	// ErrNotFound is returned when a trajectory does not exist.
	ErrNotFound = errors.New("trajectory not found")

	// ErrInvalidTrajectory indicates a record missing required fields.
	ErrInvalidTrajectory = errors.New("invalid trajectory")
)

// Action kinds the tutor can take.
const (
	ActionChatResponse = "chat_response"
	ActionQuizOffer    = "quiz_offer"
	ActionHint         = "hint"
	ActionExplanation  = "explanation"
)

// State captures the learner context at decision time. Fields are
// validated at the boundary rather than carried as free-form maps, so
// malformed upstream output fails early.
type State struct {
	Topic         string  `json:"topic"`
	AverageScore  float64 `json:"average_score"`
	ScoreTrend    float64 `json:"score_trend"`
	AttemptsSoFar int     `json:"attempts_so_far"`
	LastUserInput string  `json:"last_user_input,omitempty"`
}

// Action captures the tutoring decision taken from a State.
type Action struct {
	Kind    string `json:"kind"` // one of the Action* constants
	Topic   string `json:"topic,omitempty"`
	Content string `json:"content,omitempty"`
}

// Validate checks the action kind.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionChatResponse, ActionQuizOffer, ActionHint, ActionExplanation:
		return nil
	default:
		return fmt.Errorf("%w: unknown action kind %q", ErrInvalidTrajectory, a.Kind)
	}
}

// Trajectory pairs one decision with its eventual reward. Records are
// append-only; only the reward fields are updated after creation, once
// the delayed grading outcome arrives.
type Trajectory struct {
	ID              string           `json:"id"`
	SessionID       string           `json:"session_id"`
	State           State            `json:"state"`
	Action          Action           `json:"action"`
	Reward          float64          `json:"reward"`
	RewardBreakdown *reward.Breakdown `json:"reward_breakdown,omitempty"`
	TokensIn        int              `json:"tokens_in"`
	TokensOut       int              `json:"tokens_out"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Store persists trajectories. Append-only except for SetReward.
type Store interface {
	// InsertTrajectory appends a new record.
	InsertTrajectory(ctx context.Context, t Trajectory) error

	// UpdateTrajectoryReward sets the reward fields of an existing
	// record, or returns ErrNotFound.
	UpdateTrajectoryReward(ctx context.Context, id string, rewardValue float64, breakdown reward.Breakdown) error

	// ListSessionTrajectories returns a session's records, oldest first.
	ListSessionTrajectories(ctx context.Context, sessionID string) ([]Trajectory, error)

	// ListTrajectoriesForExport returns records with reward >= minReward,
	// newest first, capped at limit.
	ListTrajectoriesForExport(ctx context.Context, minReward float64, limit int) ([]Trajectory, error)
}

// Service records and exports trajectories.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a trajectory service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Record appends a new trajectory and returns it with its assigned ID.
// The reward is typically unknown at decision time and set later via
// SetReward once the outcome is graded.
func (s *Service) Record(ctx context.Context, sessionID string, state State, action Action, tokensIn, tokensOut int) (Trajectory, error) {
	if sessionID == "" {
		return Trajectory{}, fmt.Errorf("%w: session id is required", ErrInvalidTrajectory)
	}
	if err := action.Validate(); err != nil {
		return Trajectory{}, err
	}

	t := Trajectory{
		ID:        s.newID(),
		SessionID: sessionID,
		State:     state,
		Action:    action,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertTrajectory(ctx, t); err != nil {
		return Trajectory{}, fmt.Errorf("recording trajectory: %w", err)
	}

	s.logger.Debug("trajectory recorded",
		zap.String("id", t.ID),
		zap.String("session_id", sessionID),
		zap.String("action", action.Kind),
	)
	return t, nil
}

// SetReward attaches a computed reward to a previously recorded trajectory.
func (s *Service) SetReward(ctx context.Context, id string, breakdown reward.Breakdown) error {
	if id == "" {
		return fmt.Errorf("%w: trajectory id is required", ErrInvalidTrajectory)
	}
	if err := s.store.UpdateTrajectoryReward(ctx, id, breakdown.Reward, breakdown); err != nil {
		return fmt.Errorf("setting trajectory reward: %w", err)
	}
	return nil
}

// ListSession returns a session's trajectories in recording order.
func (s *Service) ListSession(ctx context.Context, sessionID string) ([]Trajectory, error) {
	return s.store.ListSessionTrajectories(ctx, sessionID)
}

// ExportForTraining returns high-reward trajectories for offline
// training, newest first. limit <= 0 applies a default cap of 100.
func (s *Service) ExportForTraining(ctx context.Context, minReward float64, limit int) ([]Trajectory, error) {
	if limit <= 0 {
		limit = 100
	}
	trajectories, err := s.store.ListTrajectoriesForExport(ctx, minReward, limit)
	if err != nil {
		return nil, fmt.Errorf("exporting trajectories: %w", err)
	}
	return trajectories, nil
}
