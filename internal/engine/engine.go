// Package engine orchestrates the adaptive learning signal flow: quiz
// grading, performance tracking, reward computation, and trajectory
// recording for one submission.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/tutord/internal/performance"
	"github.com/fyrsmithlabs/tutord/internal/quiz"
	"github.com/fyrsmithlabs/tutord/internal/reward"
	"github.com/fyrsmithlabs/tutord/internal/trajectory"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("tutord.engine")

// ErrInvalidSubmission indicates a submission missing required fields.
var ErrInvalidSubmission = errors.New("invalid quiz submission")

// AttemptStore persists graded quiz attempts and serves the previous
// score for the improvement signal.
type AttemptStore interface {
	RecordQuizAttempt(ctx context.Context, sessionID, topic string, score float64, correctCount, totalQuestions int) error
	PreviousQuizScore(ctx context.Context, sessionID, topic string) (score float64, found bool, err error)
}

// Submission is one graded quiz interaction.
type Submission struct {
	SessionID   string
	Topic       string
	Questions   []quiz.Question
	Answers     map[string]string
	HintsUsed   int
	TimeSeconds int
}

// Result is the full outcome of processing a submission.
type Result struct {
	Grading      quiz.GradingResult
	Performance  performance.Record
	Reward       reward.Breakdown
	TrajectoryID string
}

// Engine wires the signal components together.
type Engine struct {
	tracker      *performance.Tracker
	computer     *reward.Computer
	attempts     AttemptStore
	trajectories *trajectory.Service
	logger       *zap.Logger
}

// New creates an engine. All dependencies are required except the
// logger, which defaults to a no-op.
func New(tracker *performance.Tracker, computer *reward.Computer, attempts AttemptStore, trajectories *trajectory.Service, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tracker:      tracker,
		computer:     computer,
		attempts:     attempts,
		trajectories: trajectories,
		logger:       logger,
	}
}

// SubmitQuiz grades a submission and propagates the outcome through
// performance tracking, reward computation, and trajectory recording.
//
// The previous quiz score is read before the new attempt is persisted,
// so the improvement signal always compares against the prior attempt.
func (e *Engine) SubmitQuiz(ctx context.Context, sub Submission) (Result, error) {
	ctx, span := tracer.Start(ctx, "Engine.SubmitQuiz")
	defer span.End()

	if sub.SessionID == "" || sub.Topic == "" {
		return Result{}, fmt.Errorf("%w: session id and topic are required", ErrInvalidSubmission)
	}

	span.SetAttributes(
		attribute.String("session_id", sub.SessionID),
		attribute.String("topic", sub.Topic),
		attribute.Int("question_count", len(sub.Questions)),
	)

	grading := quiz.Grade(sub.Questions, sub.Answers)

	previousScore, hasPrevious, err := e.attempts.PreviousQuizScore(ctx, sub.SessionID, sub.Topic)
	if err != nil {
		return Result{}, fmt.Errorf("loading previous quiz score: %w", err)
	}

	record, err := e.tracker.Upsert(ctx, sub.SessionID, sub.Topic, performance.Update{
		QuizScore:          grading.Score,
		QuestionsAttempted: grading.TotalQuestions,
		QuestionsCorrect:   grading.CorrectCount,
		HintsUsed:          sub.HintsUsed,
		TimeSeconds:        sub.TimeSeconds,
	})
	if err != nil {
		return Result{}, err
	}

	rewardInput := reward.Input{
		CurrentScore: reward.Float64(grading.Score),
		Performance:  &record,
	}
	if hasPrevious {
		rewardInput.PreviousScore = reward.Float64(previousScore)
	}
	breakdown, err := e.computer.Compute(rewardInput)
	if err != nil {
		return Result{}, fmt.Errorf("computing reward: %w", err)
	}

	if err := e.attempts.RecordQuizAttempt(ctx, sub.SessionID, sub.Topic, grading.Score, grading.CorrectCount, grading.TotalQuestions); err != nil {
		return Result{}, fmt.Errorf("recording quiz attempt: %w", err)
	}

	traj, err := e.trajectories.Record(ctx, sub.SessionID,
		trajectory.State{
			Topic:         sub.Topic,
			AverageScore:  record.AverageScore,
			ScoreTrend:    record.ScoreTrend,
			AttemptsSoFar: record.QuestionsAttempted,
		},
		trajectory.Action{Kind: trajectory.ActionQuizOffer, Topic: sub.Topic},
		0, 0,
	)
	if err != nil {
		return Result{}, err
	}
	if err := e.trajectories.SetReward(ctx, traj.ID, breakdown); err != nil {
		return Result{}, err
	}

	e.logger.Info("quiz submission processed",
		zap.String("session_id", sub.SessionID),
		zap.String("topic", sub.Topic),
		zap.Float64("score", grading.Score),
		zap.Float64("average_score", record.AverageScore),
		zap.Float64("reward", breakdown.Reward),
	)

	return Result{
		Grading:      grading,
		Performance:  record,
		Reward:       breakdown,
		TrajectoryID: traj.ID,
	}, nil
}
