// Package reward turns quiz outcomes and performance state into a
// bounded multi-signal learning reward.
//
// Compute is a pure function of its inputs: it never reads or writes
// persisted state, so it can be tested with synthetic performance
// records and reused for offline trajectory re-scoring.
package reward

import (
	"errors"
	"fmt"
	"math"

	"github.com/fyrsmithlabs/tutord/internal/config"
	"github.com/fyrsmithlabs/tutord/internal/performance"
)

// ErrInvalidInput indicates a contract violation by the caller.
var ErrInvalidInput = errors.New("invalid reward input")

// Breakdown holds the four component signals and the weighted total.
type Breakdown struct {
	QuizImprovement float64 `json:"quiz_improvement"` // in [-1,1]
	QuizAbsolute    float64 `json:"quiz_absolute"`    // in [-0.5,1]
	Engagement      float64 `json:"engagement"`       // in [-0.3,0.3]
	Efficiency      float64 `json:"efficiency"`       // in [-0.3,1]
	Reward          float64 `json:"reward"`           // weighted sum, clamped to [-1,1]
}

// Weights are the fixed signal weights. They should sum to 1 so the
// pre-clamp total stays in a sensible range; Validate on the config
// enforces this.
type Weights struct {
	QuizImprovement float64
	QuizAbsolute    float64
	Engagement      float64
	Efficiency      float64
}

// WeightsFromConfig maps the configured reward weights.
func WeightsFromConfig(cfg config.RewardConfig) Weights {
	return Weights{
		QuizImprovement: cfg.QuizImprovementWeight,
		QuizAbsolute:    cfg.QuizAbsoluteWeight,
		Engagement:      cfg.EngagementWeight,
		Efficiency:      cfg.EfficiencyWeight,
	}
}

// DefaultWeights returns the standard weight table.
func DefaultWeights() Weights {
	return Weights{
		QuizImprovement: 0.4,
		QuizAbsolute:    0.3,
		Engagement:      0.2,
		Efficiency:      0.1,
	}
}

// Computer computes reward breakdowns with a fixed weight table.
type Computer struct {
	weights Weights
}

// NewComputer creates a reward computer with the given weights.
func NewComputer(weights Weights) *Computer {
	return &Computer{weights: weights}
}

// Input carries the signals available at reward time. Nil pointers mark
// genuinely absent inputs (no quiz graded, first ever attempt, no
// performance history); each absent input degrades its signal to 0
// rather than failing.
type Input struct {
	CurrentScore  *float64
	PreviousScore *float64
	Performance   *performance.Record
}

// Compute produces the reward breakdown for one graded interaction.
//
// Scores outside [0,1] and negative counters are caller bugs and are
// rejected, distinct from the deliberate per-signal clamping below.
func (c *Computer) Compute(in Input) (Breakdown, error) {
	if err := validateInput(in); err != nil {
		return Breakdown{}, err
	}

	var b Breakdown

	if in.CurrentScore != nil && in.PreviousScore != nil {
		b.QuizImprovement = clamp(-1, 1, (*in.CurrentScore-*in.PreviousScore)*2)
	}

	if in.CurrentScore != nil {
		b.QuizAbsolute = *in.CurrentScore*1.5 - 0.5
	}

	if p := in.Performance; p != nil {
		timeBonus := math.Min(0.3, float64(p.TimeOnTopicSeconds)/600)
		hintsPenalty := math.Min(0.3, float64(p.HintsRequested)*0.05)
		b.Engagement = timeBonus - hintsPenalty

		if p.QuestionsAttempted > 0 {
			accuracy := float64(p.QuestionsCorrect) / float64(p.QuestionsAttempted)
			b.Efficiency = accuracy*0.7 + clamp(-0.3, 0.3, p.ScoreTrend)
		}
	}

	total := c.weights.QuizImprovement*b.QuizImprovement +
		c.weights.QuizAbsolute*b.QuizAbsolute +
		c.weights.Engagement*b.Engagement +
		c.weights.Efficiency*b.Efficiency
	b.Reward = clamp(-1, 1, total)

	return b, nil
}

func validateInput(in Input) error {
	if in.CurrentScore != nil && (*in.CurrentScore < 0 || *in.CurrentScore > 1) {
		return fmt.Errorf("%w: current score %v outside [0,1]", ErrInvalidInput, *in.CurrentScore)
	}
	if in.PreviousScore != nil && (*in.PreviousScore < 0 || *in.PreviousScore > 1) {
		return fmt.Errorf("%w: previous score %v outside [0,1]", ErrInvalidInput, *in.PreviousScore)
	}
	if p := in.Performance; p != nil {
		if p.QuestionsAttempted < 0 || p.QuestionsCorrect < 0 || p.HintsRequested < 0 || p.TimeOnTopicSeconds < 0 {
			return fmt.Errorf("%w: negative performance counter", ErrInvalidInput)
		}
		if p.QuestionsCorrect > p.QuestionsAttempted {
			return fmt.Errorf("%w: correct count %d exceeds attempted %d", ErrInvalidInput, p.QuestionsCorrect, p.QuestionsAttempted)
		}
	}
	return nil
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Float64 returns a pointer to v, for building Input values.
func Float64(v float64) *float64 { return &v }
