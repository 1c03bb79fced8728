package reward

import (
	"testing"

	"github.com/fyrsmithlabs/tutord/internal/config"
	"github.com/fyrsmithlabs/tutord/internal/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComputer() *Computer {
	return NewComputer(DefaultWeights())
}

func TestComputeAllSignals(t *testing.T) {
	b, err := newComputer().Compute(Input{
		CurrentScore:  Float64(0.6),
		PreviousScore: Float64(0.4),
		Performance: &performance.Record{
			QuestionsAttempted: 5,
			QuestionsCorrect:   3,
			ScoreTrend:         0.2,
			HintsRequested:     0,
			TimeOnTopicSeconds: 300,
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.4, b.QuizImprovement, 1e-9) // (0.6-0.4)*2
	assert.InDelta(t, 0.4, b.QuizAbsolute, 1e-9)    // 0.6*1.5-0.5
	assert.InDelta(t, 0.3, b.Engagement, 1e-9)      // min(0.3, 300/600) - 0
	assert.InDelta(t, 0.62, b.Efficiency, 1e-9)     // (3/5)*0.7 + 0.2

	want := 0.4*0.4 + 0.3*0.4 + 0.2*0.3 + 0.1*0.62
	assert.InDelta(t, want, b.Reward, 1e-9) // 0.402
}

func TestComputeMissingInputsDegradeToZero(t *testing.T) {
	b, err := newComputer().Compute(Input{})
	require.NoError(t, err)
	assert.Equal(t, Breakdown{}, b, "no inputs yields all-zero breakdown, not an error")

	// Current score without a previous score: no improvement signal.
	b, err = newComputer().Compute(Input{CurrentScore: Float64(0.8)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.QuizImprovement)
	assert.InDelta(t, 0.7, b.QuizAbsolute, 1e-9)

	// Performance record with zero attempts: no efficiency signal.
	b, err = newComputer().Compute(Input{
		Performance: &performance.Record{TimeOnTopicSeconds: 600},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.Efficiency)
	assert.InDelta(t, 0.3, b.Engagement, 1e-9)
}

func TestComputeSignalBounds(t *testing.T) {
	// Maximum improvement stays exactly 1, never above.
	b, err := newComputer().Compute(Input{
		CurrentScore:  Float64(1.0),
		PreviousScore: Float64(0.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.QuizImprovement)

	// Maximum regression clamps to -1.
	b, err = newComputer().Compute(Input{
		CurrentScore:  Float64(0.0),
		PreviousScore: Float64(1.0),
	})
	require.NoError(t, err)
	assert.Equal(t, -1.0, b.QuizImprovement)
	assert.Equal(t, -0.5, b.QuizAbsolute)

	// Extreme engagement inputs stay inside [-0.3, 0.3].
	b, err = newComputer().Compute(Input{
		Performance: &performance.Record{TimeOnTopicSeconds: 1 << 30},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.3, b.Engagement)

	b, err = newComputer().Compute(Input{
		Performance: &performance.Record{HintsRequested: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, -0.3, b.Engagement)

	// Efficiency trend contribution clamps at +-0.3.
	b, err = newComputer().Compute(Input{
		Performance: &performance.Record{QuestionsAttempted: 10, QuestionsCorrect: 10, ScoreTrend: 5},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b.Efficiency, 1e-9)
}

func TestComputeTotalRewardBounded(t *testing.T) {
	extremes := []Input{
		{CurrentScore: Float64(1), PreviousScore: Float64(0), Performance: &performance.Record{
			QuestionsAttempted: 10, QuestionsCorrect: 10, ScoreTrend: 10, TimeOnTopicSeconds: 1 << 20}},
		{CurrentScore: Float64(0), PreviousScore: Float64(1), Performance: &performance.Record{
			QuestionsAttempted: 10, QuestionsCorrect: 0, ScoreTrend: -10, HintsRequested: 100}},
	}
	for _, in := range extremes {
		b, err := newComputer().Compute(in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Reward, -1.0)
		assert.LessOrEqual(t, b.Reward, 1.0)
	}
}

func TestComputeDeterministic(t *testing.T) {
	in := Input{
		CurrentScore:  Float64(0.75),
		PreviousScore: Float64(0.5),
		Performance: &performance.Record{
			QuestionsAttempted: 8, QuestionsCorrect: 6, ScoreTrend: 0.25, HintsRequested: 2, TimeOnTopicSeconds: 450,
		},
	}
	first, err := newComputer().Compute(in)
	require.NoError(t, err)
	second, err := newComputer().Compute(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeRejectsContractViolations(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"current score above one", Input{CurrentScore: Float64(1.2)}},
		{"previous score negative", Input{PreviousScore: Float64(-0.1)}},
		{"negative attempts", Input{Performance: &performance.Record{QuestionsAttempted: -1}}},
		{"correct exceeds attempted", Input{Performance: &performance.Record{QuestionsAttempted: 2, QuestionsCorrect: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newComputer().Compute(tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestWeightsFromConfig(t *testing.T) {
	w := WeightsFromConfig(config.RewardConfig{
		QuizImprovementWeight: 0.4,
		QuizAbsoluteWeight:    0.3,
		EngagementWeight:      0.2,
		EfficiencyWeight:      0.1,
	})
	assert.Equal(t, DefaultWeights(), w)
}
