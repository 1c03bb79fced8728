package performance

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker := NewTracker(NewMemoryStore(), nil)
	tracker.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return tracker
}

func TestUpsertFirstAttempt(t *testing.T) {
	tracker := newTestTracker(t)

	record, err := tracker.Upsert(context.Background(), "s1", "Calculus", Update{
		QuizScore:          0.8,
		QuestionsAttempted: 5,
		QuestionsCorrect:   4,
		HintsUsed:          1,
		TimeSeconds:        120,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.8, record.AverageScore)
	assert.Equal(t, 0.0, record.ScoreTrend, "no prior baseline on first attempt")
	assert.Equal(t, 5, record.QuestionsAttempted)
	assert.Equal(t, 4, record.QuestionsCorrect)
	assert.Equal(t, 1, record.HintsRequested)
	assert.Equal(t, 120, record.TimeOnTopicSeconds)
	assert.Equal(t, record.FirstAttemptAt, record.LastAttemptAt)
}

func TestUpsertAccumulatesAndUpdatesEMA(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.Upsert(ctx, "s1", "Calculus", Update{QuizScore: 0.4, QuestionsAttempted: 5, QuestionsCorrect: 2})
	require.NoError(t, err)

	record, err := tracker.Upsert(ctx, "s1", "Calculus", Update{QuizScore: 0.6, QuestionsAttempted: 5, QuestionsCorrect: 3, TimeSeconds: 300})
	require.NoError(t, err)

	assert.InDelta(t, 0.3*0.6+0.7*0.4, record.AverageScore, 1e-9) // 0.46
	assert.InDelta(t, 0.2, record.ScoreTrend, 1e-9)               // 0.6 - 0.4
	assert.Equal(t, 10, record.QuestionsAttempted)
	assert.Equal(t, 5, record.QuestionsCorrect)
	assert.Equal(t, 300, record.TimeOnTopicSeconds)
}

func TestUpsertEMAConvergence(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.Upsert(ctx, "s1", "Topology", Update{QuizScore: 0.0, QuestionsAttempted: 1})
	require.NoError(t, err)

	// Constant score 1.0 decays the initial error geometrically by 0.7.
	var record Record
	for i := 0; i < 20; i++ {
		record, err = tracker.Upsert(ctx, "s1", "Topology", Update{QuizScore: 1.0, QuestionsAttempted: 1, QuestionsCorrect: 1})
		require.NoError(t, err)
	}
	assert.InDelta(t, 1.0, record.AverageScore, math.Pow(0.7, 19))
	assert.Greater(t, record.AverageScore, 0.99)
}

func TestUpsertTrendSign(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.Upsert(ctx, "s1", "Analysis", Update{QuizScore: 0.5, QuestionsAttempted: 2, QuestionsCorrect: 1})
	require.NoError(t, err)

	record, err := tracker.Upsert(ctx, "s1", "Analysis", Update{QuizScore: 0.2, QuestionsAttempted: 2})
	require.NoError(t, err)
	assert.Negative(t, record.ScoreTrend, "score below running average")

	record, err = tracker.Upsert(ctx, "s1", "Analysis", Update{QuizScore: 0.9, QuestionsAttempted: 2, QuestionsCorrect: 2})
	require.NoError(t, err)
	assert.Positive(t, record.ScoreTrend, "score above running average")
}

func TestUpsertNoTrendWithoutAttemptedBaseline(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	// An empty quiz creates a record with zero attempted questions.
	_, err := tracker.Upsert(ctx, "s1", "Statistics", Update{QuizScore: 0})
	require.NoError(t, err)

	record, err := tracker.Upsert(ctx, "s1", "Statistics", Update{QuizScore: 0.8, QuestionsAttempted: 5, QuestionsCorrect: 4})
	require.NoError(t, err)
	assert.Equal(t, 0.0, record.ScoreTrend, "zero prior attempts is no baseline")
	assert.InDelta(t, 0.3*0.8, record.AverageScore, 1e-9)

	// With a real baseline in place, the following quiz trends normally.
	record, err = tracker.Upsert(ctx, "s1", "Statistics", Update{QuizScore: 0.8, QuestionsAttempted: 5, QuestionsCorrect: 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.8-0.24, record.ScoreTrend, 1e-9)
}

func TestUpsertKeysAreIndependent(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.Upsert(ctx, "s1", "Calculus", Update{QuizScore: 0.9, QuestionsAttempted: 1, QuestionsCorrect: 1})
	require.NoError(t, err)
	_, err = tracker.Upsert(ctx, "s1", "Topology", Update{QuizScore: 0.1, QuestionsAttempted: 1})
	require.NoError(t, err)
	_, err = tracker.Upsert(ctx, "s2", "Calculus", Update{QuizScore: 0.5, QuestionsAttempted: 1})
	require.NoError(t, err)

	record, err := tracker.Get(ctx, "s1", "Calculus")
	require.NoError(t, err)
	assert.Equal(t, 0.9, record.AverageScore)

	records, err := tracker.ListSession(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestUpsertRejectsContractViolations(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		update Update
	}{
		{"score above one", Update{QuizScore: 1.5}},
		{"negative score", Update{QuizScore: -0.1}},
		{"negative attempts", Update{QuizScore: 0.5, QuestionsAttempted: -1}},
		{"correct exceeds attempted", Update{QuizScore: 0.5, QuestionsAttempted: 2, QuestionsCorrect: 3}},
		{"negative hints", Update{QuizScore: 0.5, HintsUsed: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tracker.Upsert(ctx, "s1", "Calculus", tt.update)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := tracker.Upsert(ctx, "", "Calculus", Update{QuizScore: 0.5})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = tracker.Upsert(ctx, "s1", "", Update{QuizScore: 0.5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMissingRecord(t *testing.T) {
	tracker := newTestTracker(t)
	_, err := tracker.Get(context.Background(), "s1", "Nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentUpsertsDoNotLoseUpdates(t *testing.T) {
	tracker := NewTracker(NewMemoryStore(), nil)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.Upsert(ctx, "s1", "Calculus", Update{QuizScore: 0.5, QuestionsAttempted: 1, QuestionsCorrect: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record, err := tracker.Get(ctx, "s1", "Calculus")
	require.NoError(t, err)
	assert.Equal(t, n, record.QuestionsAttempted)
	assert.Equal(t, n, record.QuestionsCorrect)
}
