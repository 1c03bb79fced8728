package trajectory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fyrsmithlabs/tutord/internal/reward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryStore(), nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("traj-%d", seq)
	}
	return svc
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	svc := newTestService(t)

	traj, err := svc.Record(context.Background(), "s1",
		State{Topic: "Calculus", AverageScore: 0.4, AttemptsSoFar: 2},
		Action{Kind: ActionQuizOffer, Topic: "Calculus"},
		128, 512,
	)
	require.NoError(t, err)

	assert.Equal(t, "traj-1", traj.ID)
	assert.Equal(t, "s1", traj.SessionID)
	assert.False(t, traj.CreatedAt.IsZero())
	assert.Equal(t, 0.0, traj.Reward, "reward unknown at decision time")
	assert.Nil(t, traj.RewardBreakdown)
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "", State{}, Action{Kind: ActionHint}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidTrajectory)

	_, err = svc.Record(ctx, "s1", State{}, Action{Kind: "dance"}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidTrajectory)
}

func TestSetRewardUpdatesRecord(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	traj, err := svc.Record(ctx, "s1", State{Topic: "Analysis"}, Action{Kind: ActionChatResponse}, 0, 0)
	require.NoError(t, err)

	breakdown := reward.Breakdown{QuizAbsolute: 0.4, Reward: 0.402}
	require.NoError(t, svc.SetReward(ctx, traj.ID, breakdown))

	list, err := svc.ListSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0.402, list[0].Reward)
	require.NotNil(t, list[0].RewardBreakdown)
	assert.Equal(t, breakdown, *list[0].RewardBreakdown)
}

func TestSetRewardMissingTrajectory(t *testing.T) {
	svc := newTestService(t)
	err := svc.SetReward(context.Background(), "nope", reward.Breakdown{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessionIsScoped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "s1", State{}, Action{Kind: ActionHint}, 0, 0)
	require.NoError(t, err)
	_, err = svc.Record(ctx, "s2", State{}, Action{Kind: ActionHint}, 0, 0)
	require.NoError(t, err)
	_, err = svc.Record(ctx, "s1", State{}, Action{Kind: ActionExplanation}, 0, 0)
	require.NoError(t, err)

	list, err := svc.ListSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ActionHint, list[0].Action.Kind)
	assert.Equal(t, ActionExplanation, list[1].Action.Kind)
}

func TestExportForTrainingFiltersAndLimits(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rewards := []float64{-0.5, 0.2, 0.7, 0.9, 0.4}
	for _, r := range rewards {
		traj, err := svc.Record(ctx, "s1", State{}, Action{Kind: ActionChatResponse}, 0, 0)
		require.NoError(t, err)
		require.NoError(t, svc.SetReward(ctx, traj.ID, reward.Breakdown{Reward: r}))
	}

	exported, err := svc.ExportForTraining(ctx, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, exported, 2)
	assert.Equal(t, 0.9, exported[0].Reward, "newest first")
	assert.Equal(t, 0.7, exported[1].Reward)

	capped, err := svc.ExportForTraining(ctx, 0.0, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)

	defaulted, err := svc.ExportForTraining(ctx, -1.0, 0)
	require.NoError(t, err)
	assert.Len(t, defaulted, 5, "limit <= 0 falls back to the default cap")
}
