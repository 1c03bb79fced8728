package trajectory

import (
	"context"
	"sync"

	"github.com/fyrsmithlabs/tutord/internal/reward"
)

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu           sync.Mutex
	trajectories []Trajectory
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertTrajectory(_ context.Context, t Trajectory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trajectories = append(m.trajectories, t)
	return nil
}

func (m *MemoryStore) UpdateTrajectoryReward(_ context.Context, id string, rewardValue float64, breakdown reward.Breakdown) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.trajectories {
		if m.trajectories[i].ID == id {
			b := breakdown
			m.trajectories[i].Reward = rewardValue
			m.trajectories[i].RewardBreakdown = &b
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) ListSessionTrajectories(_ context.Context, sessionID string) ([]Trajectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Trajectory
	for _, t := range m.trajectories {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListTrajectoriesForExport(_ context.Context, minReward float64, limit int) ([]Trajectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Trajectory
	for i := len(m.trajectories) - 1; i >= 0 && len(out) < limit; i-- {
		if m.trajectories[i].Reward >= minReward {
			out = append(out, m.trajectories[i])
		}
	}
	return out, nil
}
