package services

import (
	"testing"

	"github.com/fyrsmithlabs/tutord/internal/performance"
	"github.com/fyrsmithlabs/tutord/internal/retriever"
	"github.com/fyrsmithlabs/tutord/internal/reward"
	"github.com/fyrsmithlabs/tutord/internal/trajectory"
)

func TestRegistryAccessors(t *testing.T) {
	// Create registry with nil services - just testing interface
	reg := NewRegistry(Options{})

	if reg.Retriever() != nil {
		t.Error("expected nil retriever service")
	}
	if reg.Performance() != nil {
		t.Error("expected nil performance tracker")
	}
	if reg.Reward() != nil {
		t.Error("expected nil reward computer")
	}
	if reg.Trajectories() != nil {
		t.Error("expected nil trajectory service")
	}
	if reg.Engine() != nil {
		t.Error("expected nil engine")
	}
	if reg.VectorStore() != nil {
		t.Error("expected nil vector store")
	}
}

func TestRegistryWithServices(t *testing.T) {
	mockRetriever := &retriever.Service{}
	mockTracker := performance.NewTracker(performance.NewMemoryStore(), nil)
	mockComputer := reward.NewComputer(reward.DefaultWeights())
	mockTrajectories := trajectory.NewService(trajectory.NewMemoryStore(), nil)

	reg := NewRegistry(Options{
		Retriever:    mockRetriever,
		Performance:  mockTracker,
		Reward:       mockComputer,
		Trajectories: mockTrajectories,
	})

	if reg.Retriever() != mockRetriever {
		t.Error("retriever service mismatch")
	}
	if reg.Performance() != mockTracker {
		t.Error("performance tracker mismatch")
	}
	if reg.Reward() != mockComputer {
		t.Error("reward computer mismatch")
	}
	if reg.Trajectories() != mockTrajectories {
		t.Error("trajectory service mismatch")
	}
}
