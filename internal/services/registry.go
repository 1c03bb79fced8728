package services

import (
	"github.com/fyrsmithlabs/tutord/internal/engine"
	"github.com/fyrsmithlabs/tutord/internal/performance"
	"github.com/fyrsmithlabs/tutord/internal/retriever"
	"github.com/fyrsmithlabs/tutord/internal/reward"
	"github.com/fyrsmithlabs/tutord/internal/trajectory"
	"github.com/fyrsmithlabs/tutord/internal/vectorstore"
)

// Registry provides access to all tutord services.
// Use accessor methods to retrieve individual services.
type Registry interface {
	Retriever() *retriever.Service
	Performance() *performance.Tracker
	Reward() *reward.Computer
	Trajectories() *trajectory.Service
	Engine() *engine.Engine
	VectorStore() vectorstore.Store
}

// Options configures the registry with service instances.
type Options struct {
	Retriever    *retriever.Service
	Performance  *performance.Tracker
	Reward       *reward.Computer
	Trajectories *trajectory.Service
	Engine       *engine.Engine
	VectorStore  vectorstore.Store
}

// registry is the concrete implementation of Registry.
type registry struct {
	retriever    *retriever.Service
	performance  *performance.Tracker
	reward       *reward.Computer
	trajectories *trajectory.Service
	engine       *engine.Engine
	vectorStore  vectorstore.Store
}

// NewRegistry creates a new service registry.
func NewRegistry(opts Options) Registry {
	return &registry{
		retriever:    opts.Retriever,
		performance:  opts.Performance,
		reward:       opts.Reward,
		trajectories: opts.Trajectories,
		engine:       opts.Engine,
		vectorStore:  opts.VectorStore,
	}
}

func (r *registry) Retriever() *retriever.Service      { return r.retriever }
func (r *registry) Performance() *performance.Tracker  { return r.performance }
func (r *registry) Reward() *reward.Computer           { return r.reward }
func (r *registry) Trajectories() *trajectory.Service  { return r.trajectories }
func (r *registry) Engine() *engine.Engine             { return r.engine }
func (r *registry) VectorStore() vectorstore.Store     { return r.vectorStore }
