// Package main implements the tutord CLI for indexing curriculum
// content, querying it, and processing quiz submissions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fyrsmithlabs/tutord/internal/config"
	"github.com/fyrsmithlabs/tutord/internal/embeddings"
	"github.com/fyrsmithlabs/tutord/internal/engine"
	"github.com/fyrsmithlabs/tutord/internal/logging"
	"github.com/fyrsmithlabs/tutord/internal/performance"
	"github.com/fyrsmithlabs/tutord/internal/retriever"
	"github.com/fyrsmithlabs/tutord/internal/reward"
	"github.com/fyrsmithlabs/tutord/internal/services"
	"github.com/fyrsmithlabs/tutord/internal/store"
	"github.com/fyrsmithlabs/tutord/internal/telemetry"
	"github.com/fyrsmithlabs/tutord/internal/trajectory"
	"github.com/fyrsmithlabs/tutord/internal/vectorstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// configPath is the optional YAML config file location
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tutord",
	Short: "Adaptive learning signal engine",
	Long: `tutord indexes curriculum content for retrieval, grades quiz
submissions, and tracks per-session learning performance to produce
reward signals for adaptive tutoring.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: built-in defaults + TUTORD_* env)")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
}

// app bundles everything a command needs after setup.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	registry  services.Registry
	store     *store.Store
	embedder  embeddings.Provider
	telemetry *telemetry.Telemetry
}

// setup loads configuration and wires the service graph.
// withIndex controls whether the embedding provider and vector store
// are initialized; commands that never touch retrieval skip the model
// download and index open.
func setup(withIndex bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	telCfg := telemetry.NewDefaultConfig()
	telCfg.Enabled = cfg.Observability.EnableTelemetry
	if cfg.Observability.OTLPEndpoint != "" {
		telCfg.Endpoint = cfg.Observability.OTLPEndpoint
	}
	tel, err := telemetry.New(context.Background(), telCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	if tel.Degraded() {
		logger.Warn("telemetry degraded, continuing with no-op providers")
	}

	db, err := store.New(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var (
		embedder embeddings.Provider
		vs       vectorstore.Store
	)
	if withIndex {
		embedder, err = embeddings.NewProvider(cfg.Embeddings)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing embeddings: %w", err)
		}
		vs, err = vectorstore.NewStore(cfg, embedder, logger)
		if err != nil {
			embedder.Close()
			db.Close()
			return nil, fmt.Errorf("initializing vector store: %w", err)
		}
	}

	tracker := performance.NewTracker(db, logger)
	computer := reward.NewComputer(reward.WeightsFromConfig(cfg.Reward))
	trajectories := trajectory.NewService(db, logger)
	eng := engine.New(tracker, computer, db, trajectories, logger)
	retr := retriever.NewService(vs, cfg.Retrieval, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		registry: services.NewRegistry(services.Options{
			Retriever:    retr,
			Performance:  tracker,
			Reward:       computer,
			Trajectories: trajectories,
			Engine:       eng,
			VectorStore:  vs,
		}),
		store:    db,
		embedder: embedder,
	}, nil
}

// close releases app resources, logging rather than failing the command.
func (a *app) close() {
	if vs := a.registry.VectorStore(); vs != nil {
		if err := vs.Close(); err != nil {
			a.logger.Warn("closing vector store", zap.Error(err))
		}
	}
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			a.logger.Warn("closing embedder", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing database", zap.Error(err))
	}
	if err := a.telemetry.Shutdown(context.Background()); err != nil {
		a.logger.Warn("shutting down telemetry", zap.Error(err))
	}
	_ = a.logger.Sync()
}
