package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportMinReward float64
	exportLimit     int
)

// exportCmd dumps high-reward trajectories for offline training
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export high-reward trajectories as JSON lines",
	Long: `Export trajectories with reward at or above a threshold, newest
first, as one JSON object per line on stdout. By default no reward
filter applies.

Examples:
  tutord export > trajectories.jsonl
  tutord export --min-reward 0.5 --limit 200 > trajectories.jsonl`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Float64Var(&exportMinReward, "min-reward", -1.0, "minimum reward for inclusion; -1 exports all (rewards are bounded in [-1,1])")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 100, "maximum number of trajectories")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	trajectories, err := a.registry.Trajectories().ExportForTraining(cmd.Context(), exportMinReward, exportLimit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, t := range trajectories {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encoding trajectory %s: %w", t.ID, err)
		}
	}
	fmt.Fprintf(os.Stderr, "Exported %d trajectories\n", len(trajectories))
	return nil
}
