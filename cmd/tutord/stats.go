package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// statsCmd shows a session's per-topic performance records
var statsCmd = &cobra.Command{
	Use:   "stats <session-id>",
	Short: "Show per-topic performance for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.registry.Performance().ListSession(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing performance records: %w", err)
	}
	if len(records) == 0 {
		fmt.Printf("No performance records for session %s\n", args[0])
		return nil
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
