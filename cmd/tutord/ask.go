package main

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/tutord/internal/retriever"
	"github.com/spf13/cobra"
)

var (
	askK         int
	askThreshold float64
)

// askCmd retrieves supporting context for a query
var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Retrieve curriculum context for a query",
	Long: `Retrieve the curriculum chunks most relevant to a query,
formatted the way they would be injected into a tutoring prompt.

Examples:
  tutord ask "how do I diagonalize a matrix"
  tutord ask --k 3 --threshold 0.6 "what is a vector space"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askK, "k", 0, "number of chunks to request (default from config)")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", -1, "minimum similarity in [0,1] (default from config)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	var opts []retriever.Option
	if askK > 0 {
		opts = append(opts, retriever.WithK(askK))
	}
	if askThreshold >= 0 {
		opts = append(opts, retriever.WithScoreThreshold(askThreshold))
	}

	query := strings.Join(args, " ")
	context := a.registry.Retriever().Retrieve(cmd.Context(), query, opts...)
	if context == "" {
		fmt.Println("No relevant curriculum content found.")
		return nil
	}
	fmt.Println(context)
	return nil
}

// topicsCmd lists the curriculum topics
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List available curriculum topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.close()

		for _, topic := range a.registry.Retriever().Topics() {
			fmt.Println(topic)
		}
		return nil
	},
}
