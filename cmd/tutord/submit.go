package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fyrsmithlabs/tutord/internal/engine"
	"github.com/fyrsmithlabs/tutord/internal/quiz"
	"github.com/spf13/cobra"
)

// submitCmd grades a quiz submission and records the learning signals
var submitCmd = &cobra.Command{
	Use:   "submit <submission.json>",
	Short: "Grade a quiz submission and update learning signals",
	Long: `Grade a quiz submission, update the session's performance record,
compute the reward breakdown, and record a trajectory.

The file holds the questions with canonical answers and the learner's
answers keyed by question id:

  {
    "session_id": "sess-42",
    "topic": "Linear Algebra",
    "hints_used": 1,
    "time_seconds": 300,
    "questions": [
      {"id": "q1", "question": "det(I)?", "type": "short_answer", "correct_answer": "1"}
    ],
    "answers": {"q1": "1"}
  }

Examples:
  tutord submit submission.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

// submissionFile is the on-disk JSON shape for one submission.
type submissionFile struct {
	SessionID   string            `json:"session_id"`
	Topic       string            `json:"topic"`
	HintsUsed   int               `json:"hints_used"`
	TimeSeconds int               `json:"time_seconds"`
	Questions   []quiz.Question   `json:"questions"`
	Answers     map[string]string `json:"answers"`
}

func runSubmit(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading submission file: %w", err)
	}
	var sub submissionFile
	if err := json.Unmarshal(content, &sub); err != nil {
		return fmt.Errorf("parsing submission file: %w", err)
	}

	result, err := a.registry.Engine().SubmitQuiz(cmd.Context(), engine.Submission{
		SessionID:   sub.SessionID,
		Topic:       sub.Topic,
		Questions:   sub.Questions,
		Answers:     sub.Answers,
		HintsUsed:   sub.HintsUsed,
		TimeSeconds: sub.TimeSeconds,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
