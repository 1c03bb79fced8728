// Package quiz models quiz questions and grades submissions.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for quiz validation and parsing.
var (
	// ErrNoQuestions indicates a quiz payload with no questions.
	ErrNoQuestions = errors.New("quiz contains no questions")

	// ErrInvalidQuestion indicates a question missing required fields.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrMalformedResponse indicates model output that could not be
	// parsed into a quiz.
	ErrMalformedResponse = errors.New("malformed quiz response")
)

// Question types.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeShortAnswer    = "short_answer"
	TypeTrueFalse      = "true_false"
)

// Question is a single quiz question. Immutable within a quiz.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// Validate checks the required fields of a question.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question %s has no text", ErrInvalidQuestion, q.ID)
	}
	if q.CorrectAnswer == "" {
		return fmt.Errorf("%w: question %s has no correct answer", ErrInvalidQuestion, q.ID)
	}
	if q.Type == TypeMultipleChoice && len(q.Options) < 2 {
		return fmt.Errorf("%w: question %s needs at least two options", ErrInvalidQuestion, q.ID)
	}
	return nil
}

// QuestionResult is the per-question grading outcome.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

// GradingResult is the outcome of grading one submission.
type GradingResult struct {
	Score          float64          `json:"score"` // in [0,1]
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	PerQuestion    []QuestionResult `json:"per_question"`
}

// Grade scores a submission against the canonical answers.
//
// Missing answers grade as an empty string. Grading is deterministic:
// identical inputs always produce identical results, which downstream
// reward computation depends on.
func Grade(questions []Question, answers map[string]string) GradingResult {
	result := GradingResult{
		TotalQuestions: len(questions),
		PerQuestion:    make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		userAnswer := answers[q.ID]
		correct := answersMatch(userAnswer, q.CorrectAnswer)
		if correct {
			result.CorrectCount++
		}
		result.PerQuestion = append(result.PerQuestion, QuestionResult{
			QuestionID:    q.ID,
			IsCorrect:     correct,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	if result.TotalQuestions > 0 {
		result.Score = float64(result.CorrectCount) / float64(result.TotalQuestions)
	}
	return result
}

// answersMatch compares a submitted answer against the canonical one.
// Both are trimmed and uppercased; a match is exact equality or a
// prefix relationship in either direction, so "B" matches "B. Answer
// Text" and vice versa.
func answersMatch(submitted, canonical string) bool {
	s := strings.ToUpper(strings.TrimSpace(submitted))
	c := strings.ToUpper(strings.TrimSpace(canonical))
	if s == c {
		return true
	}
	if s == "" || c == "" {
		return false
	}
	return strings.HasPrefix(s, c) || strings.HasPrefix(c, s)
}
