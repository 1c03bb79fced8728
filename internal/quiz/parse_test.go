package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQuizJSON = `{
  "topic": "Linear Algebra",
  "questions": [
    {
      "id": "q1",
      "question": "What is the determinant of the identity matrix?",
      "type": "multiple_choice",
      "options": ["A. 0", "B. 1", "C. -1", "D. undefined"],
      "correct_answer": "B",
      "explanation": "det(I) is the product of the diagonal entries.",
      "difficulty": "easy"
    }
  ]
}`

func TestParseGeneratedFromCodeFence(t *testing.T) {
	raw := "Here is your quiz:\n\n```json\n" + validQuizJSON + "\n```\n\nGood luck!"

	questions, topic, err := ParseGenerated(raw)
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", topic)
	require.Len(t, questions, 1)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
}

func TestParseGeneratedBareFence(t *testing.T) {
	raw := "```\n" + validQuizJSON + "\n```"
	questions, _, err := ParseGenerated(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestParseGeneratedWholePayload(t *testing.T) {
	questions, topic, err := ParseGenerated(validQuizJSON)
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", topic)
	assert.Len(t, questions, 1)
}

func TestParseGeneratedBraceSpan(t *testing.T) {
	raw := "Sure! " + validQuizJSON + " Let me know how it goes."
	questions, _, err := ParseGenerated(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestParseGeneratedAssignsMissingIDs(t *testing.T) {
	raw := `{"topic":"Calculus","questions":[
		{"question":"lim x->0 sin(x)/x?","type":"short_answer","correct_answer":"1"},
		{"question":"d/dx x^2?","type":"short_answer","correct_answer":"2x"}
	]}`
	questions, _, err := ParseGenerated(raw)
	require.NoError(t, err)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, "q2", questions[1].ID)
}

func TestParseGeneratedErrors(t *testing.T) {
	_, _, err := ParseGenerated("I could not generate a quiz, sorry.")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, _, err = ParseGenerated(`{"topic":"x","questions":[]}`)
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, _, err = ParseGenerated(`{"questions":[{"question":"x?"}]}`)
	assert.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestSanitizeForClient(t *testing.T) {
	questions := []Question{
		{ID: "q1", Question: "x?", Type: TypeMultipleChoice,
			Options: []string{"A", "B"}, CorrectAnswer: "A", Explanation: "secret"},
	}

	sanitized := SanitizeForClient(questions)
	require.Len(t, sanitized, 1)
	assert.Empty(t, sanitized[0].CorrectAnswer)
	assert.Empty(t, sanitized[0].Explanation)
	assert.Equal(t, []string{"A", "B"}, sanitized[0].Options)

	// originals untouched
	assert.Equal(t, "A", questions[0].CorrectAnswer)
}
