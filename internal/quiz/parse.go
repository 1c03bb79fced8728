package quiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// generatedQuiz is the JSON shape produced by the question generator.
type generatedQuiz struct {
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// ParseGenerated extracts a quiz from raw model output.
//
// The generator is asked for JSON but frequently wraps it in markdown
// code fences or surrounds it with prose. Extraction tries, in order:
// a fenced code block, the whole payload, and the outermost brace span.
// Every question is validated; IDs are assigned positionally when the
// generator omits them.
func ParseGenerated(raw string) ([]Question, string, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var gq generatedQuiz
	if err := json.Unmarshal([]byte(payload), &gq); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(gq.Questions) == 0 {
		return nil, "", ErrNoQuestions
	}

	for i := range gq.Questions {
		if gq.Questions[i].ID == "" {
			gq.Questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
		if gq.Questions[i].Type == "" {
			gq.Questions[i].Type = TypeMultipleChoice
		}
		if err := gq.Questions[i].Validate(); err != nil {
			return nil, "", err
		}
	}
	return gq.Questions, gq.Topic, nil
}

// extractJSON pulls the most plausible JSON object out of model output.
func extractJSON(raw string) string {
	if m := codeFencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return ""
}

// SanitizeForClient strips grading fields from questions before they
// are sent to the learner. Correct answers and explanations never
// leave the server until the submission is graded.
func SanitizeForClient(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		q.CorrectAnswer = ""
		q.Explanation = ""
		out[i] = q
	}
	return out
}
