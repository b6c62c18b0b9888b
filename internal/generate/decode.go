package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"vmxio.com/pdf-quiz/internal/quiz"
)

// ExtractJSONArray returns the slice of reply from the first '[' to the last ']'.
// Models wrap the array in prose or code fences often enough that the whole
// reply cannot be decoded directly.
func ExtractJSONArray(reply string) (string, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: valid JSON array not found in model reply", ErrGeneration)
	}
	return reply[start : end+1], nil
}

type rawQuestion struct {
	Question      *string  `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *string  `json:"correct_answer"`
}

// DecodeQuestions parses a model reply into questions. Any invalid entry fails
// the whole reply.
func DecodeQuestions(reply string) ([]quiz.Question, error) {
	arr, err := ExtractJSONArray(reply)
	if err != nil {
		return nil, err
	}

	var raw []rawQuestion
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrGeneration, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: model returned no questions", ErrGeneration)
	}

	out := make([]quiz.Question, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.Question == nil:
			return nil, fmt.Errorf("%w: question %d: missing key \"question\"", ErrGeneration, i+1)
		case r.Options == nil:
			return nil, fmt.Errorf("%w: question %d: missing key \"options\"", ErrGeneration, i+1)
		case r.CorrectAnswer == nil:
			return nil, fmt.Errorf("%w: question %d: missing key \"correct_answer\"", ErrGeneration, i+1)
		}
		q := quiz.Question{
			Text:          *r.Question,
			Options:       r.Options,
			CorrectAnswer: *r.CorrectAnswer,
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrGeneration, i+1, err)
		}
		out = append(out, q)
	}
	return out, nil
}
