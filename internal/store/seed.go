package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vmxio.com/pdf-quiz/internal/quiz"
)

// ImportFromJSON loads a question set saved in the model reply format and
// stores it as a new quiz. Useful for demos and for replaying a captured reply.
func (s *Store) ImportFromJSON(ctx context.Context, path string, userID *uint) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// Accept either: [ ... ] or { "questions": [ ... ] }
	var wrapper struct {
		Questions []quiz.Question `json:"questions"`
	}
	var arr []quiz.Question

	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Questions) > 0 {
		arr = wrapper.Questions
	} else if err := json.Unmarshal(raw, &arr); err != nil {
		return "", fmt.Errorf("json parse: %w", err)
	}
	if len(arr) == 0 {
		return "", fmt.Errorf("no questions in %s", path)
	}

	for i, q := range arr {
		if err := q.Validate(); err != nil {
			return "", fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	return s.CreateQuiz(ctx, NewQuiz{
		UserID:     userID,
		SourceName: filepath.Base(path),
		Model:      "import",
		Questions:  arr,
	})
}
