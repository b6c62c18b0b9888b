package quiz

import (
	"errors"
	"fmt"
)

// OptionCount is the number of options every generated question carries.
const OptionCount = 4

// Question is a single multiple-choice item as produced by the model.
// CorrectAnswer is the literal text of one of the Options.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Validate checks the invariants scoring relies on.
func (q Question) Validate() error {
	if Normalize(q.Text) == "" {
		return errors.New("empty question text")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options))
	}
	if !q.HasOption(q.CorrectAnswer) {
		return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
	}
	return nil
}

// HasOption reports whether s matches one of the options after normalization.
func (q Question) HasOption(s string) bool {
	n := Normalize(s)
	if n == "" {
		return false
	}
	for _, o := range q.Options {
		if Normalize(o) == n {
			return true
		}
	}
	return false
}
