package quiz

import (
	"strconv"
	"strings"
)

// NoAnswer is recorded as the user answer of a skipped question.
const NoAnswer = "No answer"

// Submission maps a 1-based question position to the selected option text.
type Submission map[int]string

// FieldName is the form field carrying the answer for position i.
func FieldName(i int) string {
	return "question_" + strconv.Itoa(i)
}

// SubmissionFromForm collects question_<i> values for positions 1..total.
func SubmissionFromForm(total int, get func(string) string) Submission {
	sub := Submission{}
	for i := 1; i <= total; i++ {
		if v := get(FieldName(i)); v != "" {
			sub[i] = v
		}
	}
	return sub
}

type Entry struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Answered      bool   `json:"answered"`
}

type Result struct {
	Score   int     `json:"score"`
	Total   int     `json:"total_questions"`
	Entries []Entry `json:"results"`
}

// Percent is the score as a percentage of Total, 0 for an empty quiz.
func (r Result) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) * 100.0 / float64(r.Total)
}

// Normalize trims surrounding whitespace and trailing periods until the
// string stops changing, so "Paris.", " Paris " and "Paris. ." all become "Paris".
func Normalize(s string) string {
	for {
		t := strings.TrimRight(strings.TrimSpace(s), ".")
		if t == s {
			return s
		}
		s = t
	}
}

// Score grades answers against the questions in display order.
// Unanswered questions are wrong; the rest need exact equality after Normalize.
func Score(questions []Question, answers Submission) Result {
	res := Result{
		Total:   len(questions),
		Entries: make([]Entry, 0, len(questions)),
	}
	for i, q := range questions {
		e := Entry{
			Question:      q.Text,
			UserAnswer:    NoAnswer,
			CorrectAnswer: q.CorrectAnswer,
		}
		if a, ok := answers[i+1]; ok && a != "" {
			e.Answered = true
			e.UserAnswer = a
			e.IsCorrect = Normalize(a) == Normalize(q.CorrectAnswer)
		}
		if e.IsCorrect {
			res.Score++
		}
		res.Entries = append(res.Entries, e)
	}
	return res
}
