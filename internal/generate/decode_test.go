package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const franceReply = `[{"question":"What is the capital of France?","options":["Paris","Lyon","Nice","Marseille"],"correct_answer":"Paris"}]`

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{name: "bare array", reply: franceReply, want: franceReply},
		{name: "code fence", reply: "```json\n" + franceReply + "\n```", want: franceReply},
		{name: "leading and trailing prose", reply: "Sure! Here are your questions:\n" + franceReply + "\nGood luck.", want: franceReply},
		{name: "nested arrays keep outer bounds", reply: `x [[1],[2]] y`, want: `[[1],[2]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONArrayMissingBrackets(t *testing.T) {
	for _, reply := range []string{
		"",
		"I cannot help with that.",
		`{"question": "no array"}`,
		"only an opening [",
		"only a closing ]",
		"] reversed [",
	} {
		t.Run(reply, func(t *testing.T) {
			got, err := ExtractJSONArray(reply)
			assert.ErrorIs(t, err, ErrGeneration)
			assert.Empty(t, got)
		})
	}
}

func TestDecodeQuestions(t *testing.T) {
	qs, err := DecodeQuestions("```json\n" + franceReply + "\n```")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "What is the capital of France?", qs[0].Text)
	assert.Equal(t, []string{"Paris", "Lyon", "Nice", "Marseille"}, qs[0].Options)
	assert.Equal(t, "Paris", qs[0].CorrectAnswer)
}

func TestDecodeQuestionsKeepsModelOrder(t *testing.T) {
	reply := `[
		{"question":"Q1","options":["a","b","c","d"],"correct_answer":"a"},
		{"question":"Q2","options":["a","b","c","d"],"correct_answer":"b"},
		{"question":"Q3","options":["a","b","c","d"],"correct_answer":"c."}
	]`
	qs, err := DecodeQuestions(reply)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, []string{qs[0].Text, qs[1].Text, qs[2].Text})
}

func TestDecodeQuestionsFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "no brackets", reply: "no json here"},
		{name: "invalid json", reply: `[{"question": "Q", "options": ["a","b"],}]`},
		{name: "not objects", reply: `["a", "b"]`},
		{name: "empty array", reply: `[]`},
		{name: "missing question", reply: `[{"options":["a","b","c","d"],"correct_answer":"a"}]`},
		{name: "missing options", reply: `[{"question":"Q","correct_answer":"a"}]`},
		{name: "missing correct answer", reply: `[{"question":"Q","options":["a","b","c","d"]}]`},
		{name: "three options", reply: `[{"question":"Q","options":["a","b","c"],"correct_answer":"a"}]`},
		{name: "answer not an option", reply: `[{"question":"Q","options":["a","b","c","d"],"correct_answer":"e"}]`},
		{name: "one bad entry poisons all", reply: `[` + franceReply[1:len(franceReply)-1] + `,{"question":"Q"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := DecodeQuestions(tt.reply)
			assert.ErrorIs(t, err, ErrGeneration)
			assert.Nil(t, qs)
		})
	}
}
