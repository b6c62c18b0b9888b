package generate

import "fmt"

const promptTemplate = `Based on the following text, generate exactly %d multiple-choice questions (MCQs).

IMPORTANT: Your entire response MUST be a single, valid JSON array. Each object in the array
must contain three keys: "question", "options" (which is a list of exactly 4 strings), and "correct_answer".
The value of "correct_answer" must be copied verbatim from one of the 4 options.
Do not use options such as "All of the above", "None of the above" or "Both A and B".
Do not include any text, explanations, or markdown formatting like ` + "```json" + ` before or after the array.

Text:
%s
`

// BuildPrompt embeds the extracted document text in the question-generation instruction.
func BuildPrompt(text string, count int) string {
	return fmt.Sprintf(promptTemplate, count, text)
}
