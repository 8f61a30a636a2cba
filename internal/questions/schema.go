package questions

import "github.com/abhisek/mockprep/internal/llm"

// QuestionListSchema validates the normalized question array recovered from
// model output.
var QuestionListSchema = &llm.Schema{
	Name:        "interview-questions",
	Description: "An ordered list of interview questions for a job role",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{
					"type":        []any{"string", "integer", "null"},
					"description": "Question identifier, unique within the list",
				},
				"question": map[string]any{
					"type":        "string",
					"pattern":     `\S`,
					"description": "The question text shown to the candidate",
				},
			},
			"required": []any{"question"},
		},
	},
}
