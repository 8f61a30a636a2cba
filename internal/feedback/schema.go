package feedback

import "github.com/abhisek/mockprep/internal/llm"

// Models send null for fields they have nothing to say about; the parser
// treats null lists as empty and a null average as absent.
var stringList = map[string]any{
	"type":  []any{"array", "null"},
	"items": map[string]any{"type": "string"},
}

var optionalText = map[string]any{"type": []any{"string", "null"}}

var scoreRange = map[string]any{
	"type":    []any{"number", "null"},
	"minimum": 0,
	"maximum": 10,
}

// FeedbackSchema validates the batched scoring payload.
var FeedbackSchema = &llm.Schema{
	Name:        "interview-feedback",
	Description: "Per-question scores and an overall summary for one interview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questionFeedback": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        []any{"string", "integer", "null"},
							"description": "The id of the question being scored, echoed back",
						},
						"score":            scoreRange,
						"feedback":         optionalText,
						"strengths":        stringList,
						"areas_to_improve": stringList,
					},
				},
			},
			"overall": map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"averageScore":     scoreRange,
					"generalFeedback":  optionalText,
					"keyStrengths":     stringList,
					"developmentAreas": stringList,
				},
			},
		},
		"required": []any{"questionFeedback"},
	},
}
