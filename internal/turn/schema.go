package turn

import "github.com/efuentes/sophia/internal/llm"

// ResponseSchema is the structured-output contract sent to the model
// provider with every turn.
var ResponseSchema = &llm.Schema{
	Name:        "lesson-turn",
	Description: "Evaluation of one learner turn: intent, feedback, progress and analytics",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"turnIntent": map[string]any{
				"type":        "string",
				"enum":        []any{"ANSWER", "CLARIFY", "OFFTOPIC"},
				"description": "What the learner's message is: an answer, a clarification request, or off-topic chatter",
			},
			"chat": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{
						"type":        "string",
						"minLength":   MinMessageLen,
						"maxLength":   MaxMessageLen,
						"description": "Learner-facing feedback ending with the next (or restated) question",
					},
					"hints": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string", "maxLength": MaxHintLen},
						"maxItems": MaxHints,
					},
				},
				"required":             []any{"message", "hints"},
				"additionalProperties": false,
			},
			"progress": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"masteryDelta": map[string]any{
						"type":    "number",
						"minimum": -MaxDeltaAbs,
						"maximum": MaxDeltaAbs,
					},
					"nextStep": map[string]any{
						"type": "string",
						"enum": []any{"ADVANCE", "REINFORCE", "RETRY", "COMPLETE"},
					},
					"tags": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "string",
							"enum": []any{"CORRECT", "PARTIAL", "INCORRECT", "CONCEPTUAL", "COMPUTATIONAL", "NEEDS_HELP", "SHOWING_MASTERY"},
						},
						"minItems": MinTags,
						"maxItems": MaxTags,
					},
				},
				"required":             []any{"masteryDelta", "nextStep", "tags"},
				"additionalProperties": false,
			},
			"analytics": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"difficulty": map[string]any{
						"type": "string",
						"enum": []any{"EASY", "MEDIUM", "HARD"},
					},
					"confidenceScore": map[string]any{
						"type":    "number",
						"minimum": 0,
						"maximum": 1,
					},
					"reasoningSignals": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string", "maxLength": MaxSignalLen},
						"maxItems": MaxSignals,
					},
				},
				"required":             []any{"difficulty", "confidenceScore", "reasoningSignals"},
				"additionalProperties": false,
			},
		},
		"required":             []any{"turnIntent", "chat", "progress", "analytics"},
		"additionalProperties": false,
	},
}
