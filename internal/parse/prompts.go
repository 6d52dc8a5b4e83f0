package parse

import (
	"fmt"
	"strings"

	"github.com/claude/liftscribe/internal/models"
)

const classifySystemPrompt = `You classify text. Decide whether the user's text describes a strength/fitness workout (planned or completed): exercises, sets, reps, weights, training blocks, or similar. Recipes, journal entries, shopping lists, and other text are not workouts. Respond with your classification and a confidence between 0 and 1.`

const extractSystemPrompt = `You convert a freeform workout description into structured JSON.

Rules:
- Preserve the order of blocks and exercises exactly as written.
- A "block" is a group of exercises performed together (a superset, a circuit, a section heading). Text with no grouping is a single block.
- If a block declares a shared set count (e.g. "Superset A (4 sets)"), put it in declaredSets and give every exercise in that block that numSets.
- numSets is the number of sets for that exercise. If the text gives "3x8-10", numSets is 3 and the full "3x8-10" goes in prescription verbatim.
- When the text offers alternatives ("Back Squat or Trap Bar Deadlift"), use the first alternative only.
- Copy rep/weight/tempo prescriptions into prescription as free text; do not invent numbers.
- Use "" for any notes the text does not provide. Never omit notes fields.
- Do not invent exercises, blocks, or sets that are not in the text.`

const syntaxRepairSystemPrompt = `You repair a structurally invalid workout JSON document.

You receive the original workout text, the current JSON draft, and a list of violations (field path and problem). Fix ONLY the violated fields and copy everything else through unchanged:
- Synthesize missing required scalars: take the workout name from the text, or use "Workout"; use the date and timestamp hints provided.
- Convert numbers that arrived as strings into numbers.
- Map weight unit synonyms to canonical values ("pounds"/"lb" -> "lbs", "kilograms"/"kgs" -> "kg").
- Populate required arrays that are empty with minimal defaulted entries.
Never change exerciseId, exerciseSlug, or exerciseName fields. Never reorder blocks, exercises, or sets.`

const semanticRepairSystemPrompt = `You reconcile set counts in a structured workout draft against its source text.

You receive the original workout text, the current draft, and a list of set-count violations. For each violation, decide the correct number of sets from the prescription text and any block-level declaration, and report it as a correction. Report only corrections for the violations given; do not touch anything else.`

func classifyUserMessage(text string) string {
	return "Text to classify:\n\n" + text
}

func extractUserMessage(text string) string {
	return "Workout text:\n\n" + text
}

func syntaxRepairUserMessage(originalText string, doc Document, violations []Violation, today, now string) string {
	var b strings.Builder
	b.WriteString("Original workout text:\n\n")
	b.WriteString(originalText)
	b.WriteString("\n\nCurrent draft JSON:\n\n")
	b.WriteString(doc.JSON())
	b.WriteString("\nViolations to fix:\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- %s\n", v)
	}
	fmt.Fprintf(&b, "\nIf a date is missing use %s. If a timestamp is missing use %s.\n", today, now)
	return b.String()
}

func semanticRepairUserMessage(originalText string, draft models.WorkoutDraft, violations []semanticViolation) string {
	doc, _ := FromDraft(draft)
	var b strings.Builder
	b.WriteString("Original workout text:\n\n")
	b.WriteString(originalText)
	b.WriteString("\n\nCurrent draft JSON:\n\n")
	b.WriteString(doc.JSON())
	b.WriteString("\nSet-count violations:\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- blockIndex=%d exerciseIndex=%d: %s\n", v.Block, v.Exercise, v.Message)
	}
	return b.String()
}

// --- json_schema payloads for structured oracle output ---

func classificationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"isWorkout", "confidence", "reason"},
		"properties": map[string]any{
			"isWorkout":  map[string]any{"type": "boolean"},
			"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"reason":     map[string]any{"type": "string"},
		},
	}
}

// conciseWorkoutSchema is the token-minimizing extraction shape: a set
// count scalar per exercise instead of a sets array.
func conciseWorkoutSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "notes", "blocks"},
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"notes": map[string]any{"type": "string"},
			"blocks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"label", "notes", "declaredSets", "exercises"},
					"properties": map[string]any{
						"label":        map[string]any{"type": "string"},
						"notes":        map[string]any{"type": "string"},
						"declaredSets": map[string]any{"type": "integer", "minimum": 0},
						"exercises": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type":                 "object",
								"additionalProperties": false,
								"required":             []string{"exerciseName", "numSets", "prescription", "notes"},
								"properties": map[string]any{
									"exerciseName": map[string]any{"type": "string"},
									"numSets":      map[string]any{"type": "integer", "minimum": 1},
									"prescription": map[string]any{"type": "string"},
									"notes":        map[string]any{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}
}

// workoutDraftSchema is the full expanded shape used by syntax repair.
func workoutDraftSchema() map[string]any {
	number := map[string]any{"type": "number"}
	nullableNumber := map[string]any{"type": []string{"number", "null"}}
	str := map[string]any{"type": "string"}

	setSchema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"setNumber", "weightUnit", "reps", "weight", "duration", "rpe", "notes"},
		"properties": map[string]any{
			"setNumber":  number,
			"weightUnit": map[string]any{"type": "string", "enum": []string{models.UnitLbs, models.UnitKg}},
			"reps":       nullableNumber,
			"weight":     nullableNumber,
			"duration":   nullableNumber,
			"rpe":        nullableNumber,
			"notes":      str,
		},
	}
	exerciseSchema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"exerciseId", "exerciseSlug", "exerciseName", "orderInBlock", "prescription", "notes", "sets"},
		"properties": map[string]any{
			"exerciseId":   str,
			"exerciseSlug": str,
			"exerciseName": str,
			"orderInBlock": number,
			"prescription": str,
			"notes":        str,
			"sets":         map[string]any{"type": "array", "items": setSchema},
		},
	}
	blockSchema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"label", "notes", "declaredSets", "exercises"},
		"properties": map[string]any{
			"label":        str,
			"notes":        str,
			"declaredSets": number,
			"exercises":    map[string]any{"type": "array", "items": exerciseSchema},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "notes", "date", "lastModifiedTime", "blocks"},
		"properties": map[string]any{
			"name":             str,
			"notes":            str,
			"date":             str,
			"lastModifiedTime": str,
			"blocks":           map[string]any{"type": "array", "items": blockSchema},
		},
	}
}

// setCorrectionsSchema is the semantic-repair output shape: the oracle
// reports target set counts and the fixer applies the resizes itself, so
// the repair can only ever resize sets arrays.
func setCorrectionsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"corrections"},
		"properties": map[string]any{
			"corrections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"blockIndex", "exerciseIndex", "numSets"},
					"properties": map[string]any{
						"blockIndex":    map[string]any{"type": "integer", "minimum": 0},
						"exerciseIndex": map[string]any{"type": "integer", "minimum": 0},
						"numSets":       map[string]any{"type": "integer", "minimum": 1},
					},
				},
			},
		},
	}
}
