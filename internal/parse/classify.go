package parse

import (
	"context"

	"github.com/claude/liftscribe/internal/oracle"
)

// Classification is the content-gate verdict on raw input text.
type Classification struct {
	IsWorkout  bool    `json:"isWorkout"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// classifyContent asks the fast-tier oracle whether the text is a workout.
// Rejection here happens before any extraction or resolution, so rejected
// input can never create exercise identities as a side effect.
func classifyContent(ctx context.Context, oc oracle.Client, text string) (Classification, error) {
	obj, err := oc.GenerateJSON(ctx, oracle.TierFast,
		classifySystemPrompt, classifyUserMessage(text),
		"workout_classification", classificationSchema())
	if err != nil {
		return Classification{}, err
	}

	var c Classification
	c.IsWorkout, _ = obj["isWorkout"].(bool)
	c.Confidence, _ = asNumber(obj["confidence"])
	c.Reason = getString(obj, "reason")
	return c, nil
}
