package parse

import (
	"context"
	"time"

	"github.com/claude/liftscribe/internal/models"
	"github.com/claude/liftscribe/internal/oracle"
)

// Options are the caller-supplied knobs for one parse request.
type Options struct {
	// Date in YYYY-MM-DD; defaults to the caller's current date.
	Date string
	// WeightUnit is "lbs" or "kg"; defaults to "lbs".
	WeightUnit string
	// UserID is opaque to the pipeline; persistence scopes rows by it.
	UserID int
}

func (o Options) withDefaults(now time.Time) Options {
	if o.Date == "" {
		o.Date = now.Format("2006-01-02")
	}
	if o.WeightUnit != models.UnitKg {
		o.WeightUnit = models.UnitLbs
	}
	return o
}

// extractStructure converts raw text into a draft document in the concise
// shape (numSets scalar, no sets arrays). The oracle's output is then
// normalized by rules we never trust it with: orderInBlock comes from
// array position, missing notes become "", and the date and timestamp are
// set from options and the clock.
func extractStructure(ctx context.Context, oc oracle.Client, text string, opts Options, now time.Time) (Document, error) {
	obj, err := oc.GenerateJSON(ctx, oracle.TierStandard,
		extractSystemPrompt, extractUserMessage(text),
		"concise_workout", conciseWorkoutSchema())
	if err != nil {
		return nil, err
	}

	doc := Document(obj).Clone()
	normalizeExtraction(doc, opts, now)
	return doc, nil
}

func normalizeExtraction(doc Document, opts Options, now time.Time) {
	if getString(doc, "name") == "" {
		doc["name"] = "Workout"
	}
	if _, ok := doc["notes"].(string); !ok {
		doc["notes"] = ""
	}
	doc["date"] = opts.Date
	doc["lastModifiedTime"] = now.Format(time.RFC3339)

	for _, block := range doc.Blocks() {
		if block == nil {
			continue
		}
		if _, ok := block["label"].(string); !ok {
			block["label"] = ""
		}
		if _, ok := block["notes"].(string); !ok {
			block["notes"] = ""
		}
		if _, ok := asNumber(block["declaredSets"]); !ok {
			block["declaredSets"] = float64(0)
		}
		for i, ex := range exercisesOf(block) {
			if ex == nil {
				continue
			}
			// Never trusted from the oracle: position is authoritative.
			ex["orderInBlock"] = float64(i)
			if _, ok := ex["notes"].(string); !ok {
				ex["notes"] = ""
			}
			if _, ok := ex["prescription"].(string); !ok {
				ex["prescription"] = ""
			}
			if n, ok := asNumber(ex["numSets"]); !ok || n < 1 {
				ex["numSets"] = float64(1)
			}
		}
	}
}
