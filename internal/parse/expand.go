package parse

import "github.com/claude/liftscribe/internal/models"

// ExpandSets replaces each exercise's numSets scalar with a concrete sets
// array: setNumber 1..N in order, the request's weight unit, and
// reps/weight/duration/rpe explicitly null (meaning "not yet performed").
// Pure and deterministic; an exercise that already has sets is left alone.
func ExpandSets(doc Document, weightUnit string) Document {
	out := doc.Clone()
	for _, block := range out.Blocks() {
		if block == nil {
			continue
		}
		for _, ex := range exercisesOf(block) {
			if ex == nil {
				continue
			}
			expandExercise(ex, weightUnit)
		}
	}
	return out
}

func expandExercise(ex map[string]any, weightUnit string) {
	if existing, ok := ex["sets"].([]any); ok && len(existing) > 0 {
		delete(ex, "numSets")
		return
	}

	n := 1
	if v, ok := asNumber(ex["numSets"]); ok && v >= 1 {
		n = int(v)
	}

	sets := make([]any, n)
	for i := 0; i < n; i++ {
		sets[i] = defaultSet(i+1, weightUnit)
	}
	ex["sets"] = sets
	delete(ex, "numSets")
}

func defaultSet(number int, weightUnit string) map[string]any {
	return map[string]any{
		"setNumber":  float64(number),
		"weightUnit": weightUnit,
		"reps":       nil,
		"weight":     nil,
		"duration":   nil,
		"rpe":        nil,
		"notes":      "",
	}
}

// resizeSets grows or shrinks a typed exercise's sets to target length,
// keeping existing sets and renumbering so setNumber stays 1..N.
func resizeSets(ex *models.ExerciseDraft, target int, weightUnit string) {
	if target < 1 {
		return
	}
	if len(ex.Sets) > target {
		ex.Sets = ex.Sets[:target]
	}
	unit := weightUnit
	if len(ex.Sets) > 0 {
		unit = ex.Sets[0].WeightUnit
	}
	for len(ex.Sets) < target {
		ex.Sets = append(ex.Sets, models.EmptySet(len(ex.Sets)+1, unit))
	}
	for i := range ex.Sets {
		ex.Sets[i].SetNumber = i + 1
	}
}
