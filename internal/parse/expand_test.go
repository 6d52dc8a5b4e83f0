package parse

import (
	"testing"
)

// TestExpandSets verifies that a numSets scalar becomes a concrete sets
// array: contiguous numbering from 1, the request's weight unit, and all
// performance fields explicitly null.
func TestExpandSets(t *testing.T) {
	doc := Document{
		"name": "Test",
		"blocks": []any{
			map[string]any{
				"exercises": []any{
					map[string]any{"exerciseName": "Squat", "numSets": float64(3)},
				},
			},
		},
	}

	out := ExpandSets(doc, "kg")
	ex := firstExercise(out)

	if _, ok := ex["numSets"]; ok {
		t.Error("numSets should be removed after expansion")
	}
	sets := setsOf(ex)
	if len(sets) != 3 {
		t.Fatalf("len(sets) = %d, want 3", len(sets))
	}
	for i, set := range sets {
		if n, _ := asNumber(set["setNumber"]); int(n) != i+1 {
			t.Errorf("set %d has setNumber %v, want %d", i, set["setNumber"], i+1)
		}
		if unit := getString(set, "weightUnit"); unit != "kg" {
			t.Errorf("set %d weightUnit = %q, want kg", i, unit)
		}
		for _, key := range []string{"reps", "weight", "duration", "rpe"} {
			v, present := set[key]
			if !present {
				t.Errorf("set %d is missing %s", i, key)
			} else if v != nil {
				t.Errorf("set %d %s = %v, want null", i, key, v)
			}
		}
	}
}

// TestExpandSetsDefaultsToOne verifies that a missing or invalid numSets
// yields a single set.
func TestExpandSetsDefaultsToOne(t *testing.T) {
	tests := []struct {
		name string
		ex   map[string]any
	}{
		{"missing", map[string]any{"exerciseName": "Squat"}},
		{"zero", map[string]any{"exerciseName": "Squat", "numSets": float64(0)}},
		{"negative", map[string]any{"exerciseName": "Squat", "numSets": float64(-2)}},
		{"non-numeric", map[string]any{"exerciseName": "Squat", "numSets": "three"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{
				"blocks": []any{map[string]any{"exercises": []any{tt.ex}}},
			}
			out := ExpandSets(doc, "lbs")
			if got := len(setsOf(firstExercise(out))); got != 1 {
				t.Errorf("len(sets) = %d, want 1", got)
			}
		})
	}
}

// TestExpandSetsIdempotent verifies that expansion leaves an exercise with
// existing sets untouched, so running the stage twice is safe.
func TestExpandSetsIdempotent(t *testing.T) {
	doc := validDoc()
	once := ExpandSets(doc, "lbs")
	twice := ExpandSets(once, "lbs")

	sets := setsOf(firstExercise(twice))
	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(sets))
	}
	if n, _ := asNumber(sets[1]["setNumber"]); n != 2 {
		t.Errorf("setNumber = %g, want 2", n)
	}
}

// TestExpandSetsDoesNotMutateInput verifies that the input document is
// left unchanged.
func TestExpandSetsDoesNotMutateInput(t *testing.T) {
	doc := Document{
		"blocks": []any{
			map[string]any{
				"exercises": []any{
					map[string]any{"exerciseName": "Squat", "numSets": float64(3)},
				},
			},
		},
	}

	_ = ExpandSets(doc, "lbs")

	ex := firstExercise(doc)
	if _, ok := ex["numSets"]; !ok {
		t.Error("input document lost its numSets field")
	}
	if _, ok := ex["sets"]; ok {
		t.Error("input document gained a sets array")
	}
}
