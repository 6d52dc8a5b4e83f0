package parse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftscribe/internal/oracle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeOracle dispatches GenerateJSON calls by schema name, which is how
// the pipeline distinguishes its stages.
type fakeOracle struct {
	t        *testing.T
	generate func(tier oracle.Tier, schemaName, user string) (map[string]any, error)
	calls    map[string]int
}

func newFakeOracle(t *testing.T, generate func(tier oracle.Tier, schemaName, user string) (map[string]any, error)) *fakeOracle {
	return &fakeOracle{t: t, generate: generate, calls: map[string]int{}}
}

func (f *fakeOracle) GenerateJSON(ctx context.Context, tier oracle.Tier, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls[schemaName]++
	return f.generate(tier, schemaName, user)
}

func (f *fakeOracle) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return ts
}

// validSet builds a schema-valid planned set object.
func validSet(n int) map[string]any {
	return map[string]any{
		"setNumber":  float64(n),
		"weightUnit": "lbs",
		"reps":       nil,
		"weight":     nil,
		"duration":   nil,
		"rpe":        nil,
		"notes":      "",
	}
}

func validSets(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = validSet(i + 1)
	}
	return out
}

// validDoc builds a minimal schema-valid draft document: one block, one
// exercise, two sets.
func validDoc() Document {
	return Document{
		"name":             "Lower Body",
		"notes":            "",
		"date":             "2026-03-14",
		"lastModifiedTime": "2026-03-14T10:00:00Z",
		"blocks": []any{
			map[string]any{
				"label":        "",
				"notes":        "",
				"declaredSets": float64(0),
				"exercises": []any{
					map[string]any{
						"exerciseName": "Back Squat",
						"orderInBlock": float64(0),
						"prescription": "2x5",
						"notes":        "",
						"sets":         validSets(2),
					},
				},
			},
		},
	}
}

func firstExercise(doc Document) map[string]any {
	blocks := doc.Blocks()
	if len(blocks) == 0 || blocks[0] == nil {
		return nil
	}
	exs := exercisesOf(blocks[0])
	if len(exs) == 0 {
		return nil
	}
	return exs[0]
}

func violationPaths(violations []Violation) string {
	return fmt.Sprintf("%v", violations)
}
