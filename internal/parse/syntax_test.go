package parse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/claude/liftscribe/internal/oracle"
)

// TestSyntaxFixValidFirstPass verifies that an already-valid document
// converges without any oracle calls.
func TestSyntaxFixValidFirstPass(t *testing.T) {
	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		return nil, errors.New("unexpected oracle call")
	})
	fixer := &syntaxFixer{oracle: oc, log: testLogger(), maxIter: 3}

	now := mustParseTime(t, "2026-03-14T10:00:00Z")
	out, err := fixer.Fix(context.Background(), "raw text", validDoc(), now)
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if out == nil {
		t.Fatal("Fix returned nil document")
	}
	if oc.calls["workout_draft"] != 0 {
		t.Errorf("oracle calls = %d, want 0", oc.calls["workout_draft"])
	}
}

// TestSyntaxFixConverges verifies a single repair pass: the oracle is
// handed the violations and its corrected document passes validation.
func TestSyntaxFixConverges(t *testing.T) {
	broken := validDoc()
	delete(broken, "name")
	setsOf(firstExercise(broken))[0]["weightUnit"] = "pounds"

	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		if schemaName != "workout_draft" {
			return nil, fmt.Errorf("unexpected schema %q", schemaName)
		}
		if !strings.Contains(user, "weightUnit") {
			t.Error("repair prompt does not mention the violated field")
		}
		return map[string]any(validDoc()), nil
	})
	fixer := &syntaxFixer{oracle: oc, log: testLogger(), maxIter: 3}

	now := mustParseTime(t, "2026-03-14T10:00:00Z")
	out, err := fixer.Fix(context.Background(), "raw text", broken, now)
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if v := ValidateDocument(out); len(v) != 0 {
		t.Errorf("repaired document still invalid: %s", violationPaths(v))
	}
	if oc.calls["workout_draft"] != 1 {
		t.Errorf("oracle calls = %d, want 1", oc.calls["workout_draft"])
	}
}

// TestSyntaxFixExhausted verifies that repair stops at the iteration cap
// when the oracle never produces a valid document, and reports the
// matching failure kind.
func TestSyntaxFixExhausted(t *testing.T) {
	broken := validDoc()
	delete(broken, "name")

	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		stillBroken := validDoc()
		delete(stillBroken, "name")
		return map[string]any(stillBroken), nil
	})
	fixer := &syntaxFixer{oracle: oc, log: testLogger(), maxIter: 3}

	now := mustParseTime(t, "2026-03-14T10:00:00Z")
	_, err := fixer.Fix(context.Background(), "raw text", broken, now)
	if err == nil {
		t.Fatal("Fix succeeded with an unfixable document")
	}
	if kind := KindOf(err); kind != KindSchemaRepairExhausted {
		t.Errorf("failure kind = %q, want %q", kind, KindSchemaRepairExhausted)
	}
	if oc.calls["workout_draft"] != 3 {
		t.Errorf("oracle calls = %d, want exactly 3", oc.calls["workout_draft"])
	}
}

// TestSyntaxFixPreservesIdentifiers verifies that resolved exercise
// identifiers survive repair even when the oracle rewrites them.
func TestSyntaxFixPreservesIdentifiers(t *testing.T) {
	broken := validDoc()
	delete(broken, "name")
	ex := firstExercise(broken)
	ex["exerciseId"] = "11111111-1111-1111-1111-111111111111"
	ex["exerciseSlug"] = "back-squat"

	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		repaired := validDoc()
		rex := firstExercise(repaired)
		rex["exerciseId"] = "99999999-9999-9999-9999-999999999999"
		rex["exerciseSlug"] = "something-else"
		rex["exerciseName"] = "Low Bar Squat"
		return map[string]any(repaired), nil
	})
	fixer := &syntaxFixer{oracle: oc, log: testLogger(), maxIter: 3}

	now := mustParseTime(t, "2026-03-14T10:00:00Z")
	out, err := fixer.Fix(context.Background(), "raw text", broken, now)
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}

	got := firstExercise(out)
	if id := getString(got, "exerciseId"); id != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("exerciseId = %q, want the pre-repair value", id)
	}
	if slug := getString(got, "exerciseSlug"); slug != "back-squat" {
		t.Errorf("exerciseSlug = %q, want back-squat", slug)
	}
	if name := getString(got, "exerciseName"); name != "Back Squat" {
		t.Errorf("exerciseName = %q, want Back Squat", name)
	}
}

// TestSyntaxFixOracleError verifies that a transport-level oracle failure
// ends the loop immediately instead of burning retries.
func TestSyntaxFixOracleError(t *testing.T) {
	broken := validDoc()
	delete(broken, "name")

	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		return nil, errors.New("upstream down")
	})
	fixer := &syntaxFixer{oracle: oc, log: testLogger(), maxIter: 3}

	now := mustParseTime(t, "2026-03-14T10:00:00Z")
	_, err := fixer.Fix(context.Background(), "raw text", broken, now)
	if err == nil {
		t.Fatal("Fix succeeded despite oracle failure")
	}
	if kind := KindOf(err); kind != KindSchemaRepairExhausted {
		t.Errorf("failure kind = %q, want %q", kind, KindSchemaRepairExhausted)
	}
	if oc.calls["workout_draft"] != 1 {
		t.Errorf("oracle calls = %d, want 1", oc.calls["workout_draft"])
	}
}
