package parse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/liftscribe/internal/models"
	"github.com/claude/liftscribe/internal/oracle"
)

// semanticViolation is a cross-field inconsistency: an exercise whose
// sets length disagrees with the count its prescription or its block
// declares.
type semanticViolation struct {
	Block    int
	Exercise int
	Expected int
	Message  string
}

// detectSemantic checks set-count consistency on a typed draft:
// (a) each exercise's sets length matches its own prescription, and
// (b) exercises sharing a block-declared set count all have that count.
func detectSemantic(draft models.WorkoutDraft) []semanticViolation {
	var out []semanticViolation
	for bi, block := range draft.Blocks {
		declared := block.DeclaredSets
		if declared == 0 {
			declared = labelSetCount(block.Label)
		}
		for ei, ex := range block.Exercises {
			expected := prescriptionSetCount(ex.Prescription)
			if expected == 0 {
				expected = declared
			}
			if expected == 0 || len(ex.Sets) == expected {
				continue
			}
			out = append(out, semanticViolation{
				Block:    bi,
				Exercise: ei,
				Expected: expected,
				Message: fmt.Sprintf("%q has %d sets but %d are declared (prescription %q, block %q)",
					ex.ExerciseName, len(ex.Sets), expected, ex.Prescription, block.Label),
			})
		}
	}
	return out
}

// semanticFixer reconciles set counts via the same bounded state machine
// as the syntax fixer. The oracle only ever emits target counts; the
// resize itself happens in-process, so this stage cannot touch
// prescriptions or identifiers by construction.
type semanticFixer struct {
	oracle  oracle.Client
	log     *slog.Logger
	maxIter int
}

func (f *semanticFixer) Fix(ctx context.Context, originalText string, draft models.WorkoutDraft, weightUnit string) (models.WorkoutDraft, error) {
	current := draft
	var violations []semanticViolation
	repairs := 0

	state := stateValidating
	for {
		switch state {
		case stateValidating:
			violations = detectSemantic(current)
			if len(violations) == 0 {
				state = stateConverged
			} else if repairs >= f.maxIter {
				state = stateExhausted
			} else {
				state = stateRepairing
			}

		case stateRepairing:
			repairs++
			f.log.Debug("semantic repair pass", "attempt", repairs, "violations", len(violations))
			repaired, err := f.repair(ctx, originalText, current, violations, weightUnit)
			if err != nil {
				return models.WorkoutDraft{}, failf(KindSemanticRepairExhausted, err, "semantic repair call %d failed", repairs)
			}
			current = repaired
			state = stateValidating

		case stateConverged:
			return current, nil

		case stateExhausted:
			return models.WorkoutDraft{}, failf(KindSemanticRepairExhausted, nil,
				"%d set-count violations remain after %d repair passes (first: %s)",
				len(violations), repairs, violations[0].Message)
		}
	}
}

func (f *semanticFixer) repair(ctx context.Context, originalText string, draft models.WorkoutDraft, violations []semanticViolation, weightUnit string) (models.WorkoutDraft, error) {
	obj, err := f.oracle.GenerateJSON(ctx, oracle.TierStandard,
		semanticRepairSystemPrompt,
		semanticRepairUserMessage(originalText, draft, violations),
		"set_corrections", setCorrectionsSchema())
	if err != nil {
		return models.WorkoutDraft{}, err
	}

	corrections, _ := obj["corrections"].([]any)
	out := cloneDraft(draft)
	for _, c := range corrections {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		bi, okB := asNumber(m["blockIndex"])
		ei, okE := asNumber(m["exerciseIndex"])
		n, okN := asNumber(m["numSets"])
		if !okB || !okE || !okN || n < 1 {
			continue
		}
		b, e := int(bi), int(ei)
		if b < 0 || b >= len(out.Blocks) || e < 0 || e >= len(out.Blocks[b].Exercises) {
			continue
		}
		resizeSets(&out.Blocks[b].Exercises[e], int(n), weightUnit)
	}
	return out, nil
}

func cloneDraft(draft models.WorkoutDraft) models.WorkoutDraft {
	out := draft
	out.Blocks = make([]models.BlockDraft, len(draft.Blocks))
	for bi, block := range draft.Blocks {
		nb := block
		nb.Exercises = make([]models.ExerciseDraft, len(block.Exercises))
		for ei, ex := range block.Exercises {
			ne := ex
			ne.Sets = append([]models.SetDraft(nil), ex.Sets...)
			nb.Exercises[ei] = ne
		}
		out.Blocks[bi] = nb
	}
	return out
}
