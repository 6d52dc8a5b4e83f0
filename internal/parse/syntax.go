package parse

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/liftscribe/internal/oracle"
)

// repairState makes the bounded repair loop an explicit state machine, so
// the iteration budget is an invariant rather than a recursion depth.
type repairState int

const (
	stateValidating repairState = iota
	stateRepairing
	stateConverged
	stateExhausted
)

// syntaxFixer repairs structural schema violations in a draft document by
// alternating in-process validation with oracle repair calls, up to a
// fixed iteration cap.
type syntaxFixer struct {
	oracle  oracle.Client
	log     *slog.Logger
	maxIter int
}

// Fix returns a schema-valid document or a SchemaRepairExhausted failure.
// A document that validates on the first pass costs no oracle calls.
func (f *syntaxFixer) Fix(ctx context.Context, originalText string, doc Document, now time.Time) (Document, error) {
	current := doc
	var violations []Violation
	repairs := 0

	state := stateValidating
	for {
		switch state {
		case stateValidating:
			violations = ValidateDocument(current)
			if len(violations) == 0 {
				state = stateConverged
			} else if repairs >= f.maxIter {
				state = stateExhausted
			} else {
				state = stateRepairing
			}

		case stateRepairing:
			repairs++
			f.log.Debug("schema repair pass", "attempt", repairs, "violations", len(violations))
			repaired, err := f.repair(ctx, originalText, current, violations, now)
			if err != nil {
				return nil, failf(KindSchemaRepairExhausted, err, "schema repair call %d failed", repairs)
			}
			current = repaired
			state = stateValidating

		case stateConverged:
			return current, nil

		case stateExhausted:
			return nil, failf(KindSchemaRepairExhausted, nil,
				"%d violations remain after %d repair passes (first: %s)",
				len(violations), repairs, violations[0])
		}
	}
}

func (f *syntaxFixer) repair(ctx context.Context, originalText string, doc Document, violations []Violation, now time.Time) (Document, error) {
	user := syntaxRepairUserMessage(originalText, doc, violations,
		now.Format("2006-01-02"), now.Format(time.RFC3339))

	obj, err := f.oracle.GenerateJSON(ctx, oracle.TierStandard,
		syntaxRepairSystemPrompt, user, "workout_draft", workoutDraftSchema())
	if err != nil {
		return nil, err
	}

	repaired := Document(obj).Clone()
	restoreIdentifiers(repaired, doc)
	return repaired, nil
}

// restoreIdentifiers copies resolved exercise identifier fields from the
// pre-repair document over the oracle output. The repair loop is never
// allowed to alter them, whatever the model returned.
func restoreIdentifiers(repaired, previous Document) {
	prevBlocks := previous.Blocks()
	for bi, block := range repaired.Blocks() {
		if block == nil || bi >= len(prevBlocks) || prevBlocks[bi] == nil {
			continue
		}
		prevExercises := exercisesOf(prevBlocks[bi])
		for ei, ex := range exercisesOf(block) {
			if ex == nil || ei >= len(prevExercises) || prevExercises[ei] == nil {
				continue
			}
			for _, key := range []string{"exerciseId", "exerciseSlug", "exerciseName"} {
				if v, ok := prevExercises[ei][key]; ok {
					ex[key] = v
				}
			}
		}
	}
}
