package parse

import (
	"context"
	"testing"

	"github.com/claude/liftscribe/internal/config"
	"github.com/claude/liftscribe/internal/models"
	"github.com/claude/liftscribe/internal/oracle"
	"github.com/google/uuid"
)

// fakeResolver hands out deterministic identities and records whether it
// was ever called.
type fakeResolver struct {
	calls      int
	identities map[string]*models.ExerciseIdentity
}

func (r *fakeResolver) ResolveNames(ctx context.Context, names []string) (map[string]*models.ExerciseIdentity, error) {
	r.calls++
	if r.identities == nil {
		r.identities = map[string]*models.ExerciseIdentity{}
	}
	out := make(map[string]*models.ExerciseIdentity, len(names))
	for _, name := range names {
		id, ok := r.identities[name]
		if !ok {
			id = &models.ExerciseIdentity{ID: uuid.New(), Slug: "slug-" + name, Name: name}
			r.identities[name] = id
		}
		out[name] = id
	}
	return out, nil
}

// fakePersister records the committed draft and echoes it back as a
// minimal hydrated aggregate.
type fakePersister struct {
	calls  int
	userID int
	draft  models.WorkoutDraft
}

func (p *fakePersister) CreateWorkout(ctx context.Context, userID int, draft models.WorkoutDraft) (*models.Workout, error) {
	p.calls++
	p.userID = userID
	p.draft = draft

	w := &models.Workout{}
	w.ID = uuid.New()
	w.UserID = userID
	w.Name = draft.Name
	for range draft.Blocks {
		w.Blocks = append(w.Blocks, models.WorkoutBlock{})
	}
	return w, nil
}

func testParserConfig() config.ParserConfig {
	return config.ParserConfig{
		ConfidenceCutoff:    0.6,
		FuzzyThreshold:      0.3,
		SemanticThreshold:   0.5,
		MaxRepairIterations: 3,
		ResolveConcurrency:  4,
	}
}

// lowerBodyText is a representative note: a plain section, then a superset
// with a group-declared set count and an either/or exercise.
const lowerBodyText = "## Lower Body\n- Glute bridges: 2x15\n\n**Superset A (4 sets)**\n1. Back Squat or Trap Bar Deadlift: 6-8 reps\n2. Box Jumps: 5 reps"

// lowerBodyExtraction is what a well-behaved extraction of lowerBodyText
// looks like in the concise shape.
func lowerBodyExtraction() map[string]any {
	return map[string]any{
		"name":  "Lower Body",
		"notes": "",
		"blocks": []any{
			map[string]any{
				"label":        "Lower Body",
				"notes":        "",
				"declaredSets": float64(0),
				"exercises": []any{
					map[string]any{"exerciseName": "Glute bridges", "numSets": float64(2), "prescription": "2x15", "notes": ""},
				},
			},
			map[string]any{
				"label":        "Superset A (4 sets)",
				"notes":        "",
				"declaredSets": float64(4),
				"exercises": []any{
					map[string]any{"exerciseName": "Back Squat", "numSets": float64(4), "prescription": "6-8 reps", "notes": ""},
					map[string]any{"exerciseName": "Box Jumps", "numSets": float64(4), "prescription": "5 reps", "notes": ""},
				},
			},
		},
	}
}

// TestPipelineParse runs the full pipeline on a clean extraction: no
// repair passes needed, exercises resolved, draft persisted with exact
// set counts and null performance fields.
func TestPipelineParse(t *testing.T) {
	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		switch schemaName {
		case "workout_classification":
			if tier != oracle.TierFast {
				t.Errorf("classification tier = %q, want fast", tier)
			}
			return map[string]any{"isWorkout": true, "confidence": 0.95, "reason": ""}, nil
		case "concise_workout":
			return lowerBodyExtraction(), nil
		default:
			t.Errorf("unexpected oracle call with schema %q", schemaName)
			return nil, nil
		}
	})

	resolver := &fakeResolver{}
	store := &fakePersister{}
	p := NewPipeline(oc, resolver, store, testParserConfig(), testLogger())

	workout, err := p.Parse(context.Background(), lowerBodyText, Options{Date: "2026-03-14", UserID: 7})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if store.calls != 1 {
		t.Fatalf("persister calls = %d, want 1", store.calls)
	}
	if store.userID != 7 {
		t.Errorf("persisted userID = %d, want 7", store.userID)
	}
	if len(workout.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(workout.Blocks))
	}

	draft := store.draft
	if draft.Date != "2026-03-14" {
		t.Errorf("draft date = %q, want 2026-03-14", draft.Date)
	}
	if len(draft.Blocks) != 2 {
		t.Fatalf("draft blocks = %d, want 2", len(draft.Blocks))
	}

	bridges := draft.Blocks[0].Exercises[0]
	if len(bridges.Sets) != 2 {
		t.Errorf("glute bridges sets = %d, want 2", len(bridges.Sets))
	}
	for ei, ex := range draft.Blocks[1].Exercises {
		if len(ex.Sets) != 4 {
			t.Errorf("superset exercise %d sets = %d, want 4", ei, len(ex.Sets))
		}
	}

	// Alternatives collapse to the first option at extraction; nothing
	// downstream reintroduces the second.
	if got := draft.Blocks[1].Exercises[0].ExerciseName; got != "Back Squat" {
		t.Errorf("exercise name = %q, want Back Squat", got)
	}

	// Every exercise carries a resolved identity.
	for bi, block := range draft.Blocks {
		for ei, ex := range block.Exercises {
			if ex.ExerciseID == "" || ex.ExerciseSlug == "" {
				t.Errorf("block %d exercise %d missing resolved identity", bi, ei)
			}
		}
	}

	// Planned sets are unperformed: all null, unit defaulted.
	for si, set := range bridges.Sets {
		if set.Reps != nil || set.Weight != nil || set.Duration != nil || set.RPE != nil {
			t.Errorf("set %d has performance data, want all null", si)
		}
		if set.WeightUnit != models.UnitLbs {
			t.Errorf("set %d unit = %q, want lbs", si, set.WeightUnit)
		}
		if set.SetNumber != si+1 {
			t.Errorf("set %d number = %d, want %d", si, set.SetNumber, si+1)
		}
	}
}

// TestPipelineRejectsNonWorkout verifies the content gate: rejected text
// fails with ValidationRejected and causes no resolution or persistence.
func TestPipelineRejectsNonWorkout(t *testing.T) {
	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		if schemaName != "workout_classification" {
			t.Errorf("unexpected oracle call with schema %q", schemaName)
		}
		return map[string]any{"isWorkout": false, "confidence": 0.97, "reason": "this is a grocery list"}, nil
	})

	resolver := &fakeResolver{}
	store := &fakePersister{}
	p := NewPipeline(oc, resolver, store, testParserConfig(), testLogger())

	_, err := p.Parse(context.Background(), "eggs, milk, bread", Options{})
	if err == nil {
		t.Fatal("Parse succeeded on a grocery list")
	}
	if kind := KindOf(err); kind != KindValidationRejected {
		t.Errorf("failure kind = %q, want %q", kind, KindValidationRejected)
	}
	if !UserFacing(err) {
		t.Error("rejection should be user-facing")
	}
	if resolver.calls != 0 {
		t.Errorf("resolver calls = %d, want 0", resolver.calls)
	}
	if store.calls != 0 {
		t.Errorf("persister calls = %d, want 0", store.calls)
	}
}

// TestPipelineRejectsLowConfidence verifies that a positive but
// low-confidence classification is still rejected.
func TestPipelineRejectsLowConfidence(t *testing.T) {
	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		return map[string]any{"isWorkout": true, "confidence": 0.4, "reason": "mentions a gym once"}, nil
	})

	store := &fakePersister{}
	p := NewPipeline(oc, &fakeResolver{}, store, testParserConfig(), testLogger())

	_, err := p.Parse(context.Background(), "went to the gym then had lunch", Options{})
	if kind := KindOf(err); kind != KindValidationRejected {
		t.Errorf("failure kind = %q, want %q", kind, KindValidationRejected)
	}
	if store.calls != 0 {
		t.Errorf("persister calls = %d, want 0", store.calls)
	}
}

// TestPipelineRepairsThenPersists verifies the syntax repair path inside
// the full pipeline: a blank workout name survives extraction
// normalization, so only a repair pass can fix it.
func TestPipelineRepairsThenPersists(t *testing.T) {
	repairCalls := 0
	oc := newFakeOracle(t, func(tier oracle.Tier, schemaName, user string) (map[string]any, error) {
		switch schemaName {
		case "workout_classification":
			return map[string]any{"isWorkout": true, "confidence": 0.9, "reason": ""}, nil
		case "concise_workout":
			ext := lowerBodyExtraction()
			ext["name"] = "   "
			return ext, nil
		case "workout_draft":
			repairCalls++
			// Echo back the draft with the broken field corrected. The test
			// reconstructs the expected post-expansion document.
			doc := Document(lowerBodyExtraction()).Clone()
			normalizeExtraction(doc, Options{Date: "2026-03-14", WeightUnit: "lbs"}.withDefaults(mustParseTime(t, "2026-03-14T10:00:00Z")), mustParseTime(t, "2026-03-14T10:00:00Z"))
			doc = ExpandSets(doc, "lbs")
			return map[string]any(doc), nil
		default:
			t.Errorf("unexpected oracle call with schema %q", schemaName)
			return nil, nil
		}
	})

	store := &fakePersister{}
	p := NewPipeline(oc, &fakeResolver{}, store, testParserConfig(), testLogger())

	_, err := p.Parse(context.Background(), lowerBodyText, Options{Date: "2026-03-14"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if repairCalls != 1 {
		t.Errorf("repair calls = %d, want 1", repairCalls)
	}
	if store.calls != 1 {
		t.Errorf("persister calls = %d, want 1", store.calls)
	}
}
