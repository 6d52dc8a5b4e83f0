// Package parse turns freeform workout text into persisted, strictly-typed
// workout records. The pipeline orchestrates an unreliable text-generation
// oracle into schema-valid, referentially-consistent output with bounded
// repair loops:
//
//	classify → extract → expand sets → resolve exercises →
//	syntax repair → semantic repair → persist
package parse

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/liftscribe/internal/config"
	"github.com/claude/liftscribe/internal/models"
	"github.com/claude/liftscribe/internal/oracle"
)

// Resolver maps placeholder exercise names to canonical identities.
// Implemented by the exercise package; resolution is idempotent under
// concurrency via the store's slug uniqueness constraint.
type Resolver interface {
	ResolveNames(ctx context.Context, names []string) (map[string]*models.ExerciseIdentity, error)
}

// Persister commits a finished draft as one transaction and returns the
// hydrated aggregate. Implemented by the storage package.
type Persister interface {
	CreateWorkout(ctx context.Context, userID int, draft models.WorkoutDraft) (*models.Workout, error)
}

// Pipeline is the only component aware of overall parse control flow.
// It holds no per-request state; one Pipeline serves concurrent requests.
type Pipeline struct {
	oracle   oracle.Client
	resolver Resolver
	store    Persister
	log      *slog.Logger
	cfg      config.ParserConfig

	now func() time.Time
}

// NewPipeline wires the parse pipeline.
func NewPipeline(oc oracle.Client, resolver Resolver, store Persister, cfg config.ParserConfig, log *slog.Logger) *Pipeline {
	return &Pipeline{
		oracle:   oc,
		resolver: resolver,
		store:    store,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Parse runs the full pipeline on raw text. On success the workout graph
// is durably persisted; on failure the returned error carries exactly one
// FailureKind and nothing partial has been written.
func (p *Pipeline) Parse(ctx context.Context, text string, opts Options) (*models.Workout, error) {
	now := p.now()
	opts = opts.withDefaults(now)

	// Gate first: rejected input must cause no side effects downstream.
	cls, err := classifyContent(ctx, p.oracle, text)
	if err != nil {
		return nil, failf(KindExtractionFailed, err, "content classification failed")
	}
	if !cls.IsWorkout || cls.Confidence < p.cfg.ConfidenceCutoff {
		reason := cls.Reason
		if reason == "" {
			reason = "the text does not look like a workout"
		}
		return nil, failf(KindValidationRejected, nil, "%s", reason)
	}

	doc, err := extractStructure(ctx, p.oracle, text, opts, now)
	if err != nil {
		return nil, failf(KindExtractionFailed, err, "structure extraction failed")
	}

	doc = ExpandSets(doc, opts.WeightUnit)

	if err := p.resolveExercises(ctx, doc); err != nil {
		return nil, err
	}

	fixer := &syntaxFixer{oracle: p.oracle, log: p.log, maxIter: p.cfg.MaxRepairIterations}
	doc, err = fixer.Fix(ctx, text, doc, now)
	if err != nil {
		return nil, err
	}

	draft, err := doc.Decode()
	if err != nil {
		return nil, failf(KindExtractionFailed, err, "schema-valid draft failed to decode")
	}

	semFixer := &semanticFixer{oracle: p.oracle, log: p.log, maxIter: p.cfg.MaxRepairIterations}
	draft, err = semFixer.Fix(ctx, text, draft, opts.WeightUnit)
	if err != nil {
		return nil, err
	}

	workout, err := p.store.CreateWorkout(ctx, opts.UserID, draft)
	if err != nil {
		return nil, failf(KindPersistenceFailed, err, "persisting workout")
	}

	p.log.Info("workout parsed",
		"workout_id", workout.ID,
		"blocks", len(workout.Blocks),
		"user_id", opts.UserID,
	)
	return workout, nil
}

// resolveExercises annotates every exercise in the document with the
// canonical identity for its placeholder name. A placeholder that cannot
// be resolved fails the whole parse by name.
func (p *Pipeline) resolveExercises(ctx context.Context, doc Document) error {
	var names []string
	seen := map[string]bool{}
	for _, block := range doc.Blocks() {
		if block == nil {
			continue
		}
		for _, ex := range exercisesOf(block) {
			if ex == nil {
				continue
			}
			name := getString(ex, "exerciseName")
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	identities, err := p.resolver.ResolveNames(ctx, names)
	if err != nil {
		return failf(KindResolutionFailed, err, "resolving exercises")
	}

	for _, block := range doc.Blocks() {
		if block == nil {
			continue
		}
		for _, ex := range exercisesOf(block) {
			if ex == nil {
				continue
			}
			name := getString(ex, "exerciseName")
			id, ok := identities[name]
			if !ok || id == nil {
				return failf(KindResolutionFailed, nil, "no identity for exercise %q", name)
			}
			ex["exerciseId"] = id.ID.String()
			ex["exerciseSlug"] = id.Slug
		}
	}
	return nil
}
