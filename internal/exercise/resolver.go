// Package exercise resolves free-text exercise names to canonical,
// deduplicated exercise identities.
package exercise

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/claude/liftscribe/internal/models"
	"github.com/claude/liftscribe/internal/oracle"
)

// Store is the identity store capability the resolver needs. The upsert's
// ON CONFLICT (slug) merge is the only concurrency-correctness mechanism:
// N racing creations of one slug must collapse to exactly one row.
type Store interface {
	GetExerciseBySlug(ctx context.Context, slug string) (*models.ExerciseIdentity, error)
	SearchExercisesByName(ctx context.Context, name string, limit int) ([]models.ExerciseMatch, error)
	SearchExercisesByEmbedding(ctx context.Context, embedding []float32, limit int, threshold float64) ([]models.ExerciseMatch, error)
	UpsertExercise(ctx context.Context, identity models.ExerciseIdentity) (*models.ExerciseIdentity, error)
}

// ErrNotFound is returned by Store.GetExerciseBySlug for a missing slug.
var ErrNotFound = fmt.Errorf("exercise not found")

// Config holds the resolver's tuned knobs.
type Config struct {
	FuzzyThreshold    float64
	SemanticThreshold float64
	Concurrency       int
	CacheSize         int
}

// Resolver implements getOrCreate semantics for exercise identities:
// exact slug match, then trigram search, then embedding search, then
// oracle-assisted creation.
type Resolver struct {
	store  Store
	oracle oracle.Client
	log    *slog.Logger
	cfg    Config
	cache  *identityCache
}

func NewResolver(store Store, oc oracle.Client, cfg Config, log *slog.Logger) (*Resolver, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	cache, err := newIdentityCache(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating identity cache: %w", err)
	}
	return &Resolver{store: store, oracle: oc, log: log, cfg: cfg, cache: cache}, nil
}

// Invalidate drops a cached slug so the next resolution re-reads the store.
func (r *Resolver) Invalidate(slug string) { r.cache.invalidate(slug) }

// Refresh drops the whole cache.
func (r *Resolver) Refresh() { r.cache.purge() }

// ResolveNames resolves a batch of placeholder names in parallel. Each
// name resolves independently; the first failure cancels the rest and is
// returned with the failing name attached.
func (r *Resolver) ResolveNames(ctx context.Context, names []string) (map[string]*models.ExerciseIdentity, error) {
	out := make(map[string]*models.ExerciseIdentity, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, name := range names {
		g.Go(func() error {
			id, err := r.GetOrCreateExerciseByName(gctx, name)
			if err != nil {
				return fmt.Errorf("resolving %q: %w", name, err)
			}
			mu.Lock()
			out[name] = id
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrCreateExerciseByName maps one free-text name to its identity.
// Lookup order: cache, exact slug, trigram similarity, embedding
// similarity, then creation. Idempotent across concurrent callers and
// requests because creation is an insert-or-merge on the slug constraint.
func (r *Resolver) GetOrCreateExerciseByName(ctx context.Context, name string) (*models.ExerciseIdentity, error) {
	normalized := Normalize(name)
	slug := Slugify(normalized)
	if slug == "" {
		return nil, fmt.Errorf("name %q normalizes to an empty slug", name)
	}

	if id, ok := r.cache.get(slug); ok {
		return id, nil
	}

	id, err := r.store.GetExerciseBySlug(ctx, slug)
	if err == nil {
		r.cache.put(id)
		return id, nil
	}
	if err != ErrNotFound {
		return nil, fmt.Errorf("slug lookup: %w", err)
	}

	if id := r.bestFuzzyMatch(ctx, normalized); id != nil {
		r.cache.put(id)
		return id, nil
	}

	embedding, embErr := r.embed(ctx, normalized)
	if embErr == nil {
		if id := r.bestSemanticMatch(ctx, embedding); id != nil {
			r.cache.put(id)
			return id, nil
		}
	} else {
		r.log.Warn("embedding lookup skipped", "name", name, "error", embErr)
	}

	created, err := r.create(ctx, name, normalized, slug, embedding)
	if err != nil {
		return nil, err
	}
	r.cache.put(created)
	return created, nil
}

func (r *Resolver) bestFuzzyMatch(ctx context.Context, normalized string) *models.ExerciseIdentity {
	matches, err := r.store.SearchExercisesByName(ctx, normalized, 5)
	if err != nil {
		r.log.Warn("fuzzy search failed", "name", normalized, "error", err)
		return nil
	}
	for _, m := range matches {
		if m.Score >= r.cfg.FuzzyThreshold {
			id := m.ExerciseIdentity
			return &id
		}
	}
	return nil
}

func (r *Resolver) bestSemanticMatch(ctx context.Context, embedding []float32) *models.ExerciseIdentity {
	if len(embedding) == 0 {
		return nil
	}
	matches, err := r.store.SearchExercisesByEmbedding(ctx, embedding, 5, r.cfg.SemanticThreshold)
	if err != nil {
		r.log.Warn("semantic search failed", "error", err)
		return nil
	}
	if len(matches) == 0 {
		return nil
	}
	id := matches[0].ExerciseIdentity
	return &id
}

func (r *Resolver) embed(ctx context.Context, normalized string) ([]float32, error) {
	vecs, err := r.oracle.Embed(ctx, []string{normalized})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

// create inserts a new identity under the given slug. The oracle may
// supply a richer display name and tags; if that call fails we fall back
// to a name-only identity rather than failing the parse. Either way the
// row lands with needs_review = true.
func (r *Resolver) create(ctx context.Context, rawName, normalized, slug string, embedding []float32) (*models.ExerciseIdentity, error) {
	displayName, tags := r.enrich(ctx, rawName, normalized)

	if len(embedding) == 0 {
		vec, err := r.embed(ctx, normalized)
		if err != nil {
			return nil, fmt.Errorf("embedding new exercise: %w", err)
		}
		embedding = vec
	}

	created, err := r.store.UpsertExercise(ctx, models.ExerciseIdentity{
		Slug:        slug,
		Name:        displayName,
		Tags:        tags,
		NeedsReview: true,
		Embedding:   embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("creating exercise %q: %w", slug, err)
	}

	r.log.Info("exercise created", "slug", created.Slug, "name", created.Name)
	return created, nil
}

const enrichSystemPrompt = `You name gym exercises. Given a raw exercise name from a workout log, produce a clean display name in title case (expanding shorthand like DB or OHP) and up to five lowercase tags describing equipment and primary muscle groups.`

func (r *Resolver) enrich(ctx context.Context, rawName, normalized string) (string, []string) {
	fallback := titleCase(normalized)

	obj, err := r.oracle.GenerateJSON(ctx, oracle.TierFast, enrichSystemPrompt,
		fmt.Sprintf("Raw exercise name: %q", rawName),
		"exercise_identity", enrichSchema())
	if err != nil {
		r.log.Warn("exercise enrichment skipped", "name", rawName, "error", err)
		return fallback, nil
	}

	name, _ := obj["name"].(string)
	if strings.TrimSpace(name) == "" {
		name = fallback
	}
	var tags []string
	if arr, ok := obj["tags"].([]any); ok {
		for _, t := range arr {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, strings.ToLower(strings.TrimSpace(s)))
			}
		}
	}
	return name, tags
}

func enrichSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "tags"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"tags": map[string]any{
				"type":     "array",
				"maxItems": 5,
				"items":    map[string]any{"type": "string"},
			},
		},
	}
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
