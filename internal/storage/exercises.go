package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftscribe/internal/exercise"
	"github.com/claude/liftscribe/internal/models"
)

const exerciseColumns = "id, slug, name, tags, needs_review, created_at, updated_at"

// GetExerciseBySlug returns the identity for an exact slug, or
// exercise.ErrNotFound.
func (db *DB) GetExerciseBySlug(ctx context.Context, slug string) (*models.ExerciseIdentity, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE slug = $1`, slug)

	id, err := scanExercise(row)
	if err == pgx.ErrNoRows {
		return nil, exercise.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise by slug: %w", err)
	}
	return id, nil
}

// SearchExercisesByName runs a trigram similarity search over exercise
// names (pg_trgm), ranked best first. Scores are in [0,1].
func (db *DB) SearchExercisesByName(ctx context.Context, name string, limit int) ([]models.ExerciseMatch, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+`, similarity(name, $1) AS score
		 FROM exercises
		 WHERE similarity(name, $1) > 0
		 ORDER BY score DESC
		 LIMIT $2`,
		name, limit)
	if err != nil {
		return nil, fmt.Errorf("fuzzy exercise search: %w", err)
	}
	defer rows.Close()

	return scanExerciseMatches(rows)
}

// SearchExercisesByEmbedding runs a pgvector cosine nearest-neighbor
// search, returning candidates at or above the cosine-similarity
// threshold, ranked best first.
func (db *DB) SearchExercisesByEmbedding(ctx context.Context, embedding []float32, limit int, threshold float64) ([]models.ExerciseMatch, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+`, 1 - (embedding <=> $1::vector) AS score
		 FROM exercises
		 WHERE embedding IS NOT NULL
		   AND 1 - (embedding <=> $1::vector) >= $2
		 ORDER BY embedding <=> $1::vector
		 LIMIT $3`,
		vectorLiteral(embedding), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic exercise search: %w", err)
	}
	defer rows.Close()

	return scanExerciseMatches(rows)
}

// UpsertExercise inserts an identity, merging on slug conflict so racing
// creations of equivalent names all observe the same row. The DO UPDATE
// is required (not DO NOTHING) so RETURNING yields the winning row to
// every caller.
func (db *DB) UpsertExercise(ctx context.Context, identity models.ExerciseIdentity) (*models.ExerciseIdentity, error) {
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}

	var embedding any
	if len(identity.Embedding) > 0 {
		embedding = vectorLiteral(identity.Embedding)
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (id, slug, name, tags, needs_review, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6::vector)
		 ON CONFLICT (slug) DO UPDATE SET updated_at = now()
		 RETURNING `+exerciseColumns,
		identity.ID, identity.Slug, identity.Name, identity.Tags, identity.NeedsReview, embedding)

	out, err := scanExercise(row)
	if err != nil {
		return nil, fmt.Errorf("upserting exercise %q: %w", identity.Slug, err)
	}
	return out, nil
}

// ListExercisesNeedingReview returns auto-created identities awaiting a
// human pass, newest first.
func (db *DB) ListExercisesNeedingReview(ctx context.Context, limit int) ([]models.ExerciseIdentity, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE needs_review
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing review exercises: %w", err)
	}
	defer rows.Close()

	var out []models.ExerciseIdentity
	for rows.Next() {
		id, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, *id)
	}
	return out, rows.Err()
}

func scanExercise(row pgx.Row) (*models.ExerciseIdentity, error) {
	var id models.ExerciseIdentity
	err := row.Scan(&id.ID, &id.Slug, &id.Name, &id.Tags, &id.NeedsReview, &id.CreatedAt, &id.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func scanExerciseMatches(rows pgx.Rows) ([]models.ExerciseMatch, error) {
	var out []models.ExerciseMatch
	for rows.Next() {
		var m models.ExerciseMatch
		err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.Tags, &m.NeedsReview, &m.CreatedAt, &m.UpdatedAt, &m.Score)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// vectorLiteral renders an embedding in pgvector's input syntax.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
