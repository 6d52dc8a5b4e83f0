package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftscribe/internal/models"
)

// CreateWorkout persists a finished draft as one transaction: workout →
// blocks → exercise instances → sets. Exercise references still carried
// as slugs are translated to foreign keys inside the transaction; any
// failure (including an unresolved slug) rolls back everything, so a
// partial workout is never visible.
func (db *DB) CreateWorkout(ctx context.Context, userID int, draft models.WorkoutDraft) (*models.Workout, error) {
	date, err := time.Parse("2006-01-02", draft.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing workout date %q: %w", draft.Date, err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	workout := &models.Workout{
		WorkoutRow: models.WorkoutRow{
			ID:           uuid.New(),
			UserID:       userID,
			Name:         draft.Name,
			Notes:        draft.Notes,
			Date:         date,
			LastModified: draft.LastModified,
		},
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, name, notes, workout_date, last_modified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		workout.ID, userID, draft.Name, draft.Notes, date, draft.LastModified,
	).Scan(&workout.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting workout: %w", err)
	}

	for bi, blockDraft := range draft.Blocks {
		block := models.WorkoutBlock{
			BlockRow: models.BlockRow{
				ID:        uuid.New(),
				WorkoutID: workout.ID,
				Position:  bi,
				Label:     blockDraft.Label,
				Notes:     blockDraft.Notes,
			},
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO workout_blocks (id, workout_id, position, label, notes)
			 VALUES ($1, $2, $3, $4, $5)`,
			block.ID, workout.ID, bi, blockDraft.Label, blockDraft.Notes)
		if err != nil {
			return nil, fmt.Errorf("inserting block %d: %w", bi, err)
		}

		for _, exDraft := range blockDraft.Exercises {
			instance, err := insertExerciseInstance(ctx, tx, block.ID, exDraft)
			if err != nil {
				return nil, err
			}
			block.Exercises = append(block.Exercises, *instance)
		}
		workout.Blocks = append(workout.Blocks, block)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing workout: %w", err)
	}
	return workout, nil
}

func insertExerciseInstance(ctx context.Context, tx pgx.Tx, blockID uuid.UUID, draft models.ExerciseDraft) (*models.WorkoutExercise, error) {
	exerciseID, name, slug, err := resolveExerciseRef(ctx, tx, draft)
	if err != nil {
		return nil, err
	}

	instance := models.WorkoutExercise{
		WorkoutExerciseRow: models.WorkoutExerciseRow{
			ID:           uuid.New(),
			BlockID:      blockID,
			ExerciseID:   exerciseID,
			OrderInBlock: draft.OrderInBlock,
			Prescription: draft.Prescription,
			Notes:        draft.Notes,
		},
		ExerciseSlug: slug,
		ExerciseName: name,
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_exercises (id, block_id, exercise_id, order_in_block, prescription, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		instance.ID, blockID, exerciseID, draft.OrderInBlock, draft.Prescription, draft.Notes)
	if err != nil {
		return nil, fmt.Errorf("inserting exercise instance %q: %w", slug, err)
	}

	for _, setDraft := range draft.Sets {
		set := models.SetRow{
			ID:                uuid.New(),
			WorkoutExerciseID: instance.ID,
			SetNumber:         setDraft.SetNumber,
			WeightUnit:        setDraft.WeightUnit,
			Reps:              setDraft.Reps,
			Weight:            setDraft.Weight,
			Duration:          setDraft.Duration,
			RPE:               setDraft.RPE,
			Notes:             setDraft.Notes,
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO workout_sets (id, workout_exercise_id, set_number, weight_unit, reps, weight, duration_sec, rpe, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			set.ID, instance.ID, set.SetNumber, set.WeightUnit, set.Reps, set.Weight, set.Duration, set.RPE, set.Notes)
		if err != nil {
			return nil, fmt.Errorf("inserting set %d of %q: %w", setDraft.SetNumber, slug, err)
		}
		instance.Sets = append(instance.Sets, set)
	}

	return &instance, nil
}

// resolveExerciseRef translates a draft's exercise reference to a foreign
// key. An id takes precedence over a bare slug; a draft carrying neither
// aborts the transaction.
func resolveExerciseRef(ctx context.Context, tx pgx.Tx, draft models.ExerciseDraft) (uuid.UUID, string, string, error) {
	if draft.ExerciseID != "" {
		id, err := uuid.Parse(draft.ExerciseID)
		if err != nil {
			return uuid.Nil, "", "", fmt.Errorf("invalid exercise id %q: %w", draft.ExerciseID, err)
		}
		var name, slug string
		err = tx.QueryRow(ctx, `SELECT name, slug FROM exercises WHERE id = $1`, id).Scan(&name, &slug)
		if err != nil {
			return uuid.Nil, "", "", fmt.Errorf("exercise id %s does not exist: %w", id, err)
		}
		return id, name, slug, nil
	}

	if draft.ExerciseSlug != "" {
		var id uuid.UUID
		var name string
		err := tx.QueryRow(ctx, `SELECT id, name FROM exercises WHERE slug = $1`, draft.ExerciseSlug).Scan(&id, &name)
		if err != nil {
			return uuid.Nil, "", "", fmt.Errorf("exercise slug %q does not exist: %w", draft.ExerciseSlug, err)
		}
		return id, name, draft.ExerciseSlug, nil
	}

	return uuid.Nil, "", "", fmt.Errorf("exercise %q has no resolved identity", draft.ExerciseName)
}

// QueryWorkouts lists workout headers for a user, newest first.
func (db *DB) QueryWorkouts(ctx context.Context, userID, limit int) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, notes, workout_date, last_modified, created_at
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY workout_date DESC, created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var out []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Notes, &w.Date, &w.LastModified, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWorkout hydrates one workout aggregate: blocks, exercise instances
// with their resolved identities, and sets.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, notes, workout_date, last_modified, created_at
		 FROM workouts WHERE id = $1 AND user_id = $2`,
		workoutID, userID,
	).Scan(&w.ID, &w.UserID, &w.Name, &w.Notes, &w.Date, &w.LastModified, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	blockRows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, position, label, notes
		 FROM workout_blocks WHERE workout_id = $1 ORDER BY position`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer blockRows.Close()

	for blockRows.Next() {
		var b models.WorkoutBlock
		if err := blockRows.Scan(&b.ID, &b.WorkoutID, &b.Position, &b.Label, &b.Notes); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		w.Blocks = append(w.Blocks, b)
	}
	if err := blockRows.Err(); err != nil {
		return nil, err
	}

	for bi := range w.Blocks {
		exercises, err := db.blockExercises(ctx, w.Blocks[bi].ID)
		if err != nil {
			return nil, err
		}
		w.Blocks[bi].Exercises = exercises
	}
	return &w, nil
}

func (db *DB) blockExercises(ctx context.Context, blockID uuid.UUID) ([]models.WorkoutExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT we.id, we.block_id, we.exercise_id, we.order_in_block, we.prescription, we.notes,
		        e.slug, e.name
		 FROM workout_exercises we
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE we.block_id = $1
		 ORDER BY we.order_in_block`,
		blockID)
	if err != nil {
		return nil, fmt.Errorf("querying block exercises: %w", err)
	}
	defer rows.Close()

	var out []models.WorkoutExercise
	for rows.Next() {
		var e models.WorkoutExercise
		err := rows.Scan(&e.ID, &e.BlockID, &e.ExerciseID, &e.OrderInBlock, &e.Prescription, &e.Notes,
			&e.ExerciseSlug, &e.ExerciseName)
		if err != nil {
			return nil, fmt.Errorf("scanning block exercise: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		sets, err := db.exerciseSets(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Sets = sets
	}
	return out, nil
}

func (db *DB) exerciseSets(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.SetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_exercise_id, set_number, weight_unit, reps, weight, duration_sec, rpe, notes
		 FROM workout_sets
		 WHERE workout_exercise_id = $1
		 ORDER BY set_number`,
		workoutExerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var out []models.SetRow
	for rows.Next() {
		var s models.SetRow
		err := rows.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &s.WeightUnit, &s.Reps, &s.Weight, &s.Duration, &s.RPE, &s.Notes)
		if err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
