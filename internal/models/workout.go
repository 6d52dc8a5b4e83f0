package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a persisted workout header.
type WorkoutRow struct {
	ID           uuid.UUID `json:"id"`
	UserID       int       `json:"userId"`
	Name         string    `json:"name"`
	Notes        string    `json:"notes"`
	Date         time.Time `json:"date"`
	LastModified time.Time `json:"lastModifiedTime"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BlockRow is a persisted workout block.
type BlockRow struct {
	ID        uuid.UUID `json:"id"`
	WorkoutID uuid.UUID `json:"workoutId"`
	Position  int       `json:"position"`
	Label     string    `json:"label"`
	Notes     string    `json:"notes"`
}

// WorkoutExerciseRow is a persisted exercise instance inside a block,
// referencing a canonical exercise identity by foreign key.
type WorkoutExerciseRow struct {
	ID           uuid.UUID `json:"id"`
	BlockID      uuid.UUID `json:"blockId"`
	ExerciseID   uuid.UUID `json:"exerciseId"`
	OrderInBlock int       `json:"orderInBlock"`
	Prescription string    `json:"prescription"`
	Notes        string    `json:"notes"`
}

// SetRow is a persisted set.
type SetRow struct {
	ID                uuid.UUID `json:"id"`
	WorkoutExerciseID uuid.UUID `json:"workoutExerciseId"`
	SetNumber         int       `json:"setNumber"`
	WeightUnit        string    `json:"weightUnit"`
	Reps              *float64  `json:"reps"`
	Weight            *float64  `json:"weight"`
	Duration          *float64  `json:"duration"`
	RPE               *float64  `json:"rpe"`
	Notes             string    `json:"notes"`
}

// Workout is the fully hydrated aggregate returned after persistence.
type Workout struct {
	WorkoutRow
	Blocks []WorkoutBlock `json:"blocks"`
}

// WorkoutBlock is a block with its exercise instances.
type WorkoutBlock struct {
	BlockRow
	Exercises []WorkoutExercise `json:"exercises"`
}

// WorkoutExercise is an exercise instance with its sets and the resolved
// identity it references.
type WorkoutExercise struct {
	WorkoutExerciseRow
	ExerciseSlug string   `json:"exerciseSlug"`
	ExerciseName string   `json:"exerciseName"`
	Sets         []SetRow `json:"sets"`
}
