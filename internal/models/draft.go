package models

import (
	"time"

	"github.com/google/uuid"
)

// Weight units accepted anywhere in a workout.
const (
	UnitLbs = "lbs"
	UnitKg  = "kg"
)

// WorkoutDraft is the ephemeral, fully-typed form of a parsed workout.
// It only exists between syntax repair and persistence; each pipeline
// stage produces a fresh value rather than mutating a shared one.
type WorkoutDraft struct {
	Name         string       `json:"name"`
	Notes        string       `json:"notes"`
	Date         string       `json:"date"` // YYYY-MM-DD
	LastModified time.Time    `json:"lastModifiedTime"`
	Blocks       []BlockDraft `json:"blocks"`
}

// BlockDraft is one ordered group of exercises (e.g. a superset).
// DeclaredSets is the group-declared set count ("Superset A (4 sets)"),
// zero when the source text declares none.
type BlockDraft struct {
	Label        string          `json:"label"`
	Notes        string          `json:"notes"`
	DeclaredSets int             `json:"declaredSets"`
	Exercises    []ExerciseDraft `json:"exercises"`
}

// ExerciseDraft carries a free-text ExerciseName before identity
// resolution and ExerciseID/ExerciseSlug after it.
type ExerciseDraft struct {
	ExerciseID   string     `json:"exerciseId"`
	ExerciseSlug string     `json:"exerciseSlug"`
	ExerciseName string     `json:"exerciseName"`
	OrderInBlock int        `json:"orderInBlock"`
	Prescription string     `json:"prescription"`
	Notes        string     `json:"notes"`
	Sets         []SetDraft `json:"sets"`
}

// SetDraft is one planned set. Reps/Weight/Duration are nil until the set
// is actually performed; nil means "not yet performed", which is distinct
// from a zero value.
type SetDraft struct {
	SetNumber  int      `json:"setNumber"` // 1-indexed, contiguous
	WeightUnit string   `json:"weightUnit"`
	Reps       *float64 `json:"reps"`
	Weight     *float64 `json:"weight"`
	Duration   *float64 `json:"duration"`
	RPE        *float64 `json:"rpe"`
	Notes      string   `json:"notes"`
}

// EmptySet returns a defaulted SetDraft for the given position.
func EmptySet(number int, weightUnit string) SetDraft {
	return SetDraft{SetNumber: number, WeightUnit: weightUnit}
}

// ExerciseIdentity is the canonical, deduplicated record for one exercise.
// Slug is the unique dedup key; any two names that normalize to the same
// slug refer to the same identity.
type ExerciseIdentity struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Tags        []string  `json:"tags"`
	NeedsReview bool      `json:"needsReview"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ExerciseMatch is a ranked search candidate with a similarity score in
// [0,1] (trigram similarity or cosine similarity, depending on the search).
type ExerciseMatch struct {
	ExerciseIdentity
	Score float64 `json:"score"`
}
