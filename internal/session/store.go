package session

import (
	"context"
	"errors"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned by Store implementations when a document does not
// exist or is not owned by the requesting user.
var ErrNotFound = errors.New("not found")

// CreateSetParams carries everything needed to create one set.
type CreateSetParams struct {
	UserID     uuid.UUID
	WorkoutID  uuid.UUID
	ExerciseID uuid.UUID
	SetOrder   int
	Reps       *int
	Weight     *float64
	RPE        *float64
	Notes      string
}

// SetPatch is a partial set update. Nil fields are left untouched.
type SetPatch struct {
	SetOrder  *int     `json:"set_order,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	RPE       *float64 `json:"rpe,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// WorkoutPatch is a partial workout update. Nil fields are left untouched.
type WorkoutPatch struct {
	Name        *string `json:"name,omitempty"`
	Note        *string `json:"note,omitempty"`
	DurationSec *int    `json:"duration_sec,omitempty"`
}

// Store is the remote document store a session controller runs against.
// All calls are plain request/response; any of them can fail, and the
// controller treats every failure the same way (no subtype handling beyond
// ErrNotFound on fetches).
type Store interface {
	FetchWorkoutWithSets(ctx context.Context, userID, workoutID uuid.UUID) (*models.Workout, []models.Set, error)
	CreateSet(ctx context.Context, p CreateSetParams) (*models.Set, error)
	UpdateSet(ctx context.Context, setID uuid.UUID, patch SetPatch) (*models.Set, error)
	DeleteSet(ctx context.Context, setID uuid.UUID) error
	UpdateWorkout(ctx context.Context, workoutID uuid.UUID, patch WorkoutPatch) (*models.Workout, error)
	FinishWorkout(ctx context.Context, workoutID uuid.UUID, name, note string, durationSec int) (*models.Workout, error)
	DeleteWorkout(ctx context.Context, workoutID uuid.UUID) error
	FetchExerciseByID(ctx context.Context, exerciseID uuid.UUID) (*models.Exercise, error)
}
