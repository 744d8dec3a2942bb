package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout is one training session. A workout is active while EndedAt is nil;
// once finished it is never mutated again.
type Workout struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
	DurationSec int        `json:"duration_sec"`
	Note        string     `json:"note"`
}

// Active reports whether the workout has not been finished yet.
func (w *Workout) Active() bool {
	return w.EndedAt == nil
}

// Set is one recorded attempt of an exercise within a workout. SetOrder is
// 1-based and unique within the workout; exercise membership in a workout is
// implied by the existence of at least one set referencing it.
type Set struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	WorkoutID  uuid.UUID `json:"workout_id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	SetOrder   int       `json:"set_order"`
	Reps       *int      `json:"reps"`
	Weight     *float64  `json:"weight"`
	RPE        *float64  `json:"rpe"`
	Completed  bool      `json:"completed"`
	Notes      string    `json:"notes"`
}

// Exercise is a named movement in the user's library, referenced by id from sets.
type Exercise struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	TargetMuscle string    `json:"target_muscle"`
	Equipment    string    `json:"equipment"`
	DefaultUnits string    `json:"default_units"`
	Notes        string    `json:"notes"`
}

// Template is a reusable predefined workout: a named list of exercises with
// seed sets, optionally grouped under a split.
type Template struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	SplitID   *uuid.UUID `json:"split_id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

// TemplateSet is one seed set inside a template. Mirrors Set minus the
// session-only fields (RPE, completed).
type TemplateSet struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TemplateID uuid.UUID `json:"template_id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	SetOrder   int       `json:"set_order"`
	Reps       *int      `json:"reps"`
	Weight     *float64  `json:"weight"`
}

// Split is a user-defined folder grouping templates (e.g. "Push/Pull/Legs").
type Split struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Star      bool      `json:"star"`
	CreatedAt time.Time `json:"created_at"`
}
