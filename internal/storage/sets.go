package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const setColumns = `id, user_id, workout_id, exercise_id, set_order, reps, weight, rpe, completed, notes`

// SetPatch is a partial set update for the PATCH endpoint. Mirrors
// session.SetPatch without importing the session package.
type SetPatch struct {
	SetOrder  *int     `json:"set_order,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	RPE       *float64 `json:"rpe,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// CreateSet inserts one set row, assigning an id if the caller left it zero.
func (db *DB) CreateSet(ctx context.Context, set models.Set) (*models.Set, error) {
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO sets (id, user_id, workout_id, exercise_id, set_order, reps, weight, rpe, completed, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		set.ID, set.UserID, set.WorkoutID, set.ExerciseID, set.SetOrder,
		set.Reps, set.Weight, set.RPE, set.Completed, set.Notes)
	if err != nil {
		return nil, fmt.Errorf("inserting set: %w", err)
	}
	return &set, nil
}

// InsertSets inserts a batch of set rows in one statement. Returns the number
// of rows inserted.
func (db *DB) InsertSets(ctx context.Context, sets []models.Set) (int64, error) {
	if len(sets) == 0 {
		return 0, nil
	}

	var values []string
	var args []any
	for i, s := range sets {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		base := i * 10
		values = append(values, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10))
		args = append(args, s.ID, s.UserID, s.WorkoutID, s.ExerciseID, s.SetOrder,
			s.Reps, s.Weight, s.RPE, s.Completed, s.Notes)
	}

	query := `INSERT INTO sets (` + setColumns + `) VALUES ` + strings.Join(values, ", ")
	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QuerySetsByWorkout retrieves all sets for a workout in set_order.
func (db *DB) QuerySetsByWorkout(ctx context.Context, workoutID, userID uuid.UUID) ([]models.Set, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM sets
		 WHERE workout_id = $1 AND user_id = $2
		 ORDER BY set_order ASC`,
		workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []models.Set
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.ID, &s.UserID, &s.WorkoutID, &s.ExerciseID, &s.SetOrder,
			&s.Reps, &s.Weight, &s.RPE, &s.Completed, &s.Notes); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// UpdateSet applies a partial patch and returns the updated row.
func (db *DB) UpdateSet(ctx context.Context, setID uuid.UUID, patch SetPatch) (*models.Set, error) {
	var assigns []string
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		assigns = append(assigns, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.SetOrder != nil {
		add("set_order", *patch.SetOrder)
	}
	if patch.Reps != nil {
		add("reps", *patch.Reps)
	}
	if patch.Weight != nil {
		add("weight", *patch.Weight)
	}
	if patch.RPE != nil {
		add("rpe", *patch.RPE)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if len(assigns) == 0 {
		return nil, errors.New("empty set patch")
	}

	args = append(args, setID)
	query := fmt.Sprintf(
		`UPDATE sets SET %s WHERE id = $%d RETURNING `+setColumns,
		strings.Join(assigns, ", "), len(args))

	var s models.Set
	err := db.Pool.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.UserID, &s.WorkoutID, &s.ExerciseID, &s.SetOrder,
		&s.Reps, &s.Weight, &s.RPE, &s.Completed, &s.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating set: %w", err)
	}
	return &s, nil
}

// DeleteSet removes one set row.
func (db *DB) DeleteSet(ctx context.Context, setID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sets WHERE id = $1`, setID)
	if err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSetsByWorkout removes every set belonging to a workout. Returns the
// number of rows deleted.
func (db *DB) DeleteSetsByWorkout(ctx context.Context, workoutID uuid.UUID) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sets WHERE workout_id = $1`, workoutID)
	if err != nil {
		return 0, fmt.Errorf("deleting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteOrphanedSets removes sets whose parent workout no longer exists.
// A cancelled session can leave these behind when the client dies between the
// set deletes and the workout delete; the reconciliation sweep cleans up.
func (db *DB) DeleteOrphanedSets(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM sets WHERE NOT EXISTS (
			SELECT 1 FROM workouts WHERE workouts.id = sets.workout_id
		)`)
	if err != nil {
		return 0, fmt.Errorf("deleting orphaned sets: %w", err)
	}
	return tag.RowsAffected(), nil
}
