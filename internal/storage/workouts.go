package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const workoutColumns = `id, user_id, name, started_at, ended_at, duration_sec, note`

// WorkoutPatch is a partial workout update for the PATCH endpoint. Mirrors
// session.WorkoutPatch without importing the session package (the client-side
// core is not a server dependency).
type WorkoutPatch struct {
	Name        *string `json:"name,omitempty"`
	Note        *string `json:"note,omitempty"`
	DurationSec *int    `json:"duration_sec,omitempty"`
}

// CreateWorkout starts a new session: a workout row with a default name, the
// current start timestamp, and no end timestamp.
func (db *DB) CreateWorkout(ctx context.Context, userID uuid.UUID) (*models.Workout, error) {
	w := models.Workout{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "My Workout",
		StartedAt: time.Now().UTC(),
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, started_at, ended_at, duration_sec, note)
		 VALUES ($1,$2,$3,$4,NULL,0,'')`,
		w.ID, w.UserID, w.Name, w.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting workout: %w", err)
	}
	return &w, nil
}

// InsertWorkout inserts a fully specified workout row. Used by the history
// importer, which supplies its own timestamps and duration.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) (*models.Workout, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, started_at, ended_at, duration_sec, note)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		w.ID, w.UserID, w.Name, w.StartedAt, w.EndedAt, w.DurationSec, w.Note)
	if err != nil {
		return nil, fmt.Errorf("inserting workout: %w", err)
	}
	return &w, nil
}

// DeleteWorkoutsByStartDate removes the user's workouts started on the given
// calendar day, sets included. Returns the number of workouts deleted.
func (db *DB) DeleteWorkoutsByStartDate(ctx context.Context, userID uuid.UUID, day time.Time) (int64, error) {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM sets WHERE workout_id IN (
			SELECT id FROM workouts WHERE user_id = $1 AND started_at::date = $2::date
		)`, userID, day)
	if err != nil {
		return 0, fmt.Errorf("deleting sets for day: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE user_id = $1 AND started_at::date = $2::date`,
		userID, day)
	if err != nil {
		return 0, fmt.Errorf("deleting workouts for day: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetWorkout retrieves a single workout owned by the user.
func (db *DB) GetWorkout(ctx context.Context, workoutID, userID uuid.UUID) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return w, nil
}

// GetWorkoutWithSets retrieves a workout and all its sets ordered by
// set_order, as a single combined read.
func (db *DB) GetWorkoutWithSets(ctx context.Context, workoutID, userID uuid.UUID) (*models.Workout, []models.Set, error) {
	w, err := db.GetWorkout(ctx, workoutID, userID)
	if err != nil {
		return nil, nil, err
	}
	sets, err := db.QuerySetsByWorkout(ctx, workoutID, userID)
	if err != nil {
		return nil, nil, err
	}
	return w, sets, nil
}

// ListWorkouts retrieves the user's workouts, newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID uuid.UUID, limit int) ([]models.Workout, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// UpdateWorkout applies a partial patch to an active workout and returns the
// updated row. Finished workouts are immutable and report ErrNotFound.
func (db *DB) UpdateWorkout(ctx context.Context, workoutID uuid.UUID, patch WorkoutPatch) (*models.Workout, error) {
	var assigns []string
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		assigns = append(assigns, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Note != nil {
		add("note", *patch.Note)
	}
	if patch.DurationSec != nil {
		add("duration_sec", *patch.DurationSec)
	}
	if len(assigns) == 0 {
		return nil, errors.New("empty workout patch")
	}

	args = append(args, workoutID)
	query := fmt.Sprintf(
		`UPDATE workouts SET %s WHERE id = $%d AND ended_at IS NULL RETURNING `+workoutColumns,
		strings.Join(assigns, ", "), len(args))

	w, err := scanWorkout(db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating workout: %w", err)
	}
	return w, nil
}

// FinishWorkout finalizes an active workout exactly once: end timestamp,
// final name, note, and authoritative duration in one write.
func (db *DB) FinishWorkout(ctx context.Context, workoutID uuid.UUID, name, note string, durationSec int) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE workouts SET ended_at = now(), name = $2, note = $3, duration_sec = $4
		 WHERE id = $1 AND ended_at IS NULL
		 RETURNING `+workoutColumns,
		workoutID, name, note, durationSec)

	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finishing workout: %w", err)
	}
	return w, nil
}

// DeleteWorkout removes a workout row.
func (db *DB) DeleteWorkout(ctx context.Context, workoutID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, workoutID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var w models.Workout
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.EndedAt, &w.DurationSec, &w.Note); err != nil {
		return nil, err
	}
	return &w, nil
}
