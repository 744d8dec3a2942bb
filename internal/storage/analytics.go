package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// VolumeRow is per-exercise training volume over a date range.
type VolumeRow struct {
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	Tonnage      float64   `json:"tonnage"`
}

// GetVolumeByExercise aggregates completed sets per exercise for workouts
// started in [start, end). Tonnage is the sum of weight times reps.
func (db *DB) GetVolumeByExercise(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]VolumeRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT e.id, e.name,
		        COUNT(*),
		        COALESCE(SUM(s.reps), 0),
		        COALESCE(SUM(s.weight * s.reps), 0)
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 JOIN exercises e ON e.id = s.exercise_id
		 WHERE s.user_id = $1 AND s.completed
		   AND w.started_at >= $2 AND w.started_at < $3
		 GROUP BY e.id, e.name
		 ORDER BY 5 DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volume: %w", err)
	}
	defer rows.Close()

	var result []VolumeRow
	for rows.Next() {
		var v VolumeRow
		if err := rows.Scan(&v.ExerciseID, &v.ExerciseName, &v.Sets, &v.Reps, &v.Tonnage); err != nil {
			return nil, fmt.Errorf("scanning volume row: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// QueryWorkoutsByDateRange retrieves workouts started in [start, end),
// newest first.
func (db *DB) QueryWorkoutsByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY started_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by range: %w", err)
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
