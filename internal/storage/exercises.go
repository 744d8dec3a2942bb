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

const exerciseColumns = `id, user_id, name, target_muscle, equipment, default_units, notes`

// ExercisePatch is a partial exercise update for the PATCH endpoint.
type ExercisePatch struct {
	Name         *string `json:"name,omitempty"`
	TargetMuscle *string `json:"target_muscle,omitempty"`
	Equipment    *string `json:"equipment,omitempty"`
	DefaultUnits *string `json:"default_units,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// CreateExercise inserts an exercise into the user's library.
func (db *DB) CreateExercise(ctx context.Context, ex models.Exercise) (*models.Exercise, error) {
	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, user_id, name, target_muscle, equipment, default_units, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		ex.ID, ex.UserID, ex.Name, ex.TargetMuscle, ex.Equipment, ex.DefaultUnits, ex.Notes)
	if err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}
	return &ex, nil
}

// GetExercise retrieves a single exercise by id.
func (db *DB) GetExercise(ctx context.Context, exerciseID uuid.UUID) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, exerciseID)

	var ex models.Exercise
	err := row.Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.TargetMuscle, &ex.Equipment, &ex.DefaultUnits, &ex.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &ex, nil
}

// GetExerciseByName retrieves the user's exercise with the given name.
func (db *DB) GetExerciseByName(ctx context.Context, userID uuid.UUID, name string) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE user_id = $1 AND name = $2`,
		userID, name)

	var ex models.Exercise
	err := row.Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.TargetMuscle, &ex.Equipment, &ex.DefaultUnits, &ex.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying exercise by name: %w", err)
	}
	return &ex, nil
}

// ListExercises retrieves the user's exercise library sorted by name.
func (db *DB) ListExercises(ctx context.Context, userID uuid.UUID) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE user_id = $1 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.TargetMuscle, &ex.Equipment, &ex.DefaultUnits, &ex.Notes); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

// UpdateExercise applies a partial patch and returns the updated row.
func (db *DB) UpdateExercise(ctx context.Context, exerciseID uuid.UUID, patch ExercisePatch) (*models.Exercise, error) {
	var assigns []string
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		assigns = append(assigns, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.TargetMuscle != nil {
		add("target_muscle", *patch.TargetMuscle)
	}
	if patch.Equipment != nil {
		add("equipment", *patch.Equipment)
	}
	if patch.DefaultUnits != nil {
		add("default_units", *patch.DefaultUnits)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if len(assigns) == 0 {
		return nil, errors.New("empty exercise patch")
	}

	args = append(args, exerciseID)
	query := fmt.Sprintf(
		`UPDATE exercises SET %s WHERE id = $%d RETURNING `+exerciseColumns,
		strings.Join(assigns, ", "), len(args))

	var ex models.Exercise
	err := db.Pool.QueryRow(ctx, query, args...).Scan(
		&ex.ID, &ex.UserID, &ex.Name, &ex.TargetMuscle, &ex.Equipment, &ex.DefaultUnits, &ex.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating exercise: %w", err)
	}
	return &ex, nil
}

// DeleteExercise removes an exercise from the library.
func (db *DB) DeleteExercise(ctx context.Context, exerciseID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, exerciseID)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
