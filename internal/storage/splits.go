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

// SplitPatch is a partial split update for the PATCH endpoint.
type SplitPatch struct {
	Name *string `json:"name,omitempty"`
	Star *bool   `json:"star,omitempty"`
}

// CreateSplit inserts a split folder.
func (db *DB) CreateSplit(ctx context.Context, sp models.Split) (*models.Split, error) {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = time.Now().UTC()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO splits (id, user_id, name, star, created_at) VALUES ($1,$2,$3,$4,$5)`,
		sp.ID, sp.UserID, sp.Name, sp.Star, sp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting split: %w", err)
	}
	return &sp, nil
}

// ListSplits retrieves the user's splits, starred first, then newest.
func (db *DB) ListSplits(ctx context.Context, userID uuid.UUID) ([]models.Split, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, star, created_at FROM splits
		 WHERE user_id = $1 ORDER BY star DESC, created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying splits: %w", err)
	}
	defer rows.Close()

	var result []models.Split
	for rows.Next() {
		var sp models.Split
		if err := rows.Scan(&sp.ID, &sp.UserID, &sp.Name, &sp.Star, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning split: %w", err)
		}
		result = append(result, sp)
	}
	return result, rows.Err()
}

// UpdateSplit applies a partial patch and returns the updated row.
func (db *DB) UpdateSplit(ctx context.Context, splitID uuid.UUID, patch SplitPatch) (*models.Split, error) {
	var assigns []string
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		assigns = append(assigns, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Star != nil {
		add("star", *patch.Star)
	}
	if len(assigns) == 0 {
		return nil, errors.New("empty split patch")
	}

	args = append(args, splitID)
	query := fmt.Sprintf(
		`UPDATE splits SET %s WHERE id = $%d RETURNING id, user_id, name, star, created_at`,
		strings.Join(assigns, ", "), len(args))

	var sp models.Split
	err := db.Pool.QueryRow(ctx, query, args...).Scan(&sp.ID, &sp.UserID, &sp.Name, &sp.Star, &sp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating split: %w", err)
	}
	return &sp, nil
}

// DeleteSplit removes a split folder. Templates inside keep a null split_id
// (the FK is ON DELETE SET NULL) rather than disappearing with the folder.
func (db *DB) DeleteSplit(ctx context.Context, splitID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM splits WHERE id = $1`, splitID)
	if err != nil {
		return fmt.Errorf("deleting split: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
