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

const templateColumns = `id, user_id, split_id, name, created_at`

// CreateTemplate inserts a template and its seed sets. The sets carry a dense
// global order assigned here, so callers only provide the exercise grouping.
func (db *DB) CreateTemplate(ctx context.Context, tpl models.Template, sets []models.TemplateSet) (*models.Template, error) {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO templates (id, user_id, split_id, name, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		tpl.ID, tpl.UserID, tpl.SplitID, tpl.Name, tpl.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting template: %w", err)
	}

	if len(sets) > 0 {
		query := `INSERT INTO template_sets (id, user_id, template_id, exercise_id, set_order, reps, weight) VALUES `
		args := make([]any, 0, len(sets)*7)
		valueStrings := make([]string, 0, len(sets))

		for i := range sets {
			s := &sets[i]
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			s.TemplateID = tpl.ID
			s.SetOrder = i + 1

			base := i * 7
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			))
			args = append(args, s.ID, s.UserID, s.TemplateID, s.ExerciseID, s.SetOrder, s.Reps, s.Weight)
		}

		if _, err := db.Pool.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
			return nil, fmt.Errorf("inserting template sets: %w", err)
		}
	}

	return &tpl, nil
}

// ListTemplates retrieves the user's templates, newest first.
func (db *DB) ListTemplates(ctx context.Context, userID uuid.UUID) ([]models.Template, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+templateColumns+` FROM templates
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.SplitID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetTemplateWithSets retrieves a template and its seed sets in order.
func (db *DB) GetTemplateWithSets(ctx context.Context, templateID, userID uuid.UUID) (*models.Template, []models.TemplateSet, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1 AND user_id = $2`,
		templateID, userID)

	var t models.Template
	if err := row.Scan(&t.ID, &t.UserID, &t.SplitID, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("querying template: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, template_id, exercise_id, set_order, reps, weight
		 FROM template_sets WHERE template_id = $1 ORDER BY set_order ASC`,
		templateID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying template sets: %w", err)
	}
	defer rows.Close()

	var sets []models.TemplateSet
	for rows.Next() {
		var s models.TemplateSet
		if err := rows.Scan(&s.ID, &s.UserID, &s.TemplateID, &s.ExerciseID, &s.SetOrder, &s.Reps, &s.Weight); err != nil {
			return nil, nil, fmt.Errorf("scanning template set: %w", err)
		}
		sets = append(sets, s)
	}
	return &t, sets, rows.Err()
}

// DeleteTemplate removes a template and its seed sets.
func (db *DB) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM template_sets WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("deleting template sets: %w", err)
	}
	tag, err := db.Pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, templateID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
