package historycsv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// workoutNameLimit matches the workouts.name column width.
const workoutNameLimit = 24

// Result summarizes one import run.
type Result struct {
	WorkoutsImported int   `json:"workouts_imported"`
	SetsImported     int64 `json:"sets_imported"`
	ExercisesCreated int   `json:"exercises_created"`
}

// Provider imports workout history CSV exports into storage.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new history CSV import provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a history export and stores one finished workout per session.
// Existing workouts started on the same calendar day are replaced, so
// re-importing the same file always reflects the latest parser output.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID uuid.UUID) (*Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &Result{}
	exerciseIDs := make(map[string]uuid.UUID)

	for _, s := range sessions {
		if _, err := p.db.DeleteWorkoutsByStartDate(ctx, userID, s.Date); err != nil {
			return nil, fmt.Errorf("replacing session %s: %w", s.Date.Format("2006-01-02"), err)
		}

		endedAt := s.Date.Add(time.Duration(s.DurationSec) * time.Second)
		workout, err := p.db.InsertWorkout(ctx, models.Workout{
			UserID:      userID,
			Name:        truncateName(s.Name),
			StartedAt:   s.Date,
			EndedAt:     &endedAt,
			DurationSec: s.DurationSec,
		})
		if err != nil {
			return nil, fmt.Errorf("inserting workout for %s: %w", s.Date.Format("2006-01-02"), err)
		}

		var sets []models.Set
		order := 0
		for _, ex := range s.Exercises {
			exerciseID, created, err := p.resolveExercise(ctx, userID, ex, exerciseIDs)
			if err != nil {
				return nil, err
			}
			if created {
				result.ExercisesCreated++
			}
			for _, set := range ex.Sets {
				order++
				sets = append(sets, models.Set{
					UserID:     userID,
					WorkoutID:  workout.ID,
					ExerciseID: exerciseID,
					SetOrder:   order,
					Reps:       set.Reps,
					Weight:     set.Weight,
					RPE:        set.RPE,
					Completed:  true,
				})
			}
		}

		inserted, err := p.db.InsertSets(ctx, sets)
		if err != nil {
			return nil, fmt.Errorf("inserting sets for %s: %w", s.Date.Format("2006-01-02"), err)
		}
		result.WorkoutsImported++
		result.SetsImported += inserted
	}

	p.log.Info("history import complete",
		"workouts", result.WorkoutsImported,
		"sets", result.SetsImported,
		"exercises_created", result.ExercisesCreated,
	)
	return result, nil
}

// resolveExercise finds the user's exercise by name, creating it on first
// sight. The cache avoids repeated lookups within one import.
func (p *Provider) resolveExercise(ctx context.Context, userID uuid.UUID, ex SessionExercise, cache map[string]uuid.UUID) (uuid.UUID, bool, error) {
	if id, ok := cache[ex.Name]; ok {
		return id, false, nil
	}

	existing, err := p.db.GetExerciseByName(ctx, userID, ex.Name)
	if err == nil {
		cache[ex.Name] = existing.ID
		return existing.ID, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return uuid.Nil, false, fmt.Errorf("looking up exercise %q: %w", ex.Name, err)
	}

	created, err := p.db.CreateExercise(ctx, models.Exercise{
		UserID:    userID,
		Name:      ex.Name,
		Equipment: ex.Equipment,
	})
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("creating exercise %q: %w", ex.Name, err)
	}
	cache[ex.Name] = created.ID
	return created.ID, true, nil
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= workoutNameLimit {
		return name
	}
	return string([]rune(name)[:workoutNameLimit])
}
