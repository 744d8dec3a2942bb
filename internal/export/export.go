// Package export writes finished workouts to CSV files, one file per
// workout, in the same semicolon format the history importer reads. A SQLite
// state database records what has been written so reruns only pick up new
// sessions.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// fetchLimit bounds how many workouts one run considers.
const fetchLimit = 1000

// Source is the server-side view the exporter reads from. The api.Client
// satisfies it.
type Source interface {
	ListWorkouts(ctx context.Context, limit int) ([]models.Workout, error)
	FetchWorkoutWithSets(ctx context.Context, userID, workoutID uuid.UUID) (*models.Workout, []models.Set, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
}

// Summary reports what one export run did.
type Summary struct {
	Exported int
	Skipped  int
}

// Exporter writes finished workouts to CSV files under OutDir.
type Exporter struct {
	source Source
	state  *StateDB
	outDir string
	dryRun bool
	log    *slog.Logger
}

// New creates an exporter. With dryRun set it reports what it would write
// without touching the filesystem or the state database.
func New(source Source, state *StateDB, outDir string, dryRun bool, log *slog.Logger) *Exporter {
	return &Exporter{
		source: source,
		state:  state,
		outDir: outDir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run exports every finished workout not yet recorded in the state database.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	workouts, err := e.source.ListWorkouts(ctx, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	exercises, err := e.source.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	names := make(map[uuid.UUID]string, len(exercises))
	for _, ex := range exercises {
		names[ex.ID] = ex.Name
	}

	summary := &Summary{}
	for _, w := range workouts {
		if w.Active() {
			summary.Skipped++
			continue
		}
		done, err := e.state.IsExported(w.ID)
		if err != nil {
			return nil, fmt.Errorf("checking state for %s: %w", w.ID, err)
		}
		if done {
			summary.Skipped++
			continue
		}

		workout, sets, err := e.source.FetchWorkoutWithSets(ctx, w.UserID, w.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching workout %s: %w", w.ID, err)
		}

		file := exportFileName(workout)
		if e.dryRun {
			e.log.Info("would export", "workout", workout.ID, "file", file)
			summary.Exported++
			continue
		}

		path := filepath.Join(e.outDir, file)
		if err := os.WriteFile(path, []byte(renderCSV(workout, sets, names)), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		if err := e.state.MarkExported(workout.ID, file); err != nil {
			return nil, fmt.Errorf("recording state for %s: %w", workout.ID, err)
		}
		e.log.Info("exported workout", "workout", workout.ID, "file", file, "sets", len(sets))
		summary.Exported++
	}
	return summary, nil
}

func exportFileName(w *models.Workout) string {
	return w.StartedAt.Format("2006-01-02") + "_" + w.ID.String()[:8] + ".csv"
}

// renderCSV produces the semicolon history format: a session header line,
// then per exercise a numbered header, a column header, and one line per set.
// Exercises appear in the order of their first set.
func renderCSV(w *models.Workout, sets []models.Set, names map[uuid.UUID]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q;%q;%q\n",
		w.Name,
		w.StartedAt.Format("2006-01-02 15:04"),
		formatDuration(w.DurationSec))

	var order []uuid.UUID
	byExercise := make(map[uuid.UUID][]models.Set)
	for _, s := range sets {
		if _, ok := byExercise[s.ExerciseID]; !ok {
			order = append(order, s.ExerciseID)
		}
		byExercise[s.ExerciseID] = append(byExercise[s.ExerciseID], s)
	}

	for i, exerciseID := range order {
		name := names[exerciseID]
		if name == "" {
			name = exerciseID.String()
		}
		fmt.Fprintf(&b, "%q\n", fmt.Sprintf("%d. %s", i+1, name))
		b.WriteString("#;WEIGHT;REPS;RPE\n")
		for n, s := range byExercise[exerciseID] {
			fmt.Fprintf(&b, "%d;%s;%s;%s\n", n+1,
				formatFloat(s.Weight), formatInt(s.Reps), formatFloat(s.RPE))
		}
	}
	return b.String()
}

func formatDuration(sec int) string {
	return fmt.Sprintf("%d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

// formatFloat renders with a comma decimal separator, matching the import
// format. Nil renders as an empty cell.
func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strings.ReplaceAll(strconv.FormatFloat(*f, 'f', -1, 64), ".", ",")
}

func formatInt(n *int) string {
	if n == nil {
		return "0"
	}
	return strconv.Itoa(*n)
}
