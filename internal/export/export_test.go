package export

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/ingest/historycsv"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

type fakeSource struct {
	workouts  []models.Workout
	sets      map[uuid.UUID][]models.Set
	exercises []models.Exercise
}

func (f *fakeSource) ListWorkouts(ctx context.Context, limit int) ([]models.Workout, error) {
	return f.workouts, nil
}

func (f *fakeSource) FetchWorkoutWithSets(ctx context.Context, userID, workoutID uuid.UUID) (*models.Workout, []models.Set, error) {
	for i := range f.workouts {
		if f.workouts[i].ID == workoutID {
			return &f.workouts[i], f.sets[workoutID], nil
		}
	}
	return nil, nil, os.ErrNotExist
}

func (f *fakeSource) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return f.exercises, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) (*fakeSource, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	workoutID := uuid.New()
	bench := uuid.New()
	rows := uuid.New()
	ended := time.Date(2026, 2, 19, 17, 56, 35, 0, time.UTC)
	weight := 102.5
	reps := 6
	rpe := 9.5

	return &fakeSource{
		workouts: []models.Workout{{
			ID:          workoutID,
			UserID:      userID,
			Name:        "Push Day",
			StartedAt:   time.Date(2026, 2, 19, 16, 54, 0, 0, time.UTC),
			EndedAt:     &ended,
			DurationSec: 3755,
		}},
		sets: map[uuid.UUID][]models.Set{
			workoutID: {
				{ID: uuid.New(), WorkoutID: workoutID, ExerciseID: bench, SetOrder: 1, Weight: &weight, Reps: &reps, RPE: &rpe},
				{ID: uuid.New(), WorkoutID: workoutID, ExerciseID: bench, SetOrder: 2, Weight: &weight, Reps: &reps},
				{ID: uuid.New(), WorkoutID: workoutID, ExerciseID: rows, SetOrder: 3, Reps: &reps},
			},
		},
		exercises: []models.Exercise{
			{ID: bench, Name: "Bench Press"},
			{ID: rows, Name: "Barbell Row"},
		},
	}, workoutID
}

// TestExportWritesRoundTrippableCSV verifies that an exported file parses
// back through the history importer with the same shape.
func TestExportWritesRoundTrippableCSV(t *testing.T) {
	source, workoutID := newFixture(t)
	outDir := t.TempDir()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state db: %v", err)
	}
	defer state.Close()

	e := New(source, state, outDir, false, discard())
	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if summary.Exported != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 1 exported", summary)
	}

	file := filepath.Join(outDir, "2026-02-19_"+workoutID.String()[:8]+".csv")
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	sessions, err := historycsv.Parse(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	s := sessions[0]
	if s.Name != "Push Day" {
		t.Errorf("name = %q", s.Name)
	}
	if s.DurationSec != 3755 {
		t.Errorf("duration = %d, want 3755", s.DurationSec)
	}
	if len(s.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(s.Exercises))
	}
	if s.Exercises[0].Name != "Bench Press" || len(s.Exercises[0].Sets) != 2 {
		t.Errorf("exercise 1 = %q with %d sets", s.Exercises[0].Name, len(s.Exercises[0].Sets))
	}
	set1 := s.Exercises[0].Sets[0]
	if set1.Weight == nil || *set1.Weight != 102.5 {
		t.Errorf("set1 weight = %v, want 102.5", set1.Weight)
	}
	if set1.RPE == nil || *set1.RPE != 9.5 {
		t.Errorf("set1 rpe = %v, want 9.5", set1.RPE)
	}
}

// TestExportSkipsAlreadyExported verifies that a second run writes nothing.
func TestExportSkipsAlreadyExported(t *testing.T) {
	source, _ := newFixture(t)
	outDir := t.TempDir()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state db: %v", err)
	}
	defer state.Close()

	e := New(source, state, outDir, false, discard())
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Exported != 0 || summary.Skipped != 1 {
		t.Errorf("summary = %+v, want all skipped", summary)
	}
}

// TestExportSkipsActiveWorkouts verifies that unfinished sessions are never
// written.
func TestExportSkipsActiveWorkouts(t *testing.T) {
	source, _ := newFixture(t)
	source.workouts[0].EndedAt = nil
	outDir := t.TempDir()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state db: %v", err)
	}
	defer state.Close()

	e := New(source, state, outDir, false, discard())
	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if summary.Exported != 0 || summary.Skipped != 1 {
		t.Errorf("summary = %+v, want all skipped", summary)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("out dir has %d files, want 0", len(entries))
	}
}

// TestExportDryRun verifies that dry-run counts but writes nothing and marks
// nothing exported.
func TestExportDryRun(t *testing.T) {
	source, workoutID := newFixture(t)
	outDir := t.TempDir()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state db: %v", err)
	}
	defer state.Close()

	e := New(source, state, outDir, true, discard())
	summary, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if summary.Exported != 1 {
		t.Errorf("summary = %+v, want 1 exported", summary)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("out dir has %d files, want 0", len(entries))
	}
	done, err := state.IsExported(workoutID)
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("dry-run should not mark workouts exported")
	}
}
