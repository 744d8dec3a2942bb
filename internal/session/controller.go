package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// maxNameLen is the longest workout name the store accepts.
const maxNameLen = 24

// ErrNoWorkout is returned by mutation methods before a successful Load, and
// after a Finish or Cancel has made the controller terminal.
var ErrNoWorkout = errors.New("no active workout loaded")

// SetSeed carries optional prefill values for a new set.
type SetSeed struct {
	Reps   *int
	Weight *float64
	RPE    *float64
	Notes  string
}

// Controller drives one active workout session: it owns the local copy of the
// workout and its sets, the session timer, and all mutation traffic to the
// store. Create exactly one controller per workout id and discard it when the
// session ends.
//
// Methods are safe for use from the tick goroutine and a single caller.
// The lock is held across store calls so a mutation and its remote
// confirmation (or rollback) stay coupled; callers are expected not to issue
// conflicting edits concurrently.
type Controller struct {
	store Store
	log   *slog.Logger
	now   func() time.Time

	userID    uuid.UUID
	workoutID uuid.UUID

	mu      sync.Mutex
	workout *models.Workout
	sets    []models.Set
	tm      timer
	loading bool
	loadErr error
}

// New creates a controller for one workout session.
func New(store Store, userID, workoutID uuid.UUID, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		store:     store,
		log:       log,
		now:       time.Now,
		userID:    userID,
		workoutID: workoutID,
	}
}

// Load fetches the workout and its sets as a single combined read. On failure
// the controller enters an error state with no partial workout visible;
// calling Load again is always safe and re-attempts the full fetch. Pause
// state and accumulated pause time survive a reload.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = true
	w, sets, err := c.store.FetchWorkoutWithSets(ctx, c.userID, c.workoutID)
	c.loading = false
	if err != nil {
		c.workout = nil
		c.sets = nil
		c.loadErr = fmt.Errorf("loading workout: %w", err)
		return c.loadErr
	}

	c.workout = w
	c.sets = sets
	c.tm.startedAt = w.StartedAt
	c.loadErr = nil
	return nil
}

// Refresh re-attempts the full load.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// Loading reports whether a load is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error from the most recent failed load, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Workout returns a copy of the current workout, or nil before a successful
// load and after Cancel.
func (c *Controller) Workout() *models.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workout == nil {
		return nil
	}
	w := *c.workout
	return &w
}

// Sets returns a copy of the current set list in insertion order.
func (c *Controller) Sets() []models.Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sets)
}

// SetsByExercise groups the current sets by exercise id, preserving insertion
// order within each group. An exercise with no sets has no key: key presence
// is what "this exercise is in the workout" means.
func (c *Controller) SetsByExercise() map[uuid.UUID][]models.Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	groups := make(map[uuid.UUID][]models.Set)
	for _, s := range c.sets {
		groups[s.ExerciseID] = append(groups[s.ExerciseID], s)
	}
	return groups
}

// Rename trims and truncates the name, applies it locally, then confirms with
// the store. On failure the local name is rolled back and the error returned.
func (c *Controller) Rename(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workout == nil {
		return ErrNoWorkout
	}

	newName := truncateName(name)
	prev := c.workout.Name
	c.workout.Name = newName

	updated, err := c.store.UpdateWorkout(ctx, c.workoutID, WorkoutPatch{Name: &newName})
	if err != nil {
		c.workout.Name = prev
		return fmt.Errorf("renaming workout: %w", err)
	}
	c.workout.Name = updated.Name
	return nil
}

// UpdateNote applies the note locally, then confirms with the store, rolling
// back on failure. Same contract as Rename.
func (c *Controller) UpdateNote(ctx context.Context, note string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workout == nil {
		return ErrNoWorkout
	}

	newNote := strings.TrimSpace(note)
	prev := c.workout.Note
	c.workout.Note = newNote

	updated, err := c.store.UpdateWorkout(ctx, c.workoutID, WorkoutPatch{Note: &newNote})
	if err != nil {
		c.workout.Note = prev
		return fmt.Errorf("updating note: %w", err)
	}
	c.workout.Note = updated.Note
	return nil
}

// AddSet creates a new set for the given exercise with order = count+1. This
// is the sole entry point for adding an exercise to the workout: the first
// set establishes membership. Local state changes only after the store call
// succeeds.
func (c *Controller) AddSet(ctx context.Context, exerciseID uuid.UUID, seed SetSeed) (*models.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workout == nil {
		return nil, ErrNoWorkout
	}
	if exerciseID == uuid.Nil {
		return nil, errors.New("missing exercise id")
	}

	created, err := c.store.CreateSet(ctx, CreateSetParams{
		UserID:     c.userID,
		WorkoutID:  c.workoutID,
		ExerciseID: exerciseID,
		SetOrder:   len(c.sets) + 1,
		Reps:       seed.Reps,
		Weight:     seed.Weight,
		RPE:        seed.RPE,
		Notes:      seed.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("adding set: %w", err)
	}
	c.sets = append(c.sets, *created)
	return created, nil
}

// UpdateSet sends a partial patch to the store and merges the confirmed
// record into local state. Local state is untouched on failure.
func (c *Controller) UpdateSet(ctx context.Context, setID uuid.UUID, patch SetPatch) (*models.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := c.store.UpdateSet(ctx, setID, patch)
	if err != nil {
		return nil, fmt.Errorf("updating set: %w", err)
	}
	for i := range c.sets {
		if c.sets[i].ID == setID {
			c.sets[i] = *updated
			break
		}
	}
	return updated, nil
}

// RemoveSet deletes the set from the store, then drops it locally. Local
// state is untouched on failure.
func (c *Controller) RemoveSet(ctx context.Context, setID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteSet(ctx, setID); err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	c.sets = slices.DeleteFunc(c.sets, func(s models.Set) bool { return s.ID == setID })
	return nil
}

// ReorderExercises recomputes a dense 1..N ordering across all sets: exercises
// in the given order, each exercise's sets in their prior relative order.
// Exercises missing from the argument keep their relative position at the end.
// Local state updates immediately; only sets whose order actually changed are
// patched remotely, and patch failures are logged without rolling back (the
// ordering is cosmetic and self-heals on the next reload).
func (c *Controller) ReorderExercises(ctx context.Context, exerciseOrder []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups := make(map[uuid.UUID][]models.Set)
	for _, s := range c.sets {
		groups[s.ExerciseID] = append(groups[s.ExerciseID], s)
	}
	for _, g := range groups {
		slices.SortStableFunc(g, func(a, b models.Set) int { return a.SetOrder - b.SetOrder })
	}

	order := slices.Clone(exerciseOrder)
	listed := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		listed[id] = true
	}
	for _, s := range c.sets {
		if !listed[s.ExerciseID] {
			listed[s.ExerciseID] = true
			order = append(order, s.ExerciseID)
		}
	}

	type patch struct {
		setID uuid.UUID
		order int
	}
	var patches []patch
	reordered := make([]models.Set, 0, len(c.sets))
	next := 1
	for _, exID := range order {
		for _, s := range groups[exID] {
			if s.SetOrder != next {
				s.SetOrder = next
				patches = append(patches, patch{setID: s.ID, order: next})
			}
			reordered = append(reordered, s)
			next++
		}
	}
	c.sets = reordered

	for _, p := range patches {
		o := p.order
		if _, err := c.store.UpdateSet(ctx, p.setID, SetPatch{SetOrder: &o}); err != nil {
			c.log.Error("reorder patch failed", "set_id", p.setID, "error", err)
		}
	}
}

// RemoveExercise drops every set for the exercise locally, then deletes each
// one from the store. Individual delete failures are logged, not rolled back.
func (c *Controller) RemoveExercise(ctx context.Context, exerciseID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []uuid.UUID
	kept := make([]models.Set, 0, len(c.sets))
	for _, s := range c.sets {
		if s.ExerciseID == exerciseID {
			removed = append(removed, s.ID)
		} else {
			kept = append(kept, s)
		}
	}
	c.sets = kept

	for _, id := range removed {
		if err := c.store.DeleteSet(ctx, id); err != nil {
			c.log.Error("removing exercise set failed", "set_id", id, "error", err)
		}
	}
}

// Pause freezes the timer. No-op if already paused or the workout is not
// active.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workout == nil || !c.workout.Active() {
		return
	}
	c.tm.pause(c.now())
}

// Resume unfreezes the timer. No-op if not paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tm.resume(c.now())
}

// IsPaused reports whether the timer is paused.
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tm.paused
}

// DurationSec returns the current active elapsed seconds.
func (c *Controller) DurationSec() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tm.elapsedSec(c.now())
}

// Finish ends the workout: one store call writes the end timestamp, final
// name, note, and duration together. There is no optimistic path here — a
// finish that failed remotely must not look finished locally, so the workout
// stays active and keeps ticking unless the call succeeds.
func (c *Controller) Finish(ctx context.Context, name, note string) (*models.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workout == nil {
		return nil, ErrNoWorkout
	}

	elapsed := c.tm.elapsedSec(c.now())
	updated, err := c.store.FinishWorkout(ctx, c.workoutID, truncateName(name), strings.TrimSpace(note), elapsed)
	if err != nil {
		return nil, fmt.Errorf("finishing workout: %w", err)
	}
	c.workout = updated
	return updated, nil
}

// Cancel deletes every set, then the workout record itself, and clears all
// local state. A failure part way through propagates unmasked so callers can
// tell the cleanup may have left orphaned sets behind.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workout == nil {
		return ErrNoWorkout
	}

	for _, s := range c.sets {
		if err := c.store.DeleteSet(ctx, s.ID); err != nil {
			return fmt.Errorf("cancelling workout: deleting set %s: %w", s.ID, err)
		}
	}
	if err := c.store.DeleteWorkout(ctx, c.workoutID); err != nil {
		return fmt.Errorf("cancelling workout: %w", err)
	}
	c.workout = nil
	c.sets = nil
	return nil
}

// Run drives the once-per-second tick loop until ctx is cancelled or the
// workout ends. Ticks are skipped while paused. The interval between
// checkpoints is best-effort: on every exact non-zero multiple of 30 elapsed
// seconds the current duration is written to the store, and a failed
// checkpoint is only logged — the authoritative duration is the one written
// at Finish.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.tick(ctx) {
				return
			}
		}
	}
}

// tick performs one timer step and returns true once the workout is no
// longer active.
func (c *Controller) tick(ctx context.Context) (done bool) {
	c.mu.Lock()
	if c.workout == nil || !c.workout.Active() {
		c.mu.Unlock()
		return true
	}
	if c.tm.paused {
		c.mu.Unlock()
		return false
	}
	sec := c.tm.elapsedSec(c.now())
	c.mu.Unlock()

	if sec > 0 && sec%30 == 0 {
		if _, err := c.store.UpdateWorkout(ctx, c.workoutID, WorkoutPatch{DurationSec: &sec}); err != nil {
			c.log.Warn("duration checkpoint failed", "workout_id", c.workoutID, "error", err)
		}
	}
	return false
}

// truncateName trims surrounding whitespace and caps the name at maxNameLen
// runes.
func truncateName(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxNameLen {
		return string(r[:maxNameLen])
	}
	return s
}
