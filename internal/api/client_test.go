package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

// TestRequestHeaders verifies that every request carries the API key and the
// user id.
func TestRequestHeaders(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("X-API-Key = %q, want secret", got)
		}
		if got := r.Header.Get("X-User-ID"); got != userID.String() {
			t.Errorf("X-User-ID = %q, want %s", got, userID)
		}
		json.NewEncoder(w).Encode([]models.Workout{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", userID)
	if _, err := c.ListWorkouts(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestFetchWorkoutWithSets verifies the combined read is decoded from the
// server's envelope.
func TestFetchWorkoutWithSets(t *testing.T) {
	workoutID := uuid.New()
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/"+workoutID.String() {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"workout": models.Workout{ID: workoutID, UserID: userID, Name: "Push Day", StartedAt: time.Now().UTC()},
			"sets": []models.Set{
				{ID: uuid.New(), WorkoutID: workoutID, SetOrder: 1},
				{ID: uuid.New(), WorkoutID: workoutID, SetOrder: 2},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", userID)
	workout, sets, err := c.FetchWorkoutWithSets(context.Background(), userID, workoutID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workout.Name != "Push Day" {
		t.Errorf("name = %q, want Push Day", workout.Name)
	}
	if len(sets) != 2 {
		t.Errorf("sets = %d, want 2", len(sets))
	}
}

// TestNotFoundMapping verifies that a 404 response surfaces as
// session.ErrNotFound.
func TestNotFoundMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", uuid.New())
	_, _, err := c.FetchWorkoutWithSets(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("err = %v, want session.ErrNotFound", err)
	}
}

// TestServerErrorIncludesBody verifies that non-2xx responses produce an
// error carrying the status and response body.
func TestServerErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", uuid.New())
	err := c.DeleteSet(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, session.ErrNotFound) {
		t.Error("500 should not map to ErrNotFound")
	}
}

// TestCreateSetRoundTrip verifies the create payload and decoded response.
func TestCreateSetRoundTrip(t *testing.T) {
	workoutID := uuid.New()
	exerciseID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/sets" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body struct {
			WorkoutID  uuid.UUID `json:"workout_id"`
			ExerciseID uuid.UUID `json:"exercise_id"`
			SetOrder   int       `json:"set_order"`
			Reps       *int      `json:"reps"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if body.WorkoutID != workoutID || body.ExerciseID != exerciseID {
			t.Error("ids not forwarded")
		}
		if body.SetOrder != 3 || body.Reps == nil || *body.Reps != 5 {
			t.Errorf("set_order = %d, reps = %v", body.SetOrder, body.Reps)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Set{
			ID: uuid.New(), WorkoutID: workoutID, ExerciseID: exerciseID,
			SetOrder: body.SetOrder, Reps: body.Reps,
		})
	}))
	defer srv.Close()

	reps := 5
	c := NewClient(srv.URL, "secret", uuid.New())
	set, err := c.CreateSet(context.Background(), session.CreateSetParams{
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		SetOrder:   3,
		Reps:       &reps,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.SetOrder != 3 {
		t.Errorf("set_order = %d, want 3", set.SetOrder)
	}
}

// TestFinishWorkout verifies the finish endpoint payload.
func TestFinishWorkout(t *testing.T) {
	workoutID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/"+workoutID.String()+"/finish" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body struct {
			Name        string `json:"name"`
			Note        string `json:"note"`
			DurationSec int    `json:"duration_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if body.Name != "Push Day" || body.DurationSec != 3600 {
			t.Errorf("body = %+v", body)
		}
		ended := time.Now().UTC()
		json.NewEncoder(w).Encode(models.Workout{
			ID: workoutID, Name: body.Name, Note: body.Note,
			DurationSec: body.DurationSec, EndedAt: &ended,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", uuid.New())
	w, err := c.FinishWorkout(context.Background(), workoutID, "Push Day", "felt good", 3600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Active() {
		t.Error("finished workout should not be active")
	}
}
