// Package api is the HTTP client for the liftlog server. It implements
// session.Store so an active-workout controller can run against a remote
// server, and a few listing calls used by the exporter.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

var _ session.Store = (*Client)(nil)

// Client talks to the liftlog server over HTTP. Every request carries the API
// key and the user id; all document queries on the server are scoped to that
// user.
type Client struct {
	baseURL    string
	apiKey     string
	userID     uuid.UUID
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the liftlog server.
func NewClient(baseURL, apiKey string, userID uuid.UUID) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends one JSON request and decodes the response into out (if non-nil).
// A 404 maps to session.ErrNotFound so controller guards work unchanged.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-User-ID", c.userID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return session.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// StartWorkout creates a new active workout on the server.
func (c *Client) StartWorkout(ctx context.Context) (*models.Workout, error) {
	var w models.Workout
	if err := c.do(ctx, http.MethodPost, "/workouts", nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// FetchWorkoutWithSets retrieves a workout and its sets in one call.
func (c *Client) FetchWorkoutWithSets(ctx context.Context, userID, workoutID uuid.UUID) (*models.Workout, []models.Set, error) {
	var resp struct {
		Workout *models.Workout `json:"workout"`
		Sets    []models.Set    `json:"sets"`
	}
	if err := c.do(ctx, http.MethodGet, "/workouts/"+workoutID.String(), nil, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Workout, resp.Sets, nil
}

// CreateSet creates one set on the server.
func (c *Client) CreateSet(ctx context.Context, p session.CreateSetParams) (*models.Set, error) {
	body := map[string]any{
		"workout_id":  p.WorkoutID,
		"exercise_id": p.ExerciseID,
		"set_order":   p.SetOrder,
		"reps":        p.Reps,
		"weight":      p.Weight,
		"rpe":         p.RPE,
		"notes":       p.Notes,
	}
	var set models.Set
	if err := c.do(ctx, http.MethodPost, "/sets", body, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// UpdateSet applies a partial patch to one set.
func (c *Client) UpdateSet(ctx context.Context, setID uuid.UUID, patch session.SetPatch) (*models.Set, error) {
	var set models.Set
	if err := c.do(ctx, http.MethodPatch, "/sets/"+setID.String(), patch, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// DeleteSet removes one set.
func (c *Client) DeleteSet(ctx context.Context, setID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/sets/"+setID.String(), nil, nil)
}

// UpdateWorkout applies a partial patch to an active workout.
func (c *Client) UpdateWorkout(ctx context.Context, workoutID uuid.UUID, patch session.WorkoutPatch) (*models.Workout, error) {
	var w models.Workout
	if err := c.do(ctx, http.MethodPatch, "/workouts/"+workoutID.String(), patch, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// FinishWorkout finalizes an active workout.
func (c *Client) FinishWorkout(ctx context.Context, workoutID uuid.UUID, name, note string, durationSec int) (*models.Workout, error) {
	body := map[string]any{
		"name":         name,
		"note":         note,
		"duration_sec": durationSec,
	}
	var w models.Workout
	if err := c.do(ctx, http.MethodPost, "/workouts/"+workoutID.String()+"/finish", body, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWorkout removes a workout.
func (c *Client) DeleteWorkout(ctx context.Context, workoutID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/workouts/"+workoutID.String(), nil, nil)
}

// FetchExerciseByID retrieves one exercise from the library.
func (c *Client) FetchExerciseByID(ctx context.Context, exerciseID uuid.UUID) (*models.Exercise, error) {
	var ex models.Exercise
	if err := c.do(ctx, http.MethodGet, "/exercises/"+exerciseID.String(), nil, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

// ListWorkouts retrieves the user's workouts, newest first.
func (c *Client) ListWorkouts(ctx context.Context, limit int) ([]models.Workout, error) {
	path := "/workouts"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var workouts []models.Workout
	if err := c.do(ctx, http.MethodGet, path, nil, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// ListExercises retrieves the user's exercise library.
func (c *Client) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := c.do(ctx, http.MethodGet, "/exercises", nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}
