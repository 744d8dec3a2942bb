package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/storage"
)

// workoutNameLimit matches the workouts.name column width.
const workoutNameLimit = 24

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.db.CreateWorkout(r.Context(), userIDFromRequest(r))
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	workouts, err := s.db.ListWorkouts(r.Context(), userIDFromRequest(r), limit)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	workout, sets, err := s.db.GetWorkoutWithSets(r.Context(), id, userIDFromRequest(r))
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workout": workout,
		"sets":    sets,
	})
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	var patch storage.WorkoutPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if patch.Name != nil && len([]rune(*patch.Name)) > workoutNameLimit {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name exceeds 24 characters"})
		return
	}

	// Ownership check before mutating.
	if _, err := s.db.GetWorkout(r.Context(), id, userIDFromRequest(r)); err != nil {
		s.writeStorageError(w, err)
		return
	}

	workout, err := s.db.UpdateWorkout(r.Context(), id, patch)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

type finishRequest struct {
	Name        string `json:"name"`
	Note        string `json:"note"`
	DurationSec int    `json:"duration_sec"`
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	var req finishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if len([]rune(req.Name)) > workoutNameLimit {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name exceeds 24 characters"})
		return
	}
	if req.DurationSec < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "negative duration"})
		return
	}

	if _, err := s.db.GetWorkout(r.Context(), id, userIDFromRequest(r)); err != nil {
		s.writeStorageError(w, err)
		return
	}

	workout, err := s.db.FinishWorkout(r.Context(), id, req.Name, req.Note, req.DurationSec)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	if _, err := s.db.GetWorkout(r.Context(), id, userIDFromRequest(r)); err != nil {
		s.writeStorageError(w, err)
		return
	}
	if err := s.db.DeleteWorkout(r.Context(), id); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
