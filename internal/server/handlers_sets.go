package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

type createSetRequest struct {
	WorkoutID  uuid.UUID `json:"workout_id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	SetOrder   int       `json:"set_order"`
	Reps       *int      `json:"reps"`
	Weight     *float64  `json:"weight"`
	RPE        *float64  `json:"rpe"`
	Notes      string    `json:"notes"`
}

func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	var req createSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WorkoutID == uuid.Nil || req.ExerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id and exercise_id are required"})
		return
	}
	if req.SetOrder < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "set_order must be >= 1"})
		return
	}

	userID := userIDFromRequest(r)
	// The parent workout must exist, be owned by the caller, and still be
	// active; finished workouts accept no new sets.
	workout, err := s.db.GetWorkout(r.Context(), req.WorkoutID, userID)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	if !workout.Active() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "workout already finished"})
		return
	}

	set, err := s.db.CreateSet(r.Context(), models.Set{
		UserID:     userID,
		WorkoutID:  req.WorkoutID,
		ExerciseID: req.ExerciseID,
		SetOrder:   req.SetOrder,
		Reps:       req.Reps,
		Weight:     req.Weight,
		RPE:        req.RPE,
		Notes:      req.Notes,
	})
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}
	var patch storage.SetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	set, err := s.db.UpdateSet(r.Context(), id, patch)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}
	if err := s.db.DeleteSet(r.Context(), id); err != nil {
		s.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
