package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/claude/liftscribe/internal/parse"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// parseRequest is the body of POST /api/v1/parse.
type parseRequest struct {
	Text       string `json:"text"`
	Date       string `json:"date,omitempty"`
	WeightUnit string `json:"weightUnit,omitempty"`
	UserID     int    `json:"userId,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	userID := req.UserID
	if userID == 0 {
		userID = 1
	}

	workout, err := s.pipeline.Parse(r.Context(), req.Text, parse.Options{
		Date:       req.Date,
		WeightUnit: req.WeightUnit,
		UserID:     userID,
	})
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, workout)
}

// writeParseError maps pipeline failure kinds onto HTTP status codes.
// Bad input is the caller's problem; oracle trouble is a bad gateway.
func (s *Server) writeParseError(w http.ResponseWriter, err error) {
	kind := parse.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case parse.KindValidationRejected:
		status = http.StatusUnprocessableEntity
	case parse.KindExtractionFailed,
		parse.KindSchemaRepairExhausted,
		parse.KindSemanticRepairExhausted:
		status = http.StatusBadGateway
	}

	if status >= 500 || status == http.StatusBadGateway {
		s.log.Error("parse failed", "kind", kind, "error", err)
	} else {
		s.log.Info("parse rejected", "kind", kind, "error", err)
	}

	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(kind),
	})
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	workouts, err := s.db.QueryWorkouts(r.Context(), 1, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	workout, err := s.db.GetWorkout(r.Context(), workoutID, 1)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q parameter required"})
		return
	}

	matches, err := s.db.SearchExercisesByName(r.Context(), q, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleReviewExercises(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListExercisesNeedingReview(r.Context(), 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
