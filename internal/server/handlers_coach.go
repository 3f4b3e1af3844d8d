package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.db.Dashboard(r.Context(), mustProfile(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	athleteID, err := s.targetAthlete(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lifts, err := s.db.Progress(r.Context(), athleteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if lifts == nil {
		lifts = []models.LiftProgress{}
	}
	writeJSON(w, http.StatusOK, lifts)
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	athleteID, err := s.recapAthlete(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recap, err := s.db.WeeklyRecap(r.Context(), athleteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

// recapAthlete picks whose week to recap: an explicit athlete_id, else a
// coach's first athlete, else the caller.
func (s *Server) recapAthlete(r *http.Request) (uuid.UUID, error) {
	if r.URL.Query().Get("athlete_id") != "" {
		return s.targetAthlete(r)
	}
	caller := mustProfile(r)
	if caller.Role != models.RoleCoach {
		return caller.ID, nil
	}
	id, err := s.db.FirstRosterAthlete(r.Context(), caller.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return caller.ID, nil
	}
	return id, err
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	athleteID, err := s.targetAthlete(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := parseLimit(r, 20, 100)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logs, err := s.db.QueryImportLogs(r.Context(), athleteID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// requireCoach returns the caller when they are a coach.
func requireCoach(r *http.Request) (*models.Profile, error) {
	caller := mustProfile(r)
	if caller.Role != models.RoleCoach {
		return nil, errForbidden
	}
	return caller, nil
}

func (s *Server) handleListRoster(w http.ResponseWriter, r *http.Request) {
	coach, err := requireCoach(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roster, err := s.db.ListRoster(r.Context(), coach.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if roster == nil {
		roster = []models.RosterEntry{}
	}
	writeJSON(w, http.StatusOK, roster)
}

type rosterRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleAddToRoster(w http.ResponseWriter, r *http.Request) {
	coach, err := requireCoach(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req rosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	athlete, err := s.db.FindAthleteByEmail(r.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no athlete with that email"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entry, err := s.db.AddToRoster(r.Context(), coach.ID, athlete.ID)
	if errors.Is(err, storage.ErrDuplicate) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "athlete already on roster"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRemoveFromRoster(w http.ResponseWriter, r *http.Request) {
	coach, err := requireCoach(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	athleteID, err := pathUUID(r, "athleteID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.RemoveFromRoster(r.Context(), coach.ID, athleteID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
