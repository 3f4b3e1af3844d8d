package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/ingest/program"
	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

var errForbidden = errors.New("not allowed for this athlete")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mustProfile(r))
}

// mustProfile returns the caller. Only valid behind Identity.
func mustProfile(r *http.Request) *models.Profile {
	p, ok := ProfileFromContext(r.Context())
	if !ok {
		panic("server: handler mounted without Identity middleware")
	}
	return p
}

// targetAthlete returns the athlete a request acts on: the athlete_id query
// parameter when the caller coaches that athlete, otherwise the caller.
func (s *Server) targetAthlete(r *http.Request) (uuid.UUID, error) {
	caller := mustProfile(r)
	raw := r.URL.Query().Get("athlete_id")
	if raw == "" {
		return caller.ID, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errBadRequest("invalid athlete_id")
	}
	if err := s.authorize(r, id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// authorize permits the athlete themself and their coaches.
func (s *Server) authorize(r *http.Request, athleteID uuid.UUID) error {
	caller := mustProfile(r)
	if caller.ID == athleteID {
		return nil
	}
	if caller.Role != models.RoleCoach {
		return errForbidden
	}
	ok, err := s.db.IsCoachOf(r.Context(), caller.ID, athleteID)
	if err != nil {
		return err
	}
	if !ok {
		return errForbidden
	}
	return nil
}

type badRequest string

func (e badRequest) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequest(msg) }

// writeError maps an error to a JSON response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		br      badRequest
		tooBig  *http.MaxBytesError
		status  int
		message = err.Error()
	)
	switch {
	case errors.As(err, &br):
		status = http.StatusBadRequest
	case errors.As(err, &tooBig):
		status = http.StatusRequestEntityTooLarge
		message = "upload too large"
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, storage.ErrDuplicate):
		status = http.StatusConflict
	case program.IsClientError(err):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errBadRequest("invalid " + name)
	}
	return id, nil
}

func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errBadRequest("limit must be a positive integer")
	}
	return min(n, max), nil
}
