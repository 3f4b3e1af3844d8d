package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/coachlog/internal/blob"
	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

func (s *Server) handleUpdateActuals(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var a models.Actuals
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if a.Load != nil && *a.Load < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "actual_load must not be negative"})
		return
	}
	if a.RPE != nil && (*a.RPE < 0 || *a.RPE > 10) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "actual_rpe must be between 0 and 10"})
		return
	}
	if a.Reps != nil {
		reps := strings.TrimSpace(*a.Reps)
		if reps == "" {
			a.Reps = nil
		} else {
			a.Reps = &reps
		}
	}

	// Only the athlete who owns the exercise may log against it.
	ex, err := s.db.UpdateActuals(r.Context(), id, mustProfile(r).ID, a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	ex, err := s.db.GetExercise(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ex.AthleteID != mustProfile(r).ID {
		s.writeError(w, r, errForbidden)
		return
	}

	if s.opts.MaxVideoBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxVideoBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(w, r, tooBig)
			return
		}
		s.writeError(w, r, errBadRequest("invalid multipart form: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errBadRequest("file field required"))
		return
	}
	defer file.Close()

	setNumber := 1
	if raw := strings.TrimSpace(r.FormValue("set_number")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, r, errBadRequest("set_number must be a positive integer"))
			return
		}
		setNumber = n
	}

	key := blob.VideoKey(ex.AthleteID, ex.ID, time.Now(), header.Filename)
	if _, err := s.blobs.Put(ctx, key, file, blob.PutOptions{ContentType: header.Header.Get("Content-Type")}); err != nil {
		s.writeError(w, r, err)
		return
	}
	url, err := s.videoURL(ctx, key)
	if err != nil {
		s.discardBlob(r, key)
		s.writeError(w, r, err)
		return
	}

	video, err := s.db.InsertVideo(ctx, models.Video{
		ExerciseID:  ex.ID,
		AthleteID:   ex.AthleteID,
		StoragePath: key,
		PublicURL:   &url,
		SetNumber:   setNumber,
	})
	if err != nil {
		s.discardBlob(r, key)
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveVideo()
	}
	s.log.Info("video stored", "exercise_id", ex.ID, "key", key, "driver", s.blobs.Driver())
	writeJSON(w, http.StatusCreated, video)
}

// mediaPrefix is where handleMedia serves stored videos.
const mediaPrefix = "/media"

// videoURL returns the link stored with a video. Stores without permanent
// public URLs are served through handleMedia.
func (s *Server) videoURL(ctx context.Context, key string) (string, error) {
	url, err := s.blobs.URL(ctx, key)
	if errors.Is(err, blob.ErrNoPublicURL) {
		return mediaPrefix + "/" + key, nil
	}
	return url, err
}

// discardBlob removes a stored video whose row could not be written.
func (s *Server) discardBlob(r *http.Request, key string) {
	if err := s.blobs.Delete(r.Context(), key); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.log.Warn("failed to remove orphaned video", "key", key, "error", err)
	}
}

type commentRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is required"})
		return
	}

	ctx := r.Context()
	ex, err := s.db.GetExercise(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	caller := mustProfile(r)
	if caller.Role != models.RoleCoach {
		s.writeError(w, r, errForbidden)
		return
	}
	ok, err := s.db.IsCoachOf(ctx, caller.ID, ex.AthleteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, errForbidden)
		return
	}

	c, err := s.db.InsertComment(ctx, models.Comment{
		ExerciseID: ex.ID,
		CoachID:    caller.ID,
		AthleteID:  ex.AthleteID,
		Body:       body,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleMedia streams a stored video to its athlete or their coaches, or
// redirects them to a fresh presigned link when the store issues those.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	owner, ok := blob.KeyOwner(key)
	if !ok {
		s.writeError(w, r, storage.ErrNotFound)
		return
	}
	if err := s.authorize(r, owner); err != nil {
		s.writeError(w, r, err)
		return
	}

	if p, ok := s.blobs.(blob.Presigner); ok {
		url, err := p.PresignGet(r.Context(), key)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	info, rc, err := s.blobs.Get(r.Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		s.writeError(w, r, storage.ErrNotFound)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("media stream interrupted", "key", key, "error", err)
	}
}
