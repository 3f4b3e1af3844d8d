package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/importer"
	"github.com/meltforce/coachlog/internal/ingest/program"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// programUpload is a parsed program upload form.
type programUpload struct {
	file     multipart.File
	filename string
	meta     *importer.Meta
}

func (s *Server) readProgramUpload(w http.ResponseWriter, r *http.Request) (*programUpload, error) {
	if s.opts.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, tooBig
		}
		return nil, errBadRequest("invalid multipart form: " + err.Error())
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errBadRequest("file field required")
	}
	meta, err := formMeta(r, header.Filename)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &programUpload{file: file, filename: header.Filename, meta: meta}, nil
}

// formMeta reads name, week_number and start_date. Fields left blank fall
// back to what the filename suggests; nil means all were blank.
func formMeta(r *http.Request, filename string) (*importer.Meta, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	week := strings.TrimSpace(r.FormValue("week_number"))
	start := strings.TrimSpace(r.FormValue("start_date"))
	if name == "" && week == "" && start == "" {
		return nil, nil
	}

	sug := program.SuggestFromFilename(filename)
	meta := &importer.Meta{Name: sug.Name, WeekNumber: sug.WeekNumber}
	if name != "" {
		meta.Name = name
	}
	if week != "" {
		n, err := strconv.Atoi(week)
		if err != nil {
			return nil, errBadRequest("week_number must be an integer")
		}
		meta.WeekNumber = n
	}
	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return nil, errBadRequest("start_date must be YYYY-MM-DD")
		}
		meta.StartDate = &t
	}
	return meta, nil
}

func (s *Server) handlePreviewProgram(w http.ResponseWriter, r *http.Request) {
	up, err := s.readProgramUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer up.file.Close()

	preview, err := s.programs.Preview(up.file, up.filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleImportProgram(w http.ResponseWriter, r *http.Request) {
	athleteID, err := s.targetAthlete(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.importProgram(w, r, athleteID, program.SourceWeb)
}

func (s *Server) handleUploadProgram(w http.ResponseWriter, r *http.Request) {
	athleteID, _ := uploadAthlete(r.Context())
	if _, err := s.db.GetProfile(r.Context(), athleteID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.importProgram(w, r, athleteID, program.SourceUpload)
}

func (s *Server) importProgram(w http.ResponseWriter, r *http.Request, athleteID uuid.UUID, source string) {
	up, err := s.readProgramUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer up.file.Close()

	res, err := s.programs.Ingest(r.Context(), up.file, program.Request{
		AthleteID: athleteID,
		Filename:  up.filename,
		Source:    source,
		Meta:      up.meta,
	})
	if s.metrics != nil {
		s.metrics.ObserveImport(res, err)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
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
	programs, err := s.db.ListPrograms(r.Context(), athleteID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

func (s *Server) handleLatestProgram(w http.ResponseWriter, r *http.Request) {
	athleteID, err := s.targetAthlete(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.db.LatestProgram(r.Context(), athleteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	athleteID, err := s.targetAthlete(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.db.GetProgram(r.Context(), id, athleteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
