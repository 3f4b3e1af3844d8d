package program

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/importer"
	"github.com/meltforce/coachlog/internal/ingest"
	"github.com/meltforce/coachlog/internal/models"
)

// Import sources recorded in the import log.
const (
	SourceWeb    = "web"
	SourceUpload = "upload"
	SourceCLI    = "cli"
)

// ImportLogStore persists import attempts.
type ImportLogStore interface {
	InsertImportLog(ctx context.Context, l models.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, l models.ImportLog) error
}

// Provider turns program CSV uploads into stored programs.
type Provider struct {
	imp  *importer.Importer
	logs ImportLogStore
	log  *slog.Logger
}

// NewProvider creates a new program ingest provider. logs may be nil.
func NewProvider(imp *importer.Importer, logs ImportLogStore, log *slog.Logger) *Provider {
	return &Provider{imp: imp, logs: logs, log: log}
}

// Preview is what the user confirms before importing.
type Preview struct {
	Layout      Layout                   `json:"layout"`
	LayoutLabel string                   `json:"layout_label"`
	Exercises   []models.PlannedExercise `json:"exercises"`
	Days        []models.Day             `json:"days"`
	Suggestion  Suggestion               `json:"suggestion"`
}

// Preview parses r without writing anything.
func (p *Provider) Preview(r io.Reader, filename string) (*Preview, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing program: %w", err)
	}
	return &Preview{
		Layout:      parsed.Layout,
		LayoutLabel: parsed.Layout.Label(),
		Exercises:   parsed.Exercises,
		Days:        parsed.Days(),
		Suggestion:  SuggestFromFilename(filename),
	}, nil
}

// Request describes one import.
type Request struct {
	AthleteID uuid.UUID
	Filename  string
	Source    string
	// Meta is the confirmed metadata. When nil it is derived from Filename.
	Meta *importer.Meta
}

// Ingest parses r and imports it for the athlete. The raw text is kept on
// the program row. A returned error means no program was created.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, req Request) (*ingest.Result, error) {
	start := time.Now()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	entry := models.ImportLog{
		AthleteID: req.AthleteID,
		Source:    req.Source,
		Status:    models.ImportRunning,
	}
	if req.Filename != "" {
		entry.Filename = &req.Filename
	}
	logID := p.startLog(ctx, entry)

	fail := func(err error) (*ingest.Result, error) {
		msg := err.Error()
		entry.Status = models.ImportError
		entry.ErrorMessage = &msg
		p.finishLog(ctx, logID, entry, start)
		return nil, err
	}

	rows, err := parseRows(data)
	if err != nil {
		return fail(fmt.Errorf("parsing program: %w", err))
	}
	parsed := ParseRows(rows)
	layout := string(parsed.Layout)
	entry.Layout = &layout
	entry.ExercisesReceived = len(parsed.Exercises)

	meta := p.meta(req)
	raw := string(data)
	res, err := p.imp.Import(ctx, req.AthleteID, meta, parsed.Exercises, &raw)
	if err != nil {
		return fail(err)
	}

	out := &ingest.Result{
		Layout:            layout,
		ExercisesReceived: len(parsed.Exercises),
		ExercisesInserted: res.ExercisesInserted(),
		DaysReceived:      len(res.Days),
		SessionsCreated:   res.SessionsCreated(),
		ProgramID:         &res.ProgramID,
		Status:            string(res.Status),
		Warnings:          res.Warnings(),
		Message: fmt.Sprintf("imported %d of %d exercises across %d days",
			res.ExercisesInserted(), len(parsed.Exercises), res.SessionsCreated()),
	}

	entry.ProgramID = &res.ProgramID
	entry.ExercisesInserted = out.ExercisesInserted
	entry.SessionsCreated = out.SessionsCreated
	entry.Status = logStatus(res.Status)
	if len(out.Warnings) > 0 {
		md, _ := json.Marshal(map[string]any{"warnings": out.Warnings})
		raw := json.RawMessage(md)
		entry.Metadata = &raw
		msg := strings.Join(out.Warnings, "; ")
		entry.ErrorMessage = &msg
	}
	p.finishLog(ctx, logID, entry, start)
	return out, nil
}

func (p *Provider) meta(req Request) importer.Meta {
	if req.Meta != nil {
		return *req.Meta
	}
	s := SuggestFromFilename(req.Filename)
	return importer.Meta{Name: s.Name, WeekNumber: s.WeekNumber}
}

func logStatus(s importer.Status) string {
	switch s {
	case importer.StatusComplete:
		return models.ImportSuccess
	case importer.StatusPartial:
		return models.ImportPartial
	default:
		return models.ImportError
	}
}

func (p *Provider) startLog(ctx context.Context, entry models.ImportLog) int64 {
	if p.logs == nil {
		return 0
	}
	id, err := p.logs.InsertImportLog(ctx, entry)
	if err != nil {
		p.log.Warn("failed to create import log", "error", err)
		return 0
	}
	return id
}

func (p *Provider) finishLog(ctx context.Context, id int64, entry models.ImportLog, start time.Time) {
	if p.logs == nil || id == 0 {
		return
	}
	ms := int(time.Since(start).Milliseconds())
	entry.DurationMs = &ms
	// Import failures should still be recorded even if the request was cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := p.logs.UpdateImportLog(ctx, id, entry); err != nil {
		p.log.Warn("failed to update import log", "id", id, "error", err)
	}
}

// IsClientError reports whether err was caused by the uploaded content or
// metadata rather than by storage.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnreadable) ||
		errors.Is(err, importer.ErrNoExercises) ||
		errors.Is(err, importer.ErrInvalidMetadata)
}
