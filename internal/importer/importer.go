package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meltforce/coachlog/internal/models"
)

var (
	// ErrNoExercises is returned when there is nothing to import.
	ErrNoExercises = errors.New("no exercises to import")
	// ErrInvalidMetadata is returned for a blank name or a week below 1.
	ErrInvalidMetadata = errors.New("invalid program metadata")
)

// Store is the data store surface the importer writes through. Each call is
// atomic on its own; nothing is transactional across calls.
type Store interface {
	CreateProgram(ctx context.Context, p NewProgram) (uuid.UUID, error)
	CreateSession(ctx context.Context, programID, athleteID uuid.UUID, day models.Day, sessionType *string) (uuid.UUID, error)
	CreateExercises(ctx context.Context, sessionID, athleteID uuid.UUID, rows []models.ExerciseRow) error
}

// Meta is the user-confirmed program metadata.
type Meta struct {
	Name       string     `json:"name"`
	WeekNumber int        `json:"week_number"`
	StartDate  *time.Time `json:"start_date,omitempty"`
}

// NewProgram is the program row to create.
type NewProgram struct {
	AthleteID  uuid.UUID
	Name       string
	WeekNumber int
	StartDate  *time.Time
	RawCSV     *string
}

// Status summarizes an import.
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
	StatusFailed   Status = "failed"
)

// DayStatus is the outcome for a single day group.
type DayStatus string

const (
	DayImported        DayStatus = "imported"
	DaySessionFailed   DayStatus = "session_failed"
	DayExercisesFailed DayStatus = "exercises_failed"
)

// DayOutcome records what happened to one day group.
type DayOutcome struct {
	Day         models.Day `json:"day"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"`
	SessionType string     `json:"session_type"`
	Exercises   int        `json:"exercises"`
	Status      DayStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
}

// Result is returned once the program row exists.
type Result struct {
	ProgramID uuid.UUID    `json:"program_id"`
	Status    Status       `json:"status"`
	Days      []DayOutcome `json:"days"`
}

// ExercisesInserted counts exercises written under successful sessions.
func (r *Result) ExercisesInserted() int {
	n := 0
	for _, d := range r.Days {
		if d.Status == DayImported {
			n += d.Exercises
		}
	}
	return n
}

// SessionsCreated counts days whose session row exists.
func (r *Result) SessionsCreated() int {
	n := 0
	for _, d := range r.Days {
		if d.SessionID != nil {
			n++
		}
	}
	return n
}

// Warnings describes every day that did not import cleanly.
func (r *Result) Warnings() []string {
	var w []string
	for _, d := range r.Days {
		switch d.Status {
		case DaySessionFailed:
			w = append(w, fmt.Sprintf("%s: session not created, %d exercises skipped: %s", d.Day, d.Exercises, d.Error))
		case DayExercisesFailed:
			w = append(w, fmt.Sprintf("%s: %d exercises not saved: %s", d.Day, d.Exercises, d.Error))
		}
	}
	return w
}

// Options tunes the importer.
type Options struct {
	// Concurrency is how many day groups are written at once. Values below
	// 1 mean sequential.
	Concurrency int
}

// Importer materializes Program -> Sessions -> Exercises for parsed exercises.
type Importer struct {
	store Store
	log   *slog.Logger
	opts  Options
}

// New creates a new Importer.
func New(store Store, log *slog.Logger, opts Options) *Importer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Importer{store: store, log: log, opts: opts}
}

// Import creates the program, then one session per day with its exercises.
// Only a failure to create the program is returned as an error; per-day
// failures are reported in the result.
func (imp *Importer) Import(ctx context.Context, athleteID uuid.UUID, meta Meta, exercises []models.PlannedExercise, rawCSV *string) (*Result, error) {
	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: program name is required", ErrInvalidMetadata)
	}
	if meta.WeekNumber < 1 {
		return nil, fmt.Errorf("%w: week number must be at least 1", ErrInvalidMetadata)
	}

	programID, err := imp.store.CreateProgram(ctx, NewProgram{
		AthleteID:  athleteID,
		Name:       name,
		WeekNumber: meta.WeekNumber,
		StartDate:  meta.StartDate,
		RawCSV:     rawCSV,
	})
	if err != nil {
		return nil, fmt.Errorf("creating program: %w", err)
	}

	groups := GroupByDay(exercises)
	outcomes := make([]DayOutcome, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.opts.Concurrency)
	for i, grp := range groups {
		g.Go(func() error {
			outcomes[i] = imp.importDay(gctx, programID, athleteID, grp)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{ProgramID: programID, Days: outcomes, Status: aggregate(outcomes)}
	imp.log.Info("program imported",
		"program_id", programID,
		"athlete_id", athleteID,
		"status", res.Status,
		"days", len(outcomes),
		"exercises", res.ExercisesInserted(),
	)
	return res, nil
}

func (imp *Importer) importDay(ctx context.Context, programID, athleteID uuid.UUID, grp DayGroup) DayOutcome {
	out := DayOutcome{
		Day:         grp.Day,
		SessionType: SessionType(grp.Exercises),
		Exercises:   len(grp.Exercises),
	}

	var sessionType *string
	if out.SessionType != "" {
		sessionType = &out.SessionType
	}
	sessionID, err := imp.store.CreateSession(ctx, programID, athleteID, grp.Day, sessionType)
	if err != nil {
		imp.log.Warn("session create failed, skipping day",
			"program_id", programID, "day", grp.Day, "exercises", len(grp.Exercises), "error", err)
		out.Status = DaySessionFailed
		out.Error = err.Error()
		return out
	}
	out.SessionID = &sessionID

	if err := imp.store.CreateExercises(ctx, sessionID, athleteID, ExerciseRows(grp.Exercises)); err != nil {
		imp.log.Warn("exercise insert failed",
			"program_id", programID, "session_id", sessionID, "day", grp.Day, "error", err)
		out.Status = DayExercisesFailed
		out.Error = err.Error()
		return out
	}
	out.Status = DayImported
	return out
}

func aggregate(days []DayOutcome) Status {
	ok := 0
	for _, d := range days {
		if d.Status == DayImported {
			ok++
		}
	}
	switch ok {
	case len(days):
		return StatusComplete
	case 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}
