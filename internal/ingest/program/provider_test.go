package program

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/importer"
	"github.com/meltforce/coachlog/internal/models"
)

type memStore struct {
	mu        sync.Mutex
	programs  []importer.NewProgram
	sessions  map[uuid.UUID]models.Day
	exercises int
	failDay   models.Day
}

func (m *memStore) CreateProgram(_ context.Context, p importer.NewProgram) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs = append(m.programs, p)
	return uuid.New(), nil
}

func (m *memStore) CreateSession(_ context.Context, _, _ uuid.UUID, day models.Day, _ *string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if day == m.failDay {
		return uuid.Nil, errors.New("insert failed")
	}
	if m.sessions == nil {
		m.sessions = map[uuid.UUID]models.Day{}
	}
	id := uuid.New()
	m.sessions[id] = day
	return id, nil
}

func (m *memStore) CreateExercises(_ context.Context, _, _ uuid.UUID, rows []models.ExerciseRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exercises += len(rows)
	return nil
}

type memLogs struct {
	inserted []models.ImportLog
	updated  []models.ImportLog
}

func (m *memLogs) InsertImportLog(_ context.Context, l models.ImportLog) (int64, error) {
	m.inserted = append(m.inserted, l)
	return int64(len(m.inserted)), nil
}

func (m *memLogs) UpdateImportLog(_ context.Context, _ int64, l models.ImportLog) error {
	m.updated = append(m.updated, l)
	return nil
}

func newTestProvider(st *memStore) (*Provider, *memLogs) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	logs := &memLogs{}
	return NewProvider(importer.New(st, log, importer.Options{}), logs, log), logs
}

// TestProviderPreview verifies preview returns parsed data and suggestions
// without touching the store.
func TestProviderPreview(t *testing.T) {
	st := &memStore{}
	p, logs := newTestProvider(st)

	pv, err := p.Preview(strings.NewReader(denseCSV), "Week_50.csv")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if pv.Layout != LayoutDense || len(pv.Exercises) != 5 || len(pv.Days) != 3 {
		t.Errorf("preview = %s, %d exercises, %d days", pv.Layout, len(pv.Exercises), len(pv.Days))
	}
	if pv.Suggestion.WeekNumber != 50 {
		t.Errorf("suggested week = %d, want 50", pv.Suggestion.WeekNumber)
	}
	if len(st.programs) != 0 || len(logs.inserted) != 0 {
		t.Error("preview wrote to the store")
	}
}

// TestProviderIngest verifies a successful import with derived metadata,
// raw text retention and a success log entry.
func TestProviderIngest(t *testing.T) {
	st := &memStore{}
	p, logs := newTestProvider(st)
	athlete := uuid.New()

	res, err := p.Ingest(context.Background(), strings.NewReader(standardCSV), Request{
		AthleteID: athlete, Filename: "week-3.csv", Source: SourceUpload,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Status != string(importer.StatusComplete) || res.ExercisesInserted != 1 || res.SessionsCreated != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(st.programs) != 1 {
		t.Fatalf("programs = %d, want 1", len(st.programs))
	}
	prog := st.programs[0]
	if prog.Name != "week 3" || prog.WeekNumber != 3 || prog.AthleteID != athlete {
		t.Errorf("program = %+v", prog)
	}
	if prog.RawCSV == nil || *prog.RawCSV != standardCSV {
		t.Error("raw CSV not stored on program")
	}
	if len(logs.inserted) != 1 || logs.inserted[0].Status != models.ImportRunning {
		t.Fatalf("inserted logs = %+v", logs.inserted)
	}
	if len(logs.updated) != 1 || logs.updated[0].Status != models.ImportSuccess {
		t.Fatalf("updated logs = %+v", logs.updated)
	}
	if logs.updated[0].DurationMs == nil || logs.updated[0].ProgramID == nil {
		t.Error("final log entry missing duration or program id")
	}
}

// TestProviderIngestPartial verifies per-day failures produce a partial
// result with warnings.
func TestProviderIngestPartial(t *testing.T) {
	st := &memStore{failDay: models.Wed}
	p, logs := newTestProvider(st)

	res, err := p.Ingest(context.Background(), strings.NewReader(denseCSV), Request{
		AthleteID: uuid.New(),
		Source:    SourceWeb,
		Meta:      &importer.Meta{Name: "Block 1", WeekNumber: 50},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Status != string(importer.StatusPartial) {
		t.Errorf("status = %q, want partial", res.Status)
	}
	if res.ExercisesInserted != 3 || res.ExercisesReceived != 5 {
		t.Errorf("inserted %d of %d, want 3 of 5", res.ExercisesInserted, res.ExercisesReceived)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want 1", res.Warnings)
	}
	if logs.updated[0].Status != models.ImportPartial {
		t.Errorf("log status = %q, want partial", logs.updated[0].Status)
	}
}

// TestProviderIngestErrors verifies parse and validation failures are
// returned, logged as errors and classified as client errors.
func TestProviderIngestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		meta  *importer.Meta
		want  error
	}{
		{"unreadable", "Mon,\xff,1\n", nil, ErrUnreadable},
		{"no exercises", "Day,Exercise\n", nil, importer.ErrNoExercises},
		{"bad week", standardCSV, &importer.Meta{Name: "x", WeekNumber: 0}, importer.ErrInvalidMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &memStore{}
			p, logs := newTestProvider(st)
			_, err := p.Ingest(context.Background(), strings.NewReader(tt.input), Request{
				AthleteID: uuid.New(), Filename: "week_1.csv", Meta: tt.meta,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !IsClientError(err) {
				t.Error("IsClientError = false, want true")
			}
			if len(logs.updated) != 1 || logs.updated[0].Status != models.ImportError {
				t.Errorf("updated logs = %+v", logs.updated)
			}
			if len(st.programs) != 0 {
				t.Error("program created on failure")
			}
		})
	}
}
