package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
)

type fakeSession struct {
	id          uuid.UUID
	programID   uuid.UUID
	day         models.Day
	sessionType *string
}

// fakeStore records writes and fails on demand.
type fakeStore struct {
	mu sync.Mutex

	failProgram   error
	failSession   map[models.Day]error
	failExercises map[models.Day]error

	programs  []NewProgram
	sessions  []fakeSession
	exercises map[uuid.UUID][]models.ExerciseRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failSession:   map[models.Day]error{},
		failExercises: map[models.Day]error{},
		exercises:     map[uuid.UUID][]models.ExerciseRow{},
	}
}

func (f *fakeStore) CreateProgram(_ context.Context, p NewProgram) (uuid.UUID, error) {
	if f.failProgram != nil {
		return uuid.Nil, f.failProgram
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.programs = append(f.programs, p)
	return uuid.New(), nil
}

func (f *fakeStore) CreateSession(_ context.Context, programID, _ uuid.UUID, day models.Day, sessionType *string) (uuid.UUID, error) {
	if err := f.failSession[day]; err != nil {
		return uuid.Nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.sessions = append(f.sessions, fakeSession{id: id, programID: programID, day: day, sessionType: sessionType})
	return id, nil
}

func (f *fakeStore) CreateExercises(_ context.Context, sessionID, _ uuid.UUID, rows []models.ExerciseRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.id == sessionID {
			if err := f.failExercises[s.day]; err != nil {
				return err
			}
		}
	}
	f.exercises[sessionID] = append(f.exercises[sessionID], rows...)
	return nil
}

func (f *fakeStore) sessionFor(day models.Day) (fakeSession, bool) {
	for _, s := range f.sessions {
		if s.day == day {
			return s, true
		}
	}
	return fakeSession{}, false
}

func ptr[T any](v T) *T { return &v }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleWeek() []models.PlannedExercise {
	return []models.PlannedExercise{
		{Day: models.Wed, Name: "Bench Press", Sets: ptr(5), Reps: ptr("5"), LoadKg: ptr(100.0), RPETarget: ptr(8.0)},
		{Day: models.Wed, Name: "Bench Accessory", Sets: ptr(3), Reps: ptr("8-10")},
		{Day: models.Thu, Name: "Squat", Sets: ptr(4), Reps: ptr("3"), LoadKg: ptr(145.0), CoachNotes: ptr("Belt")},
		{Day: models.Wed, Name: "Squat Pause", Sets: ptr(3), Reps: ptr("2")},
		{Day: models.Thu, Name: "Deadlift", Sets: ptr(1), Reps: ptr("1")},
	}
}

var meta = Meta{Name: "Week 50", WeekNumber: 50}

// TestImportComplete verifies the happy path: one program, one session per
// day in first-appearance order, exercises with 0-based sort order.
func TestImportComplete(t *testing.T) {
	store := newFakeStore()
	imp := New(store, quietLogger(), Options{})
	athlete := uuid.New()

	res, err := imp.Import(context.Background(), athlete, meta, sampleWeek(), ptr("raw"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusComplete {
		t.Errorf("status = %q, want %q", res.Status, StatusComplete)
	}
	if len(store.programs) != 1 {
		t.Fatalf("programs = %d, want 1", len(store.programs))
	}
	if p := store.programs[0]; p.AthleteID != athlete || p.Name != "Week 50" || p.WeekNumber != 50 {
		t.Errorf("program = %+v", p)
	}
	if len(res.Days) != 2 || res.Days[0].Day != models.Wed || res.Days[1].Day != models.Thu {
		t.Fatalf("days = %+v, want Wed then Thu", res.Days)
	}

	wed, _ := store.sessionFor(models.Wed)
	if wed.sessionType == nil || *wed.sessionType != "Bench/Squat" {
		t.Errorf("wed session_type = %v, want Bench/Squat", wed.sessionType)
	}
	rows := store.exercises[wed.id]
	wantNames := []string{"Bench Press", "Bench Accessory", "Squat Pause"}
	if len(rows) != len(wantNames) {
		t.Fatalf("wed exercises = %d, want %d", len(rows), len(wantNames))
	}
	for i, r := range rows {
		if r.Name != wantNames[i] {
			t.Errorf("wed[%d].Name = %q, want %q", i, r.Name, wantNames[i])
		}
		if r.SortOrder != i {
			t.Errorf("wed[%d].SortOrder = %d, want %d", i, r.SortOrder, i)
		}
	}
	if res.ExercisesInserted() != 5 {
		t.Errorf("ExercisesInserted() = %d, want 5", res.ExercisesInserted())
	}
	if len(res.Warnings()) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings())
	}
}

// TestImportProgramFailure verifies that a failed program write aborts the
// whole import with nothing else written.
func TestImportProgramFailure(t *testing.T) {
	store := newFakeStore()
	store.failProgram = errors.New("permission denied")
	imp := New(store, quietLogger(), Options{})

	_, err := imp.Import(context.Background(), uuid.New(), meta, sampleWeek(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.sessions) != 0 || len(store.exercises) != 0 {
		t.Errorf("sessions = %d, exercises = %d, want none", len(store.sessions), len(store.exercises))
	}
}

// TestImportPartialSessionFailure verifies that a failed Wed session skips
// only Wed's exercises while Thu imports normally.
func TestImportPartialSessionFailure(t *testing.T) {
	store := newFakeStore()
	store.failSession[models.Wed] = errors.New("insert failed")
	imp := New(store, quietLogger(), Options{})

	res, err := imp.Import(context.Background(), uuid.New(), meta, sampleWeek(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusPartial {
		t.Errorf("status = %q, want %q", res.Status, StatusPartial)
	}
	if len(store.programs) != 1 {
		t.Errorf("programs = %d, want 1", len(store.programs))
	}
	if _, ok := store.sessionFor(models.Wed); ok {
		t.Error("wed session should not exist")
	}
	thu, ok := store.sessionFor(models.Thu)
	if !ok {
		t.Fatal("thu session missing")
	}
	if len(store.exercises) != 1 || len(store.exercises[thu.id]) != 2 {
		t.Errorf("exercises = %v, want only thu's two", store.exercises)
	}
	if res.Days[0].Status != DaySessionFailed || res.Days[0].SessionID != nil {
		t.Errorf("wed outcome = %+v", res.Days[0])
	}
	if res.SessionsCreated() != 1 {
		t.Errorf("SessionsCreated() = %d, want 1", res.SessionsCreated())
	}
	if len(res.Warnings()) != 1 {
		t.Errorf("warnings = %v, want 1", res.Warnings())
	}
}

// TestImportExerciseFailure verifies that a failed batch insert is reported
// per day and does not stop later days.
func TestImportExerciseFailure(t *testing.T) {
	store := newFakeStore()
	store.failExercises[models.Thu] = errors.New("batch rejected")
	imp := New(store, quietLogger(), Options{})

	res, err := imp.Import(context.Background(), uuid.New(), meta, sampleWeek(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Days[1].Status != DayExercisesFailed {
		t.Errorf("thu status = %q, want %q", res.Days[1].Status, DayExercisesFailed)
	}
	if res.Days[1].SessionID == nil {
		t.Error("thu session id should be set")
	}
	if res.ExercisesInserted() != 3 {
		t.Errorf("ExercisesInserted() = %d, want 3", res.ExercisesInserted())
	}
}

// TestImportAllDaysFailed verifies the aggregate status when the program
// exists but no day made it.
func TestImportAllDaysFailed(t *testing.T) {
	store := newFakeStore()
	store.failSession[models.Wed] = errors.New("x")
	store.failSession[models.Thu] = errors.New("y")
	imp := New(store, quietLogger(), Options{})

	res, err := imp.Import(context.Background(), uuid.New(), meta, sampleWeek(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusFailed {
		t.Errorf("status = %q, want %q", res.Status, StatusFailed)
	}
}

// TestImportConcurrentKeepsOrder verifies that parallel day writes still
// report outcomes in day-group order.
func TestImportConcurrentKeepsOrder(t *testing.T) {
	var exs []models.PlannedExercise
	for _, d := range []models.Day{models.Sun, models.Mon, models.Fri, models.Tue} {
		exs = append(exs, models.PlannedExercise{Day: d, Name: "Squat"}, models.PlannedExercise{Day: d, Name: "Row"})
	}
	store := newFakeStore()
	imp := New(store, quietLogger(), Options{Concurrency: 4})

	res, err := imp.Import(context.Background(), uuid.New(), meta, exs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.Day{models.Sun, models.Mon, models.Fri, models.Tue}
	for i, d := range res.Days {
		if d.Day != want[i] {
			t.Errorf("days[%d] = %s, want %s", i, d.Day, want[i])
		}
		if d.Status != DayImported {
			t.Errorf("days[%d].Status = %s", i, d.Status)
		}
	}
	if len(store.sessions) != 4 {
		t.Errorf("sessions = %d, want 4", len(store.sessions))
	}
}

// TestImportValidation verifies rejected inputs never reach the store.
func TestImportValidation(t *testing.T) {
	tests := []struct {
		name string
		meta Meta
		exs  []models.PlannedExercise
		want error
	}{
		{"no exercises", meta, nil, ErrNoExercises},
		{"blank name", Meta{Name: "  ", WeekNumber: 1}, sampleWeek(), ErrInvalidMetadata},
		{"zero week", Meta{Name: "W", WeekNumber: 0}, sampleWeek(), ErrInvalidMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			_, err := New(store, quietLogger(), Options{}).Import(context.Background(), uuid.New(), tt.meta, tt.exs, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if len(store.programs) != 0 {
				t.Error("program should not be created")
			}
		})
	}
}

// TestImportRoundTrip verifies that what the store receives reproduces the
// parsed exercises field for field, with sort order per day.
func TestImportRoundTrip(t *testing.T) {
	store := newFakeStore()
	in := sampleWeek()
	if _, err := New(store, quietLogger(), Options{}).Import(context.Background(), uuid.New(), meta, in, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, grp := range GroupByDay(in) {
		sess, ok := store.sessionFor(grp.Day)
		if !ok {
			t.Fatalf("no session for %s", grp.Day)
		}
		got := store.exercises[sess.id]
		if len(got) != len(grp.Exercises) {
			t.Fatalf("%s: %d rows, want %d", grp.Day, len(got), len(grp.Exercises))
		}
		for i, want := range grp.Exercises {
			g := got[i]
			if g.Name != want.Name || g.SortOrder != i ||
				!eqPtr(g.Sets, want.Sets) || !eqPtr(g.Reps, want.Reps) ||
				!eqPtr(g.LoadKg, want.LoadKg) || !eqPtr(g.RPETarget, want.RPETarget) ||
				!eqPtr(g.Notes, want.CoachNotes) {
				t.Errorf("%s[%d] = %+v, want %+v", grp.Day, i, g, want)
			}
		}
	}
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
