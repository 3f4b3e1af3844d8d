package server

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/importer"
	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

// fakeStore is an in-memory Store that also satisfies importer.Store and
// program.ImportLogStore.
type fakeStore struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*models.Profile
	roster    map[[2]uuid.UUID]time.Time
	programs  []models.Program
	sessions  []models.Session
	exercises []*models.Exercise
	videos    []models.Video
	comments  []models.Comment
	logs      []models.ImportLog
	upserts   int
	pingErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[uuid.UUID]*models.Profile),
		roster:   make(map[[2]uuid.UUID]time.Time),
	}
}

func (f *fakeStore) addProfile(email string, role models.Role) *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.Profile{ID: uuid.New(), Email: email, Role: role, CreatedAt: time.Now()}
	f.profiles[p.ID] = p
	return p
}

func (f *fakeStore) addExercise(athleteID uuid.UUID, name string) *models.Exercise {
	f.mu.Lock()
	defer f.mu.Unlock()
	ex := &models.Exercise{ID: uuid.New(), SessionID: uuid.New(), AthleteID: athleteID, Name: name, CreatedAt: time.Now()}
	f.exercises = append(f.exercises, ex)
	return ex
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpsertProfile(_ context.Context, p models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if existing, ok := f.profiles[p.ID]; ok {
		existing.Email = p.Email
		if p.FullName != nil {
			existing.FullName = p.FullName
		}
		cp := *existing
		return &cp, nil
	}
	if p.Role == "" {
		p.Role = models.RoleAthlete
	}
	p.CreatedAt = time.Now()
	f.profiles[p.ID] = &p
	cp := p
	return &cp, nil
}

func (f *fakeStore) FindAthleteByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := f.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleAthlete {
		return nil, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) IsCoachOf(_ context.Context, coachID, athleteID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.roster[[2]uuid.UUID{coachID, athleteID}]
	return ok, nil
}

func (f *fakeStore) ListRoster(_ context.Context, coachID uuid.UUID) ([]models.RosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RosterEntry
	for k, at := range f.roster {
		if k[0] == coachID {
			out = append(out, models.RosterEntry{Athlete: *f.profiles[k[1]], CreatedAt: at})
		}
	}
	slices.SortFunc(out, func(a, b models.RosterEntry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (f *fakeStore) FirstRosterAthlete(ctx context.Context, coachID uuid.UUID) (uuid.UUID, error) {
	roster, _ := f.ListRoster(ctx, coachID)
	if len(roster) == 0 {
		return uuid.Nil, storage.ErrNotFound
	}
	return roster[len(roster)-1].Athlete.ID, nil
}

func (f *fakeStore) AddToRoster(_ context.Context, coachID, athleteID uuid.UUID) (*models.RosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]uuid.UUID{coachID, athleteID}
	if _, ok := f.roster[k]; ok {
		return nil, storage.ErrDuplicate
	}
	// Strictly increasing timestamps keep roster order deterministic.
	at := time.Now().Add(time.Duration(len(f.roster)) * time.Second)
	f.roster[k] = at
	return &models.RosterEntry{Athlete: *f.profiles[athleteID], CreatedAt: at}, nil
}

func (f *fakeStore) RemoveFromRoster(_ context.Context, coachID, athleteID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]uuid.UUID{coachID, athleteID}
	if _, ok := f.roster[k]; !ok {
		return storage.ErrNotFound
	}
	delete(f.roster, k)
	return nil
}

func (f *fakeStore) CreateProgram(_ context.Context, p importer.NewProgram) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.programs = append(f.programs, models.Program{
		ID: id, AthleteID: p.AthleteID, Name: p.Name, WeekNumber: p.WeekNumber,
		StartDate: p.StartDate, RawCSV: p.RawCSV, CreatedAt: time.Now(),
	})
	return id, nil
}

func (f *fakeStore) CreateSession(_ context.Context, programID, athleteID uuid.UUID, day models.Day, sessionType *string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.sessions = append(f.sessions, models.Session{
		ID: id, ProgramID: programID, AthleteID: athleteID, DayLabel: day, SessionType: sessionType,
	})
	return id, nil
}

func (f *fakeStore) CreateExercises(_ context.Context, sessionID, athleteID uuid.UUID, rows []models.ExerciseRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.exercises = append(f.exercises, &models.Exercise{
			ID: uuid.New(), SessionID: sessionID, AthleteID: athleteID, Name: r.Name,
			Sets: r.Sets, Reps: r.Reps, LoadKg: r.LoadKg, RPETarget: r.RPETarget,
			Notes: r.Notes, SortOrder: r.SortOrder,
		})
	}
	return nil
}

func (f *fakeStore) hierarchy(p models.Program) *models.Program {
	for _, s := range f.sessions {
		if s.ProgramID != p.ID {
			continue
		}
		for _, ex := range f.exercises {
			if ex.SessionID == s.ID {
				s.Exercises = append(s.Exercises, *ex)
			}
		}
		p.Sessions = append(p.Sessions, s)
	}
	return &p
}

func (f *fakeStore) LatestProgram(_ context.Context, athleteID uuid.UUID) (*models.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.programs) - 1; i >= 0; i-- {
		if f.programs[i].AthleteID == athleteID {
			return f.hierarchy(f.programs[i]), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetProgram(_ context.Context, id, athleteID uuid.UUID) (*models.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.programs {
		if p.ID == id && p.AthleteID == athleteID {
			return f.hierarchy(p), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) ListPrograms(_ context.Context, athleteID uuid.UUID, limit int) ([]models.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Program
	for i := len(f.programs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.programs[i].AthleteID == athleteID {
			out = append(out, f.programs[i])
		}
	}
	return out, nil
}

func (f *fakeStore) GetExercise(_ context.Context, id uuid.UUID) (*models.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.exercises {
		if ex.ID == id {
			cp := *ex
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpdateActuals(_ context.Context, exerciseID, athleteID uuid.UUID, a models.Actuals) (*models.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.exercises {
		if ex.ID == exerciseID && ex.AthleteID == athleteID {
			ex.ActualLoad, ex.ActualReps, ex.ActualRPE = a.Load, a.Reps, a.RPE
			cp := *ex
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) InsertVideo(_ context.Context, v models.Video) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	f.videos = append(f.videos, v)
	return &v, nil
}

func (f *fakeStore) InsertComment(_ context.Context, c models.Comment) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	f.comments = append(f.comments, c)
	return &c, nil
}

func (f *fakeStore) Dashboard(ctx context.Context, profileID uuid.UUID) (*models.Dashboard, error) {
	p, err := f.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return &models.Dashboard{Profile: *p, RecentComments: []models.Comment{}}, nil
}

func (f *fakeStore) Progress(context.Context, uuid.UUID) ([]models.LiftProgress, error) {
	return nil, nil
}

func (f *fakeStore) WeeklyRecap(ctx context.Context, athleteID uuid.UUID) (*models.Recap, error) {
	p, err := f.GetProfile(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return &models.Recap{Athlete: p, Clips: []models.RecapClip{}}, nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, l models.ImportLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, l)
	return l.ID, nil
}

func (f *fakeStore) UpdateImportLog(_ context.Context, id int64, l models.ImportLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = id
	f.logs[id-1] = l
	return nil
}

func (f *fakeStore) QueryImportLogs(_ context.Context, athleteID uuid.UUID, limit int) ([]models.ImportLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ImportLog
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.logs[i].AthleteID == athleteID {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}
