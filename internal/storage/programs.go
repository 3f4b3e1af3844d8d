package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/coachlog/internal/importer"
	"github.com/meltforce/coachlog/internal/models"
)

var _ importer.Store = (*DB)(nil)

// CreateProgram inserts a program row and returns its ID.
func (db *DB) CreateProgram(ctx context.Context, p importer.NewProgram) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO programs (athlete_id, name, week_number, start_date, raw_csv)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.AthleteID, p.Name, p.WeekNumber, p.StartDate, p.RawCSV,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting program: %w", err)
	}
	return id, nil
}

const programColumns = `id, athlete_id, name, week_number, start_date, raw_csv, created_at`

func scanProgram(row pgx.Row) (*models.Program, error) {
	var p models.Program
	err := row.Scan(&p.ID, &p.AthleteID, &p.Name, &p.WeekNumber, &p.StartDate, &p.RawCSV, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning program: %w", err)
	}
	return &p, nil
}

// LatestProgram returns the athlete's most recently imported program with
// its full hierarchy.
func (db *DB) LatestProgram(ctx context.Context, athleteID uuid.UUID) (*models.Program, error) {
	p, err := scanProgram(db.Pool.QueryRow(ctx,
		`SELECT `+programColumns+` FROM programs
		 WHERE athlete_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, athleteID))
	if err != nil {
		return nil, err
	}
	if err := db.loadHierarchy(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProgram returns one of the athlete's programs with its full hierarchy.
func (db *DB) GetProgram(ctx context.Context, id, athleteID uuid.UUID) (*models.Program, error) {
	p, err := scanProgram(db.Pool.QueryRow(ctx,
		`SELECT `+programColumns+` FROM programs
		 WHERE id = $1 AND athlete_id = $2`, id, athleteID))
	if err != nil {
		return nil, err
	}
	if err := db.loadHierarchy(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPrograms returns program headers for the athlete, newest first.
func (db *DB) ListPrograms(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.Program, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+programColumns+` FROM programs
		 WHERE athlete_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		p.RawCSV = nil
		result = append(result, *p)
	}
	return result, rows.Err()
}

// loadHierarchy fills in sessions, exercises, videos and comments.
func (db *DB) loadHierarchy(ctx context.Context, p *models.Program) error {
	sessions, err := db.programSessions(ctx, p.ID)
	if err != nil {
		return err
	}
	exercises, err := db.programExercises(ctx, p.ID)
	if err != nil {
		return err
	}
	videos, err := db.programVideos(ctx, p.ID)
	if err != nil {
		return err
	}
	comments, err := db.programComments(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Sessions = assemble(sessions, exercises, videos, comments)
	return nil
}

// assemble nests exercises under sessions and videos/comments under
// exercises. Input order is preserved at every level.
func assemble(sessions []models.Session, exercises []models.Exercise, videos []models.Video, comments []models.Comment) []models.Session {
	exIdx := make(map[uuid.UUID]int, len(exercises))
	for i := range exercises {
		exIdx[exercises[i].ID] = i
	}
	for _, v := range videos {
		if i, ok := exIdx[v.ExerciseID]; ok {
			exercises[i].Videos = append(exercises[i].Videos, v)
		}
	}
	for _, c := range comments {
		if i, ok := exIdx[c.ExerciseID]; ok {
			exercises[i].Comments = append(exercises[i].Comments, c)
		}
	}

	sIdx := make(map[uuid.UUID]int, len(sessions))
	for i := range sessions {
		sIdx[sessions[i].ID] = i
	}
	for _, e := range exercises {
		if i, ok := sIdx[e.SessionID]; ok {
			sessions[i].Exercises = append(sessions[i].Exercises, e)
		}
	}
	return sessions
}
