package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
)

// CreateSession inserts one training day under a program. A program holds
// at most one session per day label; a second one returns ErrDuplicate.
func (db *DB) CreateSession(ctx context.Context, programID, athleteID uuid.UUID, day models.Day, sessionType *string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO sessions (program_id, athlete_id, day_label, session_type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		programID, athleteID, string(day), sessionType,
	).Scan(&id)
	if isUniqueViolation(err) {
		return uuid.Nil, fmt.Errorf("session for %s: %w", day, ErrDuplicate)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting session for %s: %w", day, err)
	}
	return id, nil
}

// dayOrder sorts day labels Mon..Sun in SQL.
const dayOrder = `array_position(ARRAY['Mon','Tue','Wed','Thu','Fri','Sat','Sun'], s.day_label)`

func (db *DB) programSessions(ctx context.Context, programID uuid.UUID) ([]models.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.program_id, s.athlete_id, s.day_label, s.session_date, s.session_type, s.created_at
		 FROM sessions s
		 WHERE s.program_id = $1
		 ORDER BY `+dayOrder+`, s.created_at`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		var s models.Session
		var day string
		if err := rows.Scan(&s.ID, &s.ProgramID, &s.AthleteID, &day, &s.SessionDate, &s.SessionType, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.DayLabel = models.Day(day)
		result = append(result, s)
	}
	return result, rows.Err()
}
