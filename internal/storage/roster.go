package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/coachlog/internal/models"
)

// IsCoachOf reports whether the athlete is on the coach's roster.
func (db *DB) IsCoachOf(ctx context.Context, coachID, athleteID uuid.UUID) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM coach_athlete WHERE coach_id = $1 AND athlete_id = $2)`,
		coachID, athleteID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking roster: %w", err)
	}
	return exists, nil
}

// ListRoster returns the coach's athletes, most recently added first.
func (db *DB) ListRoster(ctx context.Context, coachID uuid.UUID) ([]models.RosterEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+profileColumns+`, ca.created_at
		 FROM coach_athlete ca
		 JOIN profiles p ON p.id = ca.athlete_id
		 WHERE ca.coach_id = $1
		 ORDER BY ca.created_at DESC`, coachID)
	if err != nil {
		return nil, fmt.Errorf("querying roster: %w", err)
	}
	defer rows.Close()

	var result []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		p, err := scanProfile(rows, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning roster entry: %w", err)
		}
		e.Athlete = p
		result = append(result, e)
	}
	return result, rows.Err()
}

// FirstRosterAthlete returns the athlete the coach linked first.
func (db *DB) FirstRosterAthlete(ctx context.Context, coachID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`SELECT athlete_id FROM coach_athlete
		 WHERE coach_id = $1
		 ORDER BY created_at
		 LIMIT 1`, coachID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("querying roster: %w", err)
	}
	return id, nil
}

// AddToRoster links an athlete to a coach. Linking the same pair twice
// returns ErrDuplicate.
func (db *DB) AddToRoster(ctx context.Context, coachID, athleteID uuid.UUID) (*models.RosterEntry, error) {
	var createdAt time.Time
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO coach_athlete (coach_id, athlete_id) VALUES ($1, $2) RETURNING created_at`,
		coachID, athleteID).Scan(&createdAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("adding to roster: %w", err)
	}
	athlete, err := db.GetProfile(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return &models.RosterEntry{Athlete: *athlete, CreatedAt: createdAt}, nil
}

// RemoveFromRoster unlinks an athlete. Returns ErrNotFound if the pair was
// not linked.
func (db *DB) RemoveFromRoster(ctx context.Context, coachID, athleteID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM coach_athlete WHERE coach_id = $1 AND athlete_id = $2`,
		coachID, athleteID)
	if err != nil {
		return fmt.Errorf("removing from roster: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
