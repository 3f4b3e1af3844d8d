package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/coachlog/internal/models"
)

// InsertComment stores coach feedback on an exercise.
func (db *DB) InsertComment(ctx context.Context, c models.Comment) (*models.Comment, error) {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO comments (exercise_id, coach_id, athlete_id, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.ExerciseID, c.CoachID, c.AthleteID, c.Body,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}
	return &c, nil
}

const commentColumns = `c.id, c.exercise_id, c.coach_id, c.athlete_id, c.body, c.created_at, p.full_name`

func scanComments(rows pgx.Rows) ([]models.Comment, error) {
	defer rows.Close()
	var result []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ExerciseID, &c.CoachID, &c.AthleteID, &c.Body, &c.CreatedAt, &c.CoachName); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// RecentComments returns the newest comments left for an athlete.
func (db *DB) RecentComments(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c
		 LEFT JOIN profiles p ON p.id = c.coach_id
		 WHERE c.athlete_id = $1
		 ORDER BY c.created_at DESC
		 LIMIT $2`, athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent comments: %w", err)
	}
	return scanComments(rows)
}

func (db *DB) programComments(ctx context.Context, programID uuid.UUID) ([]models.Comment, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c
		 LEFT JOIN profiles p ON p.id = c.coach_id
		 JOIN exercises e ON e.id = c.exercise_id
		 JOIN sessions s ON s.id = e.session_id
		 WHERE s.program_id = $1
		 ORDER BY c.created_at`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	return scanComments(rows)
}
