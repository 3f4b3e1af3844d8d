package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
)

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (athlete_id, source, filename, layout, status, exercises_received,
		 exercises_inserted, sessions_created, program_id, duration_ms, error_message, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING id`,
		log.AthleteID, log.Source, log.Filename, log.Layout, log.Status, log.ExercisesReceived,
		log.ExercisesInserted, log.SessionsCreated, log.ProgramID, log.DurationMs,
		log.ErrorMessage, log.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog updates an existing import log entry (typically from "running" to a final status).
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log models.ImportLog) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE import_logs SET
		 status = $2, layout = $3, exercises_received = $4, exercises_inserted = $5,
		 sessions_created = $6, program_id = $7, duration_ms = $8, error_message = $9, metadata = $10
		 WHERE id = $1`,
		id, log.Status, log.Layout, log.ExercisesReceived, log.ExercisesInserted,
		log.SessionsCreated, log.ProgramID, log.DurationMs, log.ErrorMessage, log.Metadata,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs for an athlete.
func (db *DB) QueryImportLogs(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, created_at, source, filename, layout, status, exercises_received,
		 exercises_inserted, sessions_created, program_id, duration_ms, error_message, metadata
		 FROM import_logs
		 WHERE athlete_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []models.ImportLog
	for rows.Next() {
		var l models.ImportLog
		if err := rows.Scan(&l.ID, &l.AthleteID, &l.CreatedAt, &l.Source, &l.Filename, &l.Layout,
			&l.Status, &l.ExercisesReceived, &l.ExercisesInserted, &l.SessionsCreated,
			&l.ProgramID, &l.DurationMs, &l.ErrorMessage, &l.Metadata); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
