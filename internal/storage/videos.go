package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
)

// InsertVideo records an uploaded clip.
func (db *DB) InsertVideo(ctx context.Context, v models.Video) (*models.Video, error) {
	if v.SetNumber < 1 {
		v.SetNumber = 1
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO videos (exercise_id, athlete_id, storage_path, public_url, set_number)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		v.ExerciseID, v.AthleteID, v.StoragePath, v.PublicURL, v.SetNumber,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting video: %w", err)
	}
	return &v, nil
}

func (db *DB) programVideos(ctx context.Context, programID uuid.UUID) ([]models.Video, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT v.id, v.exercise_id, v.athlete_id, v.storage_path, v.public_url, v.set_number, v.created_at
		 FROM videos v
		 JOIN exercises e ON e.id = v.exercise_id
		 JOIN sessions s ON s.id = e.session_id
		 WHERE s.program_id = $1
		 ORDER BY v.created_at`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying videos: %w", err)
	}
	defer rows.Close()

	var result []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.ExerciseID, &v.AthleteID, &v.StoragePath, &v.PublicURL, &v.SetNumber, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
