package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/coachlog/internal/models"
)

// exerciseParams is the number of bind parameters per inserted exercise.
const exerciseParams = 9

// maxExercisesPerInsert keeps one INSERT under Postgres's 65535 bind
// parameter limit.
const maxExercisesPerInsert = 65535 / exerciseParams

// CreateExercises batch-inserts the exercises of one session. Large batches
// are split across statements in one transaction, so either all rows are
// written or none are.
func (db *DB) CreateExercises(ctx context.Context, sessionID, athleteID uuid.UUID, rows []models.ExerciseRow) error {
	if len(rows) == 0 {
		return nil
	}

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for chunk := range slices.Chunk(rows, maxExercisesPerInsert) {
			query, args := exerciseInsert(sessionID, athleteID, chunk)
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("inserting exercises: %w", err)
	}
	return nil
}

// exerciseInsert builds one multi-row INSERT with positional parameters.
func exerciseInsert(sessionID, athleteID uuid.UUID, rows []models.ExerciseRow) (string, []any) {
	query := `INSERT INTO exercises (session_id, athlete_id, name, sets, reps,
		load_kg, rpe_target, notes, sort_order) VALUES `
	args := make([]any, 0, len(rows)*exerciseParams)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * exerciseParams
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args, sessionID, athleteID, r.Name, r.Sets, r.Reps,
			r.LoadKg, r.RPETarget, r.Notes, r.SortOrder)
	}

	return query + strings.Join(valueStrings, ","), args
}

const exerciseColumns = `e.id, e.session_id, e.athlete_id, e.name, e.sets, e.reps, e.load_kg,
	e.rpe_target, e.notes, e.actual_load, e.actual_reps, e.actual_rpe, e.sort_order, e.created_at`

func scanExercise(row pgx.Row, extra ...any) (models.Exercise, error) {
	var e models.Exercise
	dest := []any{&e.ID, &e.SessionID, &e.AthleteID, &e.Name, &e.Sets, &e.Reps, &e.LoadKg,
		&e.RPETarget, &e.Notes, &e.ActualLoad, &e.ActualReps, &e.ActualRPE, &e.SortOrder, &e.CreatedAt}
	err := row.Scan(append(dest, extra...)...)
	return e, err
}

func (db *DB) programExercises(ctx context.Context, programID uuid.UUID) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+`
		 FROM exercises e
		 JOIN sessions s ON s.id = e.session_id
		 WHERE s.program_id = $1
		 ORDER BY e.session_id, e.sort_order`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetExercise returns a single exercise.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	e, err := scanExercise(db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises e WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// UpdateActuals records the athlete's logged values. All three fields are
// overwritten; nil clears a value. Last write wins.
func (db *DB) UpdateActuals(ctx context.Context, exerciseID, athleteID uuid.UUID, a models.Actuals) (*models.Exercise, error) {
	e, err := scanExercise(db.Pool.QueryRow(ctx,
		`UPDATE exercises e SET actual_load = $3, actual_reps = $4, actual_rpe = $5
		 WHERE e.id = $1 AND e.athlete_id = $2
		 RETURNING `+exerciseColumns,
		exerciseID, athleteID, a.Load, a.Reps, a.RPE))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating actuals for %s: %w", exerciseID, err)
	}
	return &e, nil
}
