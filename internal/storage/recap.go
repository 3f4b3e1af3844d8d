package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/coachlog/internal/models"
)

// WeeklyRecap returns one clip per video attached to the athlete's latest
// program. An athlete without programs gets an empty recap.
func (db *DB) WeeklyRecap(ctx context.Context, athleteID uuid.UUID) (*models.Recap, error) {
	recap := &models.Recap{Clips: []models.RecapClip{}}
	athlete, err := db.GetProfile(ctx, athleteID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	recap.Athlete = athlete

	var programID uuid.UUID
	err = db.Pool.QueryRow(ctx,
		`SELECT id FROM programs WHERE athlete_id = $1 ORDER BY created_at DESC LIMIT 1`,
		athleteID).Scan(&programID)
	if errors.Is(err, pgx.ErrNoRows) {
		return recap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest program: %w", err)
	}
	recap.ProgramID = &programID

	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+`, s.day_label
		 FROM exercises e
		 JOIN sessions s ON s.id = e.session_id
		 WHERE s.program_id = $1 AND e.athlete_id = $2
		 ORDER BY e.created_at, e.sort_order`, programID, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying recap exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	days := map[uuid.UUID]models.Day{}
	for rows.Next() {
		var day string
		e, err := scanExercise(rows, &day)
		if err != nil {
			return nil, fmt.Errorf("scanning recap exercise: %w", err)
		}
		days[e.ID] = models.Day(day)
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	videos, err := db.programVideos(ctx, programID)
	if err != nil {
		return nil, err
	}
	comments, err := db.programComments(ctx, programID)
	if err != nil {
		return nil, err
	}
	assemble(nil, exercises, videos, comments)

	for _, e := range exercises {
		for _, v := range e.Videos {
			recap.Clips = append(recap.Clips, recapClip(e, v, days[e.ID]))
		}
	}
	return recap, nil
}

func recapClip(e models.Exercise, v models.Video, day models.Day) models.RecapClip {
	ex := e
	ex.Videos = nil
	return models.RecapClip{
		Video:    v,
		Exercise: ex,
		DayLabel: day,
		Planned:  plannedSummary(e),
		Actual:   actualSummary(e),
		Match:    loadMatch(e),
	}
}

// plannedSummary renders "5×5 @ 100kg". Absent sets or reps print as "?".
func plannedSummary(e models.Exercise) string {
	sets, reps := "?", "?"
	if e.Sets != nil {
		sets = strconv.Itoa(*e.Sets)
	}
	if e.Reps != nil {
		reps = *e.Reps
	}
	s := sets + "×" + reps
	if e.LoadKg != nil {
		s += " @ " + formatKg(*e.LoadKg)
	}
	return s
}

// actualSummary renders "102.5kg × 5", falling back to the planned reps.
func actualSummary(e models.Exercise) string {
	if e.ActualLoad == nil {
		return "Not logged"
	}
	reps := "?"
	switch {
	case e.ActualReps != nil:
		reps = *e.ActualReps
	case e.Reps != nil:
		reps = *e.Reps
	}
	return formatKg(*e.ActualLoad) + " × " + reps
}

func loadMatch(e models.Exercise) string {
	if e.ActualLoad == nil || e.LoadKg == nil {
		return models.MatchUnknown
	}
	if *e.ActualLoad >= *e.LoadKg {
		return models.MatchHit
	}
	return models.MatchMiss
}

func formatKg(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "kg"
}
