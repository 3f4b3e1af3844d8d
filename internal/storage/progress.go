package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
)

// progressLifts is how many exercise names Progress reports.
const progressLifts = 4

type progressRow struct {
	name string
	models.ProgressPoint
}

// Progress returns the logged-load history of the athlete's most frequently
// logged lifts.
func (db *DB) Progress(ctx context.Context, athleteID uuid.UUID) ([]models.LiftProgress, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT e.name, p.week_number, e.actual_load, e.created_at
		 FROM exercises e
		 JOIN sessions s ON s.id = e.session_id
		 JOIN programs p ON p.id = s.program_id
		 WHERE e.athlete_id = $1 AND e.actual_load IS NOT NULL
		 ORDER BY e.created_at`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying progress: %w", err)
	}
	defer rows.Close()

	var points []progressRow
	for rows.Next() {
		var r progressRow
		if err := rows.Scan(&r.name, &r.Week, &r.Load, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning progress: %w", err)
		}
		points = append(points, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summarizeProgress(points, progressLifts), nil
}

// summarizeProgress groups chronological points by exercise name and keeps
// the limit names with the most entries. Ties keep first-appearance order.
func summarizeProgress(points []progressRow, limit int) []models.LiftProgress {
	var lifts []models.LiftProgress
	idx := map[string]int{}
	for _, p := range points {
		i, ok := idx[p.name]
		if !ok {
			i = len(lifts)
			idx[p.name] = i
			lifts = append(lifts, models.LiftProgress{Name: p.name})
		}
		lifts[i].Entries = append(lifts[i].Entries, p.ProgressPoint)
	}

	slices.SortStableFunc(lifts, func(a, b models.LiftProgress) int {
		return len(b.Entries) - len(a.Entries)
	})
	if len(lifts) > limit {
		lifts = lifts[:limit]
	}

	for i := range lifts {
		l := &lifts[i]
		l.First = l.Entries[0].Load
		l.Latest = l.Entries[len(l.Entries)-1].Load
		l.Gain = l.Latest - l.First
		l.Max, l.Min = l.First, l.First
		for _, e := range l.Entries {
			l.Max = max(l.Max, e.Load)
			l.Min = min(l.Min, e.Load)
		}
	}
	return lifts
}
