package program

import (
	"strings"

	"github.com/meltforce/coachlog/internal/models"
)

// Column names in the standard layout.
const (
	colDay      = "Day"
	colExercise = "Exercise"
	colSets     = "Sets"
	colReps     = "Reps"
	colLoad     = "Load_kg"
	colRPE      = "RPE"
	colNotes    = "Notes"
)

// parseStandard reads headered rows. Rows without both a day and an
// exercise name are dropped, as are rows whose day is not a weekday label.
func parseStandard(rows []map[string]string) []models.PlannedExercise {
	var out []models.PlannedExercise
	for _, r := range rows {
		name := strings.TrimSpace(r[colExercise])
		if name == "" {
			continue
		}
		day, ok := models.ParseDay(r[colDay])
		if !ok {
			continue
		}
		out = append(out, models.PlannedExercise{
			Day:        day,
			Name:       name,
			Sets:       positive(parseOptionalInt(r[colSets])),
			Reps:       optionalText(r[colReps]),
			LoadKg:     nonNegative(parseOptionalFloat(r[colLoad])),
			RPETarget:  parseOptionalFloat(r[colRPE]),
			CoachNotes: optionalText(r[colNotes]),
		})
	}
	return out
}
