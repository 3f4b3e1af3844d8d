package importer

import (
	"strings"

	"github.com/meltforce/coachlog/internal/models"
)

// maxSessionTypeParts caps how many names make up a session type label.
const maxSessionTypeParts = 2

// DayGroup holds one day's exercises in file order.
type DayGroup struct {
	Day       models.Day
	Exercises []models.PlannedExercise
}

// GroupByDay partitions exercises by day. Groups appear in order of each
// day's first occurrence; exercises keep their relative order.
func GroupByDay(exercises []models.PlannedExercise) []DayGroup {
	var groups []DayGroup
	index := map[models.Day]int{}
	for _, ex := range exercises {
		i, ok := index[ex.Day]
		if !ok {
			i = len(groups)
			index[ex.Day] = i
			groups = append(groups, DayGroup{Day: ex.Day})
		}
		groups[i].Exercises = append(groups[i].Exercises, ex)
	}
	return groups
}

// SessionType labels a day from the first word of its exercise names,
// deduplicated in order and capped at two, joined with "/".
// "Bench Press", "Bench Accessory", "Squat" gives "Bench/Squat".
func SessionType(exercises []models.PlannedExercise) string {
	var parts []string
	seen := map[string]bool{}
	for _, ex := range exercises {
		fields := strings.Fields(ex.Name)
		if len(fields) == 0 {
			continue
		}
		w := fields[0]
		if seen[w] {
			continue
		}
		seen[w] = true
		parts = append(parts, w)
		if len(parts) == maxSessionTypeParts {
			break
		}
	}
	return strings.Join(parts, "/")
}

// ExerciseRows converts one day's exercises into insert rows with a 0-based
// sort order matching file order.
func ExerciseRows(exercises []models.PlannedExercise) []models.ExerciseRow {
	rows := make([]models.ExerciseRow, len(exercises))
	for i, ex := range exercises {
		rows[i] = models.ExerciseRow{
			Name:      ex.Name,
			Sets:      ex.Sets,
			Reps:      ex.Reps,
			LoadKg:    ex.LoadKg,
			RPETarget: ex.RPETarget,
			Notes:     ex.CoachNotes,
			SortOrder: i,
		}
	}
	return rows
}
