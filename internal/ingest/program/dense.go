package program

import (
	"strings"

	"github.com/meltforce/coachlog/internal/models"
)

// Column positions in the dense export:
// Day, Exercise, Sets, x, Reps, Target Weight, @, Target RPE, Actual Weight,
// 1, 2, 3, 4, 5, Coach Notes, Client Notes.
const (
	denseColDay    = 0
	denseColName   = 1
	denseColSets   = 2
	denseColReps   = 4
	denseColLoad   = 5
	denseColRPE    = 7
	denseColNotes  = 14
	weekHeaderText = "Week"
	nameHeaderText = "exercise"
)

// denseState is the accumulator threaded through the row fold.
type denseState struct {
	day models.Day
	out []models.PlannedExercise
}

// parseDense reads the dense layout. The day set by a row's first column
// carries over to following rows until another day appears.
func parseDense(rows []Row) []models.PlannedExercise {
	st := denseState{}
	for _, r := range rows {
		st = st.step(r)
	}
	return st.out
}

func (st denseState) step(r Row) denseState {
	if d, ok := models.ParseDay(r.Cell(denseColDay)); ok {
		st.day = d
	}

	name := strings.TrimSpace(r.Cell(denseColName))
	switch {
	case st.day == "":
		return st
	case name == "":
		return st
	case strings.HasPrefix(name, weekHeaderText):
		return st
	case strings.EqualFold(name, nameHeaderText):
		return st
	}

	st.out = append(st.out, models.PlannedExercise{
		Day:        st.day,
		Name:       name,
		Sets:       positive(parseOptionalInt(r.Cell(denseColSets))),
		Reps:       optionalText(r.Cell(denseColReps)),
		LoadKg:     nonNegative(firstNumber(r.Cell(denseColLoad))),
		RPETarget:  parseOptionalFloat(r.Cell(denseColRPE)),
		CoachNotes: optionalText(r.Cell(denseColNotes)),
	})
	return st
}
