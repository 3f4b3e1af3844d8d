package program

import (
	"strings"

	"github.com/meltforce/coachlog/internal/models"
)

// Layout identifies a known program spreadsheet shape.
type Layout string

const (
	// LayoutDense is the header-less coach export: day in column 0, exercise
	// in column 1, and a literal "x" column between sets and reps.
	LayoutDense Layout = "dense"
	// LayoutStandard is a conventional CSV with a
	// Day,Exercise,Sets,Reps,Load_kg,RPE,Notes header row.
	LayoutStandard Layout = "standard"
)

// Detection thresholds.
const (
	// DaySampleRows bounds how many leading rows are checked for a weekday
	// in column 0.
	DaySampleRows = 10
	// DenseMarker is the cell value that separates sets from reps in the
	// dense layout.
	DenseMarker = "x"
)

// Label returns a human-readable name for previews.
func (l Layout) Label() string {
	switch l {
	case LayoutDense:
		return "Coach's format (auto-detected)"
	case LayoutStandard:
		return "Standard format"
	default:
		return string(l)
	}
}

// Detect classifies tokenized rows. Files that show both a weekday in the
// first column of the leading rows and an "x" marker cell anywhere are
// dense; everything else falls back to standard.
func Detect(rows []Row) Layout {
	if hasLeadingDay(rows) && hasMarker(rows) {
		return LayoutDense
	}
	return LayoutStandard
}

func hasLeadingDay(rows []Row) bool {
	n := min(len(rows), DaySampleRows)
	for _, r := range rows[:n] {
		if _, ok := models.ParseDay(r.Cell(0)); ok {
			return true
		}
	}
	return false
}

func hasMarker(rows []Row) bool {
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) == DenseMarker {
				return true
			}
		}
	}
	return false
}
