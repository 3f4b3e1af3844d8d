package program

import (
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/meltforce/coachlog/internal/models"
)

// layoutParsers maps each detected layout to its parser. Adding a layout
// means adding a Detect rule and an entry here.
var layoutParsers = map[Layout]func([]Row) []models.PlannedExercise{
	LayoutDense: parseDense,
	LayoutStandard: func(rows []Row) []models.PlannedExercise {
		return parseStandard(Headered(rows))
	},
}

// Parsed is the result of reading one program file.
type Parsed struct {
	Layout    Layout                   `json:"layout"`
	Exercises []models.PlannedExercise `json:"exercises"`
}

// Days returns the distinct days in order of first appearance.
func (p *Parsed) Days() []models.Day {
	var days []models.Day
	seen := map[models.Day]bool{}
	for _, ex := range p.Exercises {
		if !seen[ex.Day] {
			seen[ex.Day] = true
			days = append(days, ex.Day)
		}
	}
	return days
}

// Parse tokenizes r, detects its layout and extracts the planned exercises.
func Parse(r io.Reader) (*Parsed, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return ParseRows(rows), nil
}

// ParseRows runs detection and parsing over already tokenized rows.
func ParseRows(rows []Row) *Parsed {
	layout := Detect(rows)
	return &Parsed{Layout: layout, Exercises: layoutParsers[layout](rows)}
}

var weekInNameRe = regexp.MustCompile(`(?i)week[_\s-]?(\d+)`)

// Suggestion holds default metadata derived from an upload's filename.
type Suggestion struct {
	Name       string `json:"name"`
	WeekNumber int    `json:"week_number"`
}

// SuggestFromFilename derives a program name and week number from names
// like "Week_50.csv". The week defaults to 1.
func SuggestFromFilename(filename string) Suggestion {
	if strings.TrimSpace(filename) == "" {
		return Suggestion{WeekNumber: 1}
	}
	base := filepath.Base(filename)
	if strings.EqualFold(filepath.Ext(base), ".csv") {
		base = base[:len(base)-len(".csv")]
	}
	name := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base))

	week := 1
	if m := weekInNameRe.FindStringSubmatch(base); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			week = n
		}
	}
	return Suggestion{Name: name, WeekNumber: week}
}
