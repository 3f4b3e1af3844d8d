package program

import (
	"errors"
	"strings"
	"testing"

	"github.com/meltforce/coachlog/internal/models"
)

// TestParseDispatch verifies Parse routes each layout to its parser.
func TestParseDispatch(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		layout    Layout
		exercises int
		days      []models.Day
	}{
		{"dense", denseCSV, LayoutDense, 5, []models.Day{models.Mon, models.Wed, models.Fri}},
		{"standard", standardCSV, LayoutStandard, 1, []models.Day{models.Mon}},
		{"empty", "", LayoutStandard, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if p.Layout != tt.layout {
				t.Errorf("layout = %q, want %q", p.Layout, tt.layout)
			}
			if len(p.Exercises) != tt.exercises {
				t.Errorf("exercises = %d, want %d", len(p.Exercises), tt.exercises)
			}
			days := p.Days()
			if len(days) != len(tt.days) {
				t.Fatalf("days = %v, want %v", days, tt.days)
			}
			for i := range days {
				if days[i] != tt.days[i] {
					t.Errorf("days[%d] = %s, want %s", i, days[i], tt.days[i])
				}
			}
		})
	}
}

// TestParseUnreadable verifies tokenizer failures surface as ErrUnreadable.
func TestParseUnreadable(t *testing.T) {
	_, err := Parse(strings.NewReader("Mon,\xff\xfe,3\n"))
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("err = %v, want ErrUnreadable", err)
	}
}

// TestParseDaysFirstAppearance verifies Days keeps first-appearance order
// even when days repeat out of order.
func TestParseDaysFirstAppearance(t *testing.T) {
	p := &Parsed{Exercises: []models.PlannedExercise{
		{Day: models.Thu, Name: "a"},
		{Day: models.Mon, Name: "b"},
		{Day: models.Thu, Name: "c"},
	}}
	days := p.Days()
	if len(days) != 2 || days[0] != models.Thu || days[1] != models.Mon {
		t.Errorf("days = %v, want [Thu Mon]", days)
	}
}

// TestSuggestFromFilename verifies default name and week derivation.
func TestSuggestFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want Suggestion
	}{
		{"Week_50.csv", Suggestion{Name: "Week 50", WeekNumber: 50}},
		{"uploads/block-2-week-7.CSV", Suggestion{Name: "block 2 week 7", WeekNumber: 7}},
		{"week12 peaking.csv", Suggestion{Name: "week12 peaking", WeekNumber: 12}},
		{"program.csv", Suggestion{Name: "program", WeekNumber: 1}},
		{"", Suggestion{WeekNumber: 1}},
	}
	for _, tt := range tests {
		if got := SuggestFromFilename(tt.in); got != tt.want {
			t.Errorf("SuggestFromFilename(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
