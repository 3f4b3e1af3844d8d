package importer

import (
	"testing"

	"github.com/meltforce/coachlog/internal/models"
)

// TestGroupByDayPreservesRecords verifies that flattening the groups again
// yields every record exactly once, in per-day file order.
func TestGroupByDayPreservesRecords(t *testing.T) {
	in := sampleWeek()
	groups := GroupByDay(in)

	if len(groups) != 2 || groups[0].Day != models.Wed || groups[1].Day != models.Thu {
		t.Fatalf("groups = %+v, want Wed then Thu", groups)
	}

	var flat []models.PlannedExercise
	for _, g := range groups {
		for _, ex := range g.Exercises {
			if ex.Day != g.Day {
				t.Errorf("%q grouped under %s", ex.Name, g.Day)
			}
		}
		flat = append(flat, g.Exercises...)
	}
	if len(flat) != len(in) {
		t.Fatalf("flattened = %d records, want %d", len(flat), len(in))
	}
	seen := map[string]int{}
	for _, ex := range flat {
		seen[ex.Name]++
	}
	for _, ex := range in {
		if seen[ex.Name] != 1 {
			t.Errorf("%q appears %d times, want 1", ex.Name, seen[ex.Name])
		}
	}

	wantWed := []string{"Bench Press", "Bench Accessory", "Squat Pause"}
	for i, ex := range groups[0].Exercises {
		if ex.Name != wantWed[i] {
			t.Errorf("wed[%d] = %q, want %q", i, ex.Name, wantWed[i])
		}
	}
}

// TestGroupByDayFirstAppearance verifies group order follows the file, not
// the calendar.
func TestGroupByDayFirstAppearance(t *testing.T) {
	in := []models.PlannedExercise{
		{Day: models.Fri, Name: "A"},
		{Day: models.Mon, Name: "B"},
		{Day: models.Fri, Name: "C"},
	}
	groups := GroupByDay(in)
	if len(groups) != 2 || groups[0].Day != models.Fri || groups[1].Day != models.Mon {
		t.Errorf("groups = %+v, want Fri then Mon", groups)
	}
	if GroupByDay(nil) != nil {
		t.Error("GroupByDay(nil) should be nil")
	}
}

// TestSessionType covers the first-word label rules.
func TestSessionType(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"dedupe and cap", []string{"Bench Press", "Bench Accessory", "Squat", "Squat Pause"}, "Bench/Squat"},
		{"three words capped", []string{"Squat", "Bench", "Deadlift"}, "Squat/Bench"},
		{"single", []string{"Deadlift"}, "Deadlift"},
		{"same word", []string{"Bench Press", "Bench Close Grip"}, "Bench"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exs []models.PlannedExercise
			for _, n := range tt.names {
				exs = append(exs, models.PlannedExercise{Day: models.Mon, Name: n})
			}
			if got := SessionType(exs); got != tt.want {
				t.Errorf("SessionType(%v) = %q, want %q", tt.names, got, tt.want)
			}
		})
	}
}

// TestExerciseRowsSortOrder verifies sort_order runs 0..N-1 and fields copy 1:1.
func TestExerciseRowsSortOrder(t *testing.T) {
	in := GroupByDay(sampleWeek())[0].Exercises
	rows := ExerciseRows(in)
	for i, r := range rows {
		if r.SortOrder != i {
			t.Errorf("rows[%d].SortOrder = %d", i, r.SortOrder)
		}
		if r.Name != in[i].Name || r.Notes != in[i].CoachNotes || r.LoadKg != in[i].LoadKg {
			t.Errorf("rows[%d] = %+v, want fields of %+v", i, r, in[i])
		}
	}
}
