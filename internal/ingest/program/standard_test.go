package program

import (
	"testing"

	"github.com/meltforce/coachlog/internal/models"
)

// TestParseStandardRow verifies the canonical single-row example.
func TestParseStandardRow(t *testing.T) {
	got := parseStandard(Headered(mustRows(t, standardCSV)))
	want := models.PlannedExercise{
		Day: models.Mon, Name: "Bench Press", Sets: intp(5), Reps: strp("5"),
		LoadKg: floatp(100), RPETarget: floatp(8), CoachNotes: strp("Focus on pause"),
	}
	if len(got) != 1 {
		t.Fatalf("exercises = %d, want 1", len(got))
	}
	if !sameExercise(got[0], want) {
		t.Errorf("exercise = %+v, want %+v", got[0], want)
	}
}

// TestParseStandardFiltering verifies rows need a weekday and a name, and
// that output follows file order.
func TestParseStandardFiltering(t *testing.T) {
	csv := `Day,Exercise,Sets,Reps,Load_kg,RPE,Notes
Tue, Squat ,3,5,120,7,
,Orphan,3,5,,,
Wed,,3,5,,,
Monday,Typo,3,5,,,
 Thu ,Deadlift,1,1,200,9,  Belt  
`
	got := parseStandard(Headered(mustRows(t, csv)))
	if len(got) != 2 {
		t.Fatalf("exercises = %+v, want 2", got)
	}
	if got[0].Day != models.Tue || got[0].Name != "Squat" || got[0].CoachNotes != nil {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Day != models.Thu || got[1].CoachNotes == nil || *got[1].CoachNotes != "Belt" {
		t.Errorf("got[1] = %+v", got[1])
	}
}

// TestParseStandardAbsentVersusZero verifies that 0 stays zero while
// unparseable numbers become absent.
func TestParseStandardAbsentVersusZero(t *testing.T) {
	csv := `Day,Exercise,Sets,Reps,Load_kg,RPE,Notes
Fri,Plank,3,60s,0,0,
Sat,Squat,abc,,heavy,hard,
`
	got := parseStandard(Headered(mustRows(t, csv)))
	if len(got) != 2 {
		t.Fatalf("exercises = %d, want 2", len(got))
	}
	if got[0].LoadKg == nil || *got[0].LoadKg != 0 {
		t.Errorf("plank load = %v, want 0", got[0].LoadKg)
	}
	if got[0].RPETarget == nil || *got[0].RPETarget != 0 {
		t.Errorf("plank rpe = %v, want 0", got[0].RPETarget)
	}
	sq := got[1]
	if sq.Sets != nil || sq.Reps != nil || sq.LoadKg != nil || sq.RPETarget != nil {
		t.Errorf("squat = %+v, want optional fields absent", sq)
	}
}

// TestParseStandardMissingNotesColumn verifies files without a Notes column.
func TestParseStandardMissingNotesColumn(t *testing.T) {
	got := parseStandard(Headered(mustRows(t, "Day,Exercise,Sets\nMon,Row,4\n")))
	if len(got) != 1 || got[0].CoachNotes != nil || *got[0].Sets != 4 {
		t.Errorf("got = %+v", got)
	}
}

// TestParseStandardUnitSuffixes verifies numbers followed by units or
// markers are still read.
func TestParseStandardUnitSuffixes(t *testing.T) {
	csv := `Day,Exercise,Sets,Reps,Load_kg,RPE,Notes
Mon,Bench Press,5,5,100kg,8.5@,
`
	got := parseStandard(Headered(mustRows(t, csv)))
	if len(got) != 1 {
		t.Fatalf("exercises = %d, want 1", len(got))
	}
	if !eq(got[0].LoadKg, floatp(100)) || !eq(got[0].RPETarget, floatp(8.5)) {
		t.Errorf("load = %v, rpe = %v, want 100 and 8.5", deref(got[0].LoadKg), deref(got[0].RPETarget))
	}
}
