package storage

import (
	"os"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
)

// TestExerciseInsert verifies placeholders and arguments line up row by row.
func TestExerciseInsert(t *testing.T) {
	session, athlete := uuid.New(), uuid.New()
	rows := []models.ExerciseRow{
		{Name: "Squat", Sets: ptr(4), Reps: ptr("3"), LoadKg: ptr(145.0), SortOrder: 0},
		{Name: "Squat Pause", Notes: ptr("Belt"), SortOrder: 1},
	}

	query, args := exerciseInsert(session, athlete, rows)
	if !strings.HasSuffix(query, "($1,$2,$3,$4,$5,$6,$7,$8,$9),($10,$11,$12,$13,$14,$15,$16,$17,$18)") {
		t.Errorf("query = %q", query)
	}
	if len(args) != 2*exerciseParams {
		t.Fatalf("args = %d, want %d", len(args), 2*exerciseParams)
	}
	if args[9] != session || args[10] != athlete || args[11] != "Squat Pause" || args[17] != 1 {
		t.Errorf("second row args = %v", args[9:])
	}
}

// TestExerciseInsertChunks verifies a session far past the bind parameter
// limit splits into statements that each stay within it.
func TestExerciseInsertChunks(t *testing.T) {
	rows := make([]models.ExerciseRow, 20000)
	for i := range rows {
		rows[i] = models.ExerciseRow{Name: "Row", SortOrder: i}
	}

	total := 0
	for chunk := range slices.Chunk(rows, maxExercisesPerInsert) {
		_, args := exerciseInsert(uuid.New(), uuid.New(), chunk)
		if len(args) > 65535 {
			t.Errorf("chunk binds %d parameters", len(args))
		}
		total += len(chunk)
	}
	if total != len(rows) {
		t.Errorf("rows inserted = %d, want %d", total, len(rows))
	}
}

// TestSessionDayUnique verifies the schema allows one session per day label
// within a program.
func TestSessionDayUnique(t *testing.T) {
	data, err := os.ReadFile("../../migrations/001_initial.up.sql")
	if err != nil {
		t.Fatal(err)
	}
	table := regexp.MustCompile(`(?s)CREATE TABLE sessions \((.*?)\n\);`).FindSubmatch(data)
	if table == nil {
		t.Fatal("sessions table not found")
	}
	if !strings.Contains(string(table[1]), "UNIQUE (program_id, day_label)") {
		t.Errorf("sessions table lacks UNIQUE (program_id, day_label):\n%s", table[1])
	}
}
