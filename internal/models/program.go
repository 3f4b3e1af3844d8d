package models

import (
	"time"

	"github.com/google/uuid"
)

// PlannedExercise is one programmed exercise as read from a CSV export.
// Day and Name are always set; nil pointers mean the cell was blank or
// could not be parsed.
type PlannedExercise struct {
	Day        Day      `json:"day"`
	Name       string   `json:"name"`
	Sets       *int     `json:"sets"`
	Reps       *string  `json:"reps"`
	LoadKg     *float64 `json:"load_kg"`
	RPETarget  *float64 `json:"rpe_target"`
	CoachNotes *string  `json:"coach_notes"`
}

// Role distinguishes athletes from coaches.
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
)

// Profile is a user of the app. ID matches the auth provider's subject.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    *string   `json:"full_name"`
	Role        Role      `json:"role"`
	WeightClass *string   `json:"weight_class"`
	CreatedAt   time.Time `json:"created_at"`
}

// Program is one imported training week.
type Program struct {
	ID         uuid.UUID  `json:"id"`
	AthleteID  uuid.UUID  `json:"athlete_id"`
	Name       string     `json:"name"`
	WeekNumber int        `json:"week_number"`
	StartDate  *time.Time `json:"start_date"`
	RawCSV     *string    `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	Sessions   []Session  `json:"sessions,omitempty"`
}

// Session is one training day within a program.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	ProgramID   uuid.UUID  `json:"program_id"`
	AthleteID   uuid.UUID  `json:"athlete_id"`
	DayLabel    Day        `json:"day_label"`
	SessionDate *time.Time `json:"session_date"`
	SessionType *string    `json:"session_type"`
	CreatedAt   time.Time  `json:"created_at"`
	Exercises   []Exercise `json:"exercises,omitempty"`
}

// Exercise is a persisted programmed exercise plus the athlete's logged actuals.
type Exercise struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	AthleteID  uuid.UUID `json:"athlete_id"`
	Name       string    `json:"name"`
	Sets       *int      `json:"sets"`
	Reps       *string   `json:"reps"`
	LoadKg     *float64  `json:"load_kg"`
	RPETarget  *float64  `json:"rpe_target"`
	Notes      *string   `json:"notes"`
	ActualLoad *float64  `json:"actual_load"`
	ActualReps *string   `json:"actual_reps"`
	ActualRPE  *float64  `json:"actual_rpe"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	Videos     []Video   `json:"videos,omitempty"`
	Comments   []Comment `json:"comments,omitempty"`
}

// ExerciseRow is an exercise ready for batch insertion under a session.
type ExerciseRow struct {
	Name      string
	Sets      *int
	Reps      *string
	LoadKg    *float64
	RPETarget *float64
	Notes     *string
	SortOrder int
}

// Video is a clip attached to an exercise.
type Video struct {
	ID          uuid.UUID `json:"id"`
	ExerciseID  uuid.UUID `json:"exercise_id"`
	AthleteID   uuid.UUID `json:"athlete_id"`
	StoragePath string    `json:"storage_path"`
	PublicURL   *string   `json:"public_url"`
	SetNumber   int       `json:"set_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is coach feedback on an exercise.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	CoachID    uuid.UUID `json:"coach_id"`
	AthleteID  uuid.UUID `json:"athlete_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	CoachName  *string   `json:"coach_name,omitempty"`
}

// Actuals carries the athlete's logged values for one exercise.
type Actuals struct {
	Load *float64 `json:"actual_load"`
	Reps *string  `json:"actual_reps"`
	RPE  *float64 `json:"actual_rpe"`
}
