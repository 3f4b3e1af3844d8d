package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Import log statuses.
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportPartial = "partial"
	ImportError   = "error"
)

// ImportLog records one program import attempt.
type ImportLog struct {
	ID                int64            `json:"id"`
	AthleteID         uuid.UUID        `json:"athlete_id"`
	CreatedAt         time.Time        `json:"created_at"`
	Source            string           `json:"source"`
	Filename          *string          `json:"filename"`
	Layout            *string          `json:"layout"`
	Status            string           `json:"status"`
	ExercisesReceived int              `json:"exercises_received"`
	ExercisesInserted int              `json:"exercises_inserted"`
	SessionsCreated   int              `json:"sessions_created"`
	ProgramID         *uuid.UUID       `json:"program_id"`
	DurationMs        *int             `json:"duration_ms"`
	ErrorMessage      *string          `json:"error_message"`
	Metadata          *json.RawMessage `json:"metadata"`
}
