package ingest

import "github.com/google/uuid"

// Result holds the outcome of an ingest operation.
type Result struct {
	Layout string `json:"layout"`

	ExercisesReceived int `json:"exercises_received"`
	ExercisesInserted int `json:"exercises_inserted"`
	DaysReceived      int `json:"days_received"`
	SessionsCreated   int `json:"sessions_created"`

	ProgramID *uuid.UUID `json:"program_id,omitempty"`
	Status    string     `json:"status"`
	Warnings  []string   `json:"warnings,omitempty"`

	Message string `json:"message,omitempty"`
}
