package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressPoint is one logged actual load for a lift.
type ProgressPoint struct {
	Week int       `json:"week"`
	Load float64   `json:"load"`
	Date time.Time `json:"date"`
}

// LiftProgress is the logged history of one exercise name.
type LiftProgress struct {
	Name    string          `json:"name"`
	Entries []ProgressPoint `json:"entries"`
	Latest  float64         `json:"latest"`
	First   float64         `json:"first"`
	Gain    float64         `json:"gain"`
	Max     float64         `json:"max"`
	Min     float64         `json:"min"`
}

// Match colours compare logged load against the programmed load.
const (
	MatchHit     = "green"
	MatchMiss    = "red"
	MatchUnknown = "grey"
)

// RecapClip is one video in the weekly recap with its exercise context.
type RecapClip struct {
	Video    Video    `json:"video"`
	Exercise Exercise `json:"exercise"`
	DayLabel Day      `json:"day_label"`
	Planned  string   `json:"planned"`
	Actual   string   `json:"actual"`
	Match    string   `json:"match"`
}

// Recap is the clip feed for an athlete's latest program.
type Recap struct {
	Athlete   *Profile    `json:"athlete"`
	ProgramID *uuid.UUID  `json:"program_id"`
	Clips     []RecapClip `json:"clips"`
}

// RosterEntry is an athlete linked to a coach.
type RosterEntry struct {
	Athlete   Profile   `json:"athlete"`
	CreatedAt time.Time `json:"created_at"`
}

// Dashboard summarizes the caller's current state.
type Dashboard struct {
	Profile        Profile       `json:"profile"`
	Program        *Program      `json:"program"`
	Sessions       int           `json:"sessions"`
	Exercises      int           `json:"exercises"`
	Videos         int           `json:"videos"`
	RecentComments []Comment     `json:"recent_comments"`
	Athletes       []RosterEntry `json:"athletes,omitempty"`
}
