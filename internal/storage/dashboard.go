package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
)

// dashboardComments is how many recent comments the dashboard shows.
const dashboardComments = 5

// Dashboard gathers the caller's latest program counts, recent feedback and,
// for coaches, their roster.
func (db *DB) Dashboard(ctx context.Context, profileID uuid.UUID) (*models.Dashboard, error) {
	profile, err := db.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	d := &models.Dashboard{Profile: *profile}

	program, err := db.LatestProgram(ctx, profileID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		program.RawCSV = nil
		d.Program = program
		countProgram(d, program)
	}

	d.RecentComments, err = db.RecentComments(ctx, profileID, dashboardComments)
	if err != nil {
		return nil, err
	}

	if profile.Role == models.RoleCoach {
		d.Athletes, err = db.ListRoster(ctx, profileID)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func countProgram(d *models.Dashboard, p *models.Program) {
	d.Sessions = len(p.Sessions)
	for _, s := range p.Sessions {
		d.Exercises += len(s.Exercises)
		for _, e := range s.Exercises {
			d.Videos += len(e.Videos)
		}
	}
}
