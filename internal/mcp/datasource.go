package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	LatestProgram(ctx context.Context, athleteID uuid.UUID) (*models.Program, error)
	ListPrograms(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.Program, error)
	Progress(ctx context.Context, athleteID uuid.UUID) ([]models.LiftProgress, error)
	WeeklyRecap(ctx context.Context, athleteID uuid.UUID) (*models.Recap, error)
	QueryImportLogs(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.ImportLog, error)
	Dashboard(ctx context.Context, profileID uuid.UUID) (*models.Dashboard, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
