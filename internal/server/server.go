package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/blob"
	"github.com/meltforce/coachlog/internal/ingest/program"
	"github.com/meltforce/coachlog/internal/metrics"
	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

// Store is the data layer the HTTP handlers read and write through.
type Store interface {
	Ping(ctx context.Context) error

	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
	FindAthleteByEmail(ctx context.Context, email string) (*models.Profile, error)

	IsCoachOf(ctx context.Context, coachID, athleteID uuid.UUID) (bool, error)
	ListRoster(ctx context.Context, coachID uuid.UUID) ([]models.RosterEntry, error)
	FirstRosterAthlete(ctx context.Context, coachID uuid.UUID) (uuid.UUID, error)
	AddToRoster(ctx context.Context, coachID, athleteID uuid.UUID) (*models.RosterEntry, error)
	RemoveFromRoster(ctx context.Context, coachID, athleteID uuid.UUID) error

	LatestProgram(ctx context.Context, athleteID uuid.UUID) (*models.Program, error)
	GetProgram(ctx context.Context, id, athleteID uuid.UUID) (*models.Program, error)
	ListPrograms(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.Program, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	UpdateActuals(ctx context.Context, exerciseID, athleteID uuid.UUID, a models.Actuals) (*models.Exercise, error)
	InsertVideo(ctx context.Context, v models.Video) (*models.Video, error)
	InsertComment(ctx context.Context, c models.Comment) (*models.Comment, error)

	Dashboard(ctx context.Context, profileID uuid.UUID) (*models.Dashboard, error)
	Progress(ctx context.Context, athleteID uuid.UUID) ([]models.LiftProgress, error)
	WeeklyRecap(ctx context.Context, athleteID uuid.UUID) (*models.Recap, error)
	QueryImportLogs(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Options carries request limits and credentials.
type Options struct {
	APIKey        string
	JWTSecret     string
	MaxBytes      int64
	MaxVideoBytes int64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	programs *program.Provider
	blobs    blob.Store
	metrics  *metrics.Metrics
	log      *slog.Logger
	opts     Options
	router   chi.Router

	jwt       *JWTValidator
	tailscale WhoIsClient
	mcp       http.Handler

	// known caches profile IDs already ensured to exist.
	known sync.Map
}

// New creates a new Server with all routes configured. m may be nil.
func New(db Store, programs *program.Provider, blobs blob.Store, m *metrics.Metrics, opts Options, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		programs: programs,
		blobs:    blobs,
		metrics:  m,
		log:      log,
		opts:     opts,
		router:   chi.NewRouter(),
		jwt:      NewJWTValidator(opts.JWTSecret),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale enables identifying tailnet users without a bearer token.
func (s *Server) SetTailscale(c WhoIsClient) {
	s.tailscale = c
}

// SetMCP installs the MCP streamable HTTP handler served at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RequestLogging(s.log, s.metrics))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// Upload client endpoint (API key required)
	s.router.With(APIKeyAuth(s.opts.APIKey)).Post("/api/v1/programs/upload", s.handleUploadProgram)

	// Everything else acts on behalf of an authenticated profile.
	s.router.Group(func(r chi.Router) {
		r.Use(s.Identity)

		r.Get("/api/v1/me", s.handleMe)
		r.Get("/api/v1/dashboard", s.handleDashboard)

		r.Post("/api/v1/programs/preview", s.handlePreviewProgram)
		r.Post("/api/v1/programs/import", s.handleImportProgram)
		r.Get("/api/v1/programs", s.handleListPrograms)
		r.Get("/api/v1/programs/latest", s.handleLatestProgram)
		r.Get("/api/v1/programs/{id}", s.handleGetProgram)

		r.Patch("/api/v1/exercises/{id}/actuals", s.handleUpdateActuals)
		r.Post("/api/v1/exercises/{id}/videos", s.handleUploadVideo)
		r.Post("/api/v1/exercises/{id}/comments", s.handleAddComment)

		r.Get("/api/v1/progress", s.handleProgress)
		r.Get("/api/v1/recap", s.handleRecap)
		r.Get("/api/v1/imports", s.handleImportLogs)

		r.Get("/api/v1/roster", s.handleListRoster)
		r.Post("/api/v1/roster", s.handleAddToRoster)
		r.Delete("/api/v1/roster/{athleteID}", s.handleRemoveFromRoster)

		r.Get("/media/*", s.handleMedia)

		r.Handle("/mcp", http.HandlerFunc(s.handleMCP))
	})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r)
}
