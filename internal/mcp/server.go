package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const athleteIDKey contextKey = iota

// AthleteIDFromContext extracts the profile ID injected by the transport
// layer. Remote (stdio) mode carries none; the REST API then resolves the
// caller from its token.
func AthleteIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(athleteIDKey).(uuid.UUID)
	return id, ok
}

// WithAthleteID returns a context with the given profile ID.
func WithAthleteID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, athleteIDKey, id)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("CoachLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("CoachLog training log server. Query imported weekly programs, logged lifts, progress per lift, and the weekly video recap. All data is scoped to the authenticated athlete."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetLatestProgram, Handler: h.getLatestProgram},
		server.ServerTool{Tool: toolListPrograms, Handler: h.listPrograms},
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolGetWeeklyRecap, Handler: h.getWeeklyRecap},
		server.ServerTool{Tool: toolListImports, Handler: h.listImports},
	)

	s.AddResources(
		server.ServerResource{Resource: resLatestProgram, Handler: h.latestProgram},
		server.ServerResource{Resource: resDashboard, Handler: h.dashboard},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP. identify supplies the
// authenticated profile for each request.
func NewHTTPHandler(s *server.MCPServer, identify func(*http.Request) (uuid.UUID, bool)) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if id, ok := identify(r); ok {
				return WithAthleteID(ctx, id)
			}
			return ctx
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// athlete returns the profile in scope, or uuid.Nil in remote mode.
func athlete(ctx context.Context) uuid.UUID {
	id, _ := AthleteIDFromContext(ctx)
	return id
}
