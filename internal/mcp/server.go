package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/liftscribe/internal/parse"
	"github.com/claude/liftscribe/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(db *storage.DB, pipeline *parse.Pipeline, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftScribe", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftScribe workout logging server. Parse freeform workout text into structured records, search the exercise catalog, and read back logged workouts. All data is scoped to the authenticated user."),
	)

	h := &handlers{db: db, pipeline: pipeline, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolParseWorkout, Handler: h.parseWorkout},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolListReviewExercises, Handler: h.listReviewExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	db       *storage.DB
	pipeline *parse.Pipeline
	log      *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"liftscribe://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The 20 most recently logged workouts"),
	mcp.WithMIMEType("application/json"),
)
