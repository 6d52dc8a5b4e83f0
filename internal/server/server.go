package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftscribe/internal/exercise"
	"github.com/claude/liftscribe/internal/parse"
	"github.com/claude/liftscribe/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	pipeline *parse.Pipeline
	resolver *exercise.Resolver
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, pipeline *parse.Pipeline, resolver *exercise.Resolver, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		pipeline: pipeline,
		resolver: resolver,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// MountMCP mounts the MCP transport handler under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Parse endpoint (API key required)
	s.router.Route("/api/v1/parse", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleParse)
	})

	// Read endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/exercises", s.handleSearchExercises)
	s.router.Get("/api/v1/exercises/review", s.handleReviewExercises)
}
