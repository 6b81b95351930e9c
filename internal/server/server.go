package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	svc    *workout.Service
	engine *analytics.Engine
	log    *slog.Logger
	apiKey string
	ts     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, svc *workout.Service, engine *analytics.Engine, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		svc:    svc,
		engine: engine,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the dev fallback to
// tsnet whois lookups.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/exercises", s.handleListExercises)

		r.Get("/routines", s.handleListRoutines)
		r.Get("/routines/{id}", s.handleGetRoutine)
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)

		r.Get("/analytics/stats", s.handleWorkoutStats)
		r.Get("/analytics/progress", s.handleProgress)
		r.Get("/analytics/muscle-groups", s.handleMuscleGroups)
		r.Get("/analytics/volume", s.handleVolumeOverTime)
		r.Get("/analytics/streaks", s.handleStreaks)

		// Mutations require the API key on top of the identity.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))

			r.Post("/routines", s.handleCreateRoutine)
			r.Post("/routines/{id}/exercises", s.handleAddRoutineExercise)

			r.Post("/workouts", s.handleCreateWorkout)
			r.Patch("/workouts/{id}", s.handleUpdateWorkout)
			r.Delete("/workouts/{id}", s.handleDeleteWorkout)
			r.Post("/workouts/{id}/finish", s.handleFinishWorkout)

			r.Post("/workouts/{id}/sets", s.handleAddSet)
			r.Delete("/workouts/{id}/sets", s.handleDeleteSetByExercise)
			r.Patch("/sets/{id}", s.handleUpdateSet)
			r.Delete("/sets/{id}", s.handleDeleteSet)
		})
	})
}

// identity resolves the request identity. With a tsnet local client it
// maps the tailnet peer onto a users row; otherwise the dev identity.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.ts == nil {
			DevIdentity(next).ServeHTTP(w, r)
			return
		}

		who, err := s.ts.WhoIs(r.Context(), r.RemoteAddr)
		if err != nil || who.UserProfile == nil {
			s.log.Warn("whois failed", "remote", r.RemoteAddr, "error", err)
			http.Error(w, `{"error":"identity unknown"}`, http.StatusForbidden)
			return
		}

		id, err := s.db.GetOrCreateUser(r.Context(), who.UserProfile.LoginName, who.UserProfile.DisplayName)
		if err != nil {
			s.log.Error("resolving user", "login", who.UserProfile.LoginName, "error", err)
			http.Error(w, `{"error":"identity lookup failed"}`, http.StatusInternalServerError)
			return
		}

		info := UserInfo{
			ID:          id,
			Login:       who.UserProfile.LoginName,
			DisplayName: who.UserProfile.DisplayName,
		}
		ctx := context.WithValue(r.Context(), userInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
