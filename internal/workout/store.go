package workout

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ListWorkoutsOptions filters and pages GetUserWorkouts.
type ListWorkoutsOptions struct {
	Limit           int
	Offset          int
	IncludeFinished bool
	RoutineID       *uuid.UUID
}

// RoutineStore is the persistence port for routines and their planned
// exercises. Get methods return (nil, nil) when the row is absent.
type RoutineStore interface {
	CreateRoutine(ctx context.Context, r *models.Routine) error
	GetRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error)
	ListRoutines(ctx context.Context, userID int) ([]models.Routine, error)
	CreateRoutineExercise(ctx context.Context, re *models.RoutineExercise) error
	// ListRoutineExercises returns exercises in canonical order
	// (day_index asc, order_index asc), optionally filtered to one day.
	ListRoutineExercises(ctx context.Context, routineID uuid.UUID, dayIndex *int) ([]models.RoutineExercise, error)
	// MaxOrderIndex returns the highest order_index within (routine, day),
	// or -1 when the day has no exercises yet.
	MaxOrderIndex(ctx context.Context, routineID uuid.UUID, dayIndex int) (int, error)
	OrderIndexTaken(ctx context.Context, routineID uuid.UUID, dayIndex, orderIndex int) (bool, error)
}

// WorkoutStore is the persistence port for workout rows.
type WorkoutStore interface {
	CreateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	ListWorkouts(ctx context.Context, userID int, opts ListWorkoutsOptions) ([]models.Workout, int, error)
	UpdateWorkout(ctx context.Context, w *models.Workout) error
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
}

// SetStore is the persistence port for workout sets.
type SetStore interface {
	CreateSet(ctx context.Context, s *models.WorkoutSet) error
	CreateSets(ctx context.Context, sets []models.WorkoutSet) error
	GetSet(ctx context.Context, id uuid.UUID) (*models.WorkoutSet, error)
	// ListSets returns sets in canonical order (exercise identity asc,
	// set_number asc).
	ListSets(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutSet, error)
	UpdateSet(ctx context.Context, s *models.WorkoutSet) error
	DeleteSet(ctx context.Context, id uuid.UUID) error
}

// ExerciseStore is the read-only port for the exercise catalog.
type ExerciseStore interface {
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
}

// AccessPolicy is the access-control port: may userID read a resource
// owned by ownerID with the given visibility.
type AccessPolicy interface {
	CanAccess(userID, ownerID int, v models.Visibility) bool
}

// VisibilityPolicy is the default policy: owners always, everyone else
// only for PUBLIC and UNLISTED resources.
type VisibilityPolicy struct{}

func (VisibilityPolicy) CanAccess(userID, ownerID int, v models.Visibility) bool {
	if userID == ownerID {
		return true
	}
	return v == models.VisibilityPublic || v == models.VisibilityUnlisted
}
