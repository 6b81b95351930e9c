package workout

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// CreateRoutineInput creates a routine template.
type CreateRoutineInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Visibility  *models.Visibility `json:"visibility,omitempty"`
}

// CreateRoutine creates an empty routine owned by userID.
func (s *Service) CreateRoutine(ctx context.Context, userID int, input CreateRoutineInput) (*models.Routine, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	visibility := models.VisibilityPrivate
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return nil, fmt.Errorf("%w: unknown visibility %q", ErrValidation, *input.Visibility)
		}
		visibility = *input.Visibility
	}

	r := &models.Routine{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Visibility:  visibility,
		CreatedAt:   s.now(),
	}
	if err := s.routines.CreateRoutine(ctx, r); err != nil {
		return nil, fmt.Errorf("creating routine: %w", err)
	}
	return r, nil
}

// GetRoutine returns the routine and its planned exercises in canonical
// order. Visibility rules match workouts.
func (s *Service) GetRoutine(ctx context.Context, routineID uuid.UUID, userID int) (*models.Routine, []models.RoutineExercise, error) {
	r, err := s.routines.GetRoutine(ctx, routineID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading routine: %w", err)
	}
	if r == nil || !s.access.CanAccess(userID, r.UserID, r.Visibility) {
		return nil, nil, ErrNotFound
	}
	exercises, err := s.routines.ListRoutineExercises(ctx, routineID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("listing routine exercises: %w", err)
	}
	return r, exercises, nil
}

// ListRoutines returns the user's own routines.
func (s *Service) ListRoutines(ctx context.Context, userID int) ([]models.Routine, error) {
	routines, err := s.routines.ListRoutines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	if routines == nil {
		routines = []models.Routine{}
	}
	return routines, nil
}

// AddRoutineExerciseInput appends a planned exercise to a routine day.
type AddRoutineExerciseInput struct {
	DayIndex           int        `json:"day_index"`
	OrderIndex         *int       `json:"order_index,omitempty"`
	ExerciseID         *uuid.UUID `json:"exercise_id,omitempty"`
	CustomExerciseName *string    `json:"custom_exercise_name,omitempty"`
	Sets               string     `json:"sets"`
	Reps               string     `json:"reps"`
	RestSeconds        *int       `json:"rest_seconds,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// AddRoutineExercise adds a planned slot. Routine author only. A missing
// or conflicting order index is reassigned to the next free slot within
// (routine, day) rather than rejected.
func (s *Service) AddRoutineExercise(ctx context.Context, routineID uuid.UUID, userID int, input AddRoutineExerciseInput) (*models.RoutineExercise, error) {
	r, err := s.routines.GetRoutine(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("loading routine: %w", err)
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if r.UserID != userID {
		if !s.access.CanAccess(userID, r.UserID, r.Visibility) {
			return nil, ErrNotFound
		}
		return nil, ErrPermissionDenied
	}
	if (input.ExerciseID == nil) == (input.CustomExerciseName == nil) {
		return nil, fmt.Errorf("%w: exactly one of exercise_id and custom_exercise_name is required", ErrValidation)
	}
	if input.DayIndex < 0 {
		return nil, fmt.Errorf("%w: day_index must be >= 0", ErrValidation)
	}

	orderIndex, err := s.resolveOrderIndex(ctx, routineID, input.DayIndex, input.OrderIndex)
	if err != nil {
		return nil, err
	}

	re := &models.RoutineExercise{
		ID:                 uuid.New(),
		RoutineID:          routineID,
		DayIndex:           input.DayIndex,
		OrderIndex:         orderIndex,
		ExerciseID:         input.ExerciseID,
		CustomExerciseName: input.CustomExerciseName,
		Sets:               input.Sets,
		Reps:               input.Reps,
		RestSeconds:        input.RestSeconds,
		Notes:              input.Notes,
	}
	if err := s.routines.CreateRoutineExercise(ctx, re); err != nil {
		return nil, fmt.Errorf("inserting routine exercise: %w", err)
	}
	return re, nil
}

// resolveOrderIndex keeps order_index unique within (routine, day):
// a requested free slot is honored, anything else becomes max+1.
func (s *Service) resolveOrderIndex(ctx context.Context, routineID uuid.UUID, dayIndex int, requested *int) (int, error) {
	if requested != nil && *requested >= 0 {
		taken, err := s.routines.OrderIndexTaken(ctx, routineID, dayIndex, *requested)
		if err != nil {
			return 0, fmt.Errorf("checking order index: %w", err)
		}
		if !taken {
			return *requested, nil
		}
	}
	maxIdx, err := s.routines.MaxOrderIndex(ctx, routineID, dayIndex)
	if err != nil {
		return 0, fmt.Errorf("finding max order index: %w", err)
	}
	return maxIdx + 1, nil
}
