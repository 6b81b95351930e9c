package workout

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// defaultPlaceholderSets is used when a routine's sets field is absent or
// not a plain integer ("AMRAP", "3-4", ...).
const defaultPlaceholderSets = 3

// Materialize instantiates a trackable workout from a routine, optionally
// filtered to one day. Each planned exercise yields N placeholder sets
// (its parsed fixed sets count, else 3) numbered 1..N, carrying the plan's
// notes and no performance data.
func (s *Service) Materialize(ctx context.Context, routineID uuid.UUID, userID int, dayIndex *int) (*Detail, error) {
	r, err := s.routines.GetRoutine(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("loading routine: %w", err)
	}
	if r == nil || !s.access.CanAccess(userID, r.UserID, r.Visibility) {
		return nil, ErrNotFound
	}

	planned, err := s.routines.ListRoutineExercises(ctx, routineID, dayIndex)
	if err != nil {
		return nil, fmt.Errorf("listing routine exercises: %w", err)
	}

	w := &models.Workout{
		ID:         uuid.New(),
		UserID:     userID,
		RoutineID:  &r.ID,
		Title:      r.Title,
		Visibility: models.VisibilityPrivate,
		StartedAt:  s.now(),
	}
	if err := s.workouts.CreateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("creating workout: %w", err)
	}

	var sets []models.WorkoutSet
	for _, re := range planned {
		count := models.ParsePlannedSets(re.Sets).Count(defaultPlaceholderSets)
		for n := 1; n <= count; n++ {
			sets = append(sets, models.WorkoutSet{
				ID:                 uuid.New(),
				WorkoutID:          w.ID,
				ExerciseID:         re.ExerciseID,
				CustomExerciseName: re.CustomExerciseName,
				SetNumber:          n,
				Notes:              re.Notes,
			})
		}
	}
	if err := s.sets.CreateSets(ctx, sets); err != nil {
		return nil, fmt.Errorf("inserting placeholder sets: %w", err)
	}

	s.log.Info("routine materialized",
		"routine_id", routineID,
		"workout_id", w.ID,
		"exercises", len(planned),
		"placeholder_sets", len(sets),
	)
	return s.detail(ctx, w)
}
