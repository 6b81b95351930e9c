package workout

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Service implements the workout session operations: workout CRUD, set
// recording with auto-numbering and last-set protection, and routine
// materialization. All mutations re-verify ownership through the parent
// workout.
type Service struct {
	routines  RoutineStore
	workouts  WorkoutStore
	sets      SetStore
	exercises ExerciseStore
	access    AccessPolicy
	log       *slog.Logger
	now       func() time.Time
}

// NewService creates a Service over the given persistence ports.
func NewService(routines RoutineStore, workouts WorkoutStore, sets SetStore, exercises ExerciseStore, log *slog.Logger) *Service {
	return &Service{
		routines:  routines,
		workouts:  workouts,
		sets:      sets,
		exercises: exercises,
		access:    VisibilityPolicy{},
		log:       log,
		now:       time.Now,
	}
}

// RoutineRef identifies the routine a workout was materialized from.
type RoutineRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// ExerciseGroup is one exercise within a workout with its ordered sets.
// Exercise carries catalog metadata when the group references the catalog.
type ExerciseGroup struct {
	Exercise   *models.Exercise    `json:"exercise,omitempty"`
	CustomName *string             `json:"custom_exercise_name,omitempty"`
	Sets       []models.WorkoutSet `json:"sets"`
}

// Detail is a workout with its sets grouped by exercise in canonical order.
type Detail struct {
	Workout   models.Workout  `json:"workout"`
	Routine   *RoutineRef     `json:"routine,omitempty"`
	Exercises []ExerciseGroup `json:"exercises"`
}

// WorkoutPage is one page of a user's workouts plus the unpaged total.
type WorkoutPage struct {
	Workouts []models.Workout `json:"workouts"`
	Total    int              `json:"total"`
}

// CreateWorkoutInput creates a workout directly or from a routine.
type CreateWorkoutInput struct {
	RoutineID  *uuid.UUID         `json:"routine_id,omitempty"`
	Title      string             `json:"title"`
	Visibility *models.Visibility `json:"visibility,omitempty"`
	DayIndex   *int               `json:"day_index,omitempty"`
}

// CreateWorkout starts a new workout for userID. With a routine id it
// materializes the routine's planned exercises into placeholder sets;
// without one it creates an empty ad-hoc workout.
func (s *Service) CreateWorkout(ctx context.Context, userID int, input CreateWorkoutInput) (*Detail, error) {
	if input.RoutineID != nil {
		return s.Materialize(ctx, *input.RoutineID, userID, input.DayIndex)
	}

	visibility := models.VisibilityPrivate
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return nil, fmt.Errorf("%w: unknown visibility %q", ErrValidation, *input.Visibility)
		}
		visibility = *input.Visibility
	}

	w := &models.Workout{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      input.Title,
		Visibility: visibility,
		StartedAt:  s.now(),
	}
	if err := s.workouts.CreateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("creating workout: %w", err)
	}
	s.log.Info("workout created", "workout_id", w.ID, "user_id", userID)
	return &Detail{Workout: *w, Exercises: []ExerciseGroup{}}, nil
}

// GetUserWorkouts lists userID's own workouts, newest first.
func (s *Service) GetUserWorkouts(ctx context.Context, userID int, opts ListWorkoutsOptions) (*WorkoutPage, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset", ErrValidation)
	}
	workouts, total, err := s.workouts.ListWorkouts(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	return &WorkoutPage{Workouts: workouts, Total: total}, nil
}

// GetWorkoutByID returns the workout with sets grouped by exercise.
// Absent workouts, and private workouts of other users, yield ErrNotFound.
func (s *Service) GetWorkoutByID(ctx context.Context, workoutID uuid.UUID, userID int) (*Detail, error) {
	w, err := s.workouts.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading workout: %w", err)
	}
	if w == nil || !s.access.CanAccess(userID, w.UserID, w.Visibility) {
		return nil, ErrNotFound
	}
	return s.detail(ctx, w)
}

// UpdateWorkoutInput patches title and visibility; nil fields are untouched.
type UpdateWorkoutInput struct {
	Title      *string            `json:"title,omitempty"`
	Visibility *models.Visibility `json:"visibility,omitempty"`
}

// UpdateWorkout patches the workout. Owner only.
func (s *Service) UpdateWorkout(ctx context.Context, workoutID uuid.UUID, userID int, input UpdateWorkoutInput) (*models.Workout, error) {
	w, err := s.ownedWorkout(ctx, workoutID, userID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		w.Title = *input.Title
	}
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return nil, fmt.Errorf("%w: unknown visibility %q", ErrValidation, *input.Visibility)
		}
		w.Visibility = *input.Visibility
	}
	if err := s.workouts.UpdateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("updating workout: %w", err)
	}
	return w, nil
}

// DeleteWorkout removes the workout and, via cascade, its sets. Owner only.
func (s *Service) DeleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int) error {
	if _, err := s.ownedWorkout(ctx, workoutID, userID); err != nil {
		return err
	}
	if err := s.workouts.DeleteWorkout(ctx, workoutID); err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	s.log.Info("workout deleted", "workout_id", workoutID, "user_id", userID)
	return nil
}

// FinishWorkout stamps finished_at with the current time. Idempotent:
// calling it again simply re-stamps.
func (s *Service) FinishWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.Workout, error) {
	w, err := s.ownedWorkout(ctx, workoutID, userID)
	if err != nil {
		return nil, err
	}
	t := s.now()
	w.FinishedAt = &t
	if err := s.workouts.UpdateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("finishing workout: %w", err)
	}
	s.log.Info("workout finished", "workout_id", workoutID, "user_id", userID)
	return w, nil
}

// AddSetInput creates one set. Exactly one of ExerciseID /
// CustomExerciseName must be present. A nil SetNumber auto-assigns
// max(existing)+1 within the exercise group, starting at 1.
type AddSetInput struct {
	ExerciseID                   *uuid.UUID `json:"exercise_id,omitempty"`
	CustomExerciseName           *string    `json:"custom_exercise_name,omitempty"`
	CustomExerciseCategory       *string    `json:"custom_exercise_category,omitempty"`
	CustomExercisePrimaryMuscles []string   `json:"custom_exercise_primary_muscles,omitempty"`
	SetNumber                    *int       `json:"set_number,omitempty"`
	Reps                         *int       `json:"reps,omitempty"`
	WeightKg                     *float64   `json:"weight_kg,omitempty"`
	RPE                          *float64   `json:"rpe,omitempty"`
	DurationSec                  *int       `json:"duration_sec,omitempty"`
	Notes                        *string    `json:"notes,omitempty"`
}

// SetWithExercise is a created or updated set joined with catalog metadata
// when the set references a catalog exercise.
type SetWithExercise struct {
	models.WorkoutSet
	Exercise *models.Exercise `json:"exercise,omitempty"`
}

// AddSet records a set in the workout. Owner only.
func (s *Service) AddSet(ctx context.Context, workoutID uuid.UUID, userID int, input AddSetInput) (*SetWithExercise, error) {
	if _, err := s.ownedWorkout(ctx, workoutID, userID); err != nil {
		return nil, err
	}
	if (input.ExerciseID == nil) == (input.CustomExerciseName == nil) {
		return nil, fmt.Errorf("%w: exactly one of exercise_id and custom_exercise_name is required", ErrValidation)
	}
	if err := validateRPE(input.RPE); err != nil {
		return nil, err
	}

	set := models.WorkoutSet{
		ID:                           uuid.New(),
		WorkoutID:                    workoutID,
		ExerciseID:                   input.ExerciseID,
		CustomExerciseName:           input.CustomExerciseName,
		CustomExerciseCategory:       input.CustomExerciseCategory,
		CustomExercisePrimaryMuscles: input.CustomExercisePrimaryMuscles,
		Reps:                         input.Reps,
		WeightKg:                     input.WeightKg,
		RPE:                          input.RPE,
		DurationSec:                  input.DurationSec,
		Notes:                        input.Notes,
	}
	if set.Completed() {
		t := s.now()
		set.PerformedAt = &t
	}

	if input.SetNumber != nil {
		set.SetNumber = *input.SetNumber
	}
	existing, err := s.sets.ListSets(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("listing sets: %w", err)
	}
	maxNum, taken := groupNumbers(existing, set.Identity())
	if input.SetNumber == nil || taken[set.SetNumber] {
		// Auto-assign, and resolve explicit collisions to the next free
		// slot instead of failing the caller.
		set.SetNumber = maxNum + 1
	}

	if err := s.sets.CreateSet(ctx, &set); err != nil {
		return nil, fmt.Errorf("inserting workout set: %w", err)
	}
	return s.withExercise(ctx, set)
}

// UpdateSetInput patches a set; nil fields are untouched. The exercise
// identity of a set cannot change.
type UpdateSetInput struct {
	Reps        *int       `json:"reps,omitempty"`
	WeightKg    *float64   `json:"weight_kg,omitempty"`
	RPE         *float64   `json:"rpe,omitempty"`
	DurationSec *int       `json:"duration_sec,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	PerformedAt *time.Time `json:"performed_at,omitempty"`
}

// UpdateSet patches the set. Ownership is verified transitively through
// the parent workout.
func (s *Service) UpdateSet(ctx context.Context, setID uuid.UUID, userID int, input UpdateSetInput) (*SetWithExercise, error) {
	set, err := s.ownedSet(ctx, setID, userID)
	if err != nil {
		return nil, err
	}
	if err := validateRPE(input.RPE); err != nil {
		return nil, err
	}

	if input.Reps != nil {
		set.Reps = input.Reps
	}
	if input.WeightKg != nil {
		set.WeightKg = input.WeightKg
	}
	if input.RPE != nil {
		set.RPE = input.RPE
	}
	if input.DurationSec != nil {
		set.DurationSec = input.DurationSec
	}
	if input.Notes != nil {
		set.Notes = input.Notes
	}
	if input.PerformedAt != nil {
		set.PerformedAt = input.PerformedAt
	} else if set.PerformedAt == nil && set.Completed() {
		t := s.now()
		set.PerformedAt = &t
	}

	if err := s.sets.UpdateSet(ctx, set); err != nil {
		return nil, fmt.Errorf("updating workout set: %w", err)
	}
	return s.withExercise(ctx, *set)
}

// DeleteSet hard-deletes the set. Ownership verified through the workout.
func (s *Service) DeleteSet(ctx context.Context, setID uuid.UUID, userID int) error {
	if _, err := s.ownedSet(ctx, setID, userID); err != nil {
		return err
	}
	if err := s.sets.DeleteSet(ctx, setID); err != nil {
		return fmt.Errorf("deleting workout set: %w", err)
	}
	return nil
}

// SetRef locates one set by exercise identity and number.
type SetRef struct {
	ExerciseID         *uuid.UUID `json:"exercise_id,omitempty"`
	CustomExerciseName *string    `json:"custom_exercise_name,omitempty"`
	SetNumber          int        `json:"set_number"`
}

// DeleteSetByExercise deletes the referenced set unless it is the last
// one remaining in its exercise group.
func (s *Service) DeleteSetByExercise(ctx context.Context, workoutID uuid.UUID, userID int, ref SetRef) error {
	if _, err := s.ownedWorkout(ctx, workoutID, userID); err != nil {
		return err
	}
	if (ref.ExerciseID == nil) == (ref.CustomExerciseName == nil) {
		return fmt.Errorf("%w: exactly one of exercise_id and custom_exercise_name is required", ErrValidation)
	}

	identity := ""
	if ref.ExerciseID != nil {
		identity = ref.ExerciseID.String()
	} else {
		identity = *ref.CustomExerciseName
	}

	sets, err := s.sets.ListSets(ctx, workoutID)
	if err != nil {
		return fmt.Errorf("listing sets: %w", err)
	}

	var target *models.WorkoutSet
	groupSize := 0
	for i := range sets {
		if sets[i].Identity() != identity {
			continue
		}
		groupSize++
		if sets[i].SetNumber == ref.SetNumber {
			target = &sets[i]
		}
	}
	if target == nil {
		return ErrNotFound
	}
	if groupSize <= 1 {
		return fmt.Errorf("%w: cannot delete last set", ErrValidation)
	}
	if err := s.sets.DeleteSet(ctx, target.ID); err != nil {
		return fmt.Errorf("deleting workout set: %w", err)
	}
	return nil
}

// ownedWorkout loads the workout and verifies ownership for mutation.
func (s *Service) ownedWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.Workout, error) {
	w, err := s.workouts.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading workout: %w", err)
	}
	if w == nil {
		return nil, ErrNotFound
	}
	if w.UserID != userID {
		if !s.access.CanAccess(userID, w.UserID, w.Visibility) {
			return nil, ErrNotFound
		}
		return nil, ErrPermissionDenied
	}
	return w, nil
}

// ownedSet loads the set and verifies ownership through its workout.
func (s *Service) ownedSet(ctx context.Context, setID uuid.UUID, userID int) (*models.WorkoutSet, error) {
	set, err := s.sets.GetSet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("loading workout set: %w", err)
	}
	if set == nil {
		return nil, ErrNotFound
	}
	if _, err := s.ownedWorkout(ctx, set.WorkoutID, userID); err != nil {
		return nil, err
	}
	return set, nil
}

// detail assembles a workout with grouped, canonically ordered sets.
func (s *Service) detail(ctx context.Context, w *models.Workout) (*Detail, error) {
	sets, err := s.sets.ListSets(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("listing sets: %w", err)
	}

	d := &Detail{Workout: *w, Exercises: []ExerciseGroup{}}

	if w.RoutineID != nil {
		r, err := s.routines.GetRoutine(ctx, *w.RoutineID)
		if err != nil {
			return nil, fmt.Errorf("loading routine: %w", err)
		}
		if r != nil {
			d.Routine = &RoutineRef{ID: r.ID, Title: r.Title}
		}
	}

	groups := make(map[string]*ExerciseGroup)
	var order []string
	for _, set := range sets {
		id := set.Identity()
		g, ok := groups[id]
		if !ok {
			g = &ExerciseGroup{CustomName: set.CustomExerciseName}
			if set.ExerciseID != nil {
				ex, err := s.exercises.GetExercise(ctx, *set.ExerciseID)
				if err != nil {
					return nil, fmt.Errorf("loading exercise: %w", err)
				}
				g.Exercise = ex
			}
			groups[id] = g
			order = append(order, id)
		}
		g.Sets = append(g.Sets, set)
	}
	sort.Strings(order)
	for _, id := range order {
		g := groups[id]
		sort.Slice(g.Sets, func(i, j int) bool { return g.Sets[i].SetNumber < g.Sets[j].SetNumber })
		d.Exercises = append(d.Exercises, *g)
	}
	return d, nil
}

// ListExercises returns the exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	exercises, err := s.exercises.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	return exercises, nil
}

func (s *Service) withExercise(ctx context.Context, set models.WorkoutSet) (*SetWithExercise, error) {
	out := &SetWithExercise{WorkoutSet: set}
	if set.ExerciseID != nil {
		ex, err := s.exercises.GetExercise(ctx, *set.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("loading exercise: %w", err)
		}
		out.Exercise = ex
	}
	return out, nil
}

// groupNumbers scans sets of one exercise group and returns the highest
// set number (0 when empty) plus the occupied numbers.
func groupNumbers(sets []models.WorkoutSet, identity string) (int, map[int]bool) {
	maxNum := 0
	taken := make(map[int]bool)
	for i := range sets {
		if sets[i].Identity() != identity {
			continue
		}
		taken[sets[i].SetNumber] = true
		if sets[i].SetNumber > maxNum {
			maxNum = sets[i].SetNumber
		}
	}
	return maxNum, taken
}

func validateRPE(rpe *float64) error {
	if rpe != nil && (*rpe < 1.0 || *rpe > 10.0) {
		return fmt.Errorf("%w: rpe must be between 1.0 and 10.0", ErrValidation)
	}
	return nil
}
