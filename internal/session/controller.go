// Package session drives one user through an active workout: cursor
// navigation over the exercise/set grid, set logging with optimistic
// local state, the rest timer, and completion detection. The controller
// is cooperative and single-threaded: each event runs to completion,
// including its persistence call, before the next is handled, and no
// local state changes until the call has succeeded.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// Phase is the controller's lifecycle state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseActive
	PhaseFinishing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseFinishing:
		return "finishing"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

const (
	// defaultRestSeconds is the rest countdown started after each log.
	defaultRestSeconds = 90
	// finishDelaySeconds is the pause before auto-finish once every set
	// is complete.
	finishDelaySeconds = 2
	// minExercisesForAutoFinish guards against auto-finishing trivial
	// ad-hoc sessions: auto-finish needs more exercises than this.
	minExercisesForAutoFinish = 2
)

// API is the slice of the workout service the controller needs. Both the
// in-process service (via an owner-bound adapter) and the HTTP client
// satisfy it.
type API interface {
	GetWorkout(ctx context.Context, workoutID uuid.UUID) (*workout.Detail, error)
	AddSet(ctx context.Context, workoutID uuid.UUID, input workout.AddSetInput) (*workout.SetWithExercise, error)
	UpdateSet(ctx context.Context, setID uuid.UUID, input workout.UpdateSetInput) (*workout.SetWithExercise, error)
	FinishWorkout(ctx context.Context, workoutID uuid.UUID) error
}

// SetSlot is the controller's view of one set.
type SetSlot struct {
	ID        uuid.UUID
	SetNumber int
	Completed bool
}

// ExerciseSlot is one exercise group within the session grid.
type ExerciseSlot struct {
	Label      string
	ExerciseID *uuid.UUID
	CustomName *string
	Sets       []SetSlot
}

// RestTimer is the cooperative rest countdown. It is purely advisory and
// never blocks logging or navigation.
type RestTimer struct {
	Visible   bool
	Paused    bool
	Remaining int
}

// LogInput is the performance data logged against the current set.
type LogInput struct {
	WeightKg *float64
	Reps     *int
	RPE      *float64
	Notes    *string
}

// Controller is the per-workout session state machine.
type Controller struct {
	api       API
	log       *slog.Logger
	workoutID uuid.UUID

	phase     Phase
	exercises []ExerciseSlot
	exIdx     int
	setIdx    int

	rest             RestTimer
	completionNotice bool
	finishCountdown  int
	lastErr          error
}

// New creates a controller in the Loading phase; call Load to enter the
// session.
func New(a API, workoutID uuid.UUID, log *slog.Logger) *Controller {
	return &Controller{
		api:       a,
		log:       log,
		workoutID: workoutID,
		phase:     PhaseLoading,
		rest:      RestTimer{Remaining: defaultRestSeconds},
	}
}

// Load fetches the workout and positions the cursor on the first
// incomplete set in canonical order, or (0,0) when none is incomplete.
func (c *Controller) Load(ctx context.Context) error {
	detail, err := c.api.GetWorkout(ctx, c.workoutID)
	if err != nil {
		c.lastErr = err
		return fmt.Errorf("loading session: %w", err)
	}
	c.exercises = buildSlots(detail)
	c.exIdx, c.setIdx = firstIncomplete(c.exercises)
	c.phase = PhaseActive
	c.lastErr = nil
	return nil
}

// Restore repositions a freshly loaded session from saved local state:
// the cursor moves to the saved (exercise, set) and a rest countdown that
// was running is resumed. Out-of-range positions are clamped, so stale
// state from a reshaped workout degrades to the nearest valid slot.
func (c *Controller) Restore(exercise, set, restRemaining int) {
	if c.phase != PhaseActive || len(c.exercises) == 0 {
		return
	}
	if exercise < 0 {
		exercise = 0
	}
	if exercise >= len(c.exercises) {
		exercise = len(c.exercises) - 1
	}
	c.exIdx = exercise

	sets := len(c.exercises[c.exIdx].Sets)
	if set < 0 || sets == 0 {
		set = 0
	} else if set >= sets {
		set = sets - 1
	}
	c.setIdx = set

	if restRemaining > 0 && restRemaining <= defaultRestSeconds {
		c.rest = RestTimer{Visible: true, Remaining: restRemaining}
	}
}

// LogCurrentSet persists performance data for the set under the cursor,
// then marks it complete locally, advances the cursor, and starts the
// rest timer unless the workout is now fully complete. A failed write
// leaves every piece of visible state untouched.
func (c *Controller) LogCurrentSet(ctx context.Context, input LogInput) error {
	if c.phase != PhaseActive {
		return fmt.Errorf("cannot log in phase %s", c.phase)
	}
	slot, ok := c.currentSlot()
	if !ok {
		return fmt.Errorf("no set under cursor")
	}

	_, err := c.api.UpdateSet(ctx, slot.ID, workout.UpdateSetInput{
		WeightKg: input.WeightKg,
		Reps:     input.Reps,
		RPE:      input.RPE,
		Notes:    input.Notes,
	})
	if err != nil {
		c.lastErr = err
		return fmt.Errorf("logging set: %w", err)
	}

	c.exercises[c.exIdx].Sets[c.setIdx].Completed = true
	c.lastErr = nil
	c.advanceCursor()

	completed, total := c.Progress()
	if completed == total && total > 0 {
		c.completionNotice = true
		if len(c.exercises) > minExercisesForAutoFinish {
			c.phase = PhaseFinishing
			c.finishCountdown = finishDelaySeconds
		}
		// Workout fully complete: no rest period follows.
		c.rest = RestTimer{Remaining: defaultRestSeconds}
		return nil
	}

	c.rest = RestTimer{Visible: true, Remaining: defaultRestSeconds}
	return nil
}

// Tick advances the cooperative 1-second clock: the rest countdown and,
// in the Finishing phase, the auto-finish delay.
func (c *Controller) Tick(ctx context.Context) {
	if c.rest.Visible && !c.rest.Paused {
		c.rest.Remaining--
		if c.rest.Remaining <= 0 {
			// Auto-hide and reset for the next rest period.
			c.rest = RestTimer{Remaining: defaultRestSeconds}
		}
	}

	if c.phase == PhaseFinishing {
		c.finishCountdown--
		if c.finishCountdown <= 0 {
			if err := c.api.FinishWorkout(ctx, c.workoutID); err != nil {
				// Fall back to manual finishing; the notice stays up.
				c.lastErr = err
				c.phase = PhaseActive
				c.log.Error("auto-finish failed", "workout_id", c.workoutID, "error", err)
				return
			}
			c.phase = PhaseDone
		}
	}
}

// Finish completes the workout immediately (the manual path when
// auto-finish is suppressed).
func (c *Controller) Finish(ctx context.Context) error {
	if err := c.api.FinishWorkout(ctx, c.workoutID); err != nil {
		c.lastErr = err
		return fmt.Errorf("finishing workout: %w", err)
	}
	c.phase = PhaseDone
	return nil
}

// ToggleRestTimer pauses or resumes a visible rest countdown.
func (c *Controller) ToggleRestTimer() {
	if c.rest.Visible {
		c.rest.Paused = !c.rest.Paused
	}
}

// SkipRestTimer cancels the countdown and resets it to the default
// without advancing anything else.
func (c *Controller) SkipRestTimer() {
	c.rest = RestTimer{Remaining: defaultRestSeconds}
}

// NavigateToExercise moves the cursor to exercise i, set 0. The rest
// timer is unaffected.
func (c *Controller) NavigateToExercise(i int) {
	if i < 0 || i >= len(c.exercises) {
		return
	}
	c.exIdx = i
	c.setIdx = 0
}

// NavigateNext moves to the next exercise, set 0.
func (c *Controller) NavigateNext() { c.NavigateToExercise(c.exIdx + 1) }

// NavigatePrev moves to the previous exercise, set 0.
func (c *Controller) NavigatePrev() { c.NavigateToExercise(c.exIdx - 1) }

// ExerciseRef identifies an exercise to append to the session.
type ExerciseRef struct {
	ExerciseID *uuid.UUID
	CustomName *string
}

// AddExercise appends a new exercise with three placeholder sets, then
// re-fetches and reconciles the whole workout to avoid drift.
func (c *Controller) AddExercise(ctx context.Context, ref ExerciseRef) error {
	for range 3 {
		_, err := c.api.AddSet(ctx, c.workoutID, workout.AddSetInput{
			ExerciseID:         ref.ExerciseID,
			CustomExerciseName: ref.CustomName,
		})
		if err != nil {
			c.lastErr = err
			return fmt.Errorf("adding exercise: %w", err)
		}
	}
	return c.reconcile(ctx)
}

// AddSetToCurrentExercise appends one placeholder set to the exercise
// under the cursor (the service numbers it max+1), then reconciles.
func (c *Controller) AddSetToCurrentExercise(ctx context.Context) error {
	if c.exIdx >= len(c.exercises) {
		return fmt.Errorf("no exercise under cursor")
	}
	ex := c.exercises[c.exIdx]
	_, err := c.api.AddSet(ctx, c.workoutID, workout.AddSetInput{
		ExerciseID:         ex.ExerciseID,
		CustomExerciseName: ex.CustomName,
	})
	if err != nil {
		c.lastErr = err
		return fmt.Errorf("adding set: %w", err)
	}
	return c.reconcile(ctx)
}

// Progress returns completed and total set counts over the whole grid.
func (c *Controller) Progress() (completed, total int) {
	for _, ex := range c.exercises {
		for _, s := range ex.Sets {
			total++
			if s.Completed {
				completed++
			}
		}
	}
	return completed, total
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// Cursor returns the (exercise, set) position.
func (c *Controller) Cursor() (exercise, set int) { return c.exIdx, c.setIdx }

// Exercises returns the session grid.
func (c *Controller) Exercises() []ExerciseSlot { return c.exercises }

// RestTimer returns the rest countdown state.
func (c *Controller) RestTimer() RestTimer { return c.rest }

// CompletionNotice reports whether the all-sets-complete notice is shown.
func (c *Controller) CompletionNotice() bool { return c.completionNotice }

// LastError returns the most recent surfaced failure, if any.
func (c *Controller) LastError() error { return c.lastErr }

func (c *Controller) currentSlot() (SetSlot, bool) {
	if c.exIdx >= len(c.exercises) {
		return SetSlot{}, false
	}
	sets := c.exercises[c.exIdx].Sets
	if c.setIdx >= len(sets) {
		return SetSlot{}, false
	}
	return sets[c.setIdx], true
}

// advanceCursor moves to the next set of the same exercise, else the
// first set of the next exercise, else stays put.
func (c *Controller) advanceCursor() {
	if c.setIdx+1 < len(c.exercises[c.exIdx].Sets) {
		c.setIdx++
		return
	}
	if c.exIdx+1 < len(c.exercises) {
		c.exIdx++
		c.setIdx = 0
	}
}

// reconcile re-fetches the workout and rebuilds the grid, clamping the
// cursor into the new bounds.
func (c *Controller) reconcile(ctx context.Context) error {
	detail, err := c.api.GetWorkout(ctx, c.workoutID)
	if err != nil {
		c.lastErr = err
		return fmt.Errorf("reconciling session: %w", err)
	}
	c.exercises = buildSlots(detail)
	if c.exIdx >= len(c.exercises) {
		c.exIdx = max(0, len(c.exercises)-1)
		c.setIdx = 0
	}
	if len(c.exercises) > 0 && c.setIdx >= len(c.exercises[c.exIdx].Sets) {
		c.setIdx = max(0, len(c.exercises[c.exIdx].Sets)-1)
	}
	c.lastErr = nil
	return nil
}

func buildSlots(detail *workout.Detail) []ExerciseSlot {
	slots := make([]ExerciseSlot, 0, len(detail.Exercises))
	for _, g := range detail.Exercises {
		slot := ExerciseSlot{CustomName: g.CustomName}
		if g.Exercise != nil {
			id := g.Exercise.ID
			slot.ExerciseID = &id
			slot.Label = g.Exercise.Name
		} else if g.CustomName != nil {
			slot.Label = *g.CustomName
		}
		for _, s := range g.Sets {
			slot.Sets = append(slot.Sets, SetSlot{
				ID:        s.ID,
				SetNumber: s.SetNumber,
				Completed: s.Completed(),
			})
		}
		slots = append(slots, slot)
	}
	return slots
}

// firstIncomplete returns the canonical position of the first set with no
// performance data, or (0,0) when everything is complete.
func firstIncomplete(exercises []ExerciseSlot) (int, int) {
	for i, ex := range exercises {
		for j, s := range ex.Sets {
			if !s.Completed {
				return i, j
			}
		}
	}
	return 0, 0
}
