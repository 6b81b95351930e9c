package models

import (
	"time"

	"github.com/google/uuid"
)

// Visibility controls who can see a routine or workout.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityUnlisted Visibility = "UNLISTED"
	VisibilityPrivate  Visibility = "PRIVATE"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return true
	}
	return false
}

// Exercise is a catalog entry with muscle metadata used by analytics.
type Exercise struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	PrimaryMuscles   []string  `json:"primary_muscles"`
	SecondaryMuscles []string  `json:"secondary_muscles"`
}

// Routine is a static workout template authored by one user.
type Routine struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int        `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RoutineExercise is one planned slot within a routine. Exactly one of
// ExerciseID / CustomExerciseName is set. Sets and Reps are free text
// ("3", "3-4", "AMRAP") and parsed only at the materialization boundary.
type RoutineExercise struct {
	ID                 uuid.UUID  `json:"id"`
	RoutineID          uuid.UUID  `json:"routine_id"`
	DayIndex           int        `json:"day_index"`
	OrderIndex         int        `json:"order_index"`
	ExerciseID         *uuid.UUID `json:"exercise_id,omitempty"`
	CustomExerciseName *string    `json:"custom_exercise_name,omitempty"`
	Sets               string     `json:"sets"`
	Reps               string     `json:"reps"`
	RestSeconds        *int       `json:"rest_seconds,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// Workout is one tracked session. FinishedAt stays nil until the workout
// is finished.
type Workout struct {
	ID         uuid.UUID  `json:"id"`
	UserID     int        `json:"user_id"`
	RoutineID  *uuid.UUID `json:"routine_id,omitempty"`
	Title      string     `json:"title"`
	Visibility Visibility `json:"visibility"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Finished reports whether the workout has been completed.
func (w *Workout) Finished() bool {
	return w.FinishedAt != nil
}

// WorkoutSet is one performed (or placeholder) set. Exactly one of
// ExerciseID / CustomExerciseName is set; custom sets may carry their own
// category and primary-muscle metadata for analytics.
type WorkoutSet struct {
	ID                           uuid.UUID  `json:"id"`
	WorkoutID                    uuid.UUID  `json:"workout_id"`
	ExerciseID                   *uuid.UUID `json:"exercise_id,omitempty"`
	CustomExerciseName           *string    `json:"custom_exercise_name,omitempty"`
	CustomExerciseCategory       *string    `json:"custom_exercise_category,omitempty"`
	CustomExercisePrimaryMuscles []string   `json:"custom_exercise_primary_muscles,omitempty"`
	SetNumber                    int        `json:"set_number"`
	Reps                         *int       `json:"reps,omitempty"`
	WeightKg                     *float64   `json:"weight_kg,omitempty"`
	RPE                          *float64   `json:"rpe,omitempty"`
	DurationSec                  *int       `json:"duration_sec,omitempty"`
	Notes                        *string    `json:"notes,omitempty"`
	PerformedAt                  *time.Time `json:"performed_at,omitempty"`
}

// Completed reports whether the set carries any performance data.
// Completion is derived, never stored, so it cannot drift from the fields.
func (s *WorkoutSet) Completed() bool {
	return s.Reps != nil || s.WeightKg != nil || s.RPE != nil
}

// Identity returns the grouping key for the set: the catalog exercise id
// or the custom exercise name.
func (s *WorkoutSet) Identity() string {
	if s.ExerciseID != nil {
		return s.ExerciseID.String()
	}
	if s.CustomExerciseName != nil {
		return *s.CustomExerciseName
	}
	return ""
}

// Volume returns reps × weight for the set, or 0 when either is missing.
func (s *WorkoutSet) Volume() float64 {
	if s.Reps == nil || s.WeightKg == nil {
		return 0
	}
	return float64(*s.Reps) * *s.WeightKg
}
