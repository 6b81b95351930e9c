package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const setColumns = `id, workout_id, exercise_id, custom_exercise_name, custom_exercise_category,
	 custom_exercise_primary_muscles, set_number, reps, weight_kg, rpe, duration_sec, notes, performed_at`

// CreateSet inserts one workout set row.
func (db *DB) CreateSet(ctx context.Context, s *models.WorkoutSet) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sets (`+setColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		s.ID, s.WorkoutID, s.ExerciseID, s.CustomExerciseName, s.CustomExerciseCategory,
		s.CustomExercisePrimaryMuscles, s.SetNumber, s.Reps, s.WeightKg, s.RPE,
		s.DurationSec, s.Notes, s.PerformedAt)
	if err != nil {
		return fmt.Errorf("inserting workout set: %w", err)
	}
	return nil
}

// CreateSets batch-inserts placeholder sets produced by materialization.
func (db *DB) CreateSets(ctx context.Context, sets []models.WorkoutSet) error {
	if len(sets) == 0 {
		return nil
	}

	query := `INSERT INTO workout_sets (` + setColumns + `) VALUES `
	args := make([]any, 0, len(sets)*13)
	valueStrings := make([]string, 0, len(sets))

	for i, s := range sets {
		base := i * 13
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, s.ID, s.WorkoutID, s.ExerciseID, s.CustomExerciseName,
			s.CustomExerciseCategory, s.CustomExercisePrimaryMuscles, s.SetNumber,
			s.Reps, s.WeightKg, s.RPE, s.DurationSec, s.Notes, s.PerformedAt)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout sets: %w", err)
	}
	return nil
}

// GetSet retrieves one set by ID. Returns (nil, nil) when absent.
func (db *DB) GetSet(ctx context.Context, id uuid.UUID) (*models.WorkoutSet, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+setColumns+` FROM workout_sets WHERE id = $1`, id)

	s, err := scanSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout set: %w", err)
	}
	return s, nil
}

// ListSets retrieves a workout's sets in canonical order: exercise
// identity ascending, then set number.
func (db *DB) ListSets(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+`
		 FROM workout_sets
		 WHERE workout_id = $1
		 ORDER BY COALESCE(exercise_id::text, custom_exercise_name) ASC, set_number ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSet
	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// UpdateSet writes the full mutable field set of one row.
func (db *DB) UpdateSet(ctx context.Context, s *models.WorkoutSet) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workout_sets
		 SET set_number = $2, reps = $3, weight_kg = $4, rpe = $5,
		     duration_sec = $6, notes = $7, performed_at = $8
		 WHERE id = $1`,
		s.ID, s.SetNumber, s.Reps, s.WeightKg, s.RPE, s.DurationSec, s.Notes, s.PerformedAt)
	if err != nil {
		return fmt.Errorf("updating workout set: %w", err)
	}
	return nil
}

// DeleteSet hard-deletes one set row.
func (db *DB) DeleteSet(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM workout_sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout set: %w", err)
	}
	return nil
}

func scanSet(row pgx.Row) (*models.WorkoutSet, error) {
	var s models.WorkoutSet
	err := row.Scan(&s.ID, &s.WorkoutID, &s.ExerciseID, &s.CustomExerciseName,
		&s.CustomExerciseCategory, &s.CustomExercisePrimaryMuscles, &s.SetNumber,
		&s.Reps, &s.WeightKg, &s.RPE, &s.DurationSec, &s.Notes, &s.PerformedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Compile-time check: *DB satisfies the workout service's port.
var _ workout.SetStore = (*DB)(nil)
