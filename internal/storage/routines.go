package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRoutine inserts a routine row.
func (db *DB) CreateRoutine(ctx context.Context, r *models.Routine) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO routines (id, user_id, title, description, visibility, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.UserID, r.Title, r.Description, r.Visibility, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting routine: %w", err)
	}
	return nil
}

// GetRoutine retrieves a routine by ID. Returns (nil, nil) when absent.
func (db *DB) GetRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, title, description, visibility, created_at
		 FROM routines WHERE id = $1`, id)

	var r models.Routine
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.Visibility, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}
	return &r, nil
}

// ListRoutines retrieves all routines authored by a user, newest first.
func (db *DB) ListRoutines(ctx context.Context, userID int) ([]models.Routine, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, title, description, visibility, created_at
		 FROM routines WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []models.Routine
	for rows.Next() {
		var r models.Routine
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.Visibility, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CreateRoutineExercise inserts one planned slot.
func (db *DB) CreateRoutineExercise(ctx context.Context, re *models.RoutineExercise) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO routine_exercises
		   (id, routine_id, day_index, order_index, exercise_id, custom_exercise_name,
		    sets, reps, rest_seconds, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		re.ID, re.RoutineID, re.DayIndex, re.OrderIndex, re.ExerciseID,
		re.CustomExerciseName, re.Sets, re.Reps, re.RestSeconds, re.Notes)
	if err != nil {
		return fmt.Errorf("inserting routine exercise: %w", err)
	}
	return nil
}

// ListRoutineExercises retrieves a routine's planned slots in canonical
// order, optionally restricted to one day.
func (db *DB) ListRoutineExercises(ctx context.Context, routineID uuid.UUID, dayIndex *int) ([]models.RoutineExercise, error) {
	query := `SELECT id, routine_id, day_index, order_index, exercise_id, custom_exercise_name,
	            sets, reps, rest_seconds, notes
	          FROM routine_exercises WHERE routine_id = $1`
	args := []any{routineID}
	if dayIndex != nil {
		args = append(args, *dayIndex)
		query += ` AND day_index = $2`
	}
	query += ` ORDER BY day_index ASC, order_index ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying routine exercises: %w", err)
	}
	defer rows.Close()

	var result []models.RoutineExercise
	for rows.Next() {
		var re models.RoutineExercise
		if err := rows.Scan(&re.ID, &re.RoutineID, &re.DayIndex, &re.OrderIndex,
			&re.ExerciseID, &re.CustomExerciseName, &re.Sets, &re.Reps,
			&re.RestSeconds, &re.Notes); err != nil {
			return nil, fmt.Errorf("scanning routine exercise: %w", err)
		}
		result = append(result, re)
	}
	return result, rows.Err()
}

// MaxOrderIndex returns the highest order_index within (routine, day),
// or -1 when the day is empty.
func (db *DB) MaxOrderIndex(ctx context.Context, routineID uuid.UUID, dayIndex int) (int, error) {
	var max int
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_index), -1)
		 FROM routine_exercises WHERE routine_id = $1 AND day_index = $2`,
		routineID, dayIndex).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("querying max order index: %w", err)
	}
	return max, nil
}

// OrderIndexTaken reports whether a slot already occupies (routine, day, order).
func (db *DB) OrderIndexTaken(ctx context.Context, routineID uuid.UUID, dayIndex, orderIndex int) (bool, error) {
	var taken bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM routine_exercises
		   WHERE routine_id = $1 AND day_index = $2 AND order_index = $3
		 )`, routineID, dayIndex, orderIndex).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("querying order index: %w", err)
	}
	return taken, nil
}

// Compile-time check: *DB satisfies the workout service's port.
var _ workout.RoutineStore = (*DB)(nil)
