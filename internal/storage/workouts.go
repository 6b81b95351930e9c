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

const workoutColumns = `id, user_id, routine_id, title, visibility, started_at, finished_at`

// CreateWorkout inserts a workout row.
func (db *DB) CreateWorkout(ctx context.Context, w *models.Workout) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, routine_id, title, visibility, started_at, finished_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		w.ID, w.UserID, w.RoutineID, w.Title, w.Visibility, w.StartedAt, w.FinishedAt)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves a workout by ID. Returns (nil, nil) when absent.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id)

	var w models.Workout
	err := row.Scan(&w.ID, &w.UserID, &w.RoutineID, &w.Title, &w.Visibility, &w.StartedAt, &w.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return &w, nil
}

// ListWorkouts retrieves one page of a user's workouts, newest first,
// plus the unpaged total.
func (db *DB) ListWorkouts(ctx context.Context, userID int, opts workout.ListWorkoutsOptions) ([]models.Workout, int, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if !opts.IncludeFinished {
		where += ` AND finished_at IS NULL`
	}
	if opts.RoutineID != nil {
		args = append(args, *opts.RoutineID)
		where += fmt.Sprintf(` AND routine_id = $%d`, len(args))
	}

	var total int
	if err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workouts `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting workouts: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := db.Pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM workouts %s ORDER BY started_at DESC LIMIT $%d OFFSET $%d`,
			workoutColumns, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.RoutineID, &w.Title, &w.Visibility, &w.StartedAt, &w.FinishedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, total, rows.Err()
}

// UpdateWorkout updates the mutable workout fields.
func (db *DB) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workouts SET title = $2, visibility = $3, finished_at = $4 WHERE id = $1`,
		w.ID, w.Title, w.Visibility, w.FinishedAt)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes the workout; its sets cascade at the schema level.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}

// Compile-time check: *DB satisfies the workout service's port.
var _ workout.WorkoutStore = (*DB)(nil)
