package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
)

// WorkoutsByUser retrieves a user's full workout history, oldest first.
func (db *DB) WorkoutsByUser(ctx context.Context, userID int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, routine_id, title, visibility, started_at, finished_at
		 FROM workouts WHERE user_id = $1 ORDER BY started_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout history: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.RoutineID, &w.Title, &w.Visibility, &w.StartedAt, &w.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// SetSamplesByUser joins a user's sets with their workout timing and the
// catalog muscle metadata. Custom sets fall back to their own primary
// muscles and have no secondaries. A zero since means all history.
func (db *DB) SetSamplesByUser(ctx context.Context, userID int, since time.Time) ([]analytics.SetSample, error) {
	query := `SELECT w.id, w.started_at, w.finished_at, s.reps, s.weight_kg,
	            COALESCE(e.primary_muscles, s.custom_exercise_primary_muscles, '{}'),
	            COALESCE(e.secondary_muscles, '{}')
	          FROM workout_sets s
	          JOIN workouts w ON w.id = s.workout_id
	          LEFT JOIN exercises e ON e.id = s.exercise_id
	          WHERE w.user_id = $1`
	args := []any{userID}
	if !since.IsZero() {
		args = append(args, since)
		query += ` AND w.started_at >= $2`
	}
	query += ` ORDER BY w.started_at ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying set history: %w", err)
	}
	defer rows.Close()

	var result []analytics.SetSample
	for rows.Next() {
		var s analytics.SetSample
		if err := rows.Scan(&s.WorkoutID, &s.StartedAt, &s.FinishedAt, &s.Reps, &s.WeightKg,
			&s.PrimaryMuscles, &s.SecondaryMuscles); err != nil {
			return nil, fmt.Errorf("scanning set sample: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Compile-time check: *DB satisfies the analytics engine's port.
var _ analytics.HistorySource = (*DB)(nil)
