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

// GetExercise retrieves one catalog entry. Returns (nil, nil) when absent.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, category, primary_muscles, secondary_muscles
		 FROM exercises WHERE id = $1`, id)

	var e models.Exercise
	err := row.Scan(&e.ID, &e.Name, &e.Category, &e.PrimaryMuscles, &e.SecondaryMuscles)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// ListExercises retrieves the whole catalog, alphabetically.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, category, primary_muscles, secondary_muscles
		 FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.PrimaryMuscles, &e.SecondaryMuscles); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Compile-time check: *DB satisfies the workout service's port.
var _ workout.ExerciseStore = (*DB)(nil)
