package client

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SessionState is the resumable snapshot of one active session.
type SessionState struct {
	WorkoutID     uuid.UUID
	ExerciseIndex int
	SetIndex      int
	RestRemaining int
}

// StateDB persists the active session locally so an interrupted CLI run
// can resume where it left off.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	// Single-row table: at most one active session per machine.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS active_session (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		workout_id     TEXT NOT NULL,
		exercise_index INTEGER NOT NULL DEFAULT 0,
		set_index      INTEGER NOT NULL DEFAULT 0,
		rest_remaining INTEGER NOT NULL DEFAULT 0,
		updated_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Save upserts the active session snapshot.
func (s *StateDB) Save(state SessionState) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO active_session (id, workout_id, exercise_index, set_index, rest_remaining, updated_at)
		 VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		state.WorkoutID.String(), state.ExerciseIndex, state.SetIndex, state.RestRemaining,
	)
	if err != nil {
		return fmt.Errorf("saving session state: %w", err)
	}
	return nil
}

// Load returns the saved session, or (nil, nil) when there is none.
func (s *StateDB) Load() (*SessionState, error) {
	var idStr string
	var state SessionState
	err := s.db.QueryRow(
		`SELECT workout_id, exercise_index, set_index, rest_remaining FROM active_session WHERE id = 1`,
	).Scan(&idStr, &state.ExerciseIndex, &state.SetIndex, &state.RestRemaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session state: %w", err)
	}

	state.WorkoutID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing saved workout id: %w", err)
	}
	return &state, nil
}

// Clear removes the saved session after the workout finishes.
func (s *StateDB) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing session state: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
