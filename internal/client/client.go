// Package client is the HTTP side of the session CLI: a thin typed
// client over the server's REST API plus a local SQLite store that lets
// an interrupted session resume.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// Client talks to the LiftLog server over HTTP. It satisfies the session
// controller's API port.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// New creates an HTTP client for the given server.
func New(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Compile-time check: Client satisfies the session controller's port.
var _ session.API = (*Client)(nil)

// GetWorkout fetches a workout in full detail.
func (c *Client) GetWorkout(ctx context.Context, workoutID uuid.UUID) (*workout.Detail, error) {
	var detail workout.Detail
	err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+workoutID.String(), nil, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// AddSet records a new set in the workout.
func (c *Client) AddSet(ctx context.Context, workoutID uuid.UUID, input workout.AddSetInput) (*workout.SetWithExercise, error) {
	var set workout.SetWithExercise
	err := c.do(ctx, http.MethodPost, "/api/v1/workouts/"+workoutID.String()+"/sets", input, &set)
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// UpdateSet patches one set.
func (c *Client) UpdateSet(ctx context.Context, setID uuid.UUID, input workout.UpdateSetInput) (*workout.SetWithExercise, error) {
	var set workout.SetWithExercise
	err := c.do(ctx, http.MethodPatch, "/api/v1/sets/"+setID.String(), input, &set)
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// FinishWorkout stamps the workout finished.
func (c *Client) FinishWorkout(ctx context.Context, workoutID uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/api/v1/workouts/"+workoutID.String()+"/finish", nil, nil)
}

// CreateWorkout starts a workout, optionally materialized from a routine.
func (c *Client) CreateWorkout(ctx context.Context, input workout.CreateWorkoutInput) (*workout.Detail, error) {
	var detail workout.Detail
	err := c.do(ctx, http.MethodPost, "/api/v1/workouts", input, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListWorkouts pages through the user's workouts.
func (c *Client) ListWorkouts(ctx context.Context, limit, offset int) (*workout.WorkoutPage, error) {
	var page workout.WorkoutPage
	path := fmt.Sprintf("/api/v1/workouts?limit=%d&offset=%d", limit, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, rd)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
