package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// stubStore is a minimal in-memory double for every persistence port the
// handlers reach through the service layer.
type stubStore struct {
	workouts  map[uuid.UUID]*models.Workout
	sets      map[uuid.UUID][]models.WorkoutSet
	exercises []models.Exercise
}

func newStubStore() *stubStore {
	return &stubStore{
		workouts: make(map[uuid.UUID]*models.Workout),
		sets:     make(map[uuid.UUID][]models.WorkoutSet),
	}
}

func (st *stubStore) CreateRoutine(context.Context, *models.Routine) error { return nil }
func (st *stubStore) GetRoutine(context.Context, uuid.UUID) (*models.Routine, error) {
	return nil, nil
}
func (st *stubStore) ListRoutines(context.Context, int) ([]models.Routine, error) { return nil, nil }
func (st *stubStore) CreateRoutineExercise(context.Context, *models.RoutineExercise) error {
	return nil
}
func (st *stubStore) ListRoutineExercises(context.Context, uuid.UUID, *int) ([]models.RoutineExercise, error) {
	return nil, nil
}
func (st *stubStore) MaxOrderIndex(context.Context, uuid.UUID, int) (int, error) { return -1, nil }
func (st *stubStore) OrderIndexTaken(context.Context, uuid.UUID, int, int) (bool, error) {
	return false, nil
}

func (st *stubStore) CreateWorkout(_ context.Context, w *models.Workout) error {
	st.workouts[w.ID] = w
	return nil
}
func (st *stubStore) GetWorkout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	w, ok := st.workouts[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}
func (st *stubStore) ListWorkouts(_ context.Context, userID int, _ workout.ListWorkoutsOptions) ([]models.Workout, int, error) {
	var out []models.Workout
	for _, w := range st.workouts {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, len(out), nil
}
func (st *stubStore) UpdateWorkout(_ context.Context, w *models.Workout) error {
	st.workouts[w.ID] = w
	return nil
}
func (st *stubStore) DeleteWorkout(_ context.Context, id uuid.UUID) error {
	delete(st.workouts, id)
	return nil
}

func (st *stubStore) CreateSet(_ context.Context, s *models.WorkoutSet) error {
	st.sets[s.WorkoutID] = append(st.sets[s.WorkoutID], *s)
	return nil
}
func (st *stubStore) CreateSets(_ context.Context, sets []models.WorkoutSet) error {
	for _, s := range sets {
		st.sets[s.WorkoutID] = append(st.sets[s.WorkoutID], s)
	}
	return nil
}
func (st *stubStore) GetSet(context.Context, uuid.UUID) (*models.WorkoutSet, error) {
	return nil, nil
}
func (st *stubStore) ListSets(_ context.Context, workoutID uuid.UUID) ([]models.WorkoutSet, error) {
	return st.sets[workoutID], nil
}
func (st *stubStore) UpdateSet(context.Context, *models.WorkoutSet) error { return nil }
func (st *stubStore) DeleteSet(context.Context, uuid.UUID) error          { return nil }

func (st *stubStore) GetExercise(context.Context, uuid.UUID) (*models.Exercise, error) {
	return nil, nil
}
func (st *stubStore) ListExercises(context.Context) ([]models.Exercise, error) {
	return st.exercises, nil
}

func (st *stubStore) WorkoutsByUser(_ context.Context, userID int) ([]models.Workout, error) {
	var out []models.Workout
	for _, w := range st.workouts {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}
func (st *stubStore) SetSamplesByUser(context.Context, int, time.Time) ([]analytics.SetSample, error) {
	return nil, nil
}

const testAPIKey = "test-key"

func newTestServer(st *stubStore) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := workout.NewService(st, st, st, st, log)
	engine := analytics.NewEngine(st, log)
	return New(nil, svc, engine, testAPIKey, log)
}

func doJSON(t *testing.T, srv *Server, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// TestHandleMeDefault verifies /api/v1/me returns the dev identity when no
// Tailscale client is configured.
func TestHandleMeDefault(t *testing.T) {
	srv := newTestServer(newStubStore())
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/me", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.ID != 1 {
		t.Errorf("id = %d, want 1", info.ID)
	}
}

// TestCreateWorkoutRequiresAPIKey verifies mutations are rejected without
// the key and succeed with it.
func TestCreateWorkoutRequiresAPIKey(t *testing.T) {
	srv := newTestServer(newStubStore())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workouts", "", workout.CreateWorkoutInput{Title: "Push A"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without key = %d, want 401", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/workouts", testAPIKey, workout.CreateWorkoutInput{Title: "Push A"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status with key = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var detail workout.Detail
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if detail.Workout.Title != "Push A" {
		t.Errorf("title = %q, want %q", detail.Workout.Title, "Push A")
	}
	if detail.Workout.UserID != 1 {
		t.Errorf("user_id = %d, want 1", detail.Workout.UserID)
	}
}

// TestGetWorkoutNotFound verifies the service's NotFound maps to 404.
func TestGetWorkoutNotFound(t *testing.T) {
	srv := newTestServer(newStubStore())
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/workouts/"+uuid.NewString(), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestGetWorkoutInvalidID verifies malformed ids map to 400 before the
// service is consulted.
func TestGetWorkoutInvalidID(t *testing.T) {
	srv := newTestServer(newStubStore())
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/workouts/not-a-uuid", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestListWorkoutsPage verifies the list endpoint returns the page shape
// with the unpaged total.
func TestListWorkoutsPage(t *testing.T) {
	st := newStubStore()
	id := uuid.New()
	st.workouts[id] = &models.Workout{
		ID: id, UserID: 1, Title: "Legs", Visibility: models.VisibilityPrivate, StartedAt: time.Now(),
	}
	srv := newTestServer(st)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/workouts?limit=10", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var page workout.WorkoutPage
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if page.Total != 1 || len(page.Workouts) != 1 {
		t.Errorf("page = %d/%d workouts, want 1/1", len(page.Workouts), page.Total)
	}
}

// TestWorkoutStatsEmpty verifies the stats endpoint returns zeros for a
// user with no history.
func TestWorkoutStatsEmpty(t *testing.T) {
	srv := newTestServer(newStubStore())
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analytics/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats analytics.WorkoutStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if stats.TotalWorkouts != 0 || stats.CurrentStreak != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
}

// TestValidationMapsToBadRequest verifies ErrValidation surfaces as 400.
func TestValidationMapsToBadRequest(t *testing.T) {
	st := newStubStore()
	id := uuid.New()
	st.workouts[id] = &models.Workout{
		ID: id, UserID: 1, Visibility: models.VisibilityPrivate, StartedAt: time.Now(),
	}
	srv := newTestServer(st)

	// Neither exercise_id nor custom_exercise_name: mutual-exclusion failure.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/workouts/"+id.String()+"/sets", testAPIKey, workout.AddSetInput{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}
