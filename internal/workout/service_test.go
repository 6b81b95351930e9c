package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

func newTestService(store *memStore) *Service {
	svc := NewService(store, store, store, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func seedWorkout(store *memStore, userID int) *models.Workout {
	w := &models.Workout{
		ID:         uuid.New(),
		UserID:     userID,
		Visibility: models.VisibilityPrivate,
		StartedAt:  time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
	}
	store.workouts[w.ID] = w
	return w
}

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

// TestAddSetAutoNumbering verifies that omitted set numbers are assigned
// max(existing)+1 per exercise-identity group, starting at 1.
func TestAddSetAutoNumbering(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)
	ctx := context.Background()

	benchID := uuid.New()
	store.exercises[benchID] = &models.Exercise{ID: benchID, Name: "Bench Press"}

	first, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{ExerciseID: &benchID})
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if first.SetNumber != 1 {
		t.Errorf("first set number = %d, want 1", first.SetNumber)
	}
	if first.Exercise == nil || first.Exercise.Name != "Bench Press" {
		t.Errorf("expected joined catalog exercise, got %+v", first.Exercise)
	}

	second, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{ExerciseID: &benchID})
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if second.SetNumber != 2 {
		t.Errorf("second set number = %d, want 2", second.SetNumber)
	}

	// A different identity group restarts at 1.
	custom, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{CustomExerciseName: strPtr("Sled Push")})
	if err != nil {
		t.Fatalf("AddSet custom: %v", err)
	}
	if custom.SetNumber != 1 {
		t.Errorf("custom group set number = %d, want 1", custom.SetNumber)
	}

	// An explicit collision is reassigned to the next free slot.
	collided, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{ExerciseID: &benchID, SetNumber: intPtr(1)})
	if err != nil {
		t.Fatalf("AddSet collision: %v", err)
	}
	if collided.SetNumber != 3 {
		t.Errorf("collided set number = %d, want 3", collided.SetNumber)
	}
}

// TestAddSetIdentityValidation verifies the exercise-identity exclusivity rule.
func TestAddSetIdentityValidation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)
	exID := uuid.New()

	tests := []struct {
		name  string
		input AddSetInput
	}{
		{"neither", AddSetInput{}},
		{"both", AddSetInput{ExerciseID: &exID, CustomExerciseName: strPtr("Thing")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddSet(context.Background(), w.ID, 1, tt.input)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

// TestAddSetRPERange verifies the 1.0–10.0 rpe bounds.
func TestAddSetRPERange(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)

	_, err := svc.AddSet(context.Background(), w.ID, 1, AddSetInput{
		CustomExerciseName: strPtr("Farmer Carry"),
		RPE:                floatPtr(11.0),
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("rpe 11.0: err = %v, want ErrValidation", err)
	}

	_, err = svc.AddSet(context.Background(), w.ID, 1, AddSetInput{
		CustomExerciseName: strPtr("Farmer Carry"),
		RPE:                floatPtr(10.0),
	})
	if err != nil {
		t.Errorf("rpe 10.0: unexpected error %v", err)
	}
}

// TestAddSetOwnership verifies that mutations by non-owners are rejected
// and absent workouts surface ErrNotFound.
func TestAddSetOwnership(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)
	w.Visibility = models.VisibilityPublic
	input := AddSetInput{CustomExerciseName: strPtr("Row")}

	if _, err := svc.AddSet(context.Background(), w.ID, 2, input); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("non-owner on public workout: err = %v, want ErrPermissionDenied", err)
	}

	// Private workouts never reveal their existence to non-owners.
	private := seedWorkout(store, 1)
	if _, err := svc.AddSet(context.Background(), private.ID, 2, input); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-owner on private workout: err = %v, want ErrNotFound", err)
	}

	if _, err := svc.AddSet(context.Background(), uuid.New(), 1, input); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent workout: err = %v, want ErrNotFound", err)
	}
}

// TestUpdateSetPartial verifies that only supplied fields change.
func TestUpdateSetPartial(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)
	ctx := context.Background()

	created, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{
		CustomExerciseName: strPtr("Goblet Squat"),
		Reps:               intPtr(10),
		WeightKg:           floatPtr(24),
	})
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}

	updated, err := svc.UpdateSet(ctx, created.ID, 1, UpdateSetInput{WeightKg: floatPtr(28)})
	if err != nil {
		t.Fatalf("UpdateSet: %v", err)
	}
	if updated.WeightKg == nil || *updated.WeightKg != 28 {
		t.Errorf("weight = %v, want 28", updated.WeightKg)
	}
	if updated.Reps == nil || *updated.Reps != 10 {
		t.Errorf("reps changed: %v, want 10 untouched", updated.Reps)
	}
	if updated.PerformedAt == nil {
		t.Error("completed set should carry performed_at")
	}
}

// TestDeleteSetByExerciseLastSet verifies last-set protection.
func TestDeleteSetByExerciseLastSet(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)
	ctx := context.Background()
	name := strPtr("Dips")

	if _, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{CustomExerciseName: name}); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if _, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{CustomExerciseName: name}); err != nil {
		t.Fatalf("AddSet: %v", err)
	}

	if err := svc.DeleteSetByExercise(ctx, w.ID, 1, SetRef{CustomExerciseName: name, SetNumber: 2}); err != nil {
		t.Fatalf("deleting non-last set: %v", err)
	}

	err := svc.DeleteSetByExercise(ctx, w.ID, 1, SetRef{CustomExerciseName: name, SetNumber: 1})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("deleting last set: err = %v, want ErrValidation", err)
	}

	err = svc.DeleteSetByExercise(ctx, w.ID, 1, SetRef{CustomExerciseName: name, SetNumber: 9})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting missing set number: err = %v, want ErrNotFound", err)
	}
}

// TestFinishWorkoutIdempotent verifies re-finishing simply re-stamps.
func TestFinishWorkoutIdempotent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)
	ctx := context.Background()

	finished, err := svc.FinishWorkout(ctx, w.ID, 1)
	if err != nil {
		t.Fatalf("FinishWorkout: %v", err)
	}
	if finished.FinishedAt == nil {
		t.Fatal("finished_at not set")
	}
	first := *finished.FinishedAt

	svc.now = func() time.Time { return first.Add(time.Minute) }
	again, err := svc.FinishWorkout(ctx, w.ID, 1)
	if err != nil {
		t.Fatalf("second FinishWorkout: %v", err)
	}
	if !again.FinishedAt.Equal(first.Add(time.Minute)) {
		t.Errorf("finished_at = %v, want re-stamped %v", again.FinishedAt, first.Add(time.Minute))
	}
}

// TestGetWorkoutByIDVisibility verifies the read-path visibility rules.
func TestGetWorkoutByIDVisibility(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	private := seedWorkout(store, 1)
	public := seedWorkout(store, 1)
	public.Visibility = models.VisibilityPublic

	if _, err := svc.GetWorkoutByID(ctx, private.ID, 1); err != nil {
		t.Errorf("owner read private: %v", err)
	}
	if _, err := svc.GetWorkoutByID(ctx, private.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger read private: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetWorkoutByID(ctx, public.ID, 2); err != nil {
		t.Errorf("stranger read public: %v", err)
	}
}

// TestGetUserWorkoutsPaging verifies limit/offset and the unpaged total.
func TestGetUserWorkoutsPaging(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		w := seedWorkout(store, 1)
		w.StartedAt = base.AddDate(0, 0, i)
	}

	page, err := svc.GetUserWorkouts(ctx, 1, ListWorkoutsOptions{Limit: 2, Offset: 1, IncludeFinished: true})
	if err != nil {
		t.Fatalf("GetUserWorkouts: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("total = %d, want 5", page.Total)
	}
	if len(page.Workouts) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Workouts))
	}
	if !page.Workouts[0].StartedAt.After(page.Workouts[1].StartedAt) {
		t.Error("workouts not ordered newest first")
	}
}

// TestDeleteWorkoutCascades verifies set cleanup on workout deletion.
func TestDeleteWorkoutCascades(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)
	ctx := context.Background()

	if _, err := svc.AddSet(ctx, w.ID, 1, AddSetInput{CustomExerciseName: strPtr("Row")}); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if err := svc.DeleteWorkout(ctx, w.ID, 1); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}
	if len(store.sets) != 0 {
		t.Errorf("sets remaining after delete: %d", len(store.sets))
	}

	if err := svc.DeleteWorkout(ctx, w.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

// TestAddRoutineExerciseOrderConflict verifies next-free-slot reassignment.
func TestAddRoutineExerciseOrderConflict(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	r, err := svc.CreateRoutine(ctx, 1, CreateRoutineInput{Title: "Push Pull Legs"})
	if err != nil {
		t.Fatalf("CreateRoutine: %v", err)
	}

	a, err := svc.AddRoutineExercise(ctx, r.ID, 1, AddRoutineExerciseInput{
		DayIndex: 0, OrderIndex: intPtr(0), CustomExerciseName: strPtr("Bench"),
	})
	if err != nil {
		t.Fatalf("AddRoutineExercise: %v", err)
	}
	if a.OrderIndex != 0 {
		t.Errorf("first order index = %d, want 0", a.OrderIndex)
	}

	// Same requested slot: reassigned, not rejected.
	b, err := svc.AddRoutineExercise(ctx, r.ID, 1, AddRoutineExerciseInput{
		DayIndex: 0, OrderIndex: intPtr(0), CustomExerciseName: strPtr("Ohp"),
	})
	if err != nil {
		t.Fatalf("AddRoutineExercise conflict: %v", err)
	}
	if b.OrderIndex != 1 {
		t.Errorf("conflicting order index = %d, want 1", b.OrderIndex)
	}

	// Another day is an independent sequence.
	c, err := svc.AddRoutineExercise(ctx, r.ID, 1, AddRoutineExerciseInput{
		DayIndex: 1, CustomExerciseName: strPtr("Squat"),
	})
	if err != nil {
		t.Fatalf("AddRoutineExercise day 1: %v", err)
	}
	if c.OrderIndex != 0 {
		t.Errorf("day 1 order index = %d, want 0", c.OrderIndex)
	}

	// Non-author cannot extend someone else's routine.
	_, err = svc.AddRoutineExercise(ctx, r.ID, 2, AddRoutineExerciseInput{
		DayIndex: 0, CustomExerciseName: strPtr("Curl"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("non-author on private routine: err = %v, want ErrNotFound", err)
	}
}

// TestTransientStoreFailure verifies storage errors propagate wrapped,
// not as one of the typed sentinels.
func TestTransientStoreFailure(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	w := seedWorkout(store, 1)

	store.failWith = errors.New("connection reset")
	_, err := svc.AddSet(context.Background(), w.ID, 1, AddSetInput{CustomExerciseName: strPtr("Row")})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrPermissionDenied) {
		t.Errorf("transient failure mapped to sentinel: %v", err)
	}
}
