package workout

import (
	"context"
	"errors"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

func seedRoutine(store *memStore, userID int, visibility models.Visibility) *models.Routine {
	r := &models.Routine{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      "Upper Lower",
		Visibility: visibility,
	}
	store.routines[r.ID] = r
	return r
}

func seedRoutineExercise(store *memStore, routineID uuid.UUID, day, order int, sets string, notes *string) *models.RoutineExercise {
	name := "exercise " + uuid.NewString()[:8]
	re := &models.RoutineExercise{
		ID:                 uuid.New(),
		RoutineID:          routineID,
		DayIndex:           day,
		OrderIndex:         order,
		CustomExerciseName: &name,
		Sets:               sets,
		Notes:              notes,
	}
	store.routineExercises = append(store.routineExercises, re)
	return re
}

// TestMaterializePlaceholderCounts verifies fixed counts, the AMRAP
// default, and verbatim notes on placeholder sets.
func TestMaterializePlaceholderCounts(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	r := seedRoutine(store, 1, models.VisibilityPrivate)
	notes := strPtr("pause at the bottom")
	seedRoutineExercise(store, r.ID, 0, 0, "3", notes)
	seedRoutineExercise(store, r.ID, 0, 1, "AMRAP", nil)

	detail, err := svc.Materialize(context.Background(), r.ID, 1, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	total := 0
	for _, g := range detail.Exercises {
		total += len(g.Sets)
		for i, set := range g.Sets {
			if set.SetNumber != i+1 {
				t.Errorf("set number = %d, want %d", set.SetNumber, i+1)
			}
			if set.Completed() {
				t.Error("placeholder set should have no performance data")
			}
		}
	}
	if total != 6 {
		t.Errorf("placeholder sets = %d, want 3 + 3 (AMRAP default)", total)
	}

	found := false
	for _, g := range detail.Exercises {
		for _, set := range g.Sets {
			if set.Notes != nil && *set.Notes == *notes {
				found = true
			}
		}
	}
	if !found {
		t.Error("routine exercise notes not carried onto placeholder sets")
	}

	if detail.Routine == nil || detail.Routine.Title != "Upper Lower" {
		t.Errorf("routine ref = %+v, want id/title attached", detail.Routine)
	}
	if detail.Workout.RoutineID == nil || *detail.Workout.RoutineID != r.ID {
		t.Error("workout not linked to originating routine")
	}
}

// TestMaterializeDayFilter verifies the optional day filter.
func TestMaterializeDayFilter(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	r := seedRoutine(store, 1, models.VisibilityPrivate)
	seedRoutineExercise(store, r.ID, 0, 0, "2", nil)
	seedRoutineExercise(store, r.ID, 1, 0, "4", nil)

	day := 1
	detail, err := svc.Materialize(context.Background(), r.ID, 1, &day)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(detail.Exercises) != 1 {
		t.Fatalf("exercise groups = %d, want 1 (day filter)", len(detail.Exercises))
	}
	if len(detail.Exercises[0].Sets) != 4 {
		t.Errorf("sets = %d, want 4", len(detail.Exercises[0].Sets))
	}
}

// TestMaterializeAccess verifies routine visibility gating.
func TestMaterializeAccess(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	private := seedRoutine(store, 1, models.VisibilityPrivate)
	seedRoutineExercise(store, private.ID, 0, 0, "3", nil)
	if _, err := svc.Materialize(ctx, private.ID, 2, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger materializing private routine: err = %v, want ErrNotFound", err)
	}

	// PUBLIC and UNLISTED routines are materializable by anyone; the
	// resulting workout belongs to the requester.
	unlisted := seedRoutine(store, 1, models.VisibilityUnlisted)
	seedRoutineExercise(store, unlisted.ID, 0, 0, "3", nil)
	detail, err := svc.Materialize(ctx, unlisted.ID, 2, nil)
	if err != nil {
		t.Fatalf("Materialize unlisted: %v", err)
	}
	if detail.Workout.UserID != 2 {
		t.Errorf("workout owner = %d, want requester 2", detail.Workout.UserID)
	}
}
