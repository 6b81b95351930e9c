package workout

import (
	"context"
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// memStore is an in-memory double for all four persistence ports,
// preserving the canonical orderings the real storage layer guarantees.
type memStore struct {
	routines         map[uuid.UUID]*models.Routine
	routineExercises []*models.RoutineExercise
	workouts         map[uuid.UUID]*models.Workout
	sets             map[uuid.UUID]*models.WorkoutSet
	exercises        map[uuid.UUID]*models.Exercise

	failWith error // when set, every call fails with this error
}

func newMemStore() *memStore {
	return &memStore{
		routines:  make(map[uuid.UUID]*models.Routine),
		workouts:  make(map[uuid.UUID]*models.Workout),
		sets:      make(map[uuid.UUID]*models.WorkoutSet),
		exercises: make(map[uuid.UUID]*models.Exercise),
	}
}

func (m *memStore) CreateRoutine(_ context.Context, r *models.Routine) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *r
	m.routines[r.ID] = &cp
	return nil
}

func (m *memStore) GetRoutine(_ context.Context, id uuid.UUID) (*models.Routine, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	r, ok := m.routines[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListRoutines(_ context.Context, userID int) ([]models.Routine, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Routine
	for _, r := range m.routines {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) CreateRoutineExercise(_ context.Context, re *models.RoutineExercise) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *re
	m.routineExercises = append(m.routineExercises, &cp)
	return nil
}

func (m *memStore) ListRoutineExercises(_ context.Context, routineID uuid.UUID, dayIndex *int) ([]models.RoutineExercise, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.RoutineExercise
	for _, re := range m.routineExercises {
		if re.RoutineID != routineID {
			continue
		}
		if dayIndex != nil && re.DayIndex != *dayIndex {
			continue
		}
		out = append(out, *re)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayIndex != out[j].DayIndex {
			return out[i].DayIndex < out[j].DayIndex
		}
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

func (m *memStore) MaxOrderIndex(_ context.Context, routineID uuid.UUID, dayIndex int) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	maxIdx := -1
	for _, re := range m.routineExercises {
		if re.RoutineID == routineID && re.DayIndex == dayIndex && re.OrderIndex > maxIdx {
			maxIdx = re.OrderIndex
		}
	}
	return maxIdx, nil
}

func (m *memStore) OrderIndexTaken(_ context.Context, routineID uuid.UUID, dayIndex, orderIndex int) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	for _, re := range m.routineExercises {
		if re.RoutineID == routineID && re.DayIndex == dayIndex && re.OrderIndex == orderIndex {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateWorkout(_ context.Context, w *models.Workout) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *w
	m.workouts[w.ID] = &cp
	return nil
}

func (m *memStore) GetWorkout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	w, ok := m.workouts[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) ListWorkouts(_ context.Context, userID int, opts ListWorkoutsOptions) ([]models.Workout, int, error) {
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	var all []models.Workout
	for _, w := range m.workouts {
		if w.UserID != userID {
			continue
		}
		if !opts.IncludeFinished && w.Finished() {
			continue
		}
		if opts.RoutineID != nil && (w.RoutineID == nil || *w.RoutineID != *opts.RoutineID) {
			continue
		}
		all = append(all, *w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartedAt.After(all[j].StartedAt) })
	total := len(all)
	if opts.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, total, nil
}

func (m *memStore) UpdateWorkout(_ context.Context, w *models.Workout) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *w
	m.workouts[w.ID] = &cp
	return nil
}

func (m *memStore) DeleteWorkout(_ context.Context, id uuid.UUID) error {
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.workouts, id)
	for sid, s := range m.sets {
		if s.WorkoutID == id {
			delete(m.sets, sid)
		}
	}
	return nil
}

func (m *memStore) CreateSet(_ context.Context, s *models.WorkoutSet) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *s
	m.sets[s.ID] = &cp
	return nil
}

func (m *memStore) CreateSets(_ context.Context, sets []models.WorkoutSet) error {
	if m.failWith != nil {
		return m.failWith
	}
	for i := range sets {
		cp := sets[i]
		m.sets[cp.ID] = &cp
	}
	return nil
}

func (m *memStore) GetSet(_ context.Context, id uuid.UUID) (*models.WorkoutSet, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	s, ok := m.sets[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListSets(_ context.Context, workoutID uuid.UUID) ([]models.WorkoutSet, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.WorkoutSet
	for _, s := range m.sets {
		if s.WorkoutID == workoutID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Identity() != out[j].Identity() {
			return out[i].Identity() < out[j].Identity()
		}
		return out[i].SetNumber < out[j].SetNumber
	})
	return out, nil
}

func (m *memStore) UpdateSet(_ context.Context, s *models.WorkoutSet) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *s
	m.sets[s.ID] = &cp
	return nil
}

func (m *memStore) DeleteSet(_ context.Context, id uuid.UUID) error {
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.sets, id)
	return nil
}

func (m *memStore) GetExercise(_ context.Context, id uuid.UUID) (*models.Exercise, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	ex, ok := m.exercises[id]
	if !ok {
		return nil, nil
	}
	cp := *ex
	return &cp, nil
}

func (m *memStore) ListExercises(_ context.Context) ([]models.Exercise, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Exercise
	for _, ex := range m.exercises {
		out = append(out, *ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Compile-time checks: memStore satisfies every port.
var (
	_ RoutineStore  = (*memStore)(nil)
	_ WorkoutStore  = (*memStore)(nil)
	_ SetStore      = (*memStore)(nil)
	_ ExerciseStore = (*memStore)(nil)
)
