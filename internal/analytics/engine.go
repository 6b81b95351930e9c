package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// SetSample is one workout set joined with its workout's timing and the
// exercise's muscle metadata — the only shape the engine needs from storage.
type SetSample struct {
	WorkoutID        uuid.UUID
	StartedAt        time.Time
	FinishedAt       *time.Time
	Reps             *int
	WeightKg         *float64
	PrimaryMuscles   []string
	SecondaryMuscles []string
}

// Finished reports whether the sample's workout has been completed.
func (s SetSample) Finished() bool { return s.FinishedAt != nil }

// countable reports whether the sample contributes volume.
func (s SetSample) countable() bool { return s.Reps != nil && s.WeightKg != nil }

// volume is reps × weight for the single set the sample represents.
func (s SetSample) volume() float64 { return float64(*s.Reps) * *s.WeightKg }

// HistorySource is the read-only port analytics derive from. A zero since
// time means the full history.
type HistorySource interface {
	WorkoutsByUser(ctx context.Context, userID int) ([]models.Workout, error)
	SetSamplesByUser(ctx context.Context, userID int, since time.Time) ([]SetSample, error)
}

// Engine derives statistics and trends from workout history. It holds no
// state of its own; every method is a pure function over store reads.
type Engine struct {
	history HistorySource
	log     *slog.Logger
	now     func() time.Time
}

// NewEngine creates an Engine over the given history source.
func NewEngine(history HistorySource, log *slog.Logger) *Engine {
	return &Engine{history: history, log: log, now: time.Now}
}

// WorkoutStats is the headline summary for a user.
type WorkoutStats struct {
	TotalWorkouts          int     `json:"total_workouts"`
	TotalSets              int     `json:"total_sets"`
	TotalVolumeKg          float64 `json:"total_volume_kg"`
	AverageWorkoutDuration float64 `json:"average_workout_duration_min"`
	WorkoutsThisWeek       int     `json:"workouts_this_week"`
	WorkoutsThisMonth      int     `json:"workouts_this_month"`
	CurrentStreak          int     `json:"current_streak"`
	LongestStreak          int     `json:"longest_streak"`
}

// GetWorkoutStats summarizes the user's entire history. Total volume is
// Σ reps × weight over finished-workout sets carrying both; average
// duration covers only finished workouts (0 when there are none).
func (e *Engine) GetWorkoutStats(ctx context.Context, userID int) (*WorkoutStats, error) {
	workouts, err := e.history.WorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading workout history: %w", err)
	}
	samples, err := e.history.SetSamplesByUser(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading set history: %w", err)
	}

	now := e.now()
	stats := &WorkoutStats{
		TotalWorkouts: len(workouts),
		TotalSets:     len(samples),
	}

	for _, s := range samples {
		if s.Finished() && s.countable() {
			stats.TotalVolumeKg += s.volume()
		}
	}

	weekCutoff := now.AddDate(0, 0, -7)
	thisMonth := monthStart(now)
	var totalDuration time.Duration
	finished := 0
	for _, w := range workouts {
		if !w.StartedAt.Before(weekCutoff) {
			stats.WorkoutsThisWeek++
		}
		if !w.StartedAt.Before(thisMonth) {
			stats.WorkoutsThisMonth++
		}
		if w.Finished() {
			totalDuration += w.FinishedAt.Sub(w.StartedAt)
			finished++
		}
	}
	if finished > 0 {
		stats.AverageWorkoutDuration = totalDuration.Minutes() / float64(finished)
	}

	dates := finishedWorkoutDates(workouts)
	stats.CurrentStreak = currentStreak(now, dates)
	stats.LongestStreak = longestStreak(dates)
	return stats, nil
}

// ProgressPoint is one week's finished-workout count, labeled by the
// MM/DD of the week's Sunday.
type ProgressPoint struct {
	Week     string `json:"week"`
	Workouts int    `json:"workouts"`
}

// GetOverallProgressAnalytics buckets the trailing weeks (Sunday boundary)
// and counts finished workouts per bucket, oldest first.
func (e *Engine) GetOverallProgressAnalytics(ctx context.Context, userID, weeks int) ([]ProgressPoint, error) {
	if weeks <= 0 {
		weeks = 12
	}
	workouts, err := e.history.WorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading workout history: %w", err)
	}

	now := e.now()
	thisSunday := weekStart(now)

	points := make([]ProgressPoint, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		sunday := thisSunday.AddDate(0, 0, -7*i)
		next := sunday.AddDate(0, 0, 7)
		count := 0
		for _, w := range workouts {
			if w.Finished() && !w.StartedAt.Before(sunday) && w.StartedAt.Before(next) {
				count++
			}
		}
		points = append(points, ProgressPoint{
			Week:     sunday.Format("01/02"),
			Workouts: count,
		})
	}
	return points, nil
}

// MuscleGroupVolume is the attributed volume for one canonical group.
type MuscleGroupVolume struct {
	Group  MuscleGroup `json:"group"`
	Volume int         `json:"volume"`
}

// GetMuscleGroupAnalytics attributes each finished-workout set's volume
// (reps × weight) to the exercise's primary muscles at full weight and
// secondary muscles at half, mapped onto the six canonical groups.
// Unmapped names accumulate in an internal Other bucket that is not
// emitted. The result covers all six groups in fixed order. The window
// spans the current calendar month and the months-1 preceding ones,
// matching the volume-over-time buckets.
func (e *Engine) GetMuscleGroupAnalytics(ctx context.Context, userID, months int) ([]MuscleGroupVolume, error) {
	if months <= 0 {
		months = 3
	}
	since := monthStart(e.now()).AddDate(0, -(months - 1), 0)
	samples, err := e.history.SetSamplesByUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("loading set history: %w", err)
	}

	totals := make(map[MuscleGroup]float64)
	for _, s := range samples {
		if !s.Finished() || !s.countable() {
			continue
		}
		v := s.volume()
		for _, m := range s.PrimaryMuscles {
			totals[canonicalGroup(m)] += v
		}
		for _, m := range s.SecondaryMuscles {
			totals[canonicalGroup(m)] += v * 0.5
		}
	}

	out := make([]MuscleGroupVolume, 0, len(CanonicalGroups))
	for _, g := range CanonicalGroups {
		out = append(out, MuscleGroupVolume{
			Group:  g,
			Volume: int(math.Round(totals[g])),
		})
	}
	return out, nil
}

// MonthVolume is the summed volume for one calendar month.
type MonthVolume struct {
	Month  string  `json:"month"`
	Volume float64 `json:"volume"`
}

// GetVolumeOverTimeAnalytics sums finished-workout set volume per calendar
// month over the trailing window. Buckets step back from the first of the
// current month, so every month in the window gets exactly one (possibly
// zero) entry regardless of today's day-of-month. Computation walks newest
// month first, then the result is reversed so callers get oldest → newest.
func (e *Engine) GetVolumeOverTimeAnalytics(ctx context.Context, userID, months int) ([]MonthVolume, error) {
	if months <= 0 {
		months = 6
	}
	thisMonth := monthStart(e.now())
	since := thisMonth.AddDate(0, -(months - 1), 0)
	samples, err := e.history.SetSamplesByUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("loading set history: %w", err)
	}

	out := make([]MonthVolume, 0, months)
	for i := 0; i < months; i++ {
		bucketStart := thisMonth.AddDate(0, -i, 0)
		bucketEnd := bucketStart.AddDate(0, 1, 0)

		sum := 0.0
		for _, s := range samples {
			if !s.Finished() || !s.countable() {
				continue
			}
			if !s.StartedAt.Before(bucketStart) && s.StartedAt.Before(bucketEnd) {
				sum += s.volume()
			}
		}
		out = append(out, MonthVolume{Month: bucketStart.Month().String(), Volume: sum})
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// StreakStats holds the streak pair derived from finished-workout dates.
type StreakStats struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// GetStreaks derives the current and longest consecutive-day streaks of
// finished workouts.
func (e *Engine) GetStreaks(ctx context.Context, userID int) (*StreakStats, error) {
	workouts, err := e.history.WorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading workout history: %w", err)
	}
	dates := finishedWorkoutDates(workouts)
	return &StreakStats{
		CurrentStreak: currentStreak(e.now(), dates),
		LongestStreak: longestStreak(dates),
	}, nil
}

// weekStart returns midnight of the Sunday beginning now's week.
func weekStart(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// monthStart returns midnight on the first of t's month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// dayFormat keys calendar days as strings. time.Time map keys compare the
// location pointer too, so timestamps from the driver and the host clock
// would never match; formatted days are zone-independent.
const dayFormat = "2006-01-02"

// finishedWorkoutDates returns the unique calendar days of the user's
// finished workouts, each in the timestamp's own zone.
func finishedWorkoutDates(workouts []models.Workout) map[string]bool {
	dates := make(map[string]bool)
	for _, w := range workouts {
		if w.Finished() {
			dates[w.StartedAt.Format(dayFormat)] = true
		}
	}
	return dates
}

// currentStreak walks backward from today counting consecutive days with
// at least one finished workout, stopping at the first gap. Scans at most
// a year back.
func currentStreak(now time.Time, dates map[string]bool) int {
	streak := 0
	for i := 0; i < 365; i++ {
		if !dates[now.AddDate(0, 0, -i).Format(dayFormat)] {
			break
		}
		streak++
	}
	return streak
}

// longestStreak finds the longest run of consecutive calendar days across
// the full history.
func longestStreak(dates map[string]bool) int {
	if len(dates) == 0 {
		return 0
	}
	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		prev, _ := time.Parse(dayFormat, sorted[i-1])
		if prev.AddDate(0, 0, 1).Format(dayFormat) == sorted[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
