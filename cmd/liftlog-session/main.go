package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/client"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "LiftLog server URL")
	apiKey := flag.String("api-key", "", "API key for mutations (or LIFTLOG_AUTH_API_KEY)")
	workoutID := flag.String("workout", "", "workout UUID to open")
	routineID := flag.String("routine", "", "routine UUID to materialize a new workout from")
	day := flag.Int("day", -1, "routine day index to materialize (all days when omitted)")
	resume := flag.Bool("resume", false, "resume the locally saved session")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-session", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if *apiKey == "" {
		*apiKey = os.Getenv("LIFTLOG_AUTH_API_KEY")
	}
	api := client.New(strings.TrimRight(*serverURL, "/"), *apiKey)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := client.OpenStateDB(filepath.Join(homeDir, ".liftlog-session"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	ctx := context.Background()

	id, err := resolveWorkout(ctx, api, state, *workoutID, *routineID, *day, *resume)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	ctrl := session.New(api, id, log)
	if err := ctrl.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if *resume {
		if saved, err := state.Load(); err == nil && saved != nil && saved.WorkoutID == id {
			ctrl.Restore(saved.ExerciseIndex, saved.SetIndex, saved.RestRemaining)
		}
	}

	run(ctx, ctrl, state, id)
}

// resolveWorkout picks the session's workout: an explicit id, a fresh
// materialization, or the locally saved session.
func resolveWorkout(ctx context.Context, api *client.Client, state *client.StateDB, workoutID, routineID string, day int, resume bool) (uuid.UUID, error) {
	switch {
	case workoutID != "":
		return uuid.Parse(workoutID)

	case routineID != "":
		rid, err := uuid.Parse(routineID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid routine id: %w", err)
		}
		input := workout.CreateWorkoutInput{RoutineID: &rid}
		if day >= 0 {
			input.DayIndex = &day
		}
		detail, err := api.CreateWorkout(ctx, input)
		if err != nil {
			return uuid.Nil, err
		}
		fmt.Printf("Started workout %s (%s)\n", detail.Workout.ID, detail.Workout.Title)
		return detail.Workout.ID, nil

	case resume:
		saved, err := state.Load()
		if err != nil {
			return uuid.Nil, err
		}
		if saved == nil {
			return uuid.Nil, fmt.Errorf("no saved session to resume")
		}
		fmt.Printf("Resuming workout %s\n", saved.WorkoutID)
		return saved.WorkoutID, nil
	}

	return uuid.Nil, fmt.Errorf("one of -workout, -routine, or -resume is required")
}

// run is the interactive loop: a 1s ticker drives the rest timer and the
// auto-finish countdown, stdin lines drive everything else.
func run(ctx context.Context, ctrl *session.Controller, state *client.StateDB, id uuid.UUID) {
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	printStatus(ctrl)
	fmt.Print("> ")

	for {
		select {
		case <-ticker.C:
			before := ctrl.Phase()
			ctrl.Tick(ctx)
			saveState(ctrl, state, id)
			if before != session.PhaseDone && ctrl.Phase() == session.PhaseDone {
				fmt.Println("\nWorkout finished. Nice work.")
				state.Clear()
				return
			}

		case line, ok := <-lines:
			if !ok {
				saveState(ctrl, state, id)
				return
			}
			if quit := handleCommand(ctx, ctrl, line); quit {
				saveState(ctrl, state, id)
				return
			}
			saveState(ctrl, state, id)
			if ctrl.Phase() == session.PhaseDone {
				state.Clear()
				return
			}
			fmt.Print("> ")
		}
	}
}

func handleCommand(ctx context.Context, ctrl *session.Controller, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "log":
		input, err := parseLog(fields[1:])
		if err != nil {
			fmt.Println("Usage: log <weight-kg> <reps> [rpe]")
			return false
		}
		if err := ctrl.LogCurrentSet(ctx, input); err != nil {
			fmt.Println("Log failed:", err)
			return false
		}
		if ctrl.CompletionNotice() {
			fmt.Println("All sets complete!")
		}

	case "next":
		ctrl.NavigateNext()
	case "prev":
		ctrl.NavigatePrev()
	case "goto":
		if len(fields) != 2 {
			fmt.Println("Usage: goto <exercise-number>")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("Usage: goto <exercise-number>")
			return false
		}
		ctrl.NavigateToExercise(n - 1)

	case "addset":
		if err := ctrl.AddSetToCurrentExercise(ctx); err != nil {
			fmt.Println("Add set failed:", err)
		}
	case "addex":
		if len(fields) < 2 {
			fmt.Println("Usage: addex <exercise name>")
			return false
		}
		name := strings.Join(fields[1:], " ")
		if err := ctrl.AddExercise(ctx, session.ExerciseRef{CustomName: &name}); err != nil {
			fmt.Println("Add exercise failed:", err)
		}

	case "rest":
		ctrl.ToggleRestTimer()
	case "skip":
		ctrl.SkipRestTimer()

	case "finish":
		if err := ctrl.Finish(ctx); err != nil {
			fmt.Println("Finish failed:", err)
			return false
		}
		fmt.Println("Workout finished. Nice work.")
		return true

	case "status":
		printStatus(ctrl)

	case "quit", "exit":
		fmt.Println("Session saved. Resume with -resume.")
		return true

	default:
		fmt.Println("Commands: log, next, prev, goto, addset, addex, rest, skip, finish, status, quit")
	}
	return false
}

func parseLog(args []string) (session.LogInput, error) {
	if len(args) < 2 {
		return session.LogInput{}, fmt.Errorf("weight and reps required")
	}
	weight, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return session.LogInput{}, err
	}
	reps, err := strconv.Atoi(args[1])
	if err != nil {
		return session.LogInput{}, err
	}
	input := session.LogInput{WeightKg: &weight, Reps: &reps}
	if len(args) > 2 {
		rpe, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return session.LogInput{}, err
		}
		input.RPE = &rpe
	}
	return input, nil
}

func saveState(ctrl *session.Controller, state *client.StateDB, id uuid.UUID) {
	exIdx, setIdx := ctrl.Cursor()
	state.Save(client.SessionState{
		WorkoutID:     id,
		ExerciseIndex: exIdx,
		SetIndex:      setIdx,
		RestRemaining: ctrl.RestTimer().Remaining,
	})
}

func printStatus(ctrl *session.Controller) {
	completed, total := ctrl.Progress()
	exIdx, setIdx := ctrl.Cursor()
	fmt.Printf("[%s] %d/%d sets complete (set %d of current exercise)\n", ctrl.Phase(), completed, total, setIdx+1)
	for i, ex := range ctrl.Exercises() {
		marker := "  "
		if i == exIdx {
			marker = "> "
		}
		done := 0
		for _, s := range ex.Sets {
			if s.Completed {
				done++
			}
		}
		fmt.Printf("%s%d. %s (%d/%d)\n", marker, i+1, ex.Label, done, len(ex.Sets))
	}
	if rest := ctrl.RestTimer(); rest.Visible {
		fmt.Printf("Rest: %ds remaining\n", rest.Remaining)
	}
}
