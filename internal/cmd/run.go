package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maars-dev/maars/internal/config"
	"github.com/maars-dev/maars/internal/event"
	"github.com/maars-dev/maars/internal/graph"
	"github.com/maars-dev/maars/internal/logging"
	"github.com/maars-dev/maars/internal/plan"
	"github.com/maars-dev/maars/internal/runner"
	"github.com/maars-dev/maars/internal/stage"
	"github.com/maars-dev/maars/internal/task"
	"github.com/maars-dev/maars/internal/tui"
)

var runMonitor bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the staged plan",
	Long: `Run loads plan.json, resolves and stages it, then drives every task
through the executor and validator pools until all tasks reach a
terminal status. Progress snapshots are written to execution.json after
every status change. Without live collaborators the configured mock
executor and validator are used.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runMonitor, "monitor", false, "show the live run monitor")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := plan.NewStore(cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}
	tasks, err := store.LoadPlan()
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	log, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer log.Close()

	resolved, report := graph.ResolveWithReport(tasks)
	result := stage.Compute(graph.AtomicTasks(resolved))
	staged := stage.Flatten(result.Stages)

	bus := event.NewBus()
	if result.HasWarning() {
		log.Warn("unschedulable tasks dumped into final stage", "tasks", result.Unstaged)
	}
	if len(report.Dangling) > 0 {
		log.Warn("dangling dependencies kept as-is", "deps", report.Dangling)
	}

	mock := cfg.Execution.Mock
	delay := time.Duration(mock.DelayMs) * time.Millisecond
	execSeed, valSeed := mockSeeds(mock.Seed)
	executor := runner.NewMockExecutor(mock.ExecutionPassProbability, delay, execSeed)
	validator := runner.NewMockValidator(mock.ValidationPassProbability, delay, valSeed)

	r := runner.New(runner.Config{
		Executors:            cfg.Execution.Executors,
		Validators:           cfg.Execution.Validators,
		MaxFailures:          cfg.Execution.MaxFailures,
		RollbackOnExhaustion: cfg.Execution.RollbackOnExhaustion,
	}, executor, validator, bus, store, log)

	if runMonitor {
		return runWithMonitor(r, staged, bus, result.Unstaged)
	}
	return runHeadless(r, staged, bus, result.Unstaged)
}

// mockSeeds derives distinct seeds for the executor and validator mocks
// so a fixed seed still yields independent pass/fail streams. Zero keeps
// clock seeding on both sides.
func mockSeeds(seed int64) (execSeed, valSeed int64) {
	if seed == 0 {
		return 0, 0
	}
	return seed, seed + 1
}

func runWithMonitor(r *runner.Runner, staged []task.Task, bus *event.Bus, unstaged []string) error {
	if err := r.Start(staged); err != nil {
		return err
	}

	app := tui.New(staged, unstaged, bus, r.Stop)
	if err := app.Run(); err != nil {
		r.Stop()
		_ = r.Wait()
		return err
	}
	return r.Wait()
}

func runHeadless(r *runner.Runner, staged []task.Task, bus *event.Bus, unstaged []string) error {
	bus.Subscribe(event.TypeStageWarning, func(e event.Event) {
		we, ok := e.(event.StageWarningEvent)
		if !ok {
			return
		}
		fmt.Printf("warning: unschedulable tasks in final stage: %s\n", strings.Join(we.TaskIDs, ", "))
	})
	bus.Subscribe(event.TypeTaskStatus, func(e event.Event) {
		se, ok := e.(event.TaskStatusEvent)
		if !ok {
			return
		}
		fmt.Printf("%-8s %s -> %s\n", se.TaskID, se.OldStatus, se.NewStatus)
	})
	bus.Subscribe(event.TypeRunCompleted, func(e event.Event) {
		ce, ok := e.(event.RunCompletedEvent)
		if !ok {
			return
		}
		fmt.Printf("run completed: %d done, %d failed, %d total\n", ce.Done, ce.Failed, ce.Total)
	})
	bus.Subscribe(event.TypeRunStopped, func(e event.Event) {
		se, ok := e.(event.RunStoppedEvent)
		if !ok {
			return
		}
		fmt.Printf("run stopped: %d/%d done\n", se.Done, se.Total)
	})

	// Published only now that the subscribers above are attached; the
	// bus is synchronous and keeps no history.
	if len(unstaged) > 0 {
		bus.Publish(event.NewStageWarningEvent(unstaged))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		r.Stop()
	}()

	if err := r.Start(staged); err != nil {
		return err
	}
	return r.Wait()
}
