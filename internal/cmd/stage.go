package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/maars-dev/maars/internal/config"
	"github.com/maars-dev/maars/internal/event"
	"github.com/maars-dev/maars/internal/graph"
	"github.com/maars-dev/maars/internal/layout"
	"github.com/maars-dev/maars/internal/plan"
	"github.com/maars-dev/maars/internal/stage"
)

var (
	stageShowLayout bool
	stageWatch      bool
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Resolve dependencies and batch the plan into stages",
	Long: `Stage loads plan.json from the data directory, sinks dependencies on
decomposed tasks down to their atomic leaves, batches the result into
parallel stages, and writes the staged plan back. With --watch it
re-stages whenever the plan file changes on disk.`,
	RunE: runStage,
}

var (
	stageHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	stageWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	stageTaskStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))
	stageMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

func init() {
	stageCmd.Flags().BoolVar(&stageShowLayout, "layout", false, "also print the grid layout")
	stageCmd.Flags().BoolVar(&stageWatch, "watch", false, "re-stage whenever the plan file changes")
	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	store, err := plan.NewStore(cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}

	if _, err := stageOnce(store); err != nil {
		return err
	}
	if !stageWatch {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	bus := event.NewBus()
	bus.Subscribe(event.TypePlanReloaded, func(e event.Event) {
		re, ok := e.(event.PlanReloadedEvent)
		if !ok {
			return
		}
		fmt.Println(stageMutedStyle.Render(fmt.Sprintf("re-staged %d tasks from %s", re.Tasks, re.Path)))
	})

	watcher, err := plan.NewWatcher(store.PlanPath(), reloadPlan(store, bus))
	if err != nil {
		return fmt.Errorf("failed to watch plan: %w", err)
	}
	defer watcher.Close()

	fmt.Println(stageMutedStyle.Render("watching " + store.PlanPath() + " (ctrl-c to exit)"))
	watcher.Run(ctx)
	return nil
}

// reloadPlan re-stages the plan after an on-disk change and announces
// the result on the bus.
func reloadPlan(store *plan.Store, bus *event.Bus) func() {
	return func() {
		fmt.Println()
		n, err := stageOnce(store)
		if err != nil {
			fmt.Fprintln(os.Stderr, stageWarnStyle.Render("re-stage failed: "+err.Error()))
			return
		}
		bus.Publish(event.NewPlanReloadedEvent(store.PlanPath(), n))
	}
}

// stageOnce resolves, stages, prints, and persists the plan, returning
// the number of staged tasks.
func stageOnce(store *plan.Store) (int, error) {
	tasks, err := store.LoadPlan()
	if err != nil {
		return 0, fmt.Errorf("failed to load plan: %w", err)
	}

	resolved, report := graph.ResolveWithReport(tasks)
	result := stage.Compute(graph.AtomicTasks(resolved))
	printStages(result, report)

	if stageShowLayout {
		printLayout(layout.Build(stage.CleanDependencies(result.Stages)))
	}

	// The plan file stays untouched; the staged execution view goes to
	// execution.json, which run regenerates anyway.
	staged := stage.Flatten(result.Stages)
	if err := store.SaveExecution(staged); err != nil {
		return 0, fmt.Errorf("failed to save staged view: %w", err)
	}
	return len(staged), nil
}

func printStages(result stage.Result, report graph.ResolveReport) {
	for i, batch := range result.Stages {
		fmt.Println(stageHeaderStyle.Render(fmt.Sprintf("stage %d", i+1)))
		for _, t := range batch {
			line := "  " + stageTaskStyle.Render(fmt.Sprintf("%-8s", t.ID))
			if len(t.Dependencies) > 0 {
				line += stageMutedStyle.Render(" after " + strings.Join(t.Dependencies, ", "))
			}
			if t.Description != "" {
				line += stageMutedStyle.Render("  " + t.Description)
			}
			fmt.Println(line)
		}
	}

	if result.HasWarning() {
		fmt.Println(stageWarnStyle.Render(fmt.Sprintf(
			"warning: %d tasks could not be ordered (cycle or missing dependency): %s",
			len(result.Unstaged), strings.Join(result.Unstaged, ", "))))
	}
	if len(report.Dangling) > 0 {
		fmt.Println(stageWarnStyle.Render(
			"warning: dangling dependencies kept as-is: " + strings.Join(report.Dangling, ", ")))
	}
}

func printLayout(l *layout.Layout) {
	fmt.Println(stageHeaderStyle.Render("layout"))
	for row := 0; row < l.MaxRows; row++ {
		var cells []string
		for col := 0; col < l.MaxCols; col++ {
			cell := l.Grid[row][col]
			if cell == nil {
				cells = append(cells, fmt.Sprintf("%-8s", ""))
			} else {
				cells = append(cells, stageTaskStyle.Render(fmt.Sprintf("%-8s", cell.ID)))
			}
		}
		fmt.Println("  " + strings.Join(cells, " "))
	}
	if len(l.IsolatedTasks) > 0 {
		ids := make([]string, len(l.IsolatedTasks))
		for i, t := range l.IsolatedTasks {
			ids[i] = t.ID
		}
		fmt.Println(stageMutedStyle.Render("  isolated: " + strings.Join(ids, ", ")))
	}
}
