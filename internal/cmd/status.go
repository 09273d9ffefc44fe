package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maars-dev/maars/internal/config"
	"github.com/maars-dev/maars/internal/plan"
	"github.com/maars-dev/maars/internal/task"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the last run",
	Long:  `Display per-task status from execution.json, as written by run.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	store, err := plan.NewStore(cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}

	tasks, err := store.LoadExecution()
	if errors.Is(err, plan.ErrNotFound) {
		fmt.Println("No run state found. Run `maars run` first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load run state: %w", err)
	}

	counts := make(map[task.Status]int)
	for _, t := range tasks {
		counts[t.Status]++
	}

	fmt.Printf("Tasks: %d\n", len(tasks))
	for _, st := range []task.Status{
		task.StatusDone, task.StatusDoing, task.StatusValidating,
		task.StatusUndone, task.StatusExecutionFailed, task.StatusValidationFailed,
	} {
		if counts[st] > 0 {
			fmt.Printf("  %-17s %d\n", st, counts[st])
		}
	}
	fmt.Println()

	for _, t := range tasks {
		fmt.Printf("[%d] %-8s %s\n", t.Stage, t.ID, t.Status)
		if t.Description != "" {
			fmt.Printf("    %s\n", t.Description)
		}
	}
	return nil
}
