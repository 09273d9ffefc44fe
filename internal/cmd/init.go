package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maars-dev/maars/internal/config"
	"github.com/maars-dev/maars/internal/plan"
	"github.com/maars-dev/maars/internal/task"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the data directory with a sample plan",
	Long: `Init creates the data directory and writes a small sample plan.json
demonstrating hierarchical task IDs and dependencies. Existing plans
are never overwritten.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	store, err := plan.NewStore(cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	if _, err := os.Stat(store.PlanPath()); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", store.PlanPath())
	}

	sample := []task.Task{
		{ID: "1", Description: "Collect background literature", Dependencies: []string{}},
		{ID: "2", Description: "Design the experiment", Dependencies: []string{}},
		{ID: "2_1", Description: "Define hypotheses", Dependencies: []string{}},
		{ID: "2_2", Description: "Choose the evaluation metrics", Dependencies: []string{"2_1"}},
		{ID: "3", Description: "Run the experiment and write up", Dependencies: []string{"1", "2"}},
	}
	if err := store.SavePlan(sample); err != nil {
		return fmt.Errorf("failed to write sample plan: %w", err)
	}

	fmt.Printf("Wrote %s with %d sample tasks.\n", store.PlanPath(), len(sample))
	fmt.Println("Edit it, then run `maars stage` and `maars run`.")
	return nil
}
