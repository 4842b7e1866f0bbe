package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxidehq/voxide/internal/console"
	"github.com/voxidehq/voxide/internal/planner"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted task queue",
	Long: `Display the persisted state of the workspace without executing
anything: task counts, the running task if a session is live, and the
first few waiting tasks.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(cfg.Workspace.Dir); os.IsNotExist(statErr) {
		fmt.Println("No saved state. Run 'voxide' or 'voxide run <command>' to start.")
		return nil
	}

	tasks, _ := newStore(cfg).Load()
	p := planner.New(nil)
	p.Adopt(tasks)

	summary := p.StatusSummary()
	activity := "idle"
	switch {
	case summary.InProgress > 0:
		activity = "a session is running"
	case summary.Pending == 1:
		activity = "1 task waiting"
	case summary.Pending > 1:
		activity = fmt.Sprintf("%d tasks waiting", summary.Pending)
	}

	fmt.Println(console.RenderStatus(activity, summary))
	return nil
}
