package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxidehq/voxide/internal/state"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions",
	Long:  `Show past sessions recorded in the workspace ledger, newest first.`,
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 10, "Maximum number of sessions to show")
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ledgerPath := state.LedgerPath(cfg.Workspace.Dir)
	if _, statErr := os.Stat(ledgerPath); os.IsNotExist(statErr) {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	ledger, err := state.Open(ledgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	sessions, err := ledger.RecentSessions(sessionsLimit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	fmt.Printf("%-20s  %-9s  %8s  %9s  %6s\n", "STARTED", "DURATION", "COMMANDS", "COMPLETED", "FAILED")
	for _, s := range sessions {
		fmt.Printf("%-20s  %-9s  %8d  %9d  %6d\n",
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.EndedAt.Sub(s.StartedAt).Round(time.Second),
			s.Commands, s.Completed, s.Failed)
	}
	return nil
}
