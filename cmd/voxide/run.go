package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voxidehq/voxide/internal/console"
	"github.com/voxidehq/voxide/internal/orchestrator"
)

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Plan and execute a single command, then exit",
	Long: `Plan a free-form command into tasks and execute them to completion.

Unfinished tasks from a previous session run first, in their original
order. State is persisted the same way as in interactive mode.

Examples:
  voxide run "fix the layout on the login page"
  voxide run --backend anthropic "add a create-user api endpoint"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOnce,
}

func runOnce(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	p, err := newPlanner(cfg)
	if err != nil {
		return err
	}

	orch := orchestrator.New(p, b, newStore(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Print outcomes while a drain runs so long queues cannot overflow
	// the event buffer. The subscriber stops at the drain's terminating
	// event; failed is safe to read once the goroutine is done.
	failed := 0
	printed := func(drain func()) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			for ev := range orch.Events() {
				if ev.Type == orchestrator.EventTaskFailed {
					failed++
				}
				if line := console.RenderOutcome(ev); line != "" {
					fmt.Println(line)
				}
				if ev.Type == orchestrator.EventQueueDrained {
					return
				}
			}
		}()
		drain()
		<-done
	}

	if restored := orch.Restore(); restored > 0 {
		fmt.Printf("resuming %d unfinished task(s) from the last session\n", restored)
		printed(func() { orch.Drain(ctx) })
	}

	orch.RecordInput(command)
	tasks := p.Plan(command)
	fmt.Println(console.RenderPlan(tasks))

	printed(func() { orch.Enqueue(ctx, tasks) })

	orch.Shutdown()
	if failed > 0 {
		return fmt.Errorf("%d task(s) failed", failed)
	}
	return nil
}
