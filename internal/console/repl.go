package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/voxidehq/voxide/internal/orchestrator"
	"github.com/voxidehq/voxide/internal/planner"
	"github.com/voxidehq/voxide/internal/speech"
)

const historyDisplayLimit = 15

// Console runs the interactive session loop. Commands are read one at a
// time (voice first when a speech provider is wired, typed otherwise),
// planned into tasks, and executed to completion before the next prompt.
type Console struct {
	orch    *orchestrator.Orchestrator
	planner *planner.Planner

	speech        speech.Provider
	speechTimeout time.Duration

	in  *bufio.Reader
	out io.Writer

	version     string
	sessionSink func(orchestrator.SessionStats)
}

// Option configures a Console.
type Option func(*Console)

// WithSpeech wires a voice capture provider. Each prompt tries voice
// first and falls back to the keyboard when nothing usable was heard.
func WithSpeech(p speech.Provider, timeout time.Duration) Option {
	return func(c *Console) {
		c.speech = p
		c.speechTimeout = timeout
	}
}

// WithVersion sets the version string shown in the banner.
func WithVersion(v string) Option {
	return func(c *Console) { c.version = v }
}

// WithSessionSink registers a callback receiving the final session
// statistics. Used to record sessions in the ledger.
func WithSessionSink(sink func(orchestrator.SessionStats)) Option {
	return func(c *Console) { c.sessionSink = sink }
}

// New creates a Console reading commands from in and rendering to out.
func New(orch *orchestrator.Orchestrator, p *planner.Planner, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		orch:          orch,
		planner:       p,
		in:            bufio.NewReader(in),
		out:           out,
		version:       "dev",
		speechTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the session loop until exit, EOF, or context cancellation.
// Pending tasks restored from a previous session are executed first.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, Banner(c.version))

	if restored := c.orch.Restore(); restored > 0 {
		fmt.Fprintf(c.out, "resuming %d unfinished task(s) from the last session\n", restored)
		c.runPrinted(func() { c.orch.Drain(ctx) })
	}

	for {
		if ctx.Err() != nil {
			c.shutdown()
			return ctx.Err()
		}

		command, ok := c.readCommand(ctx)
		if !ok {
			c.shutdown()
			return nil
		}
		command = strings.TrimSpace(command)
		if command == "" {
			continue
		}

		switch strings.ToLower(command) {
		case "help", "?":
			fmt.Fprintln(c.out, RenderHelp())
		case "status", "what's going on", "whats going on":
			fmt.Fprintln(c.out, RenderStatus(c.orch.Status(), c.orch.Summary()))
		case "history":
			fmt.Fprintln(c.out, RenderHistory(c.orch.History(), historyDisplayLimit))
		case "clear", "cls":
			removed := c.orch.ClearCompleted()
			fmt.Fprintf(c.out, "cleared %d completed task(s)\n", removed)
		case "exit", "quit":
			if c.confirmExit() {
				c.shutdown()
				return nil
			}
		default:
			c.handleCommand(ctx, command)
		}
	}
}

// readCommand obtains the next command, voice first when available.
// Returns ok=false on input EOF.
func (c *Console) readCommand(ctx context.Context) (string, bool) {
	if c.speech != nil {
		text, heard, err := c.speech.CaptureUtterance(ctx, c.speechTimeout)
		if err != nil {
			fmt.Fprintf(c.out, "voice capture unavailable: %v\n", err)
			c.speech = nil
		} else if heard {
			fmt.Fprintf(c.out, "heard: %s\n", text)
			return text, true
		}
	}

	fmt.Fprint(c.out, "voxide> ")
	// A blocked stdin read is not interruptible; a canceled context
	// (SIGINT) takes effect once this line is entered, at the top of
	// the loop.
	line, err := c.in.ReadString('\n')
	if err != nil {
		if len(strings.TrimSpace(line)) > 0 {
			return line, true
		}
		return "", false
	}
	return line, true
}

// handleCommand plans a free-form command and runs the resulting tasks.
func (c *Console) handleCommand(ctx context.Context, command string) {
	c.orch.RecordInput(command)
	tasks := c.planner.Plan(command)
	fmt.Fprintln(c.out, RenderPlan(tasks))

	c.runPrinted(func() { c.orch.Enqueue(ctx, tasks) })
}

// runPrinted executes one drain while a subscriber prints outcome lines
// as they happen. Consuming concurrently keeps long drains from
// overflowing the event buffer and dropping completion lines; the
// subscriber stops at the drain's terminating event.
func (c *Console) runPrinted(drain func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range c.orch.Events() {
			if line := RenderOutcome(ev); line != "" {
				fmt.Fprintln(c.out, line)
			}
			if ev.Type == orchestrator.EventQueueDrained {
				return
			}
		}
	}()

	drain()
	<-done
}

// confirmExit asks before leaving with unfinished work.
func (c *Console) confirmExit() bool {
	summary := c.orch.Summary()
	unfinished := summary.Pending + summary.InProgress
	if unfinished == 0 {
		return true
	}

	fmt.Fprintf(c.out, "%d task(s) are unfinished. Exit anyway? [y/N] ", unfinished)
	line, err := c.in.ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		return true
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// shutdown persists, prints the session summary, and records the session.
func (c *Console) shutdown() {
	stats := c.orch.Shutdown()
	fmt.Fprintln(c.out, RenderSessionSummary(stats))
	if c.sessionSink != nil {
		c.sessionSink(stats)
	}
}
