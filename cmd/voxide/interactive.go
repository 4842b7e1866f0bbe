package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/voxidehq/voxide/internal/console"
	"github.com/voxidehq/voxide/internal/orchestrator"
	"github.com/voxidehq/voxide/internal/planner"
	"github.com/voxidehq/voxide/internal/speech"
	"github.com/voxidehq/voxide/internal/state"
	"github.com/voxidehq/voxide/internal/version"
)

// readTranscript loads one utterance per line; blank lines are kept and
// replay as unintelligible audio.
func readTranscript(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n"), nil
}

// runInteractive wires the full session: config, planner, backend, store,
// orchestrator, ledger, and the console loop.
func runInteractive() error {
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

	if cfg.Planner.RulesFile != "" && cfg.Planner.WatchRules {
		watcher, werr := planner.WatchRules(cfg.Planner.RulesFile, p, nil)
		if werr != nil {
			fmt.Fprintf(os.Stderr, "rules watcher disabled: %v\n", werr)
		} else {
			defer watcher.Close()
		}
	}

	logger := orchestrator.NopLogger()
	if cfg.Workspace.DebugLog {
		logger = orchestrator.NewDebugLoggerForWorkspace(cfg.Workspace.Dir)
		defer logger.Close()
	}

	orch := orchestrator.New(p, b, newStore(cfg), orchestrator.WithLogger(logger))

	opts := []console.Option{console.WithVersion(version.Get())}

	if flagTranscript != "" {
		utterances, terr := readTranscript(flagTranscript)
		if terr != nil {
			return terr
		}
		opts = append(opts, console.WithSpeech(speech.NewScripted(utterances...), cfg.Speech.Timeout))
	} else if cfg.Speech.Enabled && !flagNoVoice {
		// No capture device support is compiled into this build; the
		// console falls back to the keyboard on every prompt.
		fmt.Fprintln(os.Stderr, "voice capture is enabled in config but unavailable, using the keyboard")
	}

	ledger, lerr := state.Open(state.LedgerPath(cfg.Workspace.Dir))
	if lerr != nil {
		fmt.Fprintf(os.Stderr, "session ledger disabled: %v\n", lerr)
	} else {
		defer ledger.Close()
		opts = append(opts, console.WithSessionSink(func(stats orchestrator.SessionStats) {
			rerr := ledger.RecordSession(state.Session{
				ID:        uuid.New().String(),
				StartedAt: stats.StartedAt,
				EndedAt:   stats.EndedAt,
				Commands:  stats.Commands,
				Completed: stats.Completed,
				Failed:    stats.Failed,
			})
			if rerr != nil {
				fmt.Fprintf(os.Stderr, "record session: %v\n", rerr)
			}
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := console.New(orch, p, os.Stdin, os.Stdout, opts...)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
