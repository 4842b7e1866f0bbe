package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagBackend    string
	flagWorkspace  string
	flagNoVoice    bool
	flagTranscript string
)

var rootCmd = &cobra.Command{
	Use:   "voxide",
	Short: "Command-driven task runner",
	Long: `Voxide turns free-form commands into ordered task queues and
executes them one at a time.

With no arguments, launches an interactive session: type (or speak) a
command like "fix the layout on the login page", watch it get broken
into concrete tasks, and see each one run to completion. The queue and
history are persisted, so a killed session picks up where it left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Execution backend (sim or anthropic), overrides config")
	rootCmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", "", "State directory, overrides config")
	rootCmd.Flags().BoolVar(&flagNoVoice, "no-voice", false, "Disable voice capture even if enabled in config")
	rootCmd.Flags().StringVar(&flagTranscript, "transcript", "", "Replay commands from a transcript file as spoken input")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(versionCmd)
}
