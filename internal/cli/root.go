package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/logger"
	"github.com/rileyhilliard/pvdash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "pvdash",
	Short: "Adaptive polling dashboard for priority vehicle telemetry",
	Long: `pvdash polls a telemetry server and a traffic controller and shows one
panel per tracked vehicle: distance, bearing, direction and a trend of recent
distances. Vehicles inside the priority threshold are highlighted, and the
polling cadence slows while a vehicle is near.

Examples:
  pvdash init
  pvdash watch
  pvdash watch --plain
  pvdash status --json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .pvdash.yaml, then ~/.config/pvdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append debug logs to this file")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits with the appropriate status.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree and maps errors to exit codes.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	msg := err.Error()
	if isUnknownCommandError(err) {
		msg += "\nRun 'pvdash --help' for usage."
	}
	fmt.Fprintln(stderr, strings.TrimRight(msg, "\n"))
	return 1
}

// isUnknownCommandError reports cobra's usage errors.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// openLogger returns the logger for a command. With --log-file the logs are
// appended to that file, otherwise they go to stderr unless quiet is set.
// The returned close func is never nil.
func openLogger(prefix string, quiet bool) (logger.Logger, func(), error) {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, func() {}, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't open log file "+logFile,
				"Check the path exists and is writable")
		}
		return logger.NewWriterLogger(f, prefix), func() { _ = f.Close() }, nil
	}
	if quiet {
		// The alt screen owns the terminal.
		return logger.Noop(), func() {}, nil
	}
	return logger.NewEnvLogger(prefix), func() {}, nil
}
