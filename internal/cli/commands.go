package cli

import (
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	watchPlainFlag     bool
	watchExportDirFlag string
	watchMaxCycles     int
	watchMetricsFlag   string
	statusJSONFlag     bool
	initForce          bool
	initDefaults       bool
)

// watchCmd starts the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of all configured vehicles",
	Long: `Poll the telemetry server and traffic controller and render one panel per
vehicle with its distance trend.

The dashboard is a full-screen TUI when stdout is a terminal. With --plain,
or when output is redirected, one status line is printed per poll cycle.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Poll now (if no cycle is running)
  e           Export trend charts as PNG
  up/k        Select previous vehicle
  down/j      Select next vehicle
  Enter       Show raw payloads of the selected vehicle
  Esc         Back / close
  ?           Show help

Examples:
  pvdash watch
  pvdash watch --plain --cycles 10
  pvdash watch --metrics :9464
  pvdash watch --plain --export-dir charts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd, WatchOptions{
			Plain:     watchPlainFlag,
			ExportDir: watchExportDirFlag,
			MaxCycles: watchMaxCycles,
			Metrics:   watchMetricsFlag,
		})
	},
}

// statusCmd runs one poll cycle and reports it
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll once and print the dashboard status",
	Long: `Run a single poll cycle and print the aggregate status and each
vehicle's reading.

Exits with status 1 when the upstreams could not be reached.

Examples:
  pvdash status
  pvdash status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd, statusJSONFlag)
	},
}

// initCmd creates a new .pvdash.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .pvdash.yaml configuration",
	Long: `Initialize a new pvdash configuration file.

Creates a .pvdash.yaml file in the current directory. Prompts for the
upstream URLs, the tracked vehicles and the priority policy.

Examples:
  pvdash init
  pvdash init --defaults
  pvdash init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Overwrite:      initForce,
			NonInteractive: initDefaults,
			Out:            cmd.OutOrStdout(),
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for pvdash.

Examples:
  # Bash
  pvdash completion bash > /etc/bash_completion.d/pvdash

  # Zsh
  pvdash completion zsh > "${fpath[1]}/_pvdash"

  # Fish
  pvdash completion fish > ~/.config/fish/completions/pvdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// watch command flags
	watchCmd.Flags().BoolVar(&watchPlainFlag, "plain", false, "print one line per cycle instead of the TUI")
	watchCmd.Flags().StringVar(&watchExportDirFlag, "export-dir", "", "write PNG trend charts here on exit (plain mode)")
	watchCmd.Flags().IntVar(&watchMaxCycles, "cycles", 0, "stop after this many cycles (plain mode, 0 = forever)")
	watchCmd.Flags().StringVar(&watchMetricsFlag, "metrics", "", "serve Prometheus metrics on this address (overrides metrics.listen)")

	// status command flags
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "output in JSON format")

	// init command flags
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "write the default config without prompting")

	// Register all commands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
