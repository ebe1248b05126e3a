// Package cli implements the pvdash command-line interface.
//
// Each Cobra command delegates to a small function in this package that
// loads the config, builds a dashboard engine and hands it to the
// presentation layer.
//
// # Command Structure
//
// The root command is "pvdash" with subcommands:
//
//	pvdash watch        - Live dashboard (TUI, or one line per cycle with --plain)
//	pvdash status       - Poll once and print the status table or JSON
//	pvdash init         - Create .pvdash.yaml
//	pvdash version      - Print build information
//	pvdash completion   - Generate shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --no-color, --log-file) are defined on the root
// command. --log-file matters for watch: the TUI owns the terminal, so
// logs are dropped unless they go to a file.
//
// # Exit Codes
//
// Commands return structured errors from internal/errors. run prints them
// and exits 1. A command that has already reported its outcome (status
// --json) returns an ExitError instead so nothing is printed twice.
package cli
