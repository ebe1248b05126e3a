package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/dashboard"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/export"
	"github.com/rileyhilliard/pvdash/internal/logger"
	"github.com/rileyhilliard/pvdash/internal/metrics"
	"github.com/rileyhilliard/pvdash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// WatchOptions holds the watch command flags.
type WatchOptions struct {
	Plain     bool
	ExportDir string
	MaxCycles int
	Metrics   string
}

// watchCommand runs the live dashboard until interrupted.
func watchCommand(cmd *cobra.Command, opts WatchOptions) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if !noColor {
		ui.ApplyColorMode(cfg.Dashboard.Color)
	}

	out := cmd.OutOrStdout()
	plain := opts.Plain || !isTerminal(out)

	log, closeLog, err := openLogger("[watch]", !plain)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engineOpts []dashboard.EngineOption
	if listen := metricsAddr(cfg, opts); listen != "" {
		reg := prometheus.NewRegistry()
		engineOpts = append(engineOpts, dashboard.WithObserver(metrics.New(reg)))
		go func() {
			if err := metrics.Serve(ctx, listen, reg, log); err != nil {
				log.Error("metrics server on %s: %v", listen, err)
			}
		}()
	}

	engine, err := newEngine(cfg, log, engineOpts...)
	if err != nil {
		return err
	}

	exportOpts := export.Options{Threshold: cfg.Classify.Threshold}
	if plain {
		return runPlain(ctx, engine, out, log, opts, exportOpts)
	}

	model := dashboard.NewModel(ctx, engine)
	model.SetExporter(export.New(cfg.Export.Dir, exportOpts))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Dashboard exited unexpectedly",
			"Try --plain if your terminal does not support the full-screen view")
	}
	return nil
}

// runPlain drives the engine without a TUI, then exports if asked to.
func runPlain(ctx context.Context, engine *dashboard.Engine, out io.Writer, log logger.Logger,
	opts WatchOptions, exportOpts export.Options) error {
	loop := dashboard.NewLoop(engine, out)
	loop.SetLogger(log)
	loop.SetMaxCycles(opts.MaxCycles)
	if err := loop.Run(ctx); err != nil {
		return err
	}

	if opts.ExportDir == "" {
		return nil
	}
	at := time.Now()
	if last := engine.Last(); last != nil {
		at = last.Finished
	}
	paths, err := export.WritePNG(opts.ExportDir, engine.Series(), at, exportOpts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(out, "%s wrote %s\n", ui.SymbolSuccess, p)
	}
	return nil
}

// metricsAddr picks the --metrics flag over metrics.listen.
func metricsAddr(cfg *config.Config, opts WatchOptions) string {
	if opts.Metrics != "" {
		return opts.Metrics
	}
	return cfg.Metrics.Listen
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
