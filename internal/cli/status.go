package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/dashboard"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
	"github.com/rileyhilliard/pvdash/internal/ui"
	"github.com/spf13/cobra"
)

// StatusOutput represents the JSON output for the status command.
type StatusOutput struct {
	Status     string           `json:"status"`
	Policy     string           `json:"policy"`
	Nearest    *float64         `json:"nearest_m"`
	NextDelay  string           `json:"next_delay"`
	Controller ControllerStatus `json:"controller"`
	Vehicles   []VehicleStatus  `json:"vehicles"`
}

// ControllerStatus is the controller part of the status output.
type ControllerStatus struct {
	Mode      string `json:"mode"`
	Direction string `json:"direction"`
}

// VehicleStatus represents a single vehicle's reading.
type VehicleStatus struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Distance  *float64 `json:"distance_m"`
	Bearing   *float64 `json:"bearing"`
	Direction string   `json:"direction"`
	Priority  bool     `json:"priority"`
	Idle      bool     `json:"idle"`
}

// statusCommand implements the status command logic.
func statusCommand(cmd *cobra.Command, jsonOut bool) error {
	out := cmd.OutOrStdout()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return reportStatusError(out, jsonOut, err)
	}
	ui.ApplyColorMode(cfg.Dashboard.Color)

	log, closeLog, err := openLogger("[status]", jsonOut)
	if err != nil {
		return reportStatusError(out, jsonOut, err)
	}
	defer closeLog()

	engine, err := newEngine(cfg, log)
	if err != nil {
		return reportStatusError(out, jsonOut, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var spin *ui.Spinner
	if !jsonOut && isTerminal(cmd.ErrOrStderr()) {
		spin = ui.NewSpinner("Polling "+cfg.Upstream.Server, cmd.ErrOrStderr())
		spin.Start()
	}

	outcome := engine.Cycle(ctx)

	if spin != nil {
		if outcome.OK() {
			spin.Success()
		} else {
			spin.Fail(errors.Summary(outcome.Err))
		}
	}

	if !outcome.OK() {
		return reportStatusError(out, jsonOut, outcome.Err)
	}

	if jsonOut {
		if err := WriteJSONSuccess(out, buildStatusOutput(engine, outcome)); err != nil {
			return err
		}
		return nil
	}

	source := cfg.Upstream.Server
	if cfgPath != "" {
		source = cfgPath + " | " + source
	}
	ui.PrintHeader(out, ui.HeaderInfo{
		Version: formatVersion(version),
		Source:  source,
	})
	renderStatusText(out, cfg, engine, outcome)
	return nil
}

// reportStatusError prints err and returns an exit error. In JSON mode the
// error goes into the envelope instead of stderr.
func reportStatusError(out io.Writer, jsonOut bool, err error) error {
	if jsonOut {
		if werr := WriteJSONFromError(out, err); werr != nil {
			return werr
		}
		return errors.NewExitError(1)
	}
	return err
}

// buildStatusOutput converts a finished cycle into the JSON payload.
func buildStatusOutput(engine *dashboard.Engine, o *dashboard.Outcome) StatusOutput {
	output := StatusOutput{
		Status:    o.Status.String(),
		Policy:    engine.Policy().Name(),
		NextDelay: o.NextDelay.String(),
		Controller: ControllerStatus{
			Mode:      o.Controller.Mode,
			Direction: o.Controller.Direction,
		},
		Vehicles: make([]VehicleStatus, 0, len(o.Panels)),
	}
	if !math.IsInf(o.Nearest, 0) {
		nearest := o.Nearest
		output.Nearest = &nearest
	}

	for _, s := range o.Panels {
		v := VehicleStatus{
			ID:        s.ID,
			Label:     s.Label,
			Direction: s.Direction,
			Priority:  s.Priority,
			Idle:      s.Idle,
		}
		if s.Distance.Valid {
			d := s.Distance.Value
			v.Distance = &d
		}
		if s.Bearing.Valid {
			b := s.Bearing.Value
			v.Bearing = &b
		}
		output.Vehicles = append(output.Vehicles, v)
	}
	return output
}

// renderStatusText prints the badge, controller line and vehicle table.
func renderStatusText(w io.Writer, cfg *config.Config, engine *dashboard.Engine, o *dashboard.Outcome) {
	labelStyle := lipgloss.NewStyle().Foreground(ui.ColorSecondary)

	nearest := dashboard.Placeholder
	if !math.IsInf(o.Nearest, 0) {
		nearest = dashboard.FormatDistance(o.Nearest)
	}
	fmt.Fprintf(w, "%s %s\n", dashboard.RenderBadge(o.Status),
		labelStyle.Render(fmt.Sprintf("%s policy | nearest %s | next poll in %s",
			engine.Policy().Name(), nearest, dashboard.FormatDelay(o.NextDelay))))

	mode := o.Controller.Mode
	if mode == "" {
		mode = dashboard.Placeholder
	}
	direction := o.Controller.Direction
	if direction == "" {
		direction = dashboard.Placeholder
	}
	fmt.Fprintf(w, "%s %s  %s %s\n\n",
		labelStyle.Render("controller"), mode,
		labelStyle.Render("direction"), direction)

	rows := make([]ui.VehicleRow, 0, len(o.Panels))
	for _, s := range o.Panels {
		rows = append(rows, ui.VehicleRow{
			State:     vehicleRowState(s),
			ID:        s.ID,
			Label:     s.Label,
			Distance:  dashboard.FormatNumberDistance(s.Distance),
			Bearing:   dashboard.FormatBearing(s.Bearing),
			Direction: s.Direction,
		})
	}
	fmt.Fprint(w, ui.RenderVehicleTable(rows))

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.RenderSimpleTable(
		[]ui.TableColumn{{Title: "UPSTREAM", Width: 12}, {Title: "URL", Width: 44}},
		[][]string{
			{"telemetry", strings.TrimRight(cfg.Upstream.Server, "/") + telemetry.LastEventPath},
			{"controller", strings.TrimRight(cfg.Upstream.Controller, "/") + telemetry.ControllerStatePath},
		}))
	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("cycle %s took %s", o.ID, o.Duration().Round(time.Millisecond))))
}

func vehicleRowState(s dashboard.PanelState) string {
	switch {
	case !s.Distance.Valid:
		return "none"
	case s.Idle:
		return "idle"
	case s.Priority:
		return "priority"
	default:
		return "ok"
	}
}
