package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts, write defaults
	Out            io.Writer
}

// vehiclePalette colors vehicles entered at the prompt, in order.
var vehiclePalette = []string{"#60a5fa", "#22c55e", "#f97316", "#e879f9", "#facc15", "#2dd4bf"}

// Init creates a new .pvdash.yaml configuration file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	configPath := filepath.Join(".", config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	header := `# pvdash configuration
# Run 'pvdash watch' for the live dashboard or 'pvdash status' for one poll

`
	if err := os.WriteFile(configPath, []byte(header+string(data)), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  pvdash status  - Poll once and check the upstreams")
	fmt.Fprintln(out, "  pvdash watch   - Open the live dashboard")
	return nil
}

// promptConfig asks for the upstreams, vehicles and policy, starting from cfg.
func promptConfig(cfg *config.Config) error {
	server := cfg.Upstream.Server
	controller := cfg.Upstream.Controller
	vehicles := formatVehicleList(cfg.Vehicles)
	policy := cfg.Classify.Policy
	threshold := strconv.FormatFloat(cfg.Classify.Threshold, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telemetry server URL").
				Description("Serves /api/last_event").
				Value(&server).
				Validate(requireNonEmpty("server URL")),
			huh.NewInput().
				Title("Traffic controller URL").
				Description("Serves /api/state").
				Value(&controller).
				Validate(requireNonEmpty("controller URL")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Vehicles").
				Description("Comma-separated ID or ID:Label entries").
				Placeholder("AMB001:Ambulance,FIRT001:Firetruck").
				Value(&vehicles).
				Validate(func(s string) error {
					_, err := parseVehicleList(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Priority policy").
				Options(
					huh.NewOption("Distance threshold per vehicle", config.PolicyThreshold),
					huh.NewOption("Controller mode (global)", config.PolicyControllerMode),
				).
				Value(&policy),
			huh.NewInput().
				Title("Priority threshold (meters)").
				Description("Also drives the slow polling cadence").
				Value(&threshold).
				Validate(func(s string) error {
					_, err := parseThreshold(s)
					return err
				}),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --defaults")
	}

	cfg.Upstream.Server = strings.TrimSpace(server)
	cfg.Upstream.Controller = strings.TrimSpace(controller)
	cfg.Classify.Policy = policy

	var err error
	if cfg.Vehicles, err = parseVehicleList(vehicles); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid vehicle list", "")
	}
	if cfg.Classify.Threshold, err = parseThreshold(threshold); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid threshold", "")
	}
	return nil
}

func requireNonEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// parseVehicleList parses "AMB001:Ambulance,FIRT001" into vehicles, coloring
// them from the palette.
func parseVehicleList(s string) ([]config.Vehicle, error) {
	var vehicles []config.Vehicle
	seen := make(map[string]bool)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, label, _ := strings.Cut(entry, ":")
		id = strings.TrimSpace(id)
		label = strings.TrimSpace(label)
		if id == "" {
			return nil, fmt.Errorf("vehicle entry %q has no id", entry)
		}
		if seen[id] {
			return nil, fmt.Errorf("vehicle %q listed twice", id)
		}
		seen[id] = true
		if label == "" {
			label = id
		}
		vehicles = append(vehicles, config.Vehicle{
			ID:    id,
			Label: label,
			Color: vehiclePalette[len(vehicles)%len(vehiclePalette)],
		})
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("at least one vehicle is required")
	}
	return vehicles, nil
}

func formatVehicleList(vehicles []config.Vehicle) string {
	parts := make([]string, len(vehicles))
	for i, v := range vehicles {
		parts[i] = v.ID
		if v.Label != "" && v.Label != v.ID {
			parts[i] += ":" + v.Label
		}
	}
	return strings.Join(parts, ",")
}

func parseThreshold(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("threshold must be a number")
	}
	if v <= 0 {
		return 0, fmt.Errorf("threshold must be positive")
	}
	return v, nil
}
