package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Priority policy names accepted in classify.policy.
const (
	PolicyThreshold      = "threshold"
	PolicyControllerMode = "controller-mode"
)

// Config represents the complete .pvdash.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Upstream  UpstreamConfig  `yaml:"upstream" mapstructure:"upstream"`
	Vehicles  []Vehicle       `yaml:"vehicles" mapstructure:"vehicles"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
}

// UpstreamConfig holds the base URLs of the two services the dashboard polls.
type UpstreamConfig struct {
	// Server is the telemetry server serving /api/last_event.
	Server string `yaml:"server" mapstructure:"server"`

	// Controller is the traffic controller serving /api/state.
	Controller string `yaml:"controller" mapstructure:"controller"`
}

// Vehicle is one tracked entity, shown as one panel.
type Vehicle struct {
	// ID is sent as the id query parameter to /api/last_event.
	ID string `yaml:"id" mapstructure:"id"`

	// Label is the human-readable panel title. Defaults to ID.
	Label string `yaml:"label" mapstructure:"label"`

	// Color is the trend line color as #rgb or #rrggbb.
	Color string `yaml:"color" mapstructure:"color"`
}

// ClassifyConfig selects and tunes the priority policy.
type ClassifyConfig struct {
	// Policy is "threshold" (per-vehicle distance) or "controller-mode"
	// (global, from the controller's mode field).
	Policy string `yaml:"policy" mapstructure:"policy"`

	// Threshold is the inclusive upper distance bound for priority, in meters.
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`

	// StationaryBelow is the exclusive lower distance bound. Vehicles at or
	// under it are considered parked rather than approaching.
	StationaryBelow float64 `yaml:"stationary_below" mapstructure:"stationary_below"`

	// IdleAfter marks a panel idle when no new sample arrived for this long.
	IdleAfter time.Duration `yaml:"idle_after" mapstructure:"idle_after"`
}

// ScheduleConfig controls the polling cadence.
type ScheduleConfig struct {
	// Adaptive switches to SlowInterval while a vehicle is within the
	// threshold. When false every cycle waits NormalInterval.
	Adaptive bool `yaml:"adaptive" mapstructure:"adaptive"`

	NormalInterval time.Duration `yaml:"normal_interval" mapstructure:"normal_interval"`
	SlowInterval   time.Duration `yaml:"slow_interval" mapstructure:"slow_interval"`
}

// FetchConfig controls upstream HTTP requests.
type FetchConfig struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DashboardConfig controls presentation.
type DashboardConfig struct {
	// HistorySize is the number of distance samples kept per vehicle.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address for /metrics (e.g. ":9464"). Empty disables it.
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// ExportConfig controls PNG trend chart export.
type ExportConfig struct {
	// Dir is where chart files are written.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Upstream: UpstreamConfig{
			Server:     "http://127.0.0.1:5000",
			Controller: "http://127.0.0.1:5001",
		},
		Vehicles: []Vehicle{
			{ID: "AMB001", Label: "Ambulance", Color: "#60a5fa"},
			{ID: "FIRT001", Label: "Firetruck", Color: "#22c55e"},
		},
		Classify: ClassifyConfig{
			Policy:          PolicyThreshold,
			Threshold:       200,
			StationaryBelow: 1,
			IdleAfter:       6 * time.Second,
		},
		Schedule: ScheduleConfig{
			Adaptive:       true,
			NormalInterval: 2 * time.Second,
			SlowInterval:   4 * time.Second,
		},
		Dashboard: DashboardConfig{
			HistorySize: 50,
			Color:       "auto",
		},
		Export: ExportConfig{
			Dir: "pvdash-export",
		},
	}
}

// DisplayName returns the label, falling back to the ID.
func (v Vehicle) DisplayName() string {
	if v.Label != "" {
		return v.Label
	}
	return v.ID
}
