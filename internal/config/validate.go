package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rileyhilliard/pvdash/internal/errors"
)

// MinInterval is the shortest polling interval accepted.
const MinInterval = 500 * time.Millisecond

// MaxHistorySize caps the per-vehicle sample buffer.
const MaxHistorySize = 10000

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pvdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade pvdash or lower the version field.")
	}

	if err := validateBaseURL("upstream.server", cfg.Upstream.Server); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use a base URL like http://127.0.0.1:5000")
	}
	if err := validateBaseURL("upstream.controller", cfg.Upstream.Controller); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use a base URL like http://127.0.0.1:5001")
	}

	if err := validateVehicles(cfg.Vehicles); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'vehicles' section in your .pvdash.yaml.")
	}

	if err := validateClassify(cfg.Classify); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'classify' section in your .pvdash.yaml.")
	}

	if err := validateSchedule(cfg.Schedule); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'schedule' section in your .pvdash.yaml.")
	}

	if cfg.Fetch.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"fetch.timeout can't be negative",
			"Use 0 to disable the timeout, or a duration like 5s.")
	}

	if err := validateDashboard(cfg.Dashboard); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'dashboard' section in your .pvdash.yaml.")
	}

	return nil
}

// validateBaseURL checks that s is an absolute http(s) URL without a query.
func validateBaseURL(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%s '%s' isn't a valid URL: %v", field, s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s '%s' must start with http:// or https://", field, s)
	}
	if u.Host == "" {
		return fmt.Errorf("%s '%s' is missing a host", field, s)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s '%s' shouldn't include a query string", field, s)
	}
	return nil
}

// validateVehicles checks ids are present, unique and colors are well formed.
func validateVehicles(vehicles []Vehicle) error {
	if len(vehicles) == 0 {
		return fmt.Errorf("at least one vehicle is required")
	}

	seen := make(map[string]bool)
	for i, v := range vehicles {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("vehicle at position %d has an empty id", i)
		}
		if strings.ContainsAny(v.ID, " \t\n&?#/") {
			return fmt.Errorf("vehicle id '%s' can't contain whitespace or URL delimiters", v.ID)
		}
		if seen[v.ID] {
			return fmt.Errorf("vehicle id '%s' is listed twice", v.ID)
		}
		seen[v.ID] = true

		if v.Color != "" && !hexColorPattern.MatchString(v.Color) {
			return fmt.Errorf("vehicle '%s' color '%s' should look like #60a5fa", v.ID, v.Color)
		}
	}
	return nil
}

func validateClassify(c ClassifyConfig) error {
	switch strings.ToLower(c.Policy) {
	case PolicyThreshold, PolicyControllerMode:
	default:
		return fmt.Errorf("classify.policy '%s' isn't recognized (use %s or %s)", c.Policy, PolicyThreshold, PolicyControllerMode)
	}

	if c.StationaryBelow < 0 {
		return fmt.Errorf("classify.stationary_below can't be negative")
	}
	if c.Threshold <= c.StationaryBelow {
		return fmt.Errorf("classify.threshold (%.1f) must be above classify.stationary_below (%.1f)", c.Threshold, c.StationaryBelow)
	}
	if c.IdleAfter <= 0 {
		return fmt.Errorf("classify.idle_after must be positive")
	}
	return nil
}

func validateSchedule(s ScheduleConfig) error {
	if s.NormalInterval < MinInterval {
		return fmt.Errorf("schedule.normal_interval %s is too short (minimum %s)", s.NormalInterval, MinInterval)
	}
	if s.Adaptive && s.SlowInterval < MinInterval {
		return fmt.Errorf("schedule.slow_interval %s is too short (minimum %s)", s.SlowInterval, MinInterval)
	}
	return nil
}

func validateDashboard(d DashboardConfig) error {
	if d.HistorySize < 1 || d.HistorySize > MaxHistorySize {
		return fmt.Errorf("dashboard.history_size must be between 1 and %d, got %d", MaxHistorySize, d.HistorySize)
	}
	switch d.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("dashboard.color '%s' isn't valid (use auto, always, or never)", d.Color)
	}
	return nil
}
