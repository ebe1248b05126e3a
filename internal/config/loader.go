package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".pvdash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/pvdash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'pvdash init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .pvdash.yaml in current directory
// 3. ~/.config/pvdash/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if not found.
// The returned path is empty when defaults were used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	setDefaults(v)

	// mapstructure decodes into existing slice elements, which would leak
	// default labels and colors into user-supplied vehicles.
	if v.IsSet("vehicles") {
		cfg.Vehicles = nil
	}

	// viper's default decode hooks turn "2s" into time.Duration.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	for i := range cfg.Vehicles {
		if cfg.Vehicles[i].Label == "" {
			cfg.Vehicles[i].Label = cfg.Vehicles[i].ID
		}
	}

	return cfg, nil
}

// setDefaults registers scalar defaults so partially specified sections
// keep the remaining values.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("upstream.server", d.Upstream.Server)
	v.SetDefault("upstream.controller", d.Upstream.Controller)
	v.SetDefault("classify.policy", d.Classify.Policy)
	v.SetDefault("classify.threshold", d.Classify.Threshold)
	v.SetDefault("classify.stationary_below", d.Classify.StationaryBelow)
	v.SetDefault("classify.idle_after", d.Classify.IdleAfter.String())
	v.SetDefault("schedule.adaptive", d.Schedule.Adaptive)
	v.SetDefault("schedule.normal_interval", d.Schedule.NormalInterval.String())
	v.SetDefault("schedule.slow_interval", d.Schedule.SlowInterval.String())
	v.SetDefault("fetch.timeout", "0s")
	v.SetDefault("dashboard.history_size", d.Dashboard.HistorySize)
	v.SetDefault("dashboard.color", d.Dashboard.Color)
	v.SetDefault("export.dir", d.Export.Dir)
}
