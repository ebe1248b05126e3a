package cli

import (
	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/dashboard"
	"github.com/rileyhilliard/pvdash/internal/logger"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
)

// loadConfig finds, loads and validates the config. Without a config file
// the defaults are used; path is empty in that case.
func loadConfig() (cfg *config.Config, path string, err error) {
	cfg, path, err = config.LoadOrDefault(Config())
	if err != nil {
		return nil, path, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// newEngine wires the HTTP fetcher into a dashboard engine.
func newEngine(cfg *config.Config, log logger.Logger, opts ...dashboard.EngineOption) (*dashboard.Engine, error) {
	fetcher := telemetry.NewFetcher(cfg.Upstream.Server, cfg.Upstream.Controller, cfg.Fetch.Timeout)
	fetcher.SetLogger(log)

	opts = append([]dashboard.EngineOption{dashboard.WithLogger(log)}, opts...)
	return dashboard.NewEngine(cfg, fetcher, opts...)
}
