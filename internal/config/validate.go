package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

// MinWatchInterval keeps the dashboard from flooding the router shell.
const MinWatchInterval = time.Second

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but asuswrt only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade asuswrt to read it.")
	}

	for _, name := range cfg.RouterNames() {
		if err := validateRouter(name, cfg.Routers[name]); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'routers' section of your config.")
		}
	}

	if cfg.Default != "" {
		if _, ok := cfg.Routers[cfg.Default]; !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Default router '%s' doesn't exist", cfg.Default),
				"Did you rename or remove it? "+routerSuggestion(cfg.Routers))
		}
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section of your config.")
	}
	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section of your config.")
	}
	if err := validateWatch(cfg.Watch); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'watch' section of your config.")
	}

	return nil
}

// validateRouter checks a single router entry. Empty fields are allowed and
// take their defaults at Resolve time.
func validateRouter(name string, r Router) error {
	if strings.ContainsAny(name, " /@") {
		return fmt.Errorf("router name '%s' can't contain spaces, '/' or '@'", name)
	}
	if strings.Contains(r.Host, "@") {
		return fmt.Errorf("router '%s': host '%s' looks like user@host - put the user in 'username'", name, r.Host)
	}
	if _, err := connection.ParseKind(r.Protocol); err != nil {
		return fmt.Errorf("router '%s': protocol '%s' must be 'ssh' or 'telnet'", name, r.Protocol)
	}
	if _, err := asuswrt.ParseMode(r.Mode); err != nil {
		return fmt.Errorf("router '%s': mode '%s' must be 'router' or 'ap'", name, r.Mode)
	}
	if r.Port < 0 || r.Port > 65535 {
		return fmt.Errorf("router '%s': port %d is out of range", name, r.Port)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("router '%s': timeout can't be negative", name)
	}
	if r.RateInterval < 0 {
		return fmt.Errorf("router '%s': rate_interval can't be negative", name)
	}
	if r.KeyFile != "" && strings.EqualFold(r.Protocol, string(connection.KindTelnet)) {
		return fmt.Errorf("router '%s': ssh_key is set but protocol is telnet", name)
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	switch o.Format {
	case "", "table", "json", "yaml":
	default:
		return fmt.Errorf("output format '%s' must be table, json or yaml", o.Format)
	}
	switch o.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("output color '%s' must be auto, always or never", o.Color)
	}
	return nil
}

func validateLog(l LogConfig) error {
	if l.Level == "" {
		return nil
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(l.Level)); err != nil {
		return fmt.Errorf("log level '%s' isn't one of trace, debug, info, warn, error", l.Level)
	}
	return nil
}

func validateWatch(w WatchConfig) error {
	if w.Interval != 0 && w.Interval < MinWatchInterval {
		return fmt.Errorf("watch interval %s is below the %s minimum", w.Interval, MinWatchInterval)
	}
	if w.History < 0 {
		return fmt.Errorf("watch history can't be negative")
	}
	if w.NATSURL != "" && strings.TrimSpace(w.Subject) == "" {
		return fmt.Errorf("watch subject is required when nats_url is set")
	}
	if strings.ContainsAny(w.Subject, " \t>*") {
		return fmt.Errorf("watch subject '%s' must be a literal NATS subject", w.Subject)
	}
	return nil
}
