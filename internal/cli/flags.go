package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/errors"
)

// ParseInterval parses a polling interval flag. An empty flag returns
// fallback; anything below config.MinWatchInterval is rejected.
func ParseInterval(flag string, fallback time.Duration) (time.Duration, error) {
	if flag == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 5s, 30s, or 1m.")
	}
	if duration < config.MinWatchInterval {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", duration),
			fmt.Sprintf("Use at least %s to avoid flooding the router shell.", config.MinWatchInterval))
	}
	return duration, nil
}

// ParseVPNID parses a VPN client slot argument.
func ParseVPNID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a VPN client number", arg),
			"Run 'asuswrt vpn list' to see the configured clients.")
	}
	return id, nil
}
