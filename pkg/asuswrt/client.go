// Package asuswrt polls an ASUS-WRT router for connected devices, traffic,
// temperatures, NVRAM values and VPN client state.
//
// An AsusWrt owns one connection and runs router commands over it one at a
// time. Every accessor is best effort: router-side failures come back as
// structured errors from internal/errors and never panic.
package asuswrt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

// Mode is the role the router plays on the network.
type Mode string

const (
	ModeRouter Mode = "router"
	// ModeAP is access point mode. The device is not the DHCP server, so
	// leases are not read.
	ModeAP Mode = "ap"
)

// ParseMode maps a config value to a Mode. Empty means router.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRouter:
		return ModeRouter, nil
	case ModeAP:
		return ModeAP, nil
	default:
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown router mode '%s'", s),
			"Use 'router' or 'ap'")
	}
}

// Settings tune how the router is read.
type Settings struct {
	// RequireIP drops devices without a known IP from GetConnectedDevices.
	RequireIP bool
	Mode      Mode
	// Dnsmasq is the directory holding dnsmasq.leases.
	Dnsmasq       string
	WANInterface  string
	VLANInterface string
	// RateInterval is the minimum time between two transfer rate samples.
	// Calls inside the window return the previous rates. Zero disables it.
	RateInterval time.Duration
}

// DefaultSettings returns the settings used for zero-valued fields.
func DefaultSettings() Settings {
	return Settings{
		Mode:          ModeRouter,
		Dnsmasq:       commands.DefaultDnsmasqDir,
		WANInterface:  commands.DefaultWANInterface,
		VLANInterface: commands.DefaultVLANInterface,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.Mode == "" {
		s.Mode = d.Mode
	}
	if s.Dnsmasq == "" {
		s.Dnsmasq = d.Dnsmasq
	}
	if s.WANInterface == "" {
		s.WANInterface = d.WANInterface
	}
	if s.VLANInterface == "" {
		s.VLANInterface = d.VLANInterface
	}
	return s
}

// AsusWrt is a client for one router.
type AsusWrt struct {
	conn     connection.Connection
	settings Settings
	log      logger.Logger
	now      func() time.Time

	rateMu sync.Mutex
	rates  rateState

	probeMu sync.Mutex
	probes  map[string]commands.TempCommand
}

type options struct {
	log      logger.Logger
	now      func() time.Time
	conn     connection.Connection
	connOpts []connection.Option
}

// Option customizes an AsusWrt.
type Option func(*options)

// WithLogger sets the logger for the client and its connection.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock replaces time.Now for rate sampling.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithConnection uses conn instead of dialing the router from the auth
// config. Connection options are ignored when it is set.
func WithConnection(conn connection.Connection) Option {
	return func(o *options) {
		o.conn = conn
	}
}

// WithConnectionOptions passes options through to connection.New.
func WithConnectionOptions(opts ...connection.Option) Option {
	return func(o *options) {
		o.connOpts = append(o.connOpts, opts...)
	}
}

// New returns a client for host. Nothing is dialed until the first command.
func New(host string, auth connection.AuthConfig, settings Settings, opts ...Option) (*AsusWrt, error) {
	o := options{
		log: logger.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	settings = settings.withDefaults()
	if _, err := ParseMode(string(settings.Mode)); err != nil {
		return nil, err
	}

	conn := o.conn
	if conn == nil {
		connOpts := append([]connection.Option{connection.WithLogger(o.log)}, o.connOpts...)
		var err error
		conn, err = connection.New(host, auth, connOpts...)
		if err != nil {
			return nil, err
		}
	}

	return &AsusWrt{
		conn:     conn,
		settings: settings,
		log:      o.log,
		now:      o.now,
		probes:   make(map[string]commands.TempCommand),
	}, nil
}

// Settings returns the effective settings.
func (a *AsusWrt) Settings() Settings {
	return a.settings
}

// IsConnected reports whether the underlying session is open.
func (a *AsusWrt) IsConnected() bool {
	return a.conn.IsConnected()
}

// Disconnect closes the session. The next accessor call reconnects.
func (a *AsusWrt) Disconnect() error {
	return a.conn.Disconnect()
}

// Description identifies the router in logs.
func (a *AsusWrt) Description() string {
	return a.conn.Description()
}

// run executes command and reports whether it produced any non-blank line.
func (a *AsusWrt) run(ctx context.Context, command string) ([]string, bool, error) {
	lines, err := a.conn.RunCommand(ctx, command)
	if err != nil {
		return nil, false, err
	}
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return lines, true, nil
		}
	}
	return lines, false, nil
}

// firstLine returns the first non-blank line.
func firstLine(lines []string) string {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
