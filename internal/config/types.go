package config

import (
	"time"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete config.yaml file.
type Config struct {
	Version int               `yaml:"version" mapstructure:"version"`
	Routers map[string]Router `yaml:"routers" mapstructure:"routers"`
	// Default names the router used when --router is not given.
	Default string       `yaml:"default" mapstructure:"default"`
	Output  OutputConfig `yaml:"output" mapstructure:"output"`
	Log     LogConfig    `yaml:"log" mapstructure:"log"`
	Watch   WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// Router holds the connection and polling settings for one router.
type Router struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Username string `yaml:"username" mapstructure:"username"`
	// Password is better supplied through ASUSWRT_PASSWORD or --ask-pass.
	Password   string `yaml:"password,omitempty" mapstructure:"password"`
	KeyFile    string `yaml:"ssh_key,omitempty" mapstructure:"ssh_key"`
	Passphrase string `yaml:"passphrase,omitempty" mapstructure:"passphrase"`
	// Protocol is "ssh" or "telnet".
	Protocol   string        `yaml:"protocol" mapstructure:"protocol"`
	Port       int           `yaml:"port,omitempty" mapstructure:"port"`
	KnownHosts string        `yaml:"known_hosts,omitempty" mapstructure:"known_hosts"`
	Timeout    time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`

	// Mode is "router" or "ap".
	Mode          string        `yaml:"mode" mapstructure:"mode"`
	RequireIP     bool          `yaml:"require_ip" mapstructure:"require_ip"`
	Dnsmasq       string        `yaml:"dnsmasq,omitempty" mapstructure:"dnsmasq"`
	WANInterface  string        `yaml:"wan_interface,omitempty" mapstructure:"wan_interface"`
	VLANInterface string        `yaml:"vlan_interface,omitempty" mapstructure:"vlan_interface"`
	RateInterval  time.Duration `yaml:"rate_interval,omitempty" mapstructure:"rate_interval"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Format is "table", "json" or "yaml".
	Format string `yaml:"format" mapstructure:"format"`

	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// LogConfig controls the zerolog backend.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	// JSON forces JSON lines even on a terminal.
	JSON bool `yaml:"json" mapstructure:"json"`
}

// WatchConfig controls the live dashboard and snapshot publishing.
type WatchConfig struct {
	Interval      time.Duration `yaml:"interval" mapstructure:"interval"`
	ReachableOnly bool          `yaml:"reachable_only" mapstructure:"reachable_only"`
	// History is the number of samples kept for sparklines.
	History int `yaml:"history" mapstructure:"history"`
	// NATSURL enables publishing every snapshot when set.
	NATSURL string `yaml:"nats_url,omitempty" mapstructure:"nats_url"`
	Subject string `yaml:"subject" mapstructure:"subject"`
}

// DefaultRouter returns a router entry with every optional field set.
func DefaultRouter() Router {
	return Router{
		Host:          "192.168.1.1",
		Username:      "admin",
		Protocol:      string(connection.KindSSH),
		Timeout:       connection.DefaultTimeout,
		Mode:          string(asuswrt.ModeRouter),
		Dnsmasq:       commands.DefaultDnsmasqDir,
		WANInterface:  commands.DefaultWANInterface,
		VLANInterface: commands.DefaultVLANInterface,
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Routers: make(map[string]Router),
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
		},
		Log: LogConfig{
			Level: "warn",
		},
		Watch: WatchConfig{
			Interval: 5 * time.Second,
			History:  60,
			Subject:  "asuswrt.snapshot",
		},
	}
}

// Auth converts the router entry into transport settings.
func (r Router) Auth() (connection.AuthConfig, error) {
	kind, err := connection.ParseKind(r.Protocol)
	if err != nil {
		return connection.AuthConfig{}, err
	}
	return connection.AuthConfig{
		Username:   r.Username,
		Password:   r.Password,
		KeyFile:    ExpandTilde(r.KeyFile),
		Passphrase: r.Passphrase,
		Kind:       kind,
		Port:       r.Port,
		KnownHosts: ExpandTilde(r.KnownHosts),
	}, nil
}

// Settings converts the router entry into polling settings.
func (r Router) Settings() (asuswrt.Settings, error) {
	mode, err := asuswrt.ParseMode(r.Mode)
	if err != nil {
		return asuswrt.Settings{}, err
	}
	return asuswrt.Settings{
		RequireIP:     r.RequireIP,
		Mode:          mode,
		Dnsmasq:       r.Dnsmasq,
		WANInterface:  r.WANInterface,
		VLANInterface: r.VLANInterface,
		RateInterval:  r.RateInterval,
	}, nil
}
