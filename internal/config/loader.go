package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/asuswrt/internal/errors"
)

const (
	// ConfigFileName is the config file looked up in the current directory.
	ConfigFileName = "asuswrt.yaml"
	// GlobalConfigDir is the directory for the per-user config.
	GlobalConfigDir = ".config/asuswrt"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"

	// EnvPrefix prefixes every environment override, e.g. ASUSWRT_OUTPUT_FORMAT.
	EnvPrefix = "ASUSWRT"
	// PasswordEnv supplies the router password without writing it to disk.
	PasswordEnv = "ASUSWRT_PASSWORD"
)

// Load reads config from path with ASUSWRT_* environment overrides applied.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'asuswrt init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. asuswrt.yaml in the current directory
// 3. ~/.config/asuswrt/config.yaml
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

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if global := GlobalPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalPath returns ~/.config/asuswrt/config.yaml, or "" without a home.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads the config found by Find(explicit), or defaults when
// there is none.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Resolve returns the router called name, or the default one when name is
// empty. Unset fields are filled from DefaultRouter and the password from
// ASUSWRT_PASSWORD when the file has none.
func (c *Config) Resolve(name string) (Router, error) {
	name = strings.ToLower(name)
	if name == "" {
		name = c.Default
	}
	if name == "" && len(c.Routers) == 1 {
		for only := range c.Routers {
			name = only
		}
	}

	var r Router
	if name != "" {
		var ok bool
		r, ok = c.Routers[name]
		if !ok {
			return Router{}, errors.New(errors.ErrConfig,
				"Router '"+name+"' isn't in the config",
				routerSuggestion(c.Routers))
		}
	} else if len(c.Routers) > 1 {
		return Router{}, errors.New(errors.ErrConfig,
			"Several routers are configured and none is the default",
			"Pick one with --router or set 'default'. "+routerSuggestion(c.Routers))
	}

	return r.withDefaults(), nil
}

func (r Router) withDefaults() Router {
	d := DefaultRouter()
	if r.Host == "" {
		r.Host = d.Host
	}
	if r.Username == "" {
		r.Username = d.Username
	}
	if r.Protocol == "" {
		r.Protocol = d.Protocol
	}
	if r.Timeout == 0 {
		r.Timeout = d.Timeout
	}
	if r.Mode == "" {
		r.Mode = d.Mode
	}
	if r.Dnsmasq == "" {
		r.Dnsmasq = d.Dnsmasq
	}
	if r.WANInterface == "" {
		r.WANInterface = d.WANInterface
	}
	if r.VLANInterface == "" {
		r.VLANInterface = d.VLANInterface
	}
	if r.Password == "" {
		r.Password = os.Getenv(PasswordEnv)
	}
	return r
}

// RouterNames returns the configured router names in order.
func (c *Config) RouterNames() []string {
	names := make([]string, 0, len(c.Routers))
	for name := range c.Routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func routerSuggestion(routers map[string]Router) string {
	if len(routers) == 0 {
		return "Run 'asuswrt init' to add one."
	}
	names := make([]string, 0, len(routers))
	for name := range routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return "Available routers: " + strings.Join(names, ", ")
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "the environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}
	if cfg.Routers == nil {
		cfg.Routers = make(map[string]Router)
	}
	// Viper lowercases map keys, so router names are case-insensitive.
	cfg.Default = strings.ToLower(cfg.Default)

	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("default", "")
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("watch.interval", d.Watch.Interval)
	v.SetDefault("watch.reachable_only", d.Watch.ReachableOnly)
	v.SetDefault("watch.history", d.Watch.History)
	v.SetDefault("watch.nats_url", "")
	v.SetDefault("watch.subject", d.Watch.Subject)
}
