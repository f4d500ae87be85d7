package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

// NewConfigChecks returns the checks for the config file at path, or the
// one Find would pick when path is empty.
func NewConfigChecks(path string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: path},
		&ConfigSchemaCheck{ConfigPath: path},
	}
}

// ConfigFileCheck verifies that a config file exists.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return failFromError(err)
	}
	if path == "" {
		return warn("No config file found, only flags and ASUSWRT_* variables apply",
			"Run 'asuswrt init' to save a router")
	}
	return pass("Config file: " + path)
}

// ConfigSchemaCheck loads and validates the config file.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return "CONFIG" }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, path, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return failFromError(err)
	}
	if path == "" {
		return pass("Using built-in defaults")
	}
	if err := config.Validate(cfg); err != nil {
		return failFromError(err)
	}

	names := cfg.RouterNames()
	if len(names) == 0 {
		return warn("No routers configured", "Run 'asuswrt init' to add one")
	}
	if cfg.Default == "" && len(names) > 1 {
		return warn(fmt.Sprintf("%d routers configured but none is the default", len(names)),
			"Set 'default' or pass --router every time")
	}
	return pass("Routers: " + strings.Join(names, ", "))
}

// CredentialsCheck verifies that the router entry carries a usable way to
// log in.
type CredentialsCheck struct {
	Router config.Router
}

func (c *CredentialsCheck) Name() string     { return "credentials" }
func (c *CredentialsCheck) Category() string { return "AUTH" }

func (c *CredentialsCheck) Run(context.Context) CheckResult {
	r := c.Router
	target := r.Username + "@" + r.Host
	kind, err := connection.ParseKind(r.Protocol)
	if err != nil {
		return failFromError(err)
	}

	if kind == connection.KindTelnet {
		if r.Password == "" {
			return fail("Telnet to "+target+" needs a password",
				"Set ASUSWRT_PASSWORD or pass --ask-pass")
		}
		return warn("Telnet sends the password to "+target+" in clear text",
			"Enable SSH on the router and set protocol: ssh")
	}

	if r.KeyFile != "" {
		return checkKeyFile(config.ExpandTilde(r.KeyFile))
	}
	if r.Password != "" {
		return pass("Password set for " + target)
	}
	if os.Getenv("SSH_AUTH_SOCK") != "" {
		return pass("Using the SSH agent for " + target)
	}
	return fail("No password, key or SSH agent for "+target,
		"Set ASUSWRT_PASSWORD, pass --ask-pass, or add ssh_key to the router entry")
}

func checkKeyFile(path string) CheckResult {
	info, err := os.Stat(path)
	if err != nil {
		return fail("SSH key not readable: "+path, "Check ssh_key in your config")
	}
	if info.Mode().Perm()&0o077 != 0 {
		return warn(fmt.Sprintf("SSH key %s is accessible by other users (%04o)", path, info.Mode().Perm()),
			"Fix with: chmod 600 "+path)
	}
	return pass("SSH key: " + path)
}

// failFromError turns a structured error into a failed result, keeping its
// suggestion.
func failFromError(err error) CheckResult {
	msg, suggestion := describe(err)
	return fail(msg, suggestion)
}

func describe(err error) (msg, suggestion string) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Message, e.Suggestion
	}
	return err.Error(), ""
}

// FromError reports err as a failed check, for steps that fail before a
// check can be built.
func FromError(name, category string, err error) CheckResult {
	res := failFromError(err)
	res.Name, res.Category = name, category
	return res
}
