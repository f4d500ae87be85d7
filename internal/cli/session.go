package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

// newRouter builds a client for a resolved router entry. Tests swap it for
// one backed by a fake connection.
var newRouter = func(r config.Router, log logger.Logger) (*asuswrt.AsusWrt, error) {
	auth, err := r.Auth()
	if err != nil {
		return nil, err
	}
	settings, err := r.Settings()
	if err != nil {
		return nil, err
	}
	return asuswrt.New(r.Host, auth, settings,
		asuswrt.WithLogger(log),
		asuswrt.WithConnectionOptions(
			connection.WithTimeout(r.Timeout),
			connection.WithLogger(log),
		),
	)
}

// readPassword prompts on stderr and reads a password without echo.
var readPassword = func(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New(errors.ErrConfig,
			"--ask-pass needs an interactive terminal",
			"Set "+config.PasswordEnv+" instead when running from scripts.")
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Couldn't read the password", "")
	}
	return string(pw), nil
}

// resolveTarget returns the router selected by --router (or the default)
// with the connection flags applied on top. --host without --router talks to
// that host with default settings and none of the configured credentials.
func resolveTarget() (string, config.Router, error) {
	cfg := appConfig
	if cfg == nil || (hostFlag != "" && routerFlag == "") {
		cfg = config.DefaultConfig()
	}
	r, err := cfg.Resolve(routerFlag)
	if err != nil {
		return "", config.Router{}, err
	}

	name := strings.ToLower(routerFlag)
	if name == "" {
		name = cfg.Default
	}
	if hostFlag != "" {
		r.Host = hostFlag
	}
	if name == "" {
		name = r.Host
	}
	if userFlag != "" {
		r.Username = userFlag
	}
	if keyFlag != "" {
		r.KeyFile = keyFlag
	}
	if portFlag != 0 {
		r.Port = portFlag
	}
	if telnetFlag {
		r.Protocol = string(connection.KindTelnet)
		r.KeyFile = ""
	}
	if askPassFlag {
		pw, err := readPassword(fmt.Sprintf("Password for %s@%s: ", r.Username, r.Host))
		if err != nil {
			return "", config.Router{}, err
		}
		r.Password = pw
	}
	return name, r, nil
}

// withRouter connects to the selected router, runs fn and disconnects.
// Ctrl+C cancels the context fn receives.
func withRouter(cmd *cobra.Command, fn func(ctx context.Context, router *asuswrt.AsusWrt) error) error {
	name, target, err := resolveTarget()
	if err != nil {
		return err
	}

	router, err := newRouter(target, logger.WithComponent(appLog, name))
	if err != nil {
		return err
	}
	defer func() {
		if err := router.Disconnect(); err != nil {
			appLog.Debug("disconnect from %s: %v", router.Description(), err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, router)
}
