package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/internal/util"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

// Command-specific flags
var (
	initName         string
	initMode         string
	initForce        bool
	initMakeDefault  bool
	initSavePassword bool
	initVerify       bool
)

// initCmd writes a router entry to the config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Add a router to the config file",
	Long: `Add a router to ~/.config/asuswrt/config.yaml (or --config), creating the
file if needed. Connection details come from the global flags.

The password is only written with --save-password; otherwise supply it at
run time with ASUSWRT_PASSWORD or --ask-pass.

Examples:
  asuswrt init --host 192.168.1.1 --user admin --key ~/.ssh/id_ed25519
  asuswrt init --name office --host 10.0.0.1 --telnet --ask-pass --save-password
  asuswrt init --name ap1 --host 192.168.1.2 --mode ap --verify`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd)
	},
}

func init() {
	f := initCmd.Flags()
	f.StringVar(&initName, "name", "home", "name of the router entry")
	f.StringVar(&initMode, "mode", string(asuswrt.ModeRouter), "router or ap")
	f.BoolVarP(&initForce, "force", "f", false, "replace an existing entry with the same name")
	f.BoolVar(&initMakeDefault, "default", false, "make this the default router")
	f.BoolVar(&initSavePassword, "save-password", false, "store the password in the config file")
	f.BoolVar(&initVerify, "verify", false, "connect and list devices before saving")
}

func initCommand(cmd *cobra.Command) error {
	name := strings.ToLower(initName)
	path := cfgFile
	if path == "" {
		path = config.GlobalPath()
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Couldn't work out where to put the config",
			"Pass a path with --config.")
	}

	existing, err := loadExisting(path)
	if err != nil {
		return err
	}
	if _, ok := existing.Routers[name]; ok && !initForce {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Router '%s' is already in %s", name, path),
			"Use --force to replace it, or pick another --name.")
	}

	router, err := initRouter()
	if err != nil {
		return err
	}

	candidate := *existing
	candidate.Routers = make(map[string]config.Router, len(existing.Routers)+1)
	for k, v := range existing.Routers {
		candidate.Routers[k] = v
	}
	candidate.Routers[name] = router
	makeDefault := initMakeDefault || existing.Default == ""
	if makeDefault {
		candidate.Default = name
	}
	if err := config.Validate(&candidate); err != nil {
		return err
	}

	if initVerify {
		if err := verifyRouter(cmd, router); err != nil {
			return err
		}
	}

	if !initSavePassword {
		router.Password = ""
	}
	if _, statErr := os.Stat(path); statErr == nil {
		err = config.AddRouter(path, name, router, makeDefault)
	} else {
		cfg := config.DefaultConfig()
		cfg.Routers[name] = router
		cfg.Default = name
		err = config.Write(path, cfg)
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't write "+path, "Check the directory is writable.")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Saved router '%s' (%s@%s) to %s\n",
		ui.SymbolSuccess, name, router.Username, router.Host, path)
	return nil
}

// loadExisting reads the config at path, or returns an empty one when the
// file doesn't exist yet.
func loadExisting(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// initRouter builds the new entry from the global connection flags.
func initRouter() (config.Router, error) {
	r := config.DefaultRouter()
	r.Mode = initMode
	if hostFlag != "" {
		r.Host = hostFlag
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
	}
	if askPassFlag {
		pw, err := readPassword(fmt.Sprintf("Password for %s@%s: ", r.Username, r.Host))
		if err != nil {
			return config.Router{}, err
		}
		r.Password = pw
	}
	if r.Password == "" {
		r.Password = os.Getenv(config.PasswordEnv)
	}
	return r, nil
}

func verifyRouter(cmd *cobra.Command, r config.Router) error {
	router, err := newRouter(r, appLog)
	if err != nil {
		return err
	}
	defer router.Disconnect()

	devices, err := router.GetConnectedDevices(cmd.Context(), true)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Connected to %s, %s online\n",
		ui.SymbolSuccess, router.Description(), util.Count(len(devices), "device", "devices"))
	return nil
}
