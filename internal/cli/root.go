package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
	"github.com/rileyhilliard/asuswrt/internal/ui"
)

// skipConfigAnnotation marks commands that run without a config file.
const skipConfigAnnotation = "asuswrt/skip-config"

// Global flags
var (
	cfgFile     string
	routerFlag  string
	hostFlag    string
	userFlag    string
	keyFlag     string
	portFlag    int
	telnetFlag  bool
	askPassFlag bool
	outputFlag  string
	debugFlag   bool
)

// State prepared by loadSettings before a command runs.
var (
	appConfig  *config.Config
	configPath string
	appLog     = logger.Noop()
)

var rootCmd = &cobra.Command{
	Use:   "asuswrt",
	Short: "Query ASUS-WRT routers over SSH or Telnet",
	Long: `asuswrt reads connected devices, traffic rates, temperatures and NVRAM
settings from routers running ASUS-WRT or Asuswrt-Merlin.

Routers are read from ~/.config/asuswrt/config.yaml (or --config). Use
--router to pick one, or --host and --user to talk to a router that is not
in the config.

Examples:
  asuswrt devices
  asuswrt --router office rates --human
  asuswrt --host 192.168.50.1 --user admin --ask-pass temps
  asuswrt watch --all
  asuswrt doctor`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.config/asuswrt/config.yaml)")
	pf.StringVarP(&routerFlag, "router", "r", "", "router name from the config")
	pf.StringVar(&hostFlag, "host", "", "router address, overrides the config")
	pf.StringVar(&userFlag, "user", "", "login user, overrides the config")
	pf.StringVar(&keyFlag, "key", "", "SSH private key file")
	pf.IntVar(&portFlag, "port", 0, "SSH or Telnet port")
	pf.BoolVar(&telnetFlag, "telnet", false, "connect with Telnet instead of SSH")
	pf.BoolVar(&askPassFlag, "ask-pass", false, "prompt for the router password")
	pf.StringVarP(&outputFlag, "output", "o", "", "output format: table, json or yaml")
	pf.BoolVar(&debugFlag, "debug", false, "log every command sent to the router")
}

// loadSettings loads and validates the config, then sets up logging and
// colors for the command about to run.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	path := ""
	if _, skip := cmd.Annotations[skipConfigAnnotation]; !skip {
		var err error
		cfg, path, err = config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
	}

	if outputFlag != "" {
		cfg.Output.Format = outputFlag
	}
	if debugFlag {
		cfg.Log.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	appConfig, configPath = cfg, path
	ui.SetColorMode(cfg.Output.Color)

	// Log lines go to stderr so they never mix with json or yaml output.
	jsonLogs := cfg.Log.JSON || !term.IsTerminal(int(os.Stderr.Fd()))
	appLog = logger.NewZerolog(os.Stderr, cfg.Log.Level, jsonLogs)
	logger.SetDefault(appLog)
	if path != "" {
		appLog.Debug("using config %s", path)
	}
	return nil
}

// outputFormat returns the effective output format.
func outputFormat() string {
	if appConfig != nil && appConfig.Output.Format != "" {
		return appConfig.Output.Format
	}
	if outputFlag != "" {
		return outputFlag
	}
	return "table"
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var silent *silentError
		if stderrors.As(err, &silent) {
			os.Exit(1)
		}
		if name := extractUnknownCommand(err); name != "" {
			err = errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't an asuswrt command", name),
				"Run 'asuswrt --help' to see the available commands")
		}
		if outputFormat() == "json" {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprint(os.Stderr, formatError(err))
		}
		os.Exit(1)
	}
}

// formatError renders structured errors as is and plain ones with the
// failure symbol.
func formatError(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err.Error()
	}
	return fmt.Sprintf("%s %s\n", ui.SymbolFail, err.Error())
}

// firstLineOf returns the headline of an error message without the failure
// symbol.
func firstLineOf(msg string) string {
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ui.SymbolFail))
		if line != "" {
			return line
		}
	}
	return ""
}

// isUnknownCommandError reports whether cobra rejected the command name.
func isUnknownCommandError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "unknown command ")
}

// extractUnknownCommand returns the name from `unknown command "foo" for "asuswrt"`.
func extractUnknownCommand(err error) string {
	if !isUnknownCommandError(err) {
		return ""
	}
	rest := strings.TrimPrefix(err.Error(), "unknown command ")
	if !strings.HasPrefix(rest, `"`) {
		return ""
	}
	end := strings.Index(rest[1:], `"`)
	if end < 0 {
		return ""
	}
	return rest[1 : end+1]
}
