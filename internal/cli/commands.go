package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/errors"
)

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for asuswrt.

Examples:
  # Bash
  asuswrt completion bash > /etc/bash_completion.d/asuswrt

  # Zsh
  asuswrt completion zsh > "${fpath[1]}/_asuswrt"

  # Fish
  asuswrt completion fish > ~/.config/fish/completions/asuswrt.fish`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	ValidArgs:   []string{"bash", "zsh", "fish", "powershell"},
	Args:        cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(tempsCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(interfacesCmd)
	rootCmd.AddCommand(runningCmd)
	rootCmd.AddCommand(nvramCmd)
	rootCmd.AddCommand(vpnCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
