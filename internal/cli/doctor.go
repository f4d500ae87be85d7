package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/doctor"
	"github.com/rileyhilliard/asuswrt/internal/ui"
)

var doctorOffline bool

// errChecksFailed sets the exit status when a doctor check fails.
var errChecksFailed = &silentError{}

// doctorCmd diagnoses config and router problems
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the config and the router for common problems",
	Long: `Check the config file, the login credentials and the router itself:
connection, NVRAM access, the WAN interface, device sources and the
temperature sensors. Exits non-zero when a check fails.

Examples:
  asuswrt doctor
  asuswrt doctor -r office
  asuswrt doctor --offline -o json`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false, "only check the config, don't connect")
}

// doctorReport is the json and yaml shape of the doctor output.
type doctorReport struct {
	Results []doctor.CheckResult `json:"results" yaml:"results"`
	Summary string               `json:"summary" yaml:"summary"`
	Pass    int                  `json:"pass" yaml:"pass"`
	Warn    int                  `json:"warn" yaml:"warn"`
	Fail    int                  `json:"fail" yaml:"fail"`
}

func doctorCommand(cmd *cobra.Command) error {
	ctx := cmd.Context()
	results := doctor.RunAll(ctx, doctor.NewConfigChecks(cfgFile))

	// A broken config is only reported by the checks above.
	if cfg, _, err := config.LoadOrDefault(cfgFile); err == nil && config.Validate(cfg) == nil {
		if outputFlag != "" {
			cfg.Output.Format = outputFlag
		}
		appConfig = cfg
		ui.SetColorMode(cfg.Output.Color)
	}

	if name, target, err := resolveTarget(); err != nil {
		results = append(results, doctor.FromError("router_entry", "AUTH", err))
	} else {
		results = append(results, doctor.RunAll(ctx, []doctor.Check{&doctor.CredentialsCheck{Router: target}})...)

		if !doctorOffline {
			router, err := newRouter(target, appLog)
			if err != nil {
				results = append(results, doctor.FromError("connect", "ROUTER", err))
			} else {
				defer router.Disconnect()
				appLog.Debug("running router checks against %s", name)
				results = append(results, doctor.RunAll(ctx, doctor.NewRouterChecks(router))...)
			}
		}
	}

	counts := doctor.CountByStatus(results)
	report := doctorReport{
		Results: results,
		Summary: doctor.Summary(results),
		Pass:    counts[doctor.StatusPass],
		Warn:    counts[doctor.StatusWarn],
		Fail:    counts[doctor.StatusFail],
	}
	if err := render(cmd.OutOrStdout(), report, writeString(renderDoctor(report))); err != nil {
		return err
	}
	if doctor.HasFailures(results) {
		return errChecksFailed
	}
	return nil
}

func renderDoctor(report doctorReport) string {
	headerStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	var b strings.Builder
	category := ""
	for _, r := range report.Results {
		if r.Category != category {
			if category != "" {
				b.WriteString("\n")
			}
			category = r.Category
			b.WriteString(headerStyle.Render(category) + "\n")
		}
		fmt.Fprintf(&b, "  %s %s\n", doctorSymbol(r.Status), r.Message)
		if r.Suggestion != "" && (r.Status == doctor.StatusFail || r.Status == doctor.StatusWarn) {
			b.WriteString(mutedStyle.Render("    "+r.Suggestion) + "\n")
		}
	}

	b.WriteString("\n")
	summaryStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	if report.Fail > 0 {
		summaryStyle = lipgloss.NewStyle().Foreground(ui.ColorError)
	} else if report.Warn > 0 {
		summaryStyle = lipgloss.NewStyle().Foreground(ui.ColorWarning)
	}
	b.WriteString(summaryStyle.Render(report.Summary) + "\n")
	return b.String()
}

func doctorSymbol(s doctor.CheckStatus) string {
	switch s {
	case doctor.StatusPass:
		return lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(ui.SymbolSuccess)
	case doctor.StatusWarn:
		return lipgloss.NewStyle().Foreground(ui.ColorWarning).Render("!")
	case doctor.StatusFail:
		return lipgloss.NewStyle().Foreground(ui.ColorError).Render(ui.SymbolFail)
	default:
		return lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("-")
	}
}
