package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
	"github.com/rileyhilliard/asuswrt/internal/monitor"
	"github.com/rileyhilliard/asuswrt/internal/publish"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// Command-specific flags
var (
	watchIntervalFlag string
	watchAll          bool
	watchReachable    bool
	watchNATSURL      string
	watchSubject      string
	watchHeadless     bool
	watchCount        int
)

// watchCmd starts the live dashboard
var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"monitor"},
	Short:   "Live dashboard of one or all routers",
	Long: `Poll routers on an interval and show throughput, load, memory,
temperatures and connected devices in a terminal dashboard.

With --nats-url every snapshot is also published as JSON on
<subject>.<router name>. With --headless, or when stdout isn't a terminal,
the dashboard is replaced by one JSON line per router per poll.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Poll now
  up/k        Select previous router
  down/j      Select next router
  Enter       Show connected devices
  s           Cycle device sort order
  Esc         Back
  ?           Show help

Examples:
  asuswrt watch
  asuswrt watch --all --interval 10s
  asuswrt watch --all --headless --nats-url nats://localhost:4222`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd)
	},
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchIntervalFlag, "interval", "", "time between polls (default from config, 5s)")
	f.BoolVar(&watchAll, "all", false, "watch every configured router")
	f.BoolVar(&watchReachable, "reachable", false, "hide devices the router marks FAILED or STALE")
	f.StringVar(&watchNATSURL, "nats-url", "", "publish snapshots to this NATS server")
	f.StringVar(&watchSubject, "subject", "", "NATS subject prefix (default asuswrt.snapshot)")
	f.BoolVar(&watchHeadless, "headless", false, "print JSON lines instead of the dashboard")
	f.IntVar(&watchCount, "count", 0, "stop after this many polls in headless mode (0 runs forever)")
}

// watchEvent is one headless output line.
type watchEvent struct {
	Name       string `json:"name"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	*asuswrt.Snapshot
}

func watchCommand(cmd *cobra.Command) error {
	settings := appConfig.Watch
	defaults := config.DefaultConfig().Watch

	interval := settings.Interval
	if interval == 0 {
		interval = defaults.Interval
	}
	interval, err := ParseInterval(watchIntervalFlag, interval)
	if err != nil {
		return err
	}
	history := settings.History
	if history == 0 {
		history = defaults.History
	}
	natsURL := firstNonEmpty(watchNATSURL, settings.NATSURL)
	subject := firstNonEmpty(watchSubject, settings.Subject, defaults.Subject)

	headless := watchHeadless || !term.IsTerminal(int(os.Stdout.Fd()))
	log := appLog
	if !headless {
		// Anything written to stderr would tear the alt screen.
		log = logger.Noop()
	}

	routers, err := watchRouters(log)
	if err != nil {
		return err
	}
	defer func() {
		for _, r := range routers {
			_ = r.Disconnect()
		}
	}()

	pollers := make(map[string]monitor.Poller, len(routers))
	for name, r := range routers {
		pollers[name] = r
	}
	collector := monitor.NewCollector(pollers)
	collector.SetReachableOnly(watchReachable || settings.ReachableOnly)
	collector.SetLogger(logger.WithComponent(log, "watch"))

	if natsURL != "" {
		pub, err := publish.Connect(natsURL, subject, logger.WithComponent(log, "nats"))
		if err != nil {
			return err
		}
		defer pub.Close()
		collector.SetSink(pub)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if headless {
		return watchLoop(ctx, cmd.OutOrStdout(), collector, interval, watchCount)
	}

	model := monitor.NewModel(collector, interval, history)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.WrapWithCode(err, errors.ErrExec, "Dashboard stopped unexpectedly", "")
	}
	return nil
}

// watchRouters builds a client for every router being watched: all
// configured routers with --all, otherwise the one picked by the global
// flags.
func watchRouters(log logger.Logger) (map[string]*asuswrt.AsusWrt, error) {
	targets := make(map[string]config.Router)
	if watchAll {
		names := appConfig.RouterNames()
		if len(names) == 0 {
			return nil, errors.New(errors.ErrConfig,
				"No routers configured",
				"Run 'asuswrt init' to add one.")
		}
		for _, name := range names {
			r, err := appConfig.Resolve(name)
			if err != nil {
				return nil, err
			}
			targets[name] = r
		}
	} else {
		name, r, err := resolveTarget()
		if err != nil {
			return nil, err
		}
		targets[name] = r
	}

	routers := make(map[string]*asuswrt.AsusWrt, len(targets))
	for name, target := range targets {
		router, err := newRouter(target, logger.WithComponent(log, name))
		if err != nil {
			for _, r := range routers {
				_ = r.Disconnect()
			}
			return nil, err
		}
		routers[name] = router
	}
	return routers, nil
}

// watchLoop polls every interval and writes one JSON line per router until
// ctx ends or count polls have run.
func watchLoop(ctx context.Context, w io.Writer, collector *monitor.Collector, interval time.Duration, count int) error {
	enc := json.NewEncoder(w)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		results := collector.Collect(ctx)
		if ctx.Err() != nil {
			return nil
		}
		for _, r := range results {
			event := watchEvent{Name: r.Name, DurationMS: r.Duration.Milliseconds(), Snapshot: r.Snapshot}
			if r.Err != nil {
				event.Error = firstLineOf(r.Err.Error())
			}
			if err := enc.Encode(event); err != nil {
				return err
			}
		}
		if count > 0 && polls >= count {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
