package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/asuswrt/internal/config"
	"github.com/rileyhilliard/asuswrt/internal/logger"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
	conntest "github.com/rileyhilliard/asuswrt/pkg/connection/testing"
)

const testConfig = `version: 1
default: home
routers:
  home:
    host: 192.168.1.1
    username: admin
    password: secret
  office:
    host: 10.0.0.1
    username: ops
    protocol: telnet
output:
  color: never
`

// resetFlags restores every package-level flag, since cobra only writes
// the flags present on the command line.
func resetFlags() {
	cfgFile, routerFlag, hostFlag, userFlag, keyFlag = "", "", "", "", ""
	portFlag = 0
	telnetFlag, askPassFlag, debugFlag = false, false, false
	outputFlag = ""
	appConfig, configPath, appLog = nil, "", logger.Noop()

	devicesReachable = false
	ratesHuman, ratesTotal, ratesSample = false, false, time.Second
	nvramKeys = false
	watchIntervalFlag, watchNATSURL, watchSubject = "", "", ""
	watchAll, watchReachable, watchHeadless = false, false, false
	watchCount = 0
	initName, initMode = "home", string(asuswrt.ModeRouter)
	initForce, initMakeDefault, initSavePassword, initVerify = false, false, false, false
	versionShort = false
	doctorOffline = false
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// fakeRouters makes every command talk to one fake connection and records
// the router entries commands resolved.
type fakeRouters struct {
	conn    *conntest.FakeConnection
	targets []config.Router
}

func useFakeRouter(t *testing.T) *fakeRouters {
	t.Helper()
	f := &fakeRouters{conn: conntest.NewFakeConnection("192.168.1.1")}

	orig := newRouter
	newRouter = func(r config.Router, log logger.Logger) (*asuswrt.AsusWrt, error) {
		f.targets = append(f.targets, r)
		settings, err := r.Settings()
		if err != nil {
			return nil, err
		}
		auth, err := r.Auth()
		if err != nil {
			return nil, err
		}
		return asuswrt.New(r.Host, auth, settings, asuswrt.WithConnection(f.conn), asuswrt.WithLogger(log))
	}
	t.Cleanup(func() { newRouter = orig })
	return f
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}
