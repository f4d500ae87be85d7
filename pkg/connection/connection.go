// Package connection is the transport to an ASUS-WRT router. Both the SSH and
// the Telnet variants run one command at a time per instance, connect lazily
// on the first command and tear the session down on any I/O failure so the
// next command starts from a clean reconnect.
package connection

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
)

// Kind selects the transport.
type Kind string

const (
	KindSSH    Kind = "ssh"
	KindTelnet Kind = "telnet"
)

// Default ports. ASUS-WRT firmware exposes its telnet daemon on 110.
const (
	DefaultSSHPort    = 22
	DefaultTelnetPort = 110
)

// DefaultTimeout bounds a single command, and for Telnet every read and write.
const DefaultTimeout = 9 * time.Second

// Connection is the contract shared by the SSH and Telnet transports.
type Connection interface {
	// Connect opens the session. It is a no-op when already connected.
	Connect(ctx context.Context) error
	// Disconnect releases the session. It is idempotent.
	Disconnect() error
	// RunCommand connects if needed, runs command and returns its output
	// lines. Connection-level failures tear the session down and return a
	// structured error with code SSH, TELNET or TIMEOUT.
	RunCommand(ctx context.Context, command string) ([]string, error)
	IsConnected() bool
	// Description returns "user@host:port" for logs.
	Description() string
}

// AuthConfig holds the credentials and transport settings for a router.
type AuthConfig struct {
	Username   string
	Password   string
	KeyFile    string
	Passphrase string
	Kind       Kind
	// Port overrides the transport default when non-zero.
	Port int
	// KnownHosts, when set, turns on host key verification against the file.
	KnownHosts string
}

// ParseKind maps a config value to a Kind. Empty means SSH.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ssh":
		return KindSSH, nil
	case "telnet":
		return KindTelnet, nil
	default:
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown connection type '%s'", s),
			"Use 'ssh' or 'telnet'")
	}
}

type options struct {
	timeout       time.Duration
	log           logger.Logger
	dial          DialFunc
	sshConfigPath string
}

// DialFunc opens the raw TCP stream. It matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Option customizes a connection.
type Option func(*options)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for connection events.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithDialer replaces the TCP dialer, mainly for tests.
func WithDialer(dial DialFunc) Option {
	return func(o *options) {
		if dial != nil {
			o.dial = dial
		}
	}
}

// WithSSHConfig sets the ssh_config file used to resolve host aliases.
// Defaults to ~/.ssh/config; an empty path disables lookup.
func WithSSHConfig(path string) Option {
	return func(o *options) {
		o.sshConfigPath = path
	}
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:       DefaultTimeout,
		log:           logger.Default(),
		sshConfigPath: defaultSSHConfigPath(),
	}
	o.dial = (&net.Dialer{}).DialContext
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns an unconnected transport of the kind named in auth.
func New(host string, auth AuthConfig, opts ...Option) (Connection, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.New(errors.ErrConfig, "No router host given", "Pass the router address, e.g. 192.168.1.1")
	}
	o := buildOptions(opts)

	switch auth.Kind {
	case KindTelnet:
		return newTelnet(host, auth, o)
	case "", KindSSH:
		return newSSH(host, auth, o)
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown connection type '%s'", auth.Kind),
			"Use 'ssh' or 'telnet'")
	}
}

// withTimeout derives the per-command context.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}

func describe(user, host string, port int) string {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	if user == "" {
		return address
	}
	return user + "@" + address
}

// splitOutput splits raw command output into lines the way the router prints
// them: on "\n", dropping the "\r" of CRLF endings.
func splitOutput(out string) []string {
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
