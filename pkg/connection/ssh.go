package connection

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
)

// SSHConnection runs each command as its own exec request on one persistent
// SSH client.
type SSHConnection struct {
	mu        sync.Mutex
	host      string
	auth      AuthConfig
	opts      options
	client    *ssh.Client
	address   string
	connected atomic.Bool
	// resolved is "user@host:port" after ssh_config lookup, set on connect.
	resolved atomic.Pointer[string]
}

func newSSH(host string, auth AuthConfig, o options) (*SSHConnection, error) {
	if auth.Password == "" && auth.KeyFile == "" && auth.Username == "" {
		o.log.Debug("no ssh credentials configured for %s, relying on ssh config and agent", host)
	}
	return &SSHConnection{host: host, auth: auth, opts: o}, nil
}

// Connect dials and authenticates. Calling it while connected only logs.
func (c *SSHConnection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.opts.log.Warn("already connected to %s", c.address)
		return nil
	}
	return c.connect(ctx)
}

func (c *SSHConnection) connect(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, c.opts.timeout)
	defer cancel()

	settings := resolveSSHSettings(c.host, c.auth, c.opts.sshConfigPath, c.opts.log)
	config, err := buildClientConfig(settings, c.auth, c.opts.timeout)
	if err != nil {
		var asusErr *errors.Error
		if stderrors.As(err, &asusErr) {
			return err
		}
		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", c.host),
			"Check the key file and passphrase in your config")
	}

	address := settings.address()
	conn, err := c.opts.dial(ctx, "tcp", address)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach router at %s", address),
			suggestionForDialError(err))
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return errors.New(errors.ErrSSH, hostKeyErr.Error(), hostKeyErr.Suggestion())
		}
		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with %s didn't go through", address),
			suggestionForHandshakeError(err, settings.encryptedKeys))
	}
	_ = conn.SetDeadline(time.Time{})

	c.client = ssh.NewClient(sshConn, chans, reqs)
	c.address = address
	resolved := settings.user + "@" + address
	c.resolved.Store(&resolved)
	c.connected.Store(true)
	c.opts.log.Debug("connected to %s as %s", address, settings.user)
	return nil
}

// RunCommand implements Connection.
func (c *SSHConnection) RunCommand(ctx context.Context, command string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := withTimeout(ctx, c.opts.timeout)
	defer cancel()

	if c.client == nil {
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
	}

	out, err := c.exec(ctx, commands.WithPath(command))
	if err != nil {
		c.opts.log.Debug("ssh command %q failed, closing session: %v", command, err)
		c.teardown()
		return nil, err
	}
	return splitOutput(string(out)), nil
}

// exec runs cmd in a new session. A non-zero exit status is not an error:
// router commands such as pidof signal "nothing found" that way.
func (c *SSHConnection) exec(ctx context.Context, cmd string) ([]byte, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to open SSH session",
			"The router may have dropped the connection; it will reconnect on the next command")
	}
	defer session.Close()

	var stdout bytes.Buffer
	session.Stdout = &stdout

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		session.Close()
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.WrapWithCode(ctx.Err(), errors.ErrTimeout,
				fmt.Sprintf("Command timed out after %s", c.opts.timeout),
				"The router is slow or unreachable; the next command will reconnect")
		}
		return nil, errors.WrapWithCode(ctx.Err(), errors.ErrSSH, "Command cancelled", "")
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitError
			var missingErr *ssh.ExitMissingError
			if stderrors.As(err, &exitErr) || stderrors.As(err, &missingErr) {
				return stdout.Bytes(), nil
			}
			return nil, errors.WrapWithCode(err, errors.ErrSSH,
				"SSH command failed",
				"The connection was lost; the next command will reconnect")
		}
		return stdout.Bytes(), nil
	}
}

func (c *SSHConnection) teardown() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			c.opts.log.Debug("closing ssh client: %v", err)
		}
	}
	c.client = nil
	c.connected.Store(false)
}

// Disconnect implements Connection.
func (c *SSHConnection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown()
	return nil
}

// IsConnected implements Connection. It does not wait for a running command.
func (c *SSHConnection) IsConnected() bool {
	return c.connected.Load()
}

// Description implements Connection. Once connected it reports the endpoint
// actually dialed.
func (c *SSHConnection) Description() string {
	if resolved := c.resolved.Load(); resolved != nil {
		return *resolved
	}
	port := c.auth.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	return describe(c.auth.Username, c.host, port)
}
