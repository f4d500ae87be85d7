package connection

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
)

// MaxResponseSize caps how much a single telnet read may buffer while
// waiting for a delimiter.
const MaxResponseSize = 4 << 20

// linebreakProbe is written once per connection to find the terminal width.
var linebreakProbe = strings.Repeat(" ", 200)

// TelnetConnection drives the router's login shell over a raw TCP stream.
// Command output is framed by the shell prompt captured at login.
type TelnetConnection struct {
	mu   sync.Mutex
	host string
	port int
	auth AuthConfig
	opts options

	conn   net.Conn
	reader *bufio.Reader
	prompt []byte
	// linebreak is the terminal width the shell wraps echoed input at.
	// Zero until measured, +Inf when the shell does not wrap.
	linebreak float64

	connected atomic.Bool
}

func newTelnet(host string, auth AuthConfig, o options) (*TelnetConnection, error) {
	port := auth.Port
	if port == 0 {
		port = DefaultTelnetPort
	}
	return &TelnetConnection{host: host, port: port, auth: auth, opts: o}, nil
}

// Connect logs in and captures the prompt. Calling it while connected only logs.
func (c *TelnetConnection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.opts.log.Warn("already connected to %s", c.Description())
		return nil
	}
	return c.connect(ctx)
}

func (c *TelnetConnection) connect(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, c.opts.timeout)
	defer cancel()

	address := net.JoinHostPort(c.host, fmt.Sprint(c.port))
	conn, err := c.opts.dial(ctx, "tcp", address)
	if err != nil {
		message := fmt.Sprintf("Can't reach router at %s", address)
		if isTimeout(err) {
			return c.wrap(err, message)
		}
		return errors.WrapWithCode(err, errors.ErrTelnet, message,
			"Is telnet enabled on the router? See Administration > System > Service")
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)

	if err := c.login(ctx); err != nil {
		c.teardown()
		return c.wrap(err, fmt.Sprintf("Telnet login to %s failed", address))
	}

	c.connected.Store(true)
	c.opts.log.Debug("logged in to %s, prompt %q", address, c.prompt)
	return nil
}

func (c *TelnetConnection) login(ctx context.Context) error {
	if _, err := c.readUntil(ctx, []byte("login: ")); err != nil {
		return err
	}
	if err := c.write(ctx, c.auth.Username+"\n"); err != nil {
		return err
	}
	if _, err := c.readUntil(ctx, []byte("Password: ")); err != nil {
		return err
	}
	if err := c.write(ctx, c.auth.Password+"\n"); err != nil {
		return err
	}

	data, err := c.readUntil(ctx, []byte("#"))
	if err != nil {
		return err
	}
	c.prompt = lastLine(data)
	if len(c.prompt) == 0 {
		return fmt.Errorf("empty shell prompt")
	}
	return nil
}

// RunCommand implements Connection.
func (c *TelnetConnection) RunCommand(ctx context.Context, command string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := withTimeout(ctx, c.opts.timeout)
	defer cancel()

	if c.conn == nil {
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
	}

	lines, err := c.call(ctx, command)
	if err != nil {
		c.opts.log.Debug("telnet command %q failed, closing session: %v", command, err)
		c.teardown()
		return nil, c.wrap(err, fmt.Sprintf("Telnet command on %s failed", c.Description()))
	}
	return lines, nil
}

func (c *TelnetConnection) call(ctx context.Context, command string) ([]string, error) {
	// An expired deadline unblocks a pending read when ctx is cancelled.
	conn := c.conn
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	if c.linebreak == 0 {
		lb, err := c.measureLinebreak(ctx)
		if err != nil {
			return nil, err
		}
		c.linebreak = lb
	}

	full := commands.WithPath(command)
	if err := c.write(ctx, full+"\n"); err != nil {
		return nil, err
	}
	data, err := c.readUntil(ctx, c.prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	return frameResponse(data, len(c.prompt)+len(full), c.linebreak), nil
}

// measureLinebreak writes a long blank line and derives the wrap width from
// how the shell echoes it back.
func (c *TelnetConnection) measureLinebreak(ctx context.Context) (float64, error) {
	if err := c.write(ctx, linebreakProbe+"\n"); err != nil {
		return 0, err
	}
	data, err := c.readUntil(ctx, c.prompt)
	if err != nil {
		return 0, err
	}
	return determineLinebreak(data, len(c.prompt), c.opts.log), nil
}

// determineLinebreak returns +Inf when the echo holds no line break, otherwise
// the prompt length plus the length of the first segment.
func determineLinebreak(data []byte, promptLen int, log logger.Logger) float64 {
	segments := strings.Split(strings.ReplaceAll(string(data), "\r", ""), "\n")
	if len(segments) == 1 {
		return math.Inf(1)
	}

	linebreak := promptLen + len(segments[0])
	if len(segments) > 2 && len(segments[1]) != linebreak {
		log.Warn("inconsistent linebreaks %d != %d", len(segments[1]), linebreak)
	}
	return float64(linebreak)
}

// frameResponse drops the echoed command, which spans
// floor(cmdLen/linebreak)+1 lines, and the trailing prompt line.
func frameResponse(data []byte, cmdLen int, linebreak float64) []string {
	lines := strings.Split(string(data), "\n")
	start := int(math.Floor(float64(cmdLen)/linebreak)) + 1
	end := len(lines) - 1
	if start >= end {
		return []string{}
	}

	out := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		out = append(out, strings.TrimSuffix(line, "\r"))
	}
	return out
}

func lastLine(data []byte) []byte {
	if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
		data = data[i+1:]
	}
	return append([]byte(nil), data...)
}

// stepDeadline bounds one read or write by the per-step timeout and ctx.
func (c *TelnetConnection) stepDeadline(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	deadline := time.Now().Add(c.opts.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline, nil
}

// readUntil reads until delim and returns everything read including delim.
func (c *TelnetConnection) readUntil(ctx context.Context, delim []byte) ([]byte, error) {
	deadline, err := c.stepDeadline(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(b)
		if bytes.HasSuffix(buf.Bytes(), delim) {
			return buf.Bytes(), nil
		}
		if buf.Len() > MaxResponseSize {
			return nil, fmt.Errorf("no %q within %d bytes", delim, MaxResponseSize)
		}
	}
}

func (c *TelnetConnection) write(ctx context.Context, s string) error {
	deadline, err := c.stepDeadline(ctx)
	if err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err = c.conn.Write([]byte(s))
	return err
}

// wrap turns a low-level failure into a TIMEOUT or TELNET error.
func (c *TelnetConnection) wrap(err error, message string) error {
	if isTimeout(err) {
		return errors.WrapWithCode(err, errors.ErrTimeout, message,
			fmt.Sprintf("No answer within %s; the next command will reconnect", c.opts.timeout))
	}
	return errors.WrapWithCode(err, errors.ErrTelnet, message,
		"The connection was lost; the next command will reconnect")
}

func isTimeout(err error) bool {
	return stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, os.ErrDeadlineExceeded)
}

func (c *TelnetConnection) teardown() {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.opts.log.Debug("closing telnet stream: %v", err)
		}
	}
	c.conn = nil
	c.reader = nil
	c.prompt = nil
	c.linebreak = 0
	c.connected.Store(false)
}

// Disconnect implements Connection.
func (c *TelnetConnection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown()
	return nil
}

// IsConnected implements Connection.
func (c *TelnetConnection) IsConnected() bool {
	return c.connected.Load()
}

// Description implements Connection.
func (c *TelnetConnection) Description() string {
	return describe(c.auth.Username, c.host, c.port)
}
