// Package testing provides an in-memory Connection for exercising router
// accessors without a router.
package testing

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rileyhilliard/asuswrt/internal/errors"
)

// Response is a canned answer to a command.
type Response struct {
	Lines []string
	Error error
}

type rule struct {
	pattern string
	re      *regexp.Regexp
	resp    Response
}

// FakeConnection implements connection.Connection against canned responses.
// Exact command matches win over regex patterns, which are tried in the
// order they were registered. Commands with no response fail with EXEC.
type FakeConnection struct {
	mu         sync.Mutex
	host       string
	rules      []rule
	calls      []string
	connected  bool
	connectErr error
	connects   int
}

// NewFakeConnection returns a disconnected fake for host.
func NewFakeConnection(host string) *FakeConnection {
	return &FakeConnection{host: host}
}

// SetOutput registers raw output for pattern. The output is split into lines
// the way a transport would split it.
func (f *FakeConnection) SetOutput(pattern, output string) {
	f.SetResponse(pattern, Response{Lines: strings.Split(output, "\n")})
}

// SetError makes commands matching pattern fail with err.
func (f *FakeConnection) SetError(pattern string, err error) {
	f.SetResponse(pattern, Response{Error: err})
}

// SetResponse registers resp for pattern, replacing any earlier registration
// of the same pattern.
func (f *FakeConnection) SetResponse(pattern string, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	for i := range f.rules {
		if f.rules[i].pattern == pattern {
			f.rules[i].resp = resp
			return
		}
	}
	f.rules = append(f.rules, rule{pattern: pattern, re: re, resp: resp})
}

// SetConnectError makes Connect and the implicit connect of RunCommand fail.
// A nil err restores normal behavior.
func (f *FakeConnection) SetConnectError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

// Connect implements connection.Connection.
func (f *FakeConnection) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connect(ctx)
}

func (f *FakeConnection) connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.connected {
		return nil
	}
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	f.connects++
	return nil
}

// Disconnect implements connection.Connection.
func (f *FakeConnection) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

// RunCommand implements connection.Connection. Registered errors that carry
// a connection-level code also drop the fake session, like the real
// transports do.
func (f *FakeConnection) RunCommand(ctx context.Context, command string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.connect(ctx); err != nil {
		return nil, err
	}
	f.calls = append(f.calls, command)

	resp, ok := f.lookup(command)
	if !ok {
		return nil, errors.New(errors.ErrExec,
			fmt.Sprintf("no fake response for %q", command), "")
	}
	if resp.Error != nil {
		if errors.IsConnectionError(resp.Error) {
			f.connected = false
		}
		return nil, resp.Error
	}
	return append([]string(nil), resp.Lines...), nil
}

func (f *FakeConnection) lookup(command string) (Response, bool) {
	for _, r := range f.rules {
		if r.pattern == command {
			return r.resp, true
		}
	}
	for _, r := range f.rules {
		if r.re != nil && r.re.MatchString(command) {
			return r.resp, true
		}
	}
	return Response{}, false
}

// IsConnected implements connection.Connection.
func (f *FakeConnection) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Description implements connection.Connection.
func (f *FakeConnection) Description() string {
	return "fake@" + f.host
}

// Calls returns the commands run so far, in order.
func (f *FakeConnection) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times command was run.
func (f *FakeConnection) CallCount(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == command {
			n++
		}
	}
	return n
}

// Connects returns how many times a session was opened.
func (f *FakeConnection) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}
