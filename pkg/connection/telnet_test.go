package connection

import (
	"bufio"
	"context"
	"math"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
)

const testPrompt = "admin@RT-AC68U:/tmp/home/root#"

// fakeRouter speaks just enough of the busybox login shell to drive a
// TelnetConnection. Echoed input is wrapped at width columns, counting the
// prompt on the first line, when width is non-zero.
type fakeRouter struct {
	width    int
	outputs  map[string]string
	hang     atomic.Bool
	dials    atomic.Int32
	received []string
	mu       sync.Mutex
}

func newFakeRouter(width int) *fakeRouter {
	return &fakeRouter{width: width, outputs: map[string]string{}}
}

func (r *fakeRouter) dial(ctx context.Context, network, address string) (net.Conn, error) {
	r.dials.Add(1)
	client, server := net.Pipe()
	go r.serve(server)
	return client, nil
}

func (r *fakeRouter) echo(input string) string {
	if r.width == 0 {
		return input
	}
	var chunks []string
	first := r.width - len(testPrompt)
	if len(input) <= first {
		return input
	}
	chunks = append(chunks, input[:first])
	rest := input[first:]
	for len(rest) > r.width {
		chunks = append(chunks, rest[:r.width])
		rest = rest[r.width:]
	}
	chunks = append(chunks, rest)
	return strings.Join(chunks, "\r\n")
}

func (r *fakeRouter) serve(conn net.Conn) {
	defer conn.Close()
	br := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("RT-AC68U login: ")); err != nil {
		return
	}
	user, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(user) != "admin" {
		return
	}
	if _, err := conn.Write([]byte("Password: ")); err != nil {
		return
	}
	pass, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(pass) != "secret" {
		return
	}
	if _, err := conn.Write([]byte("\r\n\r\nASUSWRT-Merlin RT-AC68U\r\n" + testPrompt)); err != nil {
		return
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		input := strings.TrimSuffix(line, "\n")
		r.mu.Lock()
		r.received = append(r.received, input)
		r.mu.Unlock()

		isProbe := strings.TrimSpace(input) == ""
		if !isProbe && r.hang.Load() {
			continue
		}

		var out strings.Builder
		out.WriteString(r.echo(input))
		out.WriteString("\r\n")
		if !isProbe {
			cmd := strings.TrimPrefix(input, commands.PathExport+" && ")
			for _, l := range strings.Split(r.outputs[cmd], "\n") {
				if l != "" {
					out.WriteString(l + "\r\n")
				}
			}
		}
		out.WriteString(testPrompt)
		if _, err := conn.Write([]byte(out.String())); err != nil {
			return
		}
	}
}

func newTestTelnet(t *testing.T, r *fakeRouter, timeout time.Duration) *TelnetConnection {
	t.Helper()
	conn, err := New("192.168.1.1", AuthConfig{
		Username: "admin",
		Password: "secret",
		Kind:     KindTelnet,
	}, WithDialer(r.dial), WithTimeout(timeout), WithLogger(logger.Noop()))
	require.NoError(t, err)
	telnet, ok := conn.(*TelnetConnection)
	require.True(t, ok)
	return telnet
}

func TestTelnet_LoginCapturesPrompt(t *testing.T) {
	router := newFakeRouter(0)
	conn := newTestTelnet(t, router, time.Second)
	defer conn.Disconnect()

	require.NoError(t, conn.Connect(context.Background()))
	assert.True(t, conn.IsConnected())
	assert.Equal(t, testPrompt, string(conn.prompt))
	assert.Equal(t, "admin@192.168.1.1:110", conn.Description())

	// A second Connect is a no-op.
	require.NoError(t, conn.Connect(context.Background()))
	assert.Equal(t, int32(1), router.dials.Load())
}

func TestTelnet_RunCommandUnwrapped(t *testing.T) {
	router := newFakeRouter(0)
	router.outputs[commands.LoadAvg] = "0.12 0.08 0.02 1/92 4321\n"
	conn := newTestTelnet(t, router, time.Second)
	defer conn.Disconnect()

	lines, err := conn.RunCommand(context.Background(), commands.LoadAvg)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.12 0.08 0.02 1/92 4321"}, lines)
	assert.Equal(t, float64(len(testPrompt)+200), conn.linebreak)

	router.mu.Lock()
	defer router.mu.Unlock()
	require.Len(t, router.received, 2)
	assert.Equal(t, strings.Repeat(" ", 200), router.received[0])
	assert.Equal(t, commands.WithPath(commands.LoadAvg), router.received[1])
}

func TestTelnet_RunCommandWrapped(t *testing.T) {
	router := newFakeRouter(80)
	router.outputs[commands.WL] = "assoclist 01:02:03:04:05:06\nassoclist 01:02:03:04:05:07"
	router.outputs[commands.LoadAvg] = "0.12 0.08 0.02 1/92 4321"
	conn := newTestTelnet(t, router, time.Second)
	defer conn.Disconnect()

	// The wireless loop echoes over four wrapped lines.
	lines, err := conn.RunCommand(context.Background(), commands.WL)
	require.NoError(t, err)
	assert.Equal(t, float64(80), conn.linebreak)
	assert.Equal(t, []string{
		"assoclist 01:02:03:04:05:06",
		"assoclist 01:02:03:04:05:07",
	}, lines)

	// Measured once per connection.
	lines, err = conn.RunCommand(context.Background(), commands.LoadAvg)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.12 0.08 0.02 1/92 4321"}, lines)
	router.mu.Lock()
	assert.Len(t, router.received, 3)
	router.mu.Unlock()
}

func TestTelnet_TimeoutTearsDownAndReconnects(t *testing.T) {
	router := newFakeRouter(0)
	router.outputs[commands.LoadAvg] = "0.12 0.08 0.02 1/92 4321"
	router.hang.Store(true)
	conn := newTestTelnet(t, router, 300*time.Millisecond)
	defer conn.Disconnect()

	_, err := conn.RunCommand(context.Background(), commands.LoadAvg)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTimeout), "got %v", err)
	assert.False(t, conn.IsConnected())

	router.hang.Store(false)
	lines, err := conn.RunCommand(context.Background(), commands.LoadAvg)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.12 0.08 0.02 1/92 4321"}, lines)
	assert.True(t, conn.IsConnected())
	assert.Equal(t, int32(2), router.dials.Load())
}

func TestTelnet_CancelledCommand(t *testing.T) {
	router := newFakeRouter(0)
	router.hang.Store(true)
	conn := newTestTelnet(t, router, 5*time.Second)
	defer conn.Disconnect()

	require.NoError(t, conn.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := conn.RunCommand(ctx, commands.LoadAvg)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, conn.IsConnected())
}

func TestTelnet_BadPassword(t *testing.T) {
	router := newFakeRouter(0)
	conn, err := New("192.168.1.1", AuthConfig{
		Username: "admin",
		Password: "wrong",
		Kind:     KindTelnet,
		Port:     2323,
	}, WithDialer(router.dial), WithTimeout(time.Second), WithLogger(logger.Noop()))
	require.NoError(t, err)

	err = conn.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTelnet), "got %v", err)
	assert.False(t, conn.IsConnected())
	assert.Equal(t, "admin@192.168.1.1:2323", conn.Description())
}

func TestTelnet_DisconnectIdempotent(t *testing.T) {
	router := newFakeRouter(0)
	conn := newTestTelnet(t, router, time.Second)

	require.NoError(t, conn.Disconnect())
	require.NoError(t, conn.Connect(context.Background()))
	require.NoError(t, conn.Disconnect())
	require.NoError(t, conn.Disconnect())
	assert.False(t, conn.IsConnected())
	assert.Nil(t, conn.prompt)
	assert.Zero(t, conn.linebreak)
}

func TestDetermineLinebreak(t *testing.T) {
	log := logger.NewBufferLogger()

	t.Run("no newline is infinite", func(t *testing.T) {
		lb := determineLinebreak([]byte(strings.Repeat(" ", 200)+testPrompt), len(testPrompt), log)
		assert.True(t, math.IsInf(lb, 1))
	})

	t.Run("wrapped segments", func(t *testing.T) {
		first := strings.Repeat(" ", 50)
		full := strings.Repeat(" ", 80)
		data := first + "\r\n" + full + "\r\n" + strings.Repeat(" ", 70) + "\r\n" + testPrompt
		lb := determineLinebreak([]byte(data), len(testPrompt), log)
		assert.Equal(t, float64(len(testPrompt)+50), lb)
		assert.False(t, log.HasLevel("warn"))
	})

	t.Run("inconsistent segments warn", func(t *testing.T) {
		log.Clear()
		data := strings.Repeat(" ", 50) + "\n" + strings.Repeat(" ", 60) + "\n" + testPrompt
		lb := determineLinebreak([]byte(data), len(testPrompt), log)
		assert.Equal(t, float64(len(testPrompt)+50), lb)
		assert.True(t, log.Contains("warn", "inconsistent linebreaks"))
	})
}

func TestFrameResponse(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		cmdLen    int
		linebreak float64
		want      []string
	}{
		{
			name:      "infinite linebreak skips one echo line",
			data:      "cmd\r\nline one\r\nline two\r\n" + testPrompt,
			cmdLen:    40,
			linebreak: math.Inf(1),
			want:      []string{"line one", "line two"},
		},
		{
			name:      "echo wrapped over three lines",
			data:      "aaaa\r\nbbbbbbbb\r\ncc\r\nresult\r\n" + testPrompt,
			cmdLen:    22,
			linebreak: 8,
			want:      []string{"result"},
		},
		{
			name:      "no output",
			data:      "cmd\r\n" + testPrompt,
			cmdLen:    10,
			linebreak: 80,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frameResponse([]byte(tt.data), tt.cmdLen, tt.linebreak)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTelnet_DialTimeout(t *testing.T) {
	conn, err := New("192.168.1.1", AuthConfig{Username: "admin", Password: "secret", Kind: KindTelnet},
		WithTimeout(100*time.Millisecond),
		WithLogger(logger.Noop()),
		WithDialer(func(ctx context.Context, network, address string) (net.Conn, error) {
			<-ctx.Done()
			return nil, &net.OpError{Op: "dial", Net: network, Err: ctx.Err()}
		}))
	require.NoError(t, err)

	err = conn.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTimeout), "got %v", err)
	assert.False(t, conn.IsConnected())
}
