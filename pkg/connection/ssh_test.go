package connection

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
)

// sshRouter is an in-process SSH server answering exec requests the way the
// router's dropbear does. Commands not in outputs or exits hang until the
// session is closed.
type sshRouter struct {
	listener net.Listener
	config   *ssh.ServerConfig
	outputs  map[string]string
	exits    map[string]uint32
	accepts  atomic.Int32

	mu       sync.Mutex
	received []string
	dialed   []string
	users    []string
}

func newSSHRouter(t *testing.T) *sshRouter {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	r := &sshRouter{
		listener: listener,
		outputs:  map[string]string{},
		exits:    map[string]uint32{},
	}
	r.config = &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			r.mu.Lock()
			r.users = append(r.users, meta.User())
			r.mu.Unlock()
			if string(password) != "secret" {
				return nil, stringError("bad password")
			}
			return nil, nil
		},
	}
	r.config.AddHostKey(signer)

	go r.acceptLoop()
	return r
}

func (r *sshRouter) dial(ctx context.Context, network, address string) (net.Conn, error) {
	r.mu.Lock()
	r.dialed = append(r.dialed, address)
	r.mu.Unlock()
	var d net.Dialer
	return d.DialContext(ctx, "tcp", r.listener.Addr().String())
}

func (r *sshRouter) acceptLoop() {
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			return
		}
		r.accepts.Add(1)
		go r.serve(conn)
	}
}

func (r *sshRouter) serve(conn net.Conn) {
	defer conn.Close()
	_, chans, reqs, err := ssh.NewServerConn(conn, r.config)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "session only")
			continue
		}
		ch, requests, err := newChannel.Accept()
		if err != nil {
			return
		}
		go r.session(ch, requests)
	}
}

func (r *sshRouter) session(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer ch.Close()
	for req := range requests {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}
		var payload struct{ Command string }
		if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
			_ = req.Reply(false, nil)
			continue
		}
		_ = req.Reply(true, nil)

		r.mu.Lock()
		r.received = append(r.received, payload.Command)
		r.mu.Unlock()

		cmd := strings.TrimPrefix(payload.Command, commands.PathExport+" && ")
		out, ok := r.outputs[cmd]
		if !ok {
			// Hang until the client gives up and closes the channel.
			continue
		}
		_, _ = ch.Write([]byte(out))
		status := struct{ Status uint32 }{r.exits[cmd]}
		_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(&status))
		return
	}
}

func (r *sshRouter) receivedCommands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.received...)
}

func (r *sshRouter) seen() (dialed, users []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dialed...), append([]string(nil), r.users...)
}

func newTestSSH(t *testing.T, r *sshRouter, host string, auth AuthConfig, opts ...Option) *SSHConnection {
	t.Helper()
	if auth.Password == "" {
		auth.Password = "secret"
	}
	opts = append([]Option{
		WithDialer(r.dial),
		WithSSHConfig(""),
		WithTimeout(time.Second),
		WithLogger(logger.Noop()),
	}, opts...)
	conn, err := New(host, auth, opts...)
	require.NoError(t, err)
	sshConn, ok := conn.(*SSHConnection)
	require.True(t, ok)
	t.Cleanup(func() { sshConn.Disconnect() })
	return sshConn
}

func TestSSH_RunCommand(t *testing.T) {
	router := newSSHRouter(t)
	router.outputs[commands.LoadAvg] = "0.12 0.08 0.02 1/92 4321\r\n"
	conn := newTestSSH(t, router, "192.168.1.1", AuthConfig{Username: "admin"})

	lines, err := conn.RunCommand(context.Background(), commands.LoadAvg)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.12 0.08 0.02 1/92 4321", ""}, lines)
	assert.True(t, conn.IsConnected())
	assert.Equal(t, []string{commands.WithPath(commands.LoadAvg)}, router.receivedCommands())

	_, err = conn.RunCommand(context.Background(), commands.LoadAvg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), router.accepts.Load(), "commands share one client")
}

func TestSSH_NonZeroExitReturnsOutput(t *testing.T) {
	router := newSSHRouter(t)
	router.outputs[commands.PidOf("vpnclient1")] = ""
	router.exits[commands.PidOf("vpnclient1")] = 1
	router.outputs[commands.ARP] = "? (192.168.1.20) at 00:11:22:33:44:55 [ether]  on br0\n"
	router.exits[commands.ARP] = 1
	conn := newTestSSH(t, router, "192.168.1.1", AuthConfig{Username: "admin"})

	lines, err := conn.RunCommand(context.Background(), commands.PidOf("vpnclient1"))
	require.NoError(t, err)
	assert.Equal(t, []string{""}, lines)

	lines, err = conn.RunCommand(context.Background(), commands.ARP)
	require.NoError(t, err)
	assert.Equal(t, "? (192.168.1.20) at 00:11:22:33:44:55 [ether]  on br0", lines[0])
	assert.True(t, conn.IsConnected())
}

func TestSSH_TimeoutTearsDownAndReconnects(t *testing.T) {
	router := newSSHRouter(t)
	router.outputs[commands.LoadAvg] = "0.12 0.08 0.02 1/92 4321\n"
	conn := newTestSSH(t, router, "192.168.1.1", AuthConfig{Username: "admin"}, WithTimeout(300*time.Millisecond))

	start := time.Now()
	_, err := conn.RunCommand(context.Background(), "sleep 60")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, errors.IsCode(err, errors.ErrTimeout), "got %v", err)
	assert.False(t, conn.IsConnected())

	lines, err := conn.RunCommand(context.Background(), commands.LoadAvg)
	require.NoError(t, err)
	assert.Equal(t, "0.12 0.08 0.02 1/92 4321", lines[0])
	assert.True(t, conn.IsConnected())
	assert.Equal(t, int32(2), router.accepts.Load())
}

func TestSSH_CancelledCommand(t *testing.T) {
	router := newSSHRouter(t)
	conn := newTestSSH(t, router, "192.168.1.1", AuthConfig{Username: "admin"}, WithTimeout(5*time.Second))
	require.NoError(t, conn.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := conn.RunCommand(ctx, "sleep 60")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH), "got %v", err)
	assert.False(t, conn.IsConnected())
}

func TestSSH_BadPassword(t *testing.T) {
	router := newSSHRouter(t)
	conn := newTestSSH(t, router, "192.168.1.1", AuthConfig{Username: "admin", Password: "wrong"})

	err := conn.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH), "got %v", err)
	assert.False(t, conn.IsConnected())
}

func TestSSH_DescriptionUsesResolvedEndpoint(t *testing.T) {
	router := newSSHRouter(t)
	configPath := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(configPath,
		[]byte("Host gw\n  HostName 10.9.9.9\n  Port 2200\n  User root\n"), 0o600))

	conn := newTestSSH(t, router, "gw", AuthConfig{}, WithSSHConfig(configPath))
	assert.Equal(t, "gw:22", conn.Description())

	require.NoError(t, conn.Connect(context.Background()))
	assert.Equal(t, "root@10.9.9.9:2200", conn.Description())
	dialed, users := router.seen()
	assert.Equal(t, []string{"10.9.9.9:2200"}, dialed)
	assert.Equal(t, []string{"root"}, users)

	require.NoError(t, conn.Disconnect())
	assert.Equal(t, "root@10.9.9.9:2200", conn.Description())
}
