package connection

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeKey(t *testing.T, passphrase string) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte(passphrase))
	}
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0600))
	return path
}

func TestResolveSSHSettings(t *testing.T) {
	configPath := writeSSHConfig(t, `
Host router
    HostName 192.168.50.1
    User root
    Port 2222
    IdentityFile /keys/router

Match host *.lan
    User ignored
`)

	tests := []struct {
		name     string
		host     string
		auth     AuthConfig
		wantHost string
		wantPort string
		wantUser string
		wantKey  string
	}{
		{
			name:     "alias from ssh config",
			host:     "router",
			wantHost: "192.168.50.1",
			wantPort: "2222",
			wantUser: "root",
			wantKey:  "/keys/router",
		},
		{
			name:     "user and port in host string win over config",
			host:     "admin@router:22",
			wantHost: "192.168.50.1",
			wantPort: "22",
			wantUser: "admin",
			wantKey:  "/keys/router",
		},
		{
			name:     "explicit auth wins",
			host:     "router",
			auth:     AuthConfig{Username: "owner", Port: 8022, KeyFile: "/keys/other"},
			wantHost: "192.168.50.1",
			wantPort: "8022",
			wantUser: "owner",
			wantKey:  "/keys/other",
		},
		{
			name:     "unknown host defaults",
			host:     "192.168.1.1",
			wantHost: "192.168.1.1",
			wantPort: "22",
			wantUser: "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolveSSHSettings(tt.host, tt.auth, configPath, logger.Noop())
			assert.Equal(t, tt.wantHost, s.hostname)
			assert.Equal(t, tt.wantPort, s.port)
			assert.Equal(t, tt.wantUser, s.user)
			assert.Equal(t, tt.wantKey, s.identityFile)
		})
	}
}

func TestResolveSSHSettings_MissingConfig(t *testing.T) {
	s := resolveSSHSettings("router.lan", AuthConfig{}, filepath.Join(t.TempDir(), "nope"), logger.Noop())
	assert.Equal(t, "router.lan:22", s.address())
	assert.Equal(t, "admin", s.user)
}

func TestPreprocessSSHConfig(t *testing.T) {
	path := writeSSHConfig(t, "Host a\n  User x\nMatch all\n  User y\n")
	content, matchLine, err := preprocessSSHConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, matchLine)
	assert.NotContains(t, string(content), "Match")
}

func TestKeyFileAuth(t *testing.T) {
	t.Run("plain key", func(t *testing.T) {
		auth, err := keyFileAuth(writeKey(t, ""), "")
		require.NoError(t, err)
		assert.NotNil(t, auth)
	})

	t.Run("encrypted key without passphrase", func(t *testing.T) {
		path := writeKey(t, "hunter2")
		_, err := keyFileAuth(path, "")
		var encErr *EncryptedKeyError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, path, encErr.Path)
	})

	t.Run("encrypted key with passphrase", func(t *testing.T) {
		auth, err := keyFileAuth(writeKey(t, "hunter2"), "hunter2")
		require.NoError(t, err)
		assert.NotNil(t, auth)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := keyFileAuth(filepath.Join(t.TempDir(), "none"), "")
		require.Error(t, err)
	})
}

func TestBuildClientConfig(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	t.Run("password offers two methods", func(t *testing.T) {
		s := &sshSettings{hostname: "192.168.1.1", port: "22", user: "admin"}
		cfg, err := buildClientConfig(s, AuthConfig{Password: "secret"}, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "admin", cfg.User)
		assert.Len(t, cfg.Auth, 2)
		assert.Equal(t, HostKeyAlgorithms, cfg.HostKeyAlgorithms)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("no methods", func(t *testing.T) {
		s := &sshSettings{hostname: "192.168.1.1", port: "22", user: "admin"}
		_, err := buildClientConfig(s, AuthConfig{}, time.Second)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrSSH))
	})

	t.Run("explicit encrypted key is an error", func(t *testing.T) {
		path := writeKey(t, "hunter2")
		s := &sshSettings{hostname: "192.168.1.1", port: "22", user: "admin", identityFile: path}
		_, err := buildClientConfig(s, AuthConfig{KeyFile: path, Password: "secret"}, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encrypted")
	})

	t.Run("key from ssh config is optional", func(t *testing.T) {
		path := writeKey(t, "hunter2")
		s := &sshSettings{hostname: "192.168.1.1", port: "22", user: "admin", identityFile: path}
		cfg, err := buildClientConfig(s, AuthConfig{Password: "secret"}, time.Second)
		require.NoError(t, err)
		assert.Len(t, cfg.Auth, 2)
		assert.Equal(t, []string{path}, s.encryptedKeys)
	})

	t.Run("key and password", func(t *testing.T) {
		path := writeKey(t, "")
		s := &sshSettings{hostname: "192.168.1.1", port: "22", user: "admin", identityFile: path}
		cfg, err := buildClientConfig(s, AuthConfig{KeyFile: path, Password: "secret"}, time.Second)
		require.NoError(t, err)
		assert.Len(t, cfg.Auth, 3)
	})

	t.Run("missing known_hosts", func(t *testing.T) {
		s := &sshSettings{hostname: "192.168.1.1", port: "22", user: "admin"}
		_, err := buildClientConfig(s, AuthConfig{Password: "x", KnownHosts: filepath.Join(t.TempDir(), "kh")}, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "known_hosts")
	})
}

func TestSuggestionForHandshakeError(t *testing.T) {
	assert.Contains(t,
		suggestionForHandshakeError(stringError("ssh: unable to authenticate"), []string{"/k"}),
		"/k is encrypted")
	assert.Contains(t,
		suggestionForHandshakeError(stringError("ssh: unable to authenticate"), nil),
		"username and password")
	assert.Contains(t,
		suggestionForHandshakeError(stringError("ssh: host key mismatch"), nil),
		"known_hosts")
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "/abs/key", expandPath("/abs/key"))
	assert.Equal(t, filepath.Join(homeDir(), ".ssh", "id"), expandPath("~/.ssh/id"))
}
