package connection

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
)

// HostKeyAlgorithms are the host key types accepted from a router. Routers
// regenerate dropbear keys on reset, so unless a known_hosts file is
// configured any key of these types is trusted.
var HostKeyAlgorithms = []string{
	"ssh-rsa",
	"rsa-sha2-256",
	"rsa-sha2-512",
	"ecdsa-sha2-nistp256",
	"ecdsa-sha2-nistp384",
	"ecdsa-sha2-nistp521",
	"ssh-ed25519",
}

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

func defaultSSHConfigPath() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// resolveSSHSettings merges the host string, the explicit AuthConfig and the
// matching ssh_config entry. Explicit values win over user@host:port, which
// wins over ssh_config.
func resolveSSHSettings(host string, auth AuthConfig, configPath string, log logger.Logger) *sshSettings {
	settings := &sshSettings{
		port: strconv.Itoa(DefaultSSHPort),
	}

	explicitUser, explicitPort := false, false
	if atIdx := strings.Index(host, "@"); atIdx != -1 {
		settings.user = host[:atIdx]
		host = host[atIdx+1:]
		explicitUser = true
	}

	if h, p, err := net.SplitHostPort(host); err == nil {
		if _, convErr := strconv.Atoi(p); convErr == nil {
			host = h
			settings.port = p
			explicitPort = true
		}
	}
	settings.hostname = host

	if configPath != "" {
		applySSHConfig(settings, host, configPath, explicitUser, explicitPort, log)
	}

	if auth.Username != "" {
		settings.user = auth.Username
	}
	if auth.Port != 0 {
		settings.port = strconv.Itoa(auth.Port)
	}
	if auth.KeyFile != "" {
		settings.identityFile = expandPath(auth.KeyFile)
	}
	if settings.user == "" {
		settings.user = "admin"
	}
	return settings
}

func applySSHConfig(settings *sshSettings, alias, configPath string, explicitUser, explicitPort bool, log logger.Logger) {
	content, matchLine, err := preprocessSSHConfig(configPath)
	if err != nil {
		return
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		log.Debug("ignoring unreadable ssh config %s: %v", configPath, err)
		return
	}

	found := false
	if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
		settings.hostname = hostname
		found = true
	}
	if port, _ := cfg.Get(alias, "Port"); port != "" && !explicitPort {
		settings.port = port
		found = true
	}
	if user, _ := cfg.Get(alias, "User"); user != "" && !explicitUser {
		settings.user = user
		found = true
	}
	if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
		settings.identityFile = expandPath(identity)
		found = true
	}

	if matchLine > 0 && !found {
		log.Debug("host %s not found before the Match block at line %d of %s", alias, matchLine, configPath)
	}
}

// preprocessSSHConfig returns the config content up to the first Match
// directive, which ssh_config cannot parse, and that directive's line number.
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}

// buildClientConfig creates the SSH client config. A key file takes part when
// configured, the password is offered as both password and
// keyboard-interactive auth, and the agent is only consulted when neither is set.
func buildClientConfig(settings *sshSettings, auth AuthConfig, timeout time.Duration) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod

	if settings.identityFile != "" {
		keyAuth, err := keyFileAuth(settings.identityFile, auth.Passphrase)
		if err != nil {
			var encErr *EncryptedKeyError
			encrypted := stderrors.As(err, &encErr)
			if encrypted {
				settings.encryptedKeys = append(settings.encryptedKeys, settings.identityFile)
			}
			// A key that only came from ssh_config is optional.
			if auth.KeyFile != "" && encrypted {
				return nil, errors.New(errors.ErrSSH,
					fmt.Sprintf("SSH key %s is encrypted", settings.identityFile),
					"Set auth.passphrase in your config")
			}
			if auth.KeyFile != "" {
				return nil, errors.WrapWithCode(err, errors.ErrSSH,
					fmt.Sprintf("Couldn't load SSH key %s", settings.identityFile),
					"Check auth.ssh_key points to a readable private key")
			}
		} else {
			methods = append(methods, keyAuth)
		}
	}

	if auth.Password != "" {
		password := auth.Password
		methods = append(methods,
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	if len(methods) == 0 {
		if agentAuth := sshAgentAuth(); agentAuth != nil {
			methods = append(methods, agentAuth)
		}
	}

	if len(methods) == 0 {
		return nil, errors.New(errors.ErrSSH,
			"No SSH auth methods available",
			"Set auth.password or auth.ssh_key, or load a key into ssh-agent")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // routers rotate self-signed host keys
	if auth.KnownHosts != "" {
		var err error
		hostKeyCallback, err = createHostKeyCallback(expandPath(auth.KnownHosts))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrSSH,
				fmt.Sprintf("Couldn't load known_hosts file %s", auth.KnownHosts),
				"Fix the path or remove auth.known_hosts to accept any router key")
		}
	}

	return &ssh.ClientConfig{
		User:              settings.user,
		Auth:              methods,
		HostKeyCallback:   hostKeyCallback,
		HostKeyAlgorithms: HostKeyAlgorithms,
		Timeout:           timeout,
	}, nil
}

var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// sshAgentAuth returns agent auth when SSH_AUTH_SOCK has keys loaded.
// The agent connection is shared by every SSH connection in the process.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})

	if agentClient == nil {
		return nil
	}

	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent closes the shared ssh-agent connection if one is open.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth returns public key auth for the key at keyPath. It returns an
// EncryptedKeyError when the key needs a passphrase that was not given.
func keyFileAuth(keyPath, passphrase string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(key)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || (passphrase == "" && isEncryptedPEM(key)) {
			return nil, &EncryptedKeyError{Path: keyPath}
		}
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func isEncryptedPEM(data []byte) bool {
	return bytes.Contains(data, []byte("ENCRYPTED"))
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Is SSH enabled on the router? See Administration > System > Service"
	case strings.Contains(errStr, "no route to host"), strings.Contains(errStr, "network is unreachable"):
		return "Can't route to the router. Check your network connection."
	case strings.Contains(errStr, "timeout"):
		return "Connection timed out. The router might be offline or the port filtered."
	default:
		return "Make sure the router is reachable: ping <host>"
	}
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "unable to authenticate"), strings.Contains(errStr, "no supported methods"):
		if len(encryptedKeys) > 0 {
			return fmt.Sprintf("Your key %s is encrypted. Set auth.passphrase.", strings.Join(encryptedKeys, ", "))
		}
		return "Authentication failed. Check the router username and password or key."
	case strings.Contains(errStr, "host key"):
		return "Host key issue. Check auth.known_hosts or remove it to accept the router key."
	default:
		return "Something went wrong during SSH setup. Try: ssh <user>@<host>"
	}
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError reports a router key that differs from known_hosts.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: router sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns steps to fix the mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	var wantTypes []string
	for _, k := range e.Want {
		wantTypes = append(wantTypes, k.Key.Type())
	}
	wantStr := "unknown"
	if len(wantTypes) > 0 {
		wantStr = strings.Join(wantTypes, ", ")
	}

	return fmt.Sprintf(
		"The router's host key doesn't match %s.\n"+
			"  Known types: %s\n"+
			"  Router sent: %s\n\n"+
			"  If the router was reset, remove the old entry:\n"+
			"    ssh-keygen -R %s -f %s",
		e.KnownHosts, wantStr, e.ReceivedType, host, e.KnownHosts)
}

// createHostKeyCallback wraps the knownhosts callback to report mismatches
// as HostKeyMismatchError.
func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		if err != nil {
			var keyErr *knownhosts.KeyError
			if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
				return &HostKeyMismatchError{
					Hostname:     hostname,
					ReceivedType: key.Type(),
					KnownHosts:   knownHostsPath,
					Want:         keyErr.Want,
				}
			}
		}
		return err
	}, nil
}
