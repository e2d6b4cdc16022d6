package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/logger"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultReadyTimeout bounds connect plus handshake when DialConfig
// leaves ReadyTimeout unset.
const DefaultReadyTimeout = 30 * time.Second

// Client wraps an SSH connection with additional metadata.
type Client struct {
	*ssh.Client
	Host    string // The host name used to connect
	Address string // The resolved address (host:port)

	agentForward bool
	agentConn    net.Conn
	closeOnce    sync.Once
	closeErr     error
}

var _ Conn = (*Client)(nil)

// SSHDialer dials real SSH servers with golang.org/x/crypto/ssh.
type SSHDialer struct {
	// StrictHostKeyChecking verifies host keys against KnownHostsPath.
	// When false, any host key is accepted.
	StrictHostKeyChecking bool
	// KnownHostsPath defaults to ~/.ssh/known_hosts.
	KnownHostsPath string
	// Logger receives debug output. Nil means logger.Noop().
	Logger logger.Logger
}

// NewDialer returns a dialer with host key checking on.
func NewDialer() *SSHDialer {
	return &SSHDialer{StrictHostKeyChecking: true}
}

// Dial implements Dialer.
func (d *SSHDialer) Dial(ctx context.Context, cfg DialConfig) (Conn, error) {
	log := d.Logger
	if log == nil {
		log = logger.Noop()
	}

	host := cfg.Host
	address := cfg.Address()

	if cfg.Compress {
		log.Debug("compression requested for %s; not negotiated by this transport", host)
	}

	auth, err := buildAuth(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Keep the agent connection only when it serves forwarding.
		if auth.agentConn != nil && !cfg.AgentForward {
			auth.agentConn.Close()
		}
	}()

	hostKeyCallback, err := d.hostKeyCallback()
	if err != nil {
		auth.closeAgent()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't load known_hosts",
			"Check ~/.ssh/known_hosts is readable, or disable strict host key checking")
	}

	timeout := cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Debug("connecting to %s as %s", address, cfg.User)

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", address)
	if err != nil {
		auth.closeAgent()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	// The handshake has no ctx of its own; a deadline plus closing the
	// socket on cancel keeps it bounded.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth.methods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	})
	if !stop() {
		// ctx ended during the handshake and the socket is already closed.
		if err == nil {
			sshConn.Close()
		}
		auth.closeAgent()
		return nil, errors.WrapWithCode(ctx.Err(), errors.ErrSSH,
			fmt.Sprintf("Connecting to '%s' was interrupted", host),
			suggestionForDialError(ctx.Err()))
	}
	if err != nil {
		conn.Close()
		auth.closeAgent()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.New(errors.ErrSSH,
				hostKeyErr.Error(),
				hostKeyErr.Suggestion())
		}

		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			suggestionForHandshakeError(err, auth.encryptedKeys))
	}
	_ = conn.SetDeadline(time.Time{})

	client := &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}

	if cfg.AgentForward && auth.agentConn != nil {
		if err := agent.ForwardToRemote(client.Client, auth.socket); err != nil {
			log.Warn("agent forwarding to %s unavailable: %v", host, err)
			auth.agentConn.Close()
		} else {
			client.agentForward = true
			client.agentConn = auth.agentConn
		}
	}

	log.Debug("connected to %s", address)
	return client, nil
}

// Close closes the SSH connection and any agent connection it holds.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.Client != nil {
			c.closeErr = c.Client.Close()
		}
		if c.agentConn != nil {
			c.agentConn.Close()
		}
	})
	return c.closeErr
}

// GetHost returns the host name used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// authSet is the result of assembling auth methods for one dial.
type authSet struct {
	methods       []ssh.AuthMethod
	encryptedKeys []string
	agentConn     net.Conn
	socket        string
}

func (a *authSet) closeAgent() {
	if a.agentConn != nil {
		a.agentConn.Close()
		a.agentConn = nil
	}
}

// buildAuth collects public key auth from the supplied key and from the
// agent. An empty agent is skipped since it fails auth when placed first.
func buildAuth(cfg DialConfig) (*authSet, error) {
	auth := &authSet{}

	if len(cfg.Key) > 0 {
		signer, err := parseKey(cfg.Key)
		if err != nil {
			var encErr *EncryptedKeyError
			if !stderrors.As(err, &encErr) {
				return nil, errors.WrapWithCode(err, errors.ErrSSH,
					"Couldn't parse the SSH private key",
					"Check the key is a PEM or OpenSSH private key")
			}
			auth.encryptedKeys = append(auth.encryptedKeys, "(configured key)")
		} else {
			auth.methods = append(auth.methods, ssh.PublicKeys(signer))
		}
	}

	socket := cfg.AgentSocket
	if socket == "" {
		socket = os.Getenv("SSH_AUTH_SOCK")
	}
	if socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			auth.agentConn = conn
			auth.socket = socket
			client := agent.NewClient(conn)
			if signers, err := client.Signers(); err == nil && len(signers) > 0 {
				auth.methods = append(auth.methods, ssh.PublicKeysCallback(client.Signers))
			}
		}
	}

	if len(auth.methods) == 0 {
		auth.closeAgent()
		msg := "No SSH auth methods available"
		suggestion := "Point at a key with --key, or load one into the agent: ssh-add"
		if len(auth.encryptedKeys) > 0 {
			msg = "The SSH key is encrypted (passphrase protected)"
			suggestion = addKeySuggestion(nil)
		}
		return nil, errors.New(errors.ErrSSH, msg, suggestion)
	}
	return auth, nil
}

// parseKey returns EncryptedKeyError if the key requires a passphrase.
func parseKey(key []byte) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || strings.Contains(err.Error(), "encrypted") {
			return nil, &EncryptedKeyError{}
		}
		return nil, err
	}
	return signer, nil
}

func (d *SSHDialer) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if !d.StrictHostKeyChecking {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // User explicitly disabled host key checking
	}
	path := d.KnownHostsPath
	if path == "" {
		path = filepath.Join(homeDir(), ".ssh", "known_hosts")
	}
	return createHostKeyCallback(path)
}

// createHostKeyCallback wraps the knownhosts callback to provide better error messages.
func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if err != nil && stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   knownHostsPath,
				Want:         keyErr.Want,
			}
		}
		return err
	}, nil
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

func suggestionForDialError(err error) string {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	if stderrors.Is(err, context.Canceled) {
		return "The connection was cancelled before it was ready."
	}
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH running on that box? Try: ssh <host>"
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the host. Check your network connection."
	}
	if strings.Contains(errStr, "timeout") {
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") || strings.Contains(errStr, "no supported methods") {
		if len(encryptedKeys) > 0 {
			return addKeySuggestion(encryptedKeys)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	}
	if strings.Contains(errStr, "host key") {
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}

func addKeySuggestion(keys []string) string {
	add := "ssh-add"
	if runtime.GOOS == "darwin" {
		add = "ssh-add --apple-use-keychain"
	}

	var sb strings.Builder
	sb.WriteString("Your key is encrypted. Add it to the agent:\n")
	if len(keys) == 0 {
		keys = []string{"<key>"}
	}
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("  %s %s\n", add, key))
	}
	sb.WriteString("\nNot sure which key? Check with: ssh -v <host>")
	return sb.String()
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	if e.Path == "" {
		return "SSH key is encrypted (passphrase protected)"
	}
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError provides helpful context when known_hosts verification fails.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns actionable steps to fix the host key mismatch.
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
		"The server's host key doesn't match what's in known_hosts.\n"+
			"  Known types: %s\n"+
			"  Server sent: %s\n\n"+
			"  Remove the old entry and reconnect:\n"+
			"    ssh-keygen -R %s\n"+
			"  Or check it against: %s",
		wantStr, e.ReceivedType, host, e.KnownHosts)
}
