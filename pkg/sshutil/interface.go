package sshutil

import (
	"context"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultPort is the SSH port used when a target doesn't name one.
const DefaultPort = 22

// Target identifies the remote end of a connection.
type Target struct {
	Host string
	Port int
	User string
}

// Address returns host:port, bracketing IPv6 literals.
func (t Target) Address() string {
	port := t.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

// String returns user@host:port.
func (t Target) String() string {
	if t.User == "" {
		return t.Address()
	}
	return t.User + "@" + t.Address()
}

// DialConfig carries everything a Dialer needs for one connection.
type DialConfig struct {
	Target

	// Key is a PEM or OpenSSH private key. Empty means agent auth only.
	Key []byte
	// ReadyTimeout bounds TCP connect plus handshake.
	ReadyTimeout time.Duration
	// Compress requests transport compression where supported.
	Compress bool
	// AgentForward forwards the local agent to sessions on this connection.
	AgentForward bool
	// AgentSocket is the agent's unix socket. Empty means SSH_AUTH_SOCK.
	AgentSocket string
}

// Dialer opens SSH connections. Implementations must be safe for
// concurrent use.
type Dialer interface {
	// Dial blocks until the connection is authenticated and ready, ctx is
	// done, or ReadyTimeout elapses.
	Dial(ctx context.Context, cfg DialConfig) (Conn, error)
}

// Conn is an established SSH connection.
type Conn interface {
	// ExecPTY starts cmd on a pseudo-terminal and returns its output.
	ExecPTY(cmd string) (Stream, error)
	// Wait blocks until the transport ends, either side closing it.
	Wait() error
	// Close ends the connection. Safe to call more than once.
	Close() error

	// GetHost returns the host name used to connect.
	GetHost() string
	// GetAddress returns the resolved host:port address.
	GetAddress() string
}

// Stream is the output of a remote command. Read returns io.EOF when the
// command's channel closes; Close ends the command.
type Stream interface {
	io.ReadCloser
}
