package sshutil

import (
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/rileyhilliard/rstat/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// PTY geometry for polling sessions. Wide enough that ps doesn't truncate
// command lines.
const (
	ptyTerm = "xterm"
	ptyRows = 40
	ptyCols = 400
)

// ExecPTY starts cmd with a pseudo-terminal allocated and returns its
// output stream. The pty merges stderr into stdout and turns newlines into
// CRLF.
func (c *Client) ExecPTY(cmd string) (Stream, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}

	if c.agentForward {
		// Not fatal: the probe doesn't need the agent.
		_ = agent.RequestAgentForwarding(session)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,     // Disable echoing
		ssh.TTY_OP_ISPEED: 14400, // Input speed = 14.4kbaud
		ssh.TTY_OP_OSPEED: 14400, // Output speed = 14.4kbaud
	}
	if err := session.RequestPty(ptyTerm, ptyRows, ptyCols, modes); err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Failed to allocate PTY",
			"The remote host may not support pseudo-terminals.")
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Failed to attach to command output",
			"Try reconnecting.")
	}

	if err := session.Start(cmd); err != nil {
		session.Close()
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to start remote command on %s", c.Host),
			"Check the remote shell is POSIX compatible.")
	}

	return &ptyStream{session: session, out: stdout}, nil
}

// ptyStream is the output side of a running session.
type ptyStream struct {
	session *ssh.Session
	out     io.Reader

	once sync.Once
	err  error
}

func (s *ptyStream) Read(p []byte) (int, error) {
	return s.out.Read(p)
}

// Close ends the session. A session the server already closed is not an
// error.
func (s *ptyStream) Close() error {
	s.once.Do(func() {
		err := s.session.Close()
		if err != nil && !stderrors.Is(err, io.EOF) {
			s.err = err
		}
	})
	return s.err
}
