// Package testing provides an in-memory sshutil transport for tests.
//
// FakeDialer hands out FakeConns; each ExecPTY on a FakeConn returns a
// FakeStream that the test feeds with Emit and ends with End. Drop simulates
// the server going away.
package testing

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rileyhilliard/rstat/pkg/sshutil"
)

// ErrClosed is returned by operations on a closed FakeConn.
var ErrClosed = errors.New("fake connection closed")

// FakeDialer records dial attempts and returns FakeConns.
type FakeDialer struct {
	// Err, when set, fails every Dial.
	Err error
	// Block makes Dial wait for Release or ctx.
	Block bool
	// IgnoreCancel makes a blocked Dial wait for Release even if ctx ends,
	// like a transport that finishes its handshake regardless.
	IgnoreCancel bool

	mu      sync.Mutex
	configs []sshutil.DialConfig
	conns   []*FakeConn
	release chan struct{}
	relOnce sync.Once
	dialing chan sshutil.DialConfig
}

// NewFakeDialer returns a dialer that succeeds immediately.
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{
		release: make(chan struct{}),
		dialing: make(chan sshutil.DialConfig, 16),
	}
}

// Dial implements sshutil.Dialer.
func (d *FakeDialer) Dial(ctx context.Context, cfg sshutil.DialConfig) (sshutil.Conn, error) {
	d.mu.Lock()
	d.configs = append(d.configs, cfg)
	d.mu.Unlock()

	select {
	case d.dialing <- cfg:
	default:
	}

	if d.Block {
		if d.IgnoreCancel {
			<-d.release
		} else {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-d.release:
			}
		}
	}

	if d.Err != nil {
		return nil, d.Err
	}

	conn := NewFakeConn(cfg.Host, cfg.Address())
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

// Release unblocks pending and future Dials.
func (d *FakeDialer) Release() {
	d.relOnce.Do(func() { close(d.release) })
}

// Dialing delivers the config of each Dial as it starts.
func (d *FakeDialer) Dialing() <-chan sshutil.DialConfig {
	return d.dialing
}

// Configs returns every DialConfig seen so far.
func (d *FakeDialer) Configs() []sshutil.DialConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]sshutil.DialConfig, len(d.configs))
	copy(out, d.configs)
	return out
}

// Conns returns every connection handed out so far.
func (d *FakeDialer) Conns() []*FakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*FakeConn, len(d.conns))
	copy(out, d.conns)
	return out
}

// LastConn returns the most recent connection, or nil.
func (d *FakeDialer) LastConn() *FakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// FakeConn is an in-memory sshutil.Conn.
type FakeConn struct {
	Host    string
	Address string

	mu       sync.Mutex
	execErr  error
	commands []string
	streams  []*FakeStream
	closed   bool
	dropErr  error
	done     chan struct{}
	doneOnce sync.Once
	execs    chan *FakeStream
}

var _ sshutil.Conn = (*FakeConn)(nil)

// NewFakeConn returns an open connection.
func NewFakeConn(host, address string) *FakeConn {
	return &FakeConn{
		Host:    host,
		Address: address,
		done:    make(chan struct{}),
		execs:   make(chan *FakeStream, 16),
	}
}

// FailExec makes subsequent ExecPTY calls return err.
func (c *FakeConn) FailExec(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execErr = err
}

// ExecPTY implements sshutil.Conn.
func (c *FakeConn) ExecPTY(cmd string) (sshutil.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	c.commands = append(c.commands, cmd)
	if c.execErr != nil {
		return nil, c.execErr
	}

	s := NewFakeStream()
	c.streams = append(c.streams, s)
	select {
	case c.execs <- s:
	default:
	}
	return s, nil
}

// Wait implements sshutil.Conn.
func (c *FakeConn) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropErr
}

// Close implements sshutil.Conn.
func (c *FakeConn) Close() error {
	c.finish(nil)
	return nil
}

// Drop simulates the server ending the transport with err.
func (c *FakeConn) Drop(err error) {
	c.finish(err)
}

func (c *FakeConn) finish(err error) {
	c.doneOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.dropErr = err
		streams := c.streams
		c.mu.Unlock()

		for _, s := range streams {
			s.End()
		}
		close(c.done)
	})
}

// GetHost implements sshutil.Conn.
func (c *FakeConn) GetHost() string { return c.Host }

// GetAddress implements sshutil.Conn.
func (c *FakeConn) GetAddress() string { return c.Address }

// Closed reports whether Close or Drop was called.
func (c *FakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Commands returns every command passed to ExecPTY.
func (c *FakeConn) Commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.commands))
	copy(out, c.commands)
	return out
}

// Execs delivers each stream as ExecPTY creates it.
func (c *FakeConn) Execs() <-chan *FakeStream {
	return c.execs
}

// FakeStream is a pipe-backed sshutil.Stream.
type FakeStream struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu     sync.Mutex
	closed bool
}

// NewFakeStream returns an open stream.
func NewFakeStream() *FakeStream {
	r, w := io.Pipe()
	return &FakeStream{r: r, w: w}
}

// Read implements io.Reader.
func (s *FakeStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Close implements io.Closer. It is what the consumer calls.
func (s *FakeStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.r.Close()
}

// Emit writes line followed by CRLF, the way a pty delivers it. It blocks
// until the consumer has read it, and fails once the stream is closed.
func (s *FakeStream) Emit(line string) error {
	return s.WriteRaw(line + "\r\n")
}

// WriteRaw writes raw data, which may hold partial or multiple lines.
func (s *FakeStream) WriteRaw(data string) error {
	_, err := io.WriteString(s.w, data)
	return err
}

// End closes the remote side; the consumer reads io.EOF.
func (s *FakeStream) End() {
	s.w.Close()
}

// Closed reports whether the consumer closed the stream.
func (s *FakeStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
