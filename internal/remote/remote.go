// Package remote owns one SSH connection to a host and the polling loop
// running over it.
//
// A Remote moves through disconnected → connecting → connected →
// disconnecting → disconnected. Connect and Poll start the loop; Stop
// tears it down and is safe to call at any point, any number of times.
// While connected, every parsed probe line replaces the cached Sample and
// fires the update handlers.
//
// Nothing retries. A failed dial or a dropped transport leaves the Remote
// disconnected, and the caller decides whether to Connect again.
package remote

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/keys"
	"github.com/rileyhilliard/rstat/internal/logger"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
)

// DefaultReadyTimeout bounds connect plus handshake.
const DefaultReadyTimeout = 30 * time.Second

// Config is the per-host connection config.
type Config struct {
	// User and Port apply when the host spec doesn't carry them.
	User string
	Port int
	// Key is a private key used as is. It wins over KeyPath.
	Key []byte
	// KeyPath names a private key file read at connect time. Empty means
	// the resolver's default search.
	KeyPath string
}

// Options injects collaborators and tunes the connection.
type Options struct {
	Dialer   sshutil.Dialer
	Resolver keys.Resolver
	Logger   logger.Logger

	ReadyTimeout time.Duration
	Compress     bool
	AgentForward bool
	// AgentSocket defaults to SSH_AUTH_SOCK.
	AgentSocket string

	// Interval is the poll interval used by Start.
	Interval time.Duration
	Script   monitor.ScriptOptions
}

// DefaultOptions returns options with compression and agent forwarding on
// and the real transport and key resolver.
func DefaultOptions() Options {
	return Options{
		Dialer:       sshutil.NewDialer(),
		Resolver:     keys.NewFileResolver(),
		Logger:       logger.Noop(),
		ReadyTimeout: DefaultReadyTimeout,
		Compress:     true,
		AgentForward: true,
		Interval:     monitor.DefaultInterval,
	}
}

// Update is delivered to update handlers for every parsed sample. Values
// are read through the Remote's accessors.
type Update struct {
	Host    string
	Session string
	Raw     string
	At      time.Time
}

// UpdateHandler is called synchronously from the reader goroutine.
type UpdateHandler func(Update)

// Remote is a single host connection with its polling loop.
type Remote struct {
	target sshutil.Target
	cfg    Config
	opts   Options
	log    logger.Logger

	mu          sync.Mutex
	state       State
	gen         uint64
	session     string
	conn        sshutil.Conn
	stream      sshutil.Stream
	polling     bool
	cancelDial  context.CancelFunc
	done        chan struct{}
	sample      monitor.Sample
	hasSample   bool
	transitions []StateTransition

	updateHandlers []UpdateHandler
	stateHandlers  []StateHandler
}

// New parses hostSpec and returns a disconnected Remote. Zero-valued
// collaborators in opts fall back to the real transport, the file key
// resolver and a no-op logger.
func New(hostSpec string, cfg Config, opts Options) (*Remote, error) {
	target, err := ParseTarget(hostSpec, cfg)
	if err != nil {
		return nil, err
	}

	if opts.Dialer == nil {
		opts.Dialer = sshutil.NewDialer()
	}
	if opts.Resolver == nil {
		opts.Resolver = keys.NewFileResolver()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.Interval <= 0 {
		opts.Interval = monitor.DefaultInterval
	}

	done := make(chan struct{})
	close(done)

	return &Remote{
		target: target,
		cfg:    cfg,
		opts:   opts,
		log:    opts.Logger,
		state:  StateDisconnected,
		done:   done,
		sample: monitor.EmptySample(),
	}, nil
}

// Target returns the parsed connection target.
func (r *Remote) Target() sshutil.Target {
	return r.target
}

// Host returns the target host name.
func (r *Remote) Host() string {
	return r.target.Host
}

// Start connects and begins polling at the configured interval.
func (r *Remote) Start(ctx context.Context) error {
	if err := r.Connect(ctx); err != nil {
		return err
	}
	return r.Poll(r.opts.Interval)
}

// Connect dials the host and blocks until the connection is ready or has
// failed. It only runs from the disconnected state.
func (r *Remote) Connect(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateDisconnected {
		state := r.state
		r.mu.Unlock()
		return errors.New(errors.ErrState,
			fmt.Sprintf("Can't connect to %s while %s", r.target.Host, state),
			"Stop the current connection first")
	}

	r.gen++
	gen := r.gen
	r.done = make(chan struct{})
	r.session = uuid.NewString()
	r.sample = monitor.EmptySample()
	r.hasSample = false
	r.polling = false
	dialCtx, cancel := context.WithCancel(ctx)
	r.cancelDial = cancel
	notify := r.transition(StateConnecting)
	r.mu.Unlock()

	r.log.Debug("connecting to %s", r.target)
	result := make(chan connectResult, 1)
	go func() { result <- r.establish(dialCtx, cancel, gen) }()

	// Connecting handlers may call Stop, which waits for the dial above to
	// resolve rather than for this goroutine.
	notify()
	res := <-result
	res.notify()

	switch {
	case res.stopped:
		r.log.Debug("connect to %s stopped before ready", r.target.Host)
		return errors.WrapWithCode(res.err, errors.ErrState,
			fmt.Sprintf("Connection to %s was stopped before it was ready", r.target.Host),
			"")
	case res.err != nil:
		r.log.Warn("connect to %s failed: %v", r.target.Host, res.err)
		return res.err
	}
	return nil
}

// connectResult is the outcome of establish. notify fires the handlers of
// the transition establish made.
type connectResult struct {
	err     error
	stopped bool
	notify  func()
}

// establish dials for connection gen and moves to connected, or back to
// disconnected when the dial failed or Stop was called meanwhile.
func (r *Remote) establish(ctx context.Context, cancel context.CancelFunc, gen uint64) connectResult {
	conn, err := r.dial(ctx)
	cancel()

	r.mu.Lock()
	r.cancelDial = nil
	stopped := r.state == StateDisconnecting || r.gen != gen

	if err != nil || stopped {
		notify := r.transition(StateDisconnected)
		r.mu.Unlock()
		if conn != nil {
			closeQuietly(r.log, "connection", conn)
		}
		return connectResult{err: err, stopped: stopped, notify: notify}
	}

	r.conn = conn
	session := r.session
	notify := r.transition(StateConnected)
	r.mu.Unlock()

	go r.watch(gen, conn)

	r.log.Info("connected to %s (session %s)", r.target, session)
	return connectResult{notify: notify}
}

// dial resolves the credential and opens the transport.
func (r *Remote) dial(ctx context.Context) (sshutil.Conn, error) {
	key := r.cfg.Key
	if len(key) == 0 {
		var err error
		key, err = r.opts.Resolver.Resolve(r.cfg.KeyPath)
		if err != nil {
			return nil, errors.Ensure(err, errors.ErrSSH,
				"Couldn't load an SSH key", "Check the configured key path")
		}
		if key == nil {
			r.log.Debug("no key file found for %s, relying on the agent", r.target.Host)
		}
	}

	conn, err := r.opts.Dialer.Dial(ctx, sshutil.DialConfig{
		Target:       r.target,
		Key:          key,
		ReadyTimeout: r.opts.ReadyTimeout,
		Compress:     r.opts.Compress,
		AgentForward: r.opts.AgentForward,
		AgentSocket:  r.opts.AgentSocket,
	})
	if err != nil {
		return nil, errors.Ensure(err, errors.ErrSSH,
			fmt.Sprintf("Can't connect to %s", r.target),
			"Make sure the host is reachable: ssh "+r.target.String())
	}
	return conn, nil
}

// Poll starts the remote probe loop on the current connection. Lines are
// read on a background goroutine until the channel ends or Stop is called.
func (r *Remote) Poll(interval time.Duration) error {
	r.mu.Lock()
	if r.state != StateConnected {
		state := r.state
		r.mu.Unlock()
		return errors.New(errors.ErrState,
			fmt.Sprintf("Can't poll %s while %s", r.target.Host, state),
			"Connect first")
	}
	if r.polling {
		r.mu.Unlock()
		return errors.New(errors.ErrState,
			fmt.Sprintf("Already polling %s", r.target.Host),
			"Only one poll runs per connection")
	}
	r.polling = true
	conn, gen := r.conn, r.gen
	r.mu.Unlock()

	cmd := monitor.BuildCommand(interval, r.opts.Script)
	r.log.Debug("starting probe on %s every %ss", r.target.Host, monitor.FormatInterval(interval))

	stream, err := conn.ExecPTY(cmd)
	if err != nil {
		r.beginStop(gen)
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't start the probe on %s", r.target.Host),
			"Check the remote shell is POSIX compatible and has top, ps and df")
	}

	r.mu.Lock()
	if r.gen != gen || r.state != StateConnected {
		r.mu.Unlock()
		closeQuietly(r.log, "stream", stream)
		return errors.New(errors.ErrState,
			fmt.Sprintf("Connection to %s ended before polling started", r.target.Host),
			"")
	}
	r.stream = stream
	r.mu.Unlock()

	go r.read(gen, stream)
	return nil
}

// Stop ends polling and the connection, waiting until the transport is
// down or ctx is done. It is a no-op when already disconnected. While
// connecting, it cancels the dial and waits for the dial to resolve.
//
// Update handlers run outside the lock, so a handler for a line accepted
// just before Stop may still be running, or about to run, when Stop
// returns. No line read after Stop began is delivered.
func (r *Remote) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateDisconnected {
		r.mu.Unlock()
		return nil
	}
	notify, stream, conn := r.beginStopLocked()
	done := r.done
	r.mu.Unlock()

	notify()
	if stream != nil {
		closeQuietly(r.log, "stream", stream)
	}
	if conn != nil {
		closeQuietly(r.log, "connection", conn)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.WrapWithCode(ctx.Err(), errors.ErrState,
			fmt.Sprintf("Timed out waiting for %s to disconnect", r.target.Host),
			"The connection is still closing in the background")
	}
}

// Disconnect is Stop.
func (r *Remote) Disconnect(ctx context.Context) error {
	return r.Stop(ctx)
}

// Done returns a channel closed when the current connection reaches the
// disconnected state. Before the first Connect it is already closed.
func (r *Remote) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// beginStopLocked starts teardown without waiting. It returns the handles
// to close once r.mu is released.
func (r *Remote) beginStopLocked() (notify func(), stream sshutil.Stream, conn sshutil.Conn) {
	switch r.state {
	case StateConnecting:
		if r.cancelDial != nil {
			r.cancelDial()
		}
		return r.transition(StateDisconnecting), nil, nil
	case StateConnected:
		stream, conn = r.stream, r.conn
		r.stream = nil
		return r.transition(StateDisconnecting), stream, conn
	default:
		return func() {}, nil, nil
	}
}

// beginStop starts teardown on behalf of the goroutines of connection gen.
func (r *Remote) beginStop(gen uint64) {
	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return
	}
	notify, stream, conn := r.beginStopLocked()
	r.mu.Unlock()

	notify()
	if stream != nil {
		closeQuietly(r.log, "stream", stream)
	}
	if conn != nil {
		closeQuietly(r.log, "connection", conn)
	}
}

// watch waits for the transport to end, from either side.
func (r *Remote) watch(gen uint64, conn sshutil.Conn) {
	err := conn.Wait()

	r.mu.Lock()
	if r.gen != gen || r.state == StateDisconnected {
		r.mu.Unlock()
		return
	}
	dropped := r.state == StateConnected
	stream := r.stream
	r.stream = nil
	r.conn = nil
	r.polling = false
	notify := r.transition(StateDisconnected)
	r.mu.Unlock()

	if stream != nil {
		closeQuietly(r.log, "stream", stream)
	}
	if dropped {
		closeQuietly(r.log, "connection", conn)
		if err != nil {
			r.log.Warn("connection to %s lost: %v", r.target.Host, err)
		} else {
			r.log.Info("connection to %s closed by remote", r.target.Host)
		}
	} else {
		r.log.Info("disconnected from %s", r.target.Host)
	}
	notify()
}

// read feeds probe output to the parser line by line. The end of the
// stream, for any reason, stops the connection, and so does a line longer
// than monitor.MaxLineSize.
func (r *Remote) read(gen uint64, stream sshutil.Stream) {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), monitor.MaxLineSize)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			r.handleLine(gen, line)
		}
	}
	if err := scanner.Err(); err != nil && !stderrors.Is(err, io.ErrClosedPipe) {
		if stderrors.Is(err, bufio.ErrTooLong) {
			r.log.Warn("probe output from %s exceeded %d bytes without a newline", r.target.Host, monitor.MaxLineSize)
		} else {
			r.log.Debug("probe stream from %s ended: %v", r.target.Host, err)
		}
	}
	r.beginStop(gen)
}

func (r *Remote) handleLine(gen uint64, line string) {
	sample, ok := monitor.ParseLine(line)
	if !ok {
		r.log.Debug("ignoring output from %s: %q", r.target.Host, strings.TrimSpace(line))
		return
	}

	r.mu.Lock()
	if r.gen != gen || r.state != StateConnected {
		r.mu.Unlock()
		return
	}
	r.sample = sample
	r.hasSample = true
	u := Update{
		Host:    r.target.Host,
		Session: r.session,
		Raw:     strings.TrimRight(line, "\r\n"),
		At:      time.Now(),
	}
	handlers := make([]UpdateHandler, len(r.updateHandlers))
	copy(handlers, r.updateHandlers)
	r.mu.Unlock()

	for _, h := range handlers {
		h(u)
	}
}

func closeQuietly(log logger.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Debug("closing %s: %v", what, err)
	}
}
