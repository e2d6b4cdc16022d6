package testing

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rileyhilliard/rstat/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDialer_RecordsConfig(t *testing.T) {
	d := NewFakeDialer()
	cfg := sshutil.DialConfig{Target: sshutil.Target{Host: "box", Port: 2200, User: "me"}}

	conn, err := d.Dial(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "box", conn.GetHost())
	assert.Equal(t, "box:2200", conn.GetAddress())
	assert.Equal(t, []sshutil.DialConfig{cfg}, d.Configs())
	assert.Same(t, conn, sshutil.Conn(d.LastConn()))
}

func TestFakeDialer_Err(t *testing.T) {
	d := NewFakeDialer()
	d.Err = errors.New("refused")

	conn, err := d.Dial(context.Background(), sshutil.DialConfig{})
	assert.Nil(t, conn)
	assert.EqualError(t, err, "refused")
	assert.Nil(t, d.LastConn())
}

func TestFakeDialer_BlockHonorsContext(t *testing.T) {
	d := NewFakeDialer()
	d.Block = true

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := d.Dial(ctx, sshutil.DialConfig{})
		errc <- err
	}()

	<-d.Dialing()
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestFakeDialer_Release(t *testing.T) {
	d := NewFakeDialer()
	d.Block = true
	d.IgnoreCancel = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		_, err := d.Dial(ctx, sshutil.DialConfig{})
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("dial returned before release")
	case <-time.After(20 * time.Millisecond):
	}
	d.Release()
	assert.NoError(t, <-done)
}

func TestFakeConn_StreamLifecycle(t *testing.T) {
	c := NewFakeConn("box", "box:22")

	stream, err := c.ExecPTY("while sleep 1; do echo; done")
	require.NoError(t, err)
	fs := <-c.Execs()

	go func() {
		_ = fs.Emit("hello")
		fs.End()
	}()

	r := bufio.NewReader(stream)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hello\r\n", line)

	_, err = r.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, stream.Close())
	assert.True(t, fs.Closed())
	assert.Error(t, fs.Emit("late"))
	assert.Equal(t, []string{"while sleep 1; do echo; done"}, c.Commands())
}

func TestFakeConn_DropEndsStreamsAndWait(t *testing.T) {
	c := NewFakeConn("box", "box:22")
	stream, err := c.ExecPTY("cmd")
	require.NoError(t, err)

	waitErr := make(chan error, 1)
	go func() { waitErr <- c.Wait() }()

	drop := errors.New("connection reset")
	c.Drop(drop)

	assert.ErrorIs(t, <-waitErr, drop)
	_, err = io.ReadAll(stream)
	assert.NoError(t, err)
	assert.True(t, c.Closed())

	_, err = c.ExecPTY("again")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFakeConn_CloseIsIdempotent(t *testing.T) {
	c := NewFakeConn("box", "box:22")
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.NoError(t, c.Wait())
}

func TestFakeConn_FailExec(t *testing.T) {
	c := NewFakeConn("box", "box:22")
	c.FailExec(errors.New("no pty"))

	_, err := c.ExecPTY("cmd")
	assert.EqualError(t, err, "no pty")
	assert.Equal(t, []string{"cmd"}, c.Commands())
}
