package transport

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// streamConn frames a byte stream with a u32 little-endian length prefix in
// front of each encoded frame. It backs both the tcp and mem transports.
type streamConn struct {
	nc net.Conn
	br *bufio.Reader

	wmu sync.Mutex
	bw  *bufio.Writer
}

// NewStreamConn wraps a stream connection in length-prefixed framing.
func NewStreamConn(nc net.Conn) Conn {
	return &streamConn{
		nc: nc,
		br: bufio.NewReader(nc),
		bw: bufio.NewWriter(nc),
	}
}

func (c *streamConn) Send(ctx context.Context, f Frame) error {
	if len(f.Payload)+FrameHeaderLen > MaxFrameBytes {
		return fmt.Errorf("frame of %d bytes exceeds limit", len(f.Payload)+FrameHeaderLen)
	}
	body := EncodeFrame(f)
	release := Guard(ctx, c.nc)
	defer release()

	c.wmu.Lock()
	defer c.wmu.Unlock()
	var lenbuf [4]byte
	binary.LittleEndian.PutUint32(lenbuf[:], uint32(len(body)))
	if _, err := c.bw.Write(lenbuf[:]); err != nil {
		return ioErr(ctx, err)
	}
	if _, err := c.bw.Write(body); err != nil {
		return ioErr(ctx, err)
	}
	if err := c.bw.Flush(); err != nil {
		return ioErr(ctx, err)
	}
	return nil
}

func (c *streamConn) Recv(ctx context.Context) (Frame, error) {
	release := Guard(ctx, c.nc)
	defer release()

	var lenbuf [4]byte
	if _, err := io.ReadFull(c.br, lenbuf[:]); err != nil {
		return Frame{}, ioErr(ctx, err)
	}
	n := int(binary.LittleEndian.Uint32(lenbuf[:]))
	if n > MaxFrameBytes {
		return Frame{}, fmt.Errorf("frame of %d bytes exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.br, buf); err != nil {
		return Frame{}, ioErr(ctx, err)
	}
	return ParseFrame(buf)
}

func (c *streamConn) LocalAddr() net.Addr  { return c.nc.LocalAddr() }
func (c *streamConn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }
func (c *streamConn) Close() error         { return c.nc.Close() }

// Deadliner is the slice of net.Conn that Guard needs.
type Deadliner interface {
	SetDeadline(t time.Time) error
}

// Guard unblocks pending IO by forcing an immediate deadline when ctx is
// canceled. The returned release stops the watcher and clears the deadline.
func Guard(ctx context.Context, d Deadliner) (release func()) {
	if ctx == nil || ctx.Done() == nil {
		return func() {}
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			d.SetDeadline(time.Now())
		case <-stop:
		}
	}()
	return func() {
		close(stop)
		<-done
		d.SetDeadline(time.Time{})
	}
}

// ioErr prefers the context error when the guard broke the operation.
func ioErr(ctx context.Context, err error) error {
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
