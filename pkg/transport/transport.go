// Package transport moves opaque message frames between workers. A frame is
// a 16-byte correlation id followed by the encoded message bytes; the id is
// how a sender matches a reply to its request, and the payload is never
// inspected here. Concrete transports live in the mem, tcp and ws
// subpackages and register themselves with a Registry under their scheme.
package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// MaxFrameBytes caps a single frame. Larger frames are a protocol error.
const MaxFrameBytes = 1 << 24

// FrameHeaderLen is the size of the correlation id in front of the payload.
const FrameHeaderLen = 16

// Frame is one message on the wire.
type Frame struct {
	ID      uuid.UUID
	Payload []byte
}

// NewFrame wraps a payload with a fresh correlation id.
func NewFrame(payload []byte) Frame {
	return Frame{ID: uuid.New(), Payload: payload}
}

// Reply builds a frame answering this one: same id, new payload.
func (f Frame) Reply(payload []byte) Frame {
	return Frame{ID: f.ID, Payload: payload}
}

// EncodeFrame renders the frame as id bytes followed by the payload.
func EncodeFrame(f Frame) []byte {
	out := make([]byte, 0, FrameHeaderLen+len(f.Payload))
	out = append(out, f.ID[:]...)
	return append(out, f.Payload...)
}

// ParseFrame splits raw bytes back into a frame. The payload aliases b.
func ParseFrame(b []byte) (Frame, error) {
	if len(b) < FrameHeaderLen {
		return Frame{}, fmt.Errorf("frame too short: %d bytes", len(b))
	}
	var f Frame
	copy(f.ID[:], b[:FrameHeaderLen])
	f.Payload = b[FrameHeaderLen:]
	return f, nil
}

// Conn is one bidirectional frame stream. Send is safe for concurrent use;
// Recv expects a single reader. Canceling the context of an in-flight Send
// or Recv leaves the stream position undefined, so the connection must be
// closed afterwards.
type Conn interface {
	Send(ctx context.Context, f Frame) error
	Recv(ctx context.Context) (Frame, error)
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	Close() error
}

// Listener accepts inbound connections.
type Listener interface {
	// Accept blocks until an inbound connection arrives or ctx is done.
	Accept(ctx context.Context) (Conn, error)
	Addr() net.Addr
	Close() error
}

// Transport dials and listens for one address scheme.
type Transport interface {
	Scheme() string
	Listen(ctx context.Context, address string) (Listener, error)
	Dial(ctx context.Context, address string) (Conn, error)
}

// SplitAddr splits "scheme://rest" into its two parts.
func SplitAddr(addr string) (scheme, rest string, err error) {
	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok || scheme == "" || rest == "" {
		return "", "", fmt.Errorf("address %q is not scheme://target", addr)
	}
	return scheme, rest, nil
}

// Registry routes scheme-qualified addresses to registered transports.
type Registry struct {
	mu       sync.RWMutex
	byScheme map[string]Transport
}

func NewRegistry(ts ...Transport) *Registry {
	r := &Registry{byScheme: make(map[string]Transport)}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Transport) {
	r.mu.Lock()
	r.byScheme[t.Scheme()] = t
	r.mu.Unlock()
}

func (r *Registry) lookup(addr string) (Transport, string, error) {
	scheme, rest, err := SplitAddr(addr)
	if err != nil {
		return nil, "", err
	}
	r.mu.RLock()
	t := r.byScheme[scheme]
	r.mu.RUnlock()
	if t == nil {
		return nil, "", fmt.Errorf("no transport for scheme %q", scheme)
	}
	return t, rest, nil
}

func (r *Registry) Dial(ctx context.Context, addr string) (Conn, error) {
	t, rest, err := r.lookup(addr)
	if err != nil {
		return nil, err
	}
	return t.Dial(ctx, rest)
}

func (r *Registry) Listen(ctx context.Context, addr string) (Listener, error) {
	t, rest, err := r.lookup(addr)
	if err != nil {
		return nil, err
	}
	return t.Listen(ctx, rest)
}

// DialBackoff keeps dialing with exponential backoff until the dial
// succeeds, maxElapsed passes, or ctx is done. Useful when the peer worker
// is still starting up.
func (r *Registry) DialBackoff(ctx context.Context, addr string, maxElapsed time.Duration) (Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	var conn Conn
	op := func() error {
		c, err := r.Dial(ctx, addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return conn, nil
}
