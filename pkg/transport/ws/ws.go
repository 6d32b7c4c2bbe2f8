// Package ws carries frames over WebSocket, one binary message per frame.
// The listener runs a plain HTTP server that upgrades every request path, so
// a worker owns the whole port it listens on.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shaanrockz/PySyft/pkg/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Workers talk to workers; there is no browser origin to police.
	CheckOrigin: func(*http.Request) bool { return true },
}

type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Scheme() string { return "ws" }

func (t *Transport) Listen(ctx context.Context, address string) (transport.Listener, error) {
	nl, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	l := &listener{nl: nl, newCh: make(chan transport.Conn, 8), closeCh: make(chan struct{})}
	l.srv = &http.Server{Handler: http.HandlerFunc(l.upgrade)}
	go func() { _ = l.srv.Serve(nl) }()
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	return l, nil
}

func (t *Transport) Dial(ctx context.Context, address string) (transport.Conn, error) {
	wc, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+address, nil)
	if err != nil {
		return nil, err
	}
	return newConn(wc), nil
}

type listener struct {
	nl      net.Listener
	srv     *http.Server
	newCh   chan transport.Conn
	closeCh chan struct{}

	closeOnce sync.Once
}

func (l *listener) upgrade(w http.ResponseWriter, r *http.Request) {
	wc, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn := newConn(wc)
	select {
	case l.newCh <- conn:
	case <-l.closeCh:
		_ = conn.Close()
	}
}

func (l *listener) Addr() net.Addr { return l.nl.Addr() }

func (l *listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closeCh:
		return nil, errors.New("ws listener closed")
	case c := <-l.newCh:
		return c, nil
	}
}

func (l *listener) Close() error {
	l.closeOnce.Do(func() { close(l.closeCh) })
	return l.srv.Close()
}

type conn struct {
	wc  *websocket.Conn
	wmu sync.Mutex
}

func newConn(wc *websocket.Conn) *conn {
	wc.SetReadLimit(transport.MaxFrameBytes)
	return &conn{wc: wc}
}

func (c *conn) Send(ctx context.Context, f transport.Frame) error {
	release := transport.Guard(ctx, deadline{c.wc})
	defer release()

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.wc.WriteMessage(websocket.BinaryMessage, transport.EncodeFrame(f)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (c *conn) Recv(ctx context.Context) (transport.Frame, error) {
	release := transport.Guard(ctx, deadline{c.wc})
	defer release()

	mt, data, err := c.wc.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return transport.Frame{}, ctx.Err()
		}
		return transport.Frame{}, err
	}
	if mt != websocket.BinaryMessage {
		return transport.Frame{}, fmt.Errorf("unexpected websocket message type %d", mt)
	}
	return transport.ParseFrame(data)
}

func (c *conn) LocalAddr() net.Addr  { return c.wc.LocalAddr() }
func (c *conn) RemoteAddr() net.Addr { return c.wc.RemoteAddr() }
func (c *conn) Close() error         { return c.wc.Close() }

// deadline adapts the split read/write deadlines of a websocket connection
// to the single deadline Guard drives.
type deadline struct {
	wc *websocket.Conn
}

func (d deadline) SetDeadline(t time.Time) error {
	_ = d.wc.SetReadDeadline(t)
	return d.wc.SetWriteDeadline(t)
}
