package ws_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/transport/ws"
)

func TestLoopbackExchange(t *testing.T) {
	tr := ws.New()
	ctx := context.Background()

	l, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	errCh := make(chan error, 1)
	go func() {
		c, err := l.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		defer c.Close()
		f, err := c.Recv(ctx)
		if err != nil {
			errCh <- err
			return
		}
		errCh <- c.Send(ctx, f.Reply(append([]byte("ws:"), f.Payload...)))
	}()

	cli, err := tr.Dial(ctx, l.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cli.Close()

	sent := transport.NewFrame(bytes.Repeat([]byte{0x7F}, 4096))
	if err := cli.Send(ctx, sent); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := cli.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got.ID != sent.ID {
		t.Fatalf("correlation id not echoed")
	}
	if !bytes.Equal(got.Payload[:3], []byte("ws:")) || len(got.Payload) != 3+4096 {
		t.Fatalf("unexpected reply of %d bytes", len(got.Payload))
	}
}

func TestDialNoServer(t *testing.T) {
	tr := ws.New()
	ctx := context.Background()

	l, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	if _, err := tr.Dial(ctx, addr); err == nil {
		t.Fatalf("expected dial without a server to fail")
	}
}
