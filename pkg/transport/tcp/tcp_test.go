package tcp_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/transport/tcp"
)

func TestLoopbackExchange(t *testing.T) {
	tr := tcp.New()
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
		for i := 0; i < 2; i++ {
			f, err := c.Recv(ctx)
			if err != nil {
				errCh <- err
				return
			}
			if err := c.Send(ctx, f.Reply(f.Payload)); err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	cli, err := tr.Dial(ctx, l.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cli.Close()

	// A small frame and a large one, to cross the bufio boundary.
	for _, payload := range [][]byte{[]byte("hello"), bytes.Repeat([]byte{0xAB}, 1<<20)} {
		sent := transport.NewFrame(payload)
		if err := cli.Send(ctx, sent); err != nil {
			t.Fatalf("Send: %v", err)
		}
		got, err := cli.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got.ID != sent.ID || !bytes.Equal(got.Payload, payload) {
			t.Fatalf("echo mismatch for %d-byte payload", len(payload))
		}
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server side: %v", err)
	}
}

func TestDialClosedPort(t *testing.T) {
	tr := tcp.New()
	ctx := context.Background()

	l, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	if _, err := tr.Dial(ctx, addr); err == nil {
		t.Fatalf("expected dial to a closed port to fail")
	}
}

func TestOversizeFrameRejected(t *testing.T) {
	tr := tcp.New()
	ctx := context.Background()

	l, err := tr.Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	cli, err := tr.Dial(ctx, l.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cli.Close()

	huge := transport.Frame{Payload: make([]byte, transport.MaxFrameBytes)}
	if err := cli.Send(ctx, huge); err == nil {
		t.Fatalf("expected oversize frame to be rejected")
	}
}
