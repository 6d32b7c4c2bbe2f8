package transport_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/transport/mem"
)

func TestFrameRoundTrip(t *testing.T) {
	f := transport.NewFrame([]byte("payload"))
	got, err := transport.ParseFrame(transport.EncodeFrame(f))
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if got.ID != f.ID || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("frame mismatch: %v vs %v", got, f)
	}
}

func TestFrameHeaderBoundary(t *testing.T) {
	if _, err := transport.ParseFrame(make([]byte, transport.FrameHeaderLen-1)); err == nil {
		t.Fatalf("expected error for undersized frame")
	}
	f, err := transport.ParseFrame(make([]byte, transport.FrameHeaderLen))
	if err != nil {
		t.Fatalf("header-only frame should parse: %v", err)
	}
	if len(f.Payload) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(f.Payload))
	}
}

func TestReplyKeepsCorrelationID(t *testing.T) {
	f := transport.NewFrame([]byte("ping"))
	r := f.Reply([]byte("pong"))
	if r.ID != f.ID {
		t.Fatalf("reply must echo the request id")
	}
	if string(r.Payload) != "pong" {
		t.Fatalf("reply payload mismatch: %q", r.Payload)
	}
}

func TestSplitAddr(t *testing.T) {
	cases := []struct {
		in     string
		scheme string
		rest   string
		ok     bool
	}{
		{"tcp://127.0.0.1:7700", "tcp", "127.0.0.1:7700", true},
		{"mem://alpha", "mem", "alpha", true},
		{"ws://localhost:8080", "ws", "localhost:8080", true},
		{"127.0.0.1:7700", "", "", false},
		{"://x", "", "", false},
		{"tcp://", "", "", false},
	}
	for _, c := range cases {
		scheme, rest, err := transport.SplitAddr(c.in)
		if c.ok != (err == nil) {
			t.Fatalf("%q: err=%v, want ok=%v", c.in, err, c.ok)
		}
		if c.ok && (scheme != c.scheme || rest != c.rest) {
			t.Fatalf("%q: got (%q, %q)", c.in, scheme, rest)
		}
	}
}

func TestRegistryRoutesByScheme(t *testing.T) {
	reg := transport.NewRegistry(mem.New())
	ctx := context.Background()

	if _, err := reg.Dial(ctx, "carrier-pigeon://x"); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}

	l, err := reg.Listen(ctx, "mem://alpha")
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
		errCh <- c.Send(ctx, f.Reply([]byte("pong")))
	}()

	cli, err := reg.DialBackoff(ctx, "mem://alpha", time.Second)
	if err != nil {
		t.Fatalf("DialBackoff: %v", err)
	}
	defer cli.Close()

	sent := transport.NewFrame([]byte("ping"))
	if err := cli.Send(ctx, sent); err != nil {
		t.Fatalf("Send: %v", err)
	}
	reply, err := cli.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if reply.ID != sent.ID || string(reply.Payload) != "pong" {
		t.Fatalf("unexpected reply %v", reply)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server side: %v", err)
	}
}

func TestDialBackoffHonorsContext(t *testing.T) {
	reg := transport.NewRegistry(mem.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reg.DialBackoff(ctx, "mem://nobody-listens", time.Minute); err == nil {
		t.Fatalf("expected canceled dial to fail")
	}
}
