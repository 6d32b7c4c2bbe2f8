package mem_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/transport/mem"
)

func pair(t *testing.T) (srv, cli transport.Conn) {
	t.Helper()
	tr := mem.New()
	ctx := context.Background()
	l, err := tr.Listen(ctx, "worker")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	cli, err = tr.Dial(ctx, "worker")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	srv, err = l.Accept(ctx)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	t.Cleanup(func() { srv.Close(); cli.Close() })
	return srv, cli
}

func TestExchange(t *testing.T) {
	srv, cli := pair(t)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 3; i++ {
			f, err := srv.Recv(ctx)
			if err != nil {
				done <- err
				return
			}
			if err := srv.Send(ctx, f.Reply(append([]byte("ack:"), f.Payload...))); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for _, msg := range []string{"one", "two", "three"} {
		sent := transport.NewFrame([]byte(msg))
		if err := cli.Send(ctx, sent); err != nil {
			t.Fatalf("Send %q: %v", msg, err)
		}
		got, err := cli.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv after %q: %v", msg, err)
		}
		if got.ID != sent.ID || !bytes.Equal(got.Payload, []byte("ack:"+msg)) {
			t.Fatalf("unexpected reply %q for %q", got.Payload, msg)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("server loop: %v", err)
	}
}

func TestDuplicateListenerName(t *testing.T) {
	tr := mem.New()
	ctx := context.Background()
	l, err := tr.Listen(ctx, "dup")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()
	if _, err := tr.Listen(ctx, "dup"); err == nil {
		t.Fatalf("second listener on the same name must fail")
	}
}

func TestDialUnknownName(t *testing.T) {
	tr := mem.New()
	if _, err := tr.Dial(context.Background(), "nobody"); err == nil {
		t.Fatalf("expected dial error for unknown name")
	}
}

func TestAcceptUnblocksOnClose(t *testing.T) {
	tr := mem.New()
	ctx := context.Background()
	l, err := tr.Listen(ctx, "closing")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := l.Accept(ctx)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	l.Close()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("Accept should fail after Close")
		}
	case <-time.After(time.Second):
		t.Fatalf("Accept did not unblock on Close")
	}
}

func TestRecvUnblocksOnCancel(t *testing.T) {
	srv, _ := pair(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := srv.Recv(ctx)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Recv did not unblock on cancel")
	}
}

func TestConcurrentSendersKeepFramesIntact(t *testing.T) {
	srv, cli := pair(t)
	ctx := context.Background()
	const perSender = 20

	var wg sync.WaitGroup
	for s := 0; s < 2; s++ {
		wg.Add(1)
		go func(tag byte) {
			defer wg.Done()
			payload := bytes.Repeat([]byte{tag}, 64)
			for i := 0; i < perSender; i++ {
				if err := cli.Send(ctx, transport.NewFrame(payload)); err != nil {
					t.Errorf("Send: %v", err)
					return
				}
			}
		}(byte('a' + s))
	}

	for i := 0; i < 2*perSender; i++ {
		f, err := srv.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv %d: %v", i, err)
		}
		if len(f.Payload) != 64 {
			t.Fatalf("frame %d has %d bytes", i, len(f.Payload))
		}
		for _, b := range f.Payload {
			if b != f.Payload[0] {
				t.Fatalf("frame %d interleaved: %q", i, f.Payload)
			}
		}
	}
	wg.Wait()
}
