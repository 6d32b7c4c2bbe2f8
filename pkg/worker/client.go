package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/messaging"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/types"
)

// Client is the send side of the worker protocol: it encodes a message,
// frames it, sends it, and waits for the reply frame with the same
// correlation id. One reader goroutine owns the connection's receive side,
// so any number of goroutines may issue requests concurrently.
type Client struct {
	sctx *serde.Context
	conn transport.Conn

	mu      sync.Mutex
	pending map[uuid.UUID]chan []byte
	readErr error

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(sctx *serde.Context, conn transport.Conn) *Client {
	c := &Client{
		sctx:    sctx,
		conn:    conn,
		pending: make(map[uuid.UUID]chan []byte),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	for {
		f, err := c.conn.Recv(context.Background())
		if err != nil {
			c.fail(err)
			return
		}
		c.mu.Lock()
		ch := c.pending[f.ID]
		delete(c.pending, f.ID)
		c.mu.Unlock()
		if ch != nil {
			ch <- f.Payload
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	if c.readErr == nil {
		c.readErr = err
	}
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.done) })
}

// Close tears the connection down and unblocks all waiting requests.
func (c *Client) Close() error {
	c.fail(errors.New("client closed"))
	return c.conn.Close()
}

// do sends one request and waits for its decoded reply value.
func (c *Client) do(ctx context.Context, m messaging.Message) (any, error) {
	payload, err := messaging.Marshal(c.sctx, m)
	if err != nil {
		return nil, err
	}
	f := transport.NewFrame(payload)
	ch := make(chan []byte, 1)

	c.mu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return nil, err
	}
	c.pending[f.ID] = ch
	c.mu.Unlock()
	forget := func() {
		c.mu.Lock()
		delete(c.pending, f.ID)
		c.mu.Unlock()
	}

	if err := c.conn.Send(ctx, f); err != nil {
		forget()
		return nil, err
	}

	select {
	case b := <-ch:
		return c.decodeReply(b)
	case <-ctx.Done():
		forget()
		return nil, ctx.Err()
	case <-c.done:
		c.mu.Lock()
		err := c.readErr
		c.mu.Unlock()
		return nil, err
	}
}

func (c *Client) decodeReply(b []byte) (any, error) {
	reply, err := messaging.Unmarshal(c.sctx, b)
	if err != nil {
		return nil, err
	}
	obj, ok := reply.(*messaging.ObjectMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected reply type %s", reply.Type())
	}
	if text, isErr := replyError(obj.Object()); isErr {
		return nil, fmt.Errorf("remote: %s", text)
	}
	return obj.Object(), nil
}

// SendObject stores a value on the remote worker under the given id.
func (c *Client) SendObject(ctx context.Context, id types.ObjectID, value any, tags []string, description string) error {
	record := []any{id, value, anyList(tags), description}
	_, err := c.do(ctx, messaging.NewObjectMessage(record))
	return err
}

// RequestObject pulls an object: the remote worker hands it over and
// forgets it.
func (c *Client) RequestObject(ctx context.Context, id types.ObjectID) (any, error) {
	return c.do(ctx, messaging.NewObjectRequestMessage(id))
}

// IsNone probes whether the remote object is absent or stored as nil.
func (c *Client) IsNone(ctx context.Context, id types.ObjectID) (bool, error) {
	v, err := c.do(ctx, messaging.NewIsNoneMessage(id))
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("is-none reply is %T, not bool", v)
	}
	return b, nil
}

// GetShape asks for the shape of a remote tensor.
func (c *Client) GetShape(ctx context.Context, id types.ObjectID) (types.Shape, error) {
	v, err := c.do(ctx, messaging.NewGetShapeMessage(id))
	if err != nil {
		return nil, err
	}
	shape, ok := v.(types.Shape)
	if !ok {
		return nil, fmt.Errorf("shape reply is %T, not a shape", v)
	}
	return shape, nil
}

// ForceDelete removes the remote object if it exists.
func (c *Client) ForceDelete(ctx context.Context, id types.ObjectID) error {
	_, err := c.do(ctx, messaging.NewForceObjectDeleteMessage(id))
	return err
}

// Search returns the ids of remote objects matching every term.
func (c *Client) Search(ctx context.Context, terms ...string) ([]types.ObjectID, error) {
	v, err := c.do(ctx, messaging.NewSearchMessage(terms...))
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("search reply is %T, not a list", v)
	}
	ids := make([]types.ObjectID, len(list))
	for i, e := range list {
		id, ok := e.(types.ObjectID)
		if !ok {
			return nil, fmt.Errorf("search result %d is %T, not an object id", i, e)
		}
		ids[i] = id
	}
	return ids, nil
}

// ExecuteCommand runs an operation remotely. With return ids the results
// stay on the remote worker and the returned value is nil; without them the
// result comes back directly.
func (c *Client) ExecuteCommand(ctx context.Context, name string, target any, args execution.Args, kwargs execution.KWArgs, returnIDs []types.ObjectID) (any, error) {
	m, err := messaging.NewCommandMessage(name, target, args, kwargs, returnIDs)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, m)
}

// ExecutePlanCommand invokes an entry of the remote plan-command table.
func (c *Client) ExecutePlanCommand(ctx context.Context, name string, payload any) (any, error) {
	return c.do(ctx, messaging.NewPlanCommandMessage(name, payload))
}

// ExecuteWorkerFunction invokes an entry of the remote worker-function
// table.
func (c *Client) ExecuteWorkerFunction(ctx context.Context, name string, payload any) (any, error) {
	return c.do(ctx, messaging.NewExecuteWorkerFunctionMessage(name, payload))
}

func anyList(ss []string) []any {
	if ss == nil {
		return nil
	}
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
