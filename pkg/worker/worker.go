// Package worker turns decoded messages into effects: objects stored and
// pulled, probes answered, searches run, commands executed against a
// pluggable operation table. Each message variant has exactly one handler;
// the two named-command variants dispatch from two separate tables that are
// never consulted for each other. The send side lives in Client, which
// correlates replies to requests over a transport connection.
//
// Replies are always ObjectMessages. A handler error travels as an object of
// the form {"error": text}, which Client turns back into an error.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/messaging"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/store"
	"github.com/shaanrockz/PySyft/pkg/transport"
	"github.com/shaanrockz/PySyft/pkg/types"
)

// OpFunc implements one command operation. Target is the resolved receiver
// (nil for free functions), args and kwargs arrive as transported.
type OpFunc func(ctx context.Context, target any, args execution.Args, kwargs execution.KWArgs) (any, error)

// NamedFunc implements a plan command or a worker function. It receives the
// argument payload of the named-command message verbatim.
type NamedFunc func(ctx context.Context, payload any) (any, error)

type Worker struct {
	id    string
	sctx  *serde.Context
	store *store.Store
	log   *zap.Logger

	ops     map[string]OpFunc
	planOps map[string]NamedFunc
	fnOps   map[string]NamedFunc

	mws       []Middleware
	handler   HandlerFunc
	buildOnce sync.Once
}

func New(id string, sctx *serde.Context, st *store.Store, log *zap.Logger) *Worker {
	return &Worker{
		id:      id,
		sctx:    sctx,
		store:   st,
		log:     log,
		ops:     make(map[string]OpFunc),
		planOps: make(map[string]NamedFunc),
		fnOps:   make(map[string]NamedFunc),
	}
}

func (w *Worker) ID() string          { return w.id }
func (w *Worker) Store() *store.Store { return w.store }

// Use appends a middleware. All middlewares must be registered before the
// first message is handled.
func (w *Worker) Use(mw Middleware) { w.mws = append(w.mws, mw) }

// RegisterOperation adds a command operation under its name.
func (w *Worker) RegisterOperation(name string, fn OpFunc) error {
	return register(w.ops, "operation", name, fn)
}

// RegisterPlanCommand adds an entry to the plan-command table.
func (w *Worker) RegisterPlanCommand(name string, fn NamedFunc) error {
	return register(w.planOps, "plan command", name, fn)
}

// RegisterWorkerFunction adds an entry to the worker-function table.
func (w *Worker) RegisterWorkerFunction(name string, fn NamedFunc) error {
	return register(w.fnOps, "worker function", name, fn)
}

func register[F any](table map[string]F, kind, name string, fn F) error {
	if name == "" {
		return fmt.Errorf("%s requires a name", kind)
	}
	if _, dup := table[name]; dup {
		return fmt.Errorf("%s %q already registered", kind, name)
	}
	table[name] = fn
	return nil
}

// Handle routes one message through the middleware chain to its handler.
func (w *Worker) Handle(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
	w.buildOnce.Do(func() {
		w.handler = Chain(w.mws...)(w.route)
	})
	return w.handler(ctx, msg)
}

func (w *Worker) route(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
	switch m := msg.(type) {
	case *messaging.CommandMessage:
		return w.handleCommand(ctx, m)
	case *messaging.ObjectMessage:
		return w.handleObject(m)
	case *messaging.ObjectRequestMessage:
		return w.handleObjectRequest(m)
	case *messaging.IsNoneMessage:
		return messaging.NewObjectMessage(w.store.IsNone(m.ObjectID())), nil
	case *messaging.GetShapeMessage:
		return w.handleGetShape(m)
	case *messaging.ForceObjectDeleteMessage:
		w.store.Delete(m.ObjectID())
		return ack(), nil
	case *messaging.SearchMessage:
		return w.handleSearch(m)
	case *messaging.PlanCommandMessage:
		return w.handleNamed(ctx, w.planOps, "plan command", m.CommandName(), m.Message())
	case *messaging.ExecuteWorkerFunctionMessage:
		return w.handleNamed(ctx, w.fnOps, "worker function", m.CommandName(), m.Message())
	default:
		return nil, fmt.Errorf("no handler for message type %s", msg.Type())
	}
}

// ack is the empty reply for operations without a result.
func ack() *messaging.ObjectMessage { return messaging.NewObjectMessage(nil) }

func (w *Worker) handleCommand(ctx context.Context, m *messaging.CommandMessage) (messaging.Message, error) {
	op, ok := w.ops[m.Name()]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", m.Name())
	}
	target, err := w.resolveTarget(m.Target())
	if err != nil {
		return nil, fmt.Errorf("operation %q: %w", m.Name(), err)
	}
	result, err := op(ctx, target, m.Args(), m.Kwargs())
	if err != nil {
		return nil, fmt.Errorf("operation %q: %w", m.Name(), err)
	}
	return w.bindResults(m.ReturnIDs(), result)
}

// resolveTarget turns an object reference into the stored object. Ids and
// placeholders are references; anything else is used as the receiver as-is.
func (w *Worker) resolveTarget(target any) (any, error) {
	switch t := target.(type) {
	case nil:
		return nil, nil
	case types.ObjectID:
		v, ok := w.store.Get(t)
		if !ok {
			return nil, fmt.Errorf("target %s not found", t)
		}
		return v, nil
	case *types.Placeholder:
		v, ok := w.store.Get(t.ID)
		if !ok {
			return nil, fmt.Errorf("target %s not found", t.ID)
		}
		return v, nil
	default:
		return target, nil
	}
}

// bindResults stores the result under the caller's return ids, or replies
// with it directly when the caller did not reserve any.
func (w *Worker) bindResults(ids []types.ObjectID, result any) (messaging.Message, error) {
	switch len(ids) {
	case 0:
		return messaging.NewObjectMessage(result), nil
	case 1:
		if err := w.put(ids[0], result, nil, ""); err != nil {
			return nil, err
		}
		return ack(), nil
	default:
		parts, ok := result.([]any)
		if !ok || len(parts) != len(ids) {
			return nil, fmt.Errorf("operation produced %s, caller reserved %d return ids",
				describeCount(result), len(ids))
		}
		for i, id := range ids {
			if err := w.put(id, parts[i], nil, ""); err != nil {
				return nil, err
			}
		}
		return ack(), nil
	}
}

func describeCount(result any) string {
	if parts, ok := result.([]any); ok {
		return fmt.Sprintf("%d results", len(parts))
	}
	return "a single result"
}

func (w *Worker) put(id types.ObjectID, value any, tags []string, description string) error {
	if !w.store.SetTagged(id, value, tags, description) && !w.store.Exists(id) {
		return errors.New("object store is full")
	}
	return nil
}

func (w *Worker) handleObject(m *messaging.ObjectMessage) (messaging.Message, error) {
	id, value, tags, desc, err := storeRecord(m.Object())
	if err != nil {
		return nil, err
	}
	if err := w.put(id, value, tags, desc); err != nil {
		return nil, err
	}
	return ack(), nil
}

// storeRecord unpacks the positional [id, value, tags?, description?] list
// that an ObjectMessage carries when it asks a worker to store an object.
// Extra trailing positions are tolerated.
func storeRecord(v any) (types.ObjectID, any, []string, string, error) {
	slots, ok := v.([]any)
	if !ok || len(slots) < 2 {
		return 0, nil, nil, "", errors.New("object message does not carry a store record")
	}
	id, err := recordID(slots[0])
	if err != nil {
		return 0, nil, nil, "", err
	}
	value := slots[1]
	var tags []string
	if len(slots) > 2 && slots[2] != nil {
		tags, err = stringList(slots[2])
		if err != nil {
			return 0, nil, nil, "", fmt.Errorf("store record tags: %w", err)
		}
	}
	desc := ""
	if len(slots) > 3 && slots[3] != nil {
		s, ok := slots[3].(string)
		if !ok {
			return 0, nil, nil, "", fmt.Errorf("store record description is %T, not string", slots[3])
		}
		desc = s
	}
	return id, value, tags, desc, nil
}

func recordID(v any) (types.ObjectID, error) {
	switch id := v.(type) {
	case types.ObjectID:
		return id, nil
	case int64:
		if id < 0 {
			return 0, fmt.Errorf("store record id %d is negative", id)
		}
		return types.ObjectID(id), nil
	case uint64:
		return types.ObjectID(id), nil
	default:
		return 0, fmt.Errorf("store record id is %T, not an object id", v)
	}
}

func stringList(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return l, nil
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not string", i, e)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%T is not a string list", v)
	}
}

func (w *Worker) handleObjectRequest(m *messaging.ObjectRequestMessage) (messaging.Message, error) {
	v, ok := w.store.GetDelete(m.ObjectID())
	if !ok {
		return nil, fmt.Errorf("object %s not found", m.ObjectID())
	}
	return messaging.NewObjectMessage(v), nil
}

func (w *Worker) handleGetShape(m *messaging.GetShapeMessage) (messaging.Message, error) {
	shape, err := w.store.Shape(m.ObjectID())
	if err != nil {
		return nil, fmt.Errorf("shape of %s: %w", m.ObjectID(), err)
	}
	return messaging.NewObjectMessage(shape), nil
}

func (w *Worker) handleSearch(m *messaging.SearchMessage) (messaging.Message, error) {
	ids := w.store.Search(m.Query()...)
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return messaging.NewObjectMessage(out), nil
}

func (w *Worker) handleNamed(ctx context.Context, table map[string]NamedFunc, kind, name string, payload any) (messaging.Message, error) {
	fn, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("unknown %s %q", kind, name)
	}
	result, err := fn(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, name, err)
	}
	return messaging.NewObjectMessage(result), nil
}

// HandleBytes decodes a request, handles it, and encodes the reply in the
// request's wire format. Errors become {"error": text} object replies. A nil
// return means the reply itself could not be encoded; the connection should
// carry nothing rather than garbage.
func (w *Worker) HandleBytes(ctx context.Context, data []byte) []byte {
	format := requestFormat(data, w.sctx.Format)

	var reply messaging.Message
	msg, err := messaging.Unmarshal(w.sctx, data)
	if err == nil {
		reply, err = w.Handle(ctx, msg)
	}
	if err != nil {
		reply = messaging.NewObjectMessage(errorValue(err))
	}

	out, err := messaging.MarshalFormat(w.sctx, reply, format)
	if err == nil {
		return out
	}
	// The handler's reply is not encodable in this format; report that
	// instead of staying silent.
	out, err2 := messaging.MarshalFormat(w.sctx,
		messaging.NewObjectMessage(errorValue(fmt.Errorf("reply not encodable: %v", err))), format)
	if err2 != nil {
		w.log.Error("dropping unencodable reply", zap.Error(err), zap.NamedError("fallback", err2))
		return nil
	}
	return out
}

func requestFormat(data []byte, fallback serde.Format) serde.Format {
	if len(data) > 0 {
		switch f := serde.Format(data[0]); f {
		case serde.FormatMsgpack, serde.FormatCBOR, serde.FormatProto:
			return f
		}
	}
	return fallback
}

// errorValue is the wire form of a handler error.
func errorValue(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

// replyError recognizes the error form in a reply object.
func replyError(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	s, ok := m["error"].(string)
	return s, ok
}

// Serve accepts connections and answers frames until ctx is done or the
// listener fails. Each connection gets a reader goroutine; each frame is
// handled on its own goroutine so one slow operation does not stall the
// connection.
func (w *Worker) Serve(ctx context.Context, l transport.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := l.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		w.log.Info("connection accepted", zap.String("remote", conn.RemoteAddr().String()))
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.serveConn(ctx, conn)
		}()
	}
}

func (w *Worker) serveConn(ctx context.Context, conn transport.Conn) {
	defer conn.Close()
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		f, err := conn.Recv(ctx)
		if err != nil {
			if ctx.Err() == nil {
				w.log.Debug("connection closed", zap.Error(err))
			}
			return
		}
		wg.Add(1)
		go func(f transport.Frame) {
			defer wg.Done()
			reply := w.HandleBytes(ctx, f.Payload)
			if reply == nil {
				return
			}
			if err := conn.Send(ctx, f.Reply(reply)); err != nil && ctx.Err() == nil {
				w.log.Warn("reply send failed", zap.Error(err))
			}
		}(f)
	}
}
