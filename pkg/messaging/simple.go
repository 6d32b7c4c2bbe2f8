package messaging

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/types"
)

// The four probe/control variants all carry a single object identifier; they
// differ only in what the receiving worker does with it.

// ObjectRequestMessage asks the remote worker to hand the object over and
// forget it.
type ObjectRequestMessage struct {
	id types.ObjectID
}

func NewObjectRequestMessage(id types.ObjectID) *ObjectRequestMessage {
	return &ObjectRequestMessage{id: id}
}

func (m *ObjectRequestMessage) Type() Type               { return TypeObjectRequest }
func (m *ObjectRequestMessage) ObjectID() types.ObjectID { return m.id }
func (m *ObjectRequestMessage) Contents() any            { return m.id }

func (m *ObjectRequestMessage) String() string {
	return fmt.Sprintf("ObjectRequestMessage(%s)", m.id)
}

func (m *ObjectRequestMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	return idSlots(ctx, m.id)
}

// IsNoneMessage probes whether the object is absent or nil on the remote
// side.
type IsNoneMessage struct {
	id types.ObjectID
}

func NewIsNoneMessage(id types.ObjectID) *IsNoneMessage {
	return &IsNoneMessage{id: id}
}

func (m *IsNoneMessage) Type() Type               { return TypeIsNone }
func (m *IsNoneMessage) ObjectID() types.ObjectID { return m.id }
func (m *IsNoneMessage) Contents() any            { return m.id }
func (m *IsNoneMessage) String() string           { return fmt.Sprintf("IsNoneMessage(%s)", m.id) }

func (m *IsNoneMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	return idSlots(ctx, m.id)
}

// GetShapeMessage asks for the shape of a stored tensor-like object.
type GetShapeMessage struct {
	id types.ObjectID
}

func NewGetShapeMessage(id types.ObjectID) *GetShapeMessage {
	return &GetShapeMessage{id: id}
}

func (m *GetShapeMessage) Type() Type               { return TypeGetShape }
func (m *GetShapeMessage) ObjectID() types.ObjectID { return m.id }
func (m *GetShapeMessage) Contents() any            { return m.id }
func (m *GetShapeMessage) String() string           { return fmt.Sprintf("GetShapeMessage(%s)", m.id) }

func (m *GetShapeMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	return idSlots(ctx, m.id)
}

// ForceObjectDeleteMessage deletes the object unconditionally, garbage
// collection style: deleting an unknown id is not an error.
type ForceObjectDeleteMessage struct {
	id types.ObjectID
}

func NewForceObjectDeleteMessage(id types.ObjectID) *ForceObjectDeleteMessage {
	return &ForceObjectDeleteMessage{id: id}
}

func (m *ForceObjectDeleteMessage) Type() Type               { return TypeForceObjectDelete }
func (m *ForceObjectDeleteMessage) ObjectID() types.ObjectID { return m.id }
func (m *ForceObjectDeleteMessage) Contents() any            { return m.id }

func (m *ForceObjectDeleteMessage) String() string {
	return fmt.Sprintf("ForceObjectDeleteMessage(%s)", m.id)
}

func (m *ForceObjectDeleteMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	return idSlots(ctx, m.id)
}

// SearchMessage queries the remote object store. A stored object matches
// when every term matches its id, one of its tags or its description.
type SearchMessage struct {
	query []string
}

func NewSearchMessage(terms ...string) *SearchMessage {
	q := make([]string, len(terms))
	copy(q, terms)
	return &SearchMessage{query: q}
}

func (m *SearchMessage) Type() Type { return TypeSearch }

// Query returns the ordered search terms.
func (m *SearchMessage) Query() []string {
	q := make([]string, len(m.query))
	copy(q, m.query)
	return q
}

func (m *SearchMessage) Contents() any  { return m.Query() }
func (m *SearchMessage) String() string { return fmt.Sprintf("SearchMessage(%v)", m.query) }

func (m *SearchMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	terms := make([]any, len(m.query))
	for i, term := range m.query {
		terms[i] = term
	}
	node, err := serde.Simplify(ctx, terms)
	if err != nil {
		return nil, err
	}
	return []any{node}, nil
}

func idSlots(ctx *serde.Context, id types.ObjectID) ([]any, error) {
	node, err := serde.Simplify(ctx, id)
	if err != nil {
		return nil, err
	}
	return []any{node}, nil
}

// detailID accepts both the tagged object id form and a plain integer, since
// identifiers travel as bare ints in older payloads.
func detailID(ctx *serde.Context, slots []any) (types.ObjectID, error) {
	if len(slots) < 1 {
		return 0, &serde.DecodeError{What: "payload", Err: fmt.Errorf("empty tuple")}
	}
	v, err := serde.Detail(ctx, slots[0])
	if err != nil {
		return 0, err
	}
	switch id := v.(type) {
	case types.ObjectID:
		return id, nil
	case int64:
		if id >= 0 {
			return types.ObjectID(id), nil
		}
	case uint64:
		return types.ObjectID(id), nil
	}
	return 0, &serde.DecodeError{What: "payload", Err: fmt.Errorf("want object id, got %T", v)}
}

func detailObjectRequest(ctx *serde.Context, slots []any) (*ObjectRequestMessage, error) {
	id, err := detailID(ctx, slots)
	if err != nil {
		return nil, err
	}
	return NewObjectRequestMessage(id), nil
}

func detailIsNone(ctx *serde.Context, slots []any) (*IsNoneMessage, error) {
	id, err := detailID(ctx, slots)
	if err != nil {
		return nil, err
	}
	return NewIsNoneMessage(id), nil
}

func detailGetShape(ctx *serde.Context, slots []any) (*GetShapeMessage, error) {
	id, err := detailID(ctx, slots)
	if err != nil {
		return nil, err
	}
	return NewGetShapeMessage(id), nil
}

func detailForceObjectDelete(ctx *serde.Context, slots []any) (*ForceObjectDeleteMessage, error) {
	id, err := detailID(ctx, slots)
	if err != nil {
		return nil, err
	}
	return NewForceObjectDeleteMessage(id), nil
}

func detailSearch(ctx *serde.Context, slots []any) (*SearchMessage, error) {
	if len(slots) < 1 {
		return nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("empty tuple")}
	}
	v, err := serde.Detail(ctx, slots[0])
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("want query list, got %T", v)}
	}
	terms := make([]string, len(raw))
	for i, item := range raw {
		term, ok := item.(string)
		if !ok {
			return nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("query term %T", item)}
		}
		terms[i] = term
	}
	return NewSearchMessage(terms...), nil
}
