package messaging

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/serde"
)

// ObjectMessage moves one value to the receiving worker, which stores it
// under the value's identifier. The payload is arbitrary: any value the
// codecs can carry.
type ObjectMessage struct {
	object any
}

func NewObjectMessage(object any) *ObjectMessage {
	return &ObjectMessage{object: object}
}

func (m *ObjectMessage) Type() Type     { return TypeObject }
func (m *ObjectMessage) Contents() any  { return m.object }
func (m *ObjectMessage) Object() any    { return m.object }
func (m *ObjectMessage) String() string { return fmt.Sprintf("ObjectMessage(%v)", m.object) }

func (m *ObjectMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	node, err := serde.Simplify(ctx, m.object)
	if err != nil {
		return nil, err
	}
	return []any{node}, nil
}

func detailObject(ctx *serde.Context, slots []any) (*ObjectMessage, error) {
	if len(slots) < 1 {
		return nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("empty tuple")}
	}
	v, err := serde.Detail(ctx, slots[0])
	if err != nil {
		return nil, err
	}
	return NewObjectMessage(v), nil
}
