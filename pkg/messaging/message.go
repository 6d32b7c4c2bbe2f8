// Package messaging defines the closed set of wire messages workers exchange
// and the two byte encodings they travel in.
//
// A message is one of nine variants plus RawMessage, the explicit carrier for
// discriminants this build does not know. The generic path (Encode/Decode)
// lowers a message to [discriminant, payload-tuple] via pkg/serde and is
// defined for every variant; the structured path in marshal.go speaks the
// pkg/serde/schema protobuf schema and is defined for CommandMessage and
// ObjectMessage only. Marshal/Unmarshal put a one-byte format prefix in front
// so both paths coexist on a single transport.
//
// Variants are immutable after construction. Decoding never returns a
// partially filled message: it is the decoded value or an error.
package messaging

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/serde"
)

// Type discriminates message variants on the wire. The values are frozen;
// never renumber, only append.
type Type uint32

const (
	TypeUnknown               Type = 0
	TypeCommand               Type = 1
	TypeObject                Type = 2
	TypeObjectRequest         Type = 3
	TypeIsNone                Type = 4
	TypeGetShape              Type = 5
	TypeForceObjectDelete     Type = 6
	TypeSearch                Type = 7
	TypePlanCommand           Type = 8
	TypeExecuteWorkerFunction Type = 9
)

func (t Type) String() string {
	switch t {
	case TypeCommand:
		return "CommandMessage"
	case TypeObject:
		return "ObjectMessage"
	case TypeObjectRequest:
		return "ObjectRequestMessage"
	case TypeIsNone:
		return "IsNoneMessage"
	case TypeGetShape:
		return "GetShapeMessage"
	case TypeForceObjectDelete:
		return "ForceObjectDeleteMessage"
	case TypeSearch:
		return "SearchMessage"
	case TypePlanCommand:
		return "PlanCommandMessage"
	case TypeExecuteWorkerFunction:
		return "ExecuteWorkerFunctionMessage"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// Message is the closed sum of wire message variants. The unexported method
// keeps the set closed: only this package can add variants, so a decoder
// switch over Type is exhaustive.
type Message interface {
	// Type returns the wire discriminant of the variant.
	Type() Type
	// Contents returns the canonical payload view. Nil means an absent
	// payload, which is valid.
	Contents() any
	// String renders a short human-readable form for diagnostics only.
	String() string

	// payloadSlots lowers the payload to its positional wire slots, each
	// already in intermediate form.
	payloadSlots(ctx *serde.Context) ([]any, error)
}

// RawMessage carries a message whose discriminant this build does not
// recognize. The tag and the decoded payload survive verbatim so the message
// can be logged, stored or re-encoded unchanged. It is the single sanctioned
// fallback of the generic decode path; it never masks malformed input.
type RawMessage struct {
	tag      Type
	contents any
}

// NewRawMessage wraps an unknown-variant payload. contents follows the
// Contents convention of the decode side: the single payload value when the
// wire tuple had one slot, a []any of slot values otherwise, nil when empty.
func NewRawMessage(tag Type, contents any) *RawMessage {
	return &RawMessage{tag: tag, contents: contents}
}

func (m *RawMessage) Type() Type    { return m.tag }
func (m *RawMessage) Contents() any { return m.contents }

func (m *RawMessage) String() string {
	return fmt.Sprintf("RawMessage(tag=%d, contents=%v)", uint32(m.tag), m.contents)
}

func (m *RawMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	switch contents := m.contents.(type) {
	case nil:
		return []any{}, nil
	case []any:
		slots := make([]any, len(contents))
		for i, v := range contents {
			node, err := serde.Simplify(ctx, v)
			if err != nil {
				return nil, err
			}
			slots[i] = node
		}
		return slots, nil
	default:
		node, err := serde.Simplify(ctx, contents)
		if err != nil {
			return nil, err
		}
		return []any{node}, nil
	}
}

func detailRaw(ctx *serde.Context, tag Type, slots []any) (*RawMessage, error) {
	detailed := make([]any, len(slots))
	for i, slot := range slots {
		v, err := serde.Detail(ctx, slot)
		if err != nil {
			return nil, err
		}
		detailed[i] = v
	}
	switch len(detailed) {
	case 0:
		return NewRawMessage(tag, nil), nil
	case 1:
		return NewRawMessage(tag, detailed[0]), nil
	default:
		return NewRawMessage(tag, detailed), nil
	}
}
