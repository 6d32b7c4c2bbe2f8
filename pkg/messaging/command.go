package messaging

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/types"
)

// CommandMessage asks the receiving worker to run one operation. It owns an
// execution.Action; everything an executor needs travels inside it.
type CommandMessage struct {
	action *execution.Action
}

// NewCommandMessage builds the command from the action fields, the same
// signature a caller would hand to the executor.
func NewCommandMessage(name string, target any, args execution.Args, kwargs execution.KWArgs, returnIDs []types.ObjectID) (*CommandMessage, error) {
	action, err := execution.NewAction(name, target, args, kwargs, returnIDs)
	if err != nil {
		return nil, err
	}
	return &CommandMessage{action: action}, nil
}

func (m *CommandMessage) Type() Type { return TypeCommand }

// Action returns the transported descriptor. Treat it as read-only.
func (m *CommandMessage) Action() *execution.Action { return m.action }

func (m *CommandMessage) Name() string             { return m.action.Name }
func (m *CommandMessage) Target() any              { return m.action.Target }
func (m *CommandMessage) Args() execution.Args     { return m.action.Args }
func (m *CommandMessage) Kwargs() execution.KWArgs { return m.action.Kwargs }
func (m *CommandMessage) ReturnIDs() []types.ObjectID { return m.action.ReturnIDs }

// Contents projects the action as ((name, target, args, kwargs), return ids),
// keeping the invocation quadruple separate from the result bindings.
func (m *CommandMessage) Contents() any {
	return []any{
		[]any{m.action.Name, m.action.Target, m.action.Args, m.action.Kwargs},
		m.action.ReturnIDs,
	}
}

func (m *CommandMessage) String() string {
	return fmt.Sprintf("CommandMessage(%s)", m.action)
}

func (m *CommandMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	node, err := serde.Simplify(ctx, m.action)
	if err != nil {
		return nil, err
	}
	return []any{node}, nil
}

// detailCommand rebuilds the variant by copying fields out of the decoded
// action, so construction-time validation runs again on the receiving side.
func detailCommand(ctx *serde.Context, slots []any) (*CommandMessage, error) {
	if len(slots) < 1 {
		return nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("empty tuple")}
	}
	v, err := serde.Detail(ctx, slots[0])
	if err != nil {
		return nil, err
	}
	action, ok := v.(*execution.Action)
	if !ok {
		return nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("want action, got %T", v)}
	}
	return NewCommandMessage(action.Name, action.Target, action.Args, action.Kwargs, action.ReturnIDs)
}
