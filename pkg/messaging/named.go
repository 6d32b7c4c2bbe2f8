package messaging

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/serde"
)

// The two named-command variants pair a command name with an opaque argument
// payload. They share a wire shape but never a dispatch table: a plan
// command must not reach the worker-function table and vice versa, which is
// why they keep distinct discriminants.

// PlanCommandMessage invokes a registered plan-level command (fetch, run,
// delete a stored plan) by name.
type PlanCommandMessage struct {
	commandName string
	message     any
}

func NewPlanCommandMessage(commandName string, message any) *PlanCommandMessage {
	return &PlanCommandMessage{commandName: commandName, message: message}
}

func (m *PlanCommandMessage) Type() Type          { return TypePlanCommand }
func (m *PlanCommandMessage) CommandName() string { return m.commandName }
func (m *PlanCommandMessage) Message() any        { return m.message }

// Contents keeps the field order of the wire shape: name first, payload
// second.
func (m *PlanCommandMessage) Contents() any {
	return []any{m.commandName, m.message}
}

func (m *PlanCommandMessage) String() string {
	return fmt.Sprintf("PlanCommandMessage(%s, %v)", m.commandName, m.message)
}

func (m *PlanCommandMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	return namedSlots(ctx, m.commandName, m.message)
}

// ExecuteWorkerFunctionMessage invokes a registered worker-level function by
// name.
type ExecuteWorkerFunctionMessage struct {
	commandName string
	message     any
}

func NewExecuteWorkerFunctionMessage(commandName string, message any) *ExecuteWorkerFunctionMessage {
	return &ExecuteWorkerFunctionMessage{commandName: commandName, message: message}
}

func (m *ExecuteWorkerFunctionMessage) Type() Type          { return TypeExecuteWorkerFunction }
func (m *ExecuteWorkerFunctionMessage) CommandName() string { return m.commandName }
func (m *ExecuteWorkerFunctionMessage) Message() any        { return m.message }

func (m *ExecuteWorkerFunctionMessage) Contents() any {
	return []any{m.commandName, m.message}
}

func (m *ExecuteWorkerFunctionMessage) String() string {
	return fmt.Sprintf("ExecuteWorkerFunctionMessage(%s, %v)", m.commandName, m.message)
}

func (m *ExecuteWorkerFunctionMessage) payloadSlots(ctx *serde.Context) ([]any, error) {
	return namedSlots(ctx, m.commandName, m.message)
}

// namedSlots lowers a named command to exactly two slots, name before
// payload.
func namedSlots(ctx *serde.Context, name string, message any) ([]any, error) {
	node, err := serde.Simplify(ctx, message)
	if err != nil {
		return nil, err
	}
	return []any{name, node}, nil
}

// detailNamed reads the two positional slots back. Fewer than two slots is
// malformed; extra slots are tolerated.
func detailNamed(ctx *serde.Context, slots []any) (string, any, error) {
	if len(slots) < 2 {
		return "", nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("want 2 slots, got %d", len(slots))}
	}
	name, ok := slots[0].(string)
	if !ok {
		return "", nil, &serde.DecodeError{What: "payload", Err: fmt.Errorf("command name %T", slots[0])}
	}
	message, err := serde.Detail(ctx, slots[1])
	if err != nil {
		return "", nil, err
	}
	return name, message, nil
}

func detailPlanCommand(ctx *serde.Context, slots []any) (*PlanCommandMessage, error) {
	name, message, err := detailNamed(ctx, slots)
	if err != nil {
		return nil, err
	}
	return NewPlanCommandMessage(name, message), nil
}

func detailExecuteWorkerFunction(ctx *serde.Context, slots []any) (*ExecuteWorkerFunctionMessage, error) {
	name, message, err := detailNamed(ctx, slots)
	if err != nil {
		return nil, err
	}
	return NewExecuteWorkerFunctionMessage(name, message), nil
}
