// Package execution defines the descriptor for a remote operation: what to
// call, on which object, with which arguments, and where the caller expects
// the results to land. The descriptor is a pure data record; executing it is
// the receiving worker's business.
package execution

import (
	"fmt"
	"strings"

	"github.com/shaanrockz/PySyft/pkg/types"
)

// Args is the ordered positional argument list of an action. Elements may be
// any serializable value, including placeholders and nested containers.
type Args []any

// KV is one keyword argument.
type KV struct {
	Name  string
	Value any
}

// KWArgs is the keyword argument list. It is a slice, not a map, so that the
// caller's insertion order survives re-encoding byte-for-byte. Keys must be
// unique; Validate enforces this at the construction boundaries.
type KWArgs []KV

// Get returns the value for name and whether it is present.
func (k KWArgs) Get(name string) (any, bool) {
	for _, kv := range k {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return nil, false
}

// Validate reports an error if any key appears more than once.
func (k KWArgs) Validate() error {
	if len(k) < 2 {
		return nil
	}
	seen := make(map[string]struct{}, len(k))
	for _, kv := range k {
		if _, dup := seen[kv.Name]; dup {
			return fmt.Errorf("duplicate keyword argument %q", kv.Name)
		}
		seen[kv.Name] = struct{}{}
	}
	return nil
}

// Action describes one remote invocation. Target is nil for free functions.
// ReturnIDs are allocated by the caller ahead of time so it can hold
// placeholders for the results before the action ever runs; this layer
// transports them verbatim and leaves arity checks to the executor.
type Action struct {
	Name      string
	Target    any
	Args      Args
	Kwargs    KWArgs
	ReturnIDs []types.ObjectID
}

// NewAction builds an action and validates the keyword arguments.
func NewAction(name string, target any, args Args, kwargs KWArgs, returnIDs []types.ObjectID) (*Action, error) {
	if name == "" {
		return nil, fmt.Errorf("action requires a name")
	}
	if err := kwargs.Validate(); err != nil {
		return nil, fmt.Errorf("action %q: %w", name, err)
	}
	return &Action{Name: name, Target: target, Args: args, Kwargs: kwargs, ReturnIDs: returnIDs}, nil
}

// Equal reports field-for-field equality of two actions. Argument values are
// compared with the same structural rules the codecs guarantee on round-trip.
func (a *Action) Equal(o *Action) bool {
	if o == nil {
		return a == nil
	}
	if a.Name != o.Name || !ValueEqual(a.Target, o.Target) {
		return false
	}
	if len(a.Args) != len(o.Args) || len(a.Kwargs) != len(o.Kwargs) || len(a.ReturnIDs) != len(o.ReturnIDs) {
		return false
	}
	for i := range a.Args {
		if !ValueEqual(a.Args[i], o.Args[i]) {
			return false
		}
	}
	for i := range a.Kwargs {
		if a.Kwargs[i].Name != o.Kwargs[i].Name || !ValueEqual(a.Kwargs[i].Value, o.Kwargs[i].Value) {
			return false
		}
	}
	for i := range a.ReturnIDs {
		if a.ReturnIDs[i] != o.ReturnIDs[i] {
			return false
		}
	}
	return true
}

func (a *Action) String() string {
	var b strings.Builder
	b.WriteString(a.Name)
	b.WriteByte('(')
	if a.Target != nil {
		fmt.Fprintf(&b, "target=%v", a.Target)
	}
	for i, arg := range a.Args {
		if i > 0 || a.Target != nil {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", arg)
	}
	for _, kv := range a.Kwargs {
		fmt.Fprintf(&b, ", %s=%v", kv.Name, kv.Value)
	}
	b.WriteByte(')')
	if len(a.ReturnIDs) > 0 {
		ids := make([]string, len(a.ReturnIDs))
		for i, id := range a.ReturnIDs {
			ids[i] = id.String()
		}
		fmt.Fprintf(&b, " -> %s", strings.Join(ids, ","))
	}
	return b.String()
}
