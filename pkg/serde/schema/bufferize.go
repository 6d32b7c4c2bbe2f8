package schema

import (
	"fmt"
	"math"
	"sort"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/types"
)

// Bufferize lowers a Go value into its schema Value. Unlike the tuple form
// the schema is frozen, so only the built-in value domain is accepted; the
// context is threaded through for parity with the generic path.
func Bufferize(ctx *serde.Context, v any) (*Value, error) {
	if leaf, ok := serde.Normalize(v); ok {
		switch x := leaf.(type) {
		case nil:
			return NilValue(), nil
		case bool:
			return BoolValue(x), nil
		case int64:
			return IntValue(x), nil
		case uint64:
			return UintValue(x), nil
		case float64:
			return DoubleValue(x), nil
		case string:
			return StringValue(x), nil
		case []byte:
			return BytesValue(x), nil
		}
	}
	switch val := v.(type) {
	case []any:
		return bufferizeList(ctx, val)
	case execution.Args:
		return bufferizeList(ctx, val)
	case execution.KWArgs:
		pairs, err := bufferizeKwargs(ctx, val)
		if err != nil {
			return nil, err
		}
		return KwargsValue(pairs), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]Pair, len(keys))
		for i, k := range keys {
			child, err := Bufferize(ctx, val[k])
			if err != nil {
				return nil, err
			}
			pairs[i] = Pair{Key: k, Value: child}
		}
		return MapValue(pairs), nil
	case types.ObjectID:
		return ObjectIDValue(uint64(val)), nil
	case types.Shape:
		return ShapeValue(val), nil
	case *types.Placeholder:
		return PlaceholderValue(&Placeholder{
			ID:          uint64(val.ID),
			Tags:        val.Tags,
			Description: val.Description,
		}), nil
	case *types.Tensor:
		return TensorValue(&Tensor{Shape: val.Shape, Data: val.Data}), nil
	}
	return nil, &serde.EncodeError{What: fmt.Sprintf("%T", v), Err: fmt.Errorf("no schema mapping")}
}

func bufferizeList(ctx *serde.Context, items []any) (*Value, error) {
	out := make([]*Value, len(items))
	for i, item := range items {
		child, err := Bufferize(ctx, item)
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return ListValue(out), nil
}

func bufferizeKwargs(ctx *serde.Context, kw execution.KWArgs) ([]Pair, error) {
	if err := kw.Validate(); err != nil {
		return nil, &serde.EncodeError{What: "kwargs", Err: err}
	}
	pairs := make([]Pair, len(kw))
	for i, kv := range kw {
		child, err := Bufferize(ctx, kv.Value)
		if err != nil {
			return nil, err
		}
		pairs[i] = Pair{Key: kv.Name, Value: child}
	}
	return pairs, nil
}

// Unbufferize raises a schema Value back into its Go value.
func Unbufferize(ctx *serde.Context, v *Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind {
	case KindNil:
		return nil, nil
	case KindBool:
		return v.Bool, nil
	case KindInt:
		return v.Int, nil
	case KindUint:
		if v.Uint <= math.MaxInt64 {
			return int64(v.Uint), nil
		}
		return v.Uint, nil
	case KindDouble:
		return v.Double, nil
	case KindString:
		return v.Str, nil
	case KindBytes:
		return v.Bytes, nil
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			x, err := Unbufferize(ctx, item)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case KindMap:
		out := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			x, err := Unbufferize(ctx, p.Value)
			if err != nil {
				return nil, err
			}
			out[p.Key] = x
		}
		return out, nil
	case KindKwargs:
		out := make(execution.KWArgs, 0, len(v.Pairs))
		for _, p := range v.Pairs {
			x, err := Unbufferize(ctx, p.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, execution.KV{Name: p.Key, Value: x})
		}
		return out, nil
	case KindObjectID:
		return types.ObjectID(v.ObjectID), nil
	case KindShape:
		return types.Shape(v.Shape), nil
	case KindPlaceholder:
		if v.Placeholder == nil {
			return nil, &serde.DecodeError{What: "placeholder", Err: fmt.Errorf("empty payload")}
		}
		return &types.Placeholder{
			ID:          types.ObjectID(v.Placeholder.ID),
			Tags:        v.Placeholder.Tags,
			Description: v.Placeholder.Description,
		}, nil
	case KindTensor:
		if v.Tensor == nil {
			return nil, &serde.DecodeError{What: "tensor", Err: fmt.Errorf("empty payload")}
		}
		t, err := types.NewTensor(types.Shape(v.Tensor.Shape), v.Tensor.Data)
		if err != nil {
			return nil, &serde.DecodeError{What: "tensor", Err: err}
		}
		return t, nil
	}
	return nil, &serde.DecodeError{What: "value", Err: fmt.Errorf("unknown kind %d", v.Kind)}
}

// BufferizeAction lowers an execution.Action into its schema form.
func BufferizeAction(ctx *serde.Context, a *execution.Action) (*Action, error) {
	if a == nil {
		return nil, &serde.EncodeError{What: "action", Err: fmt.Errorf("nil action")}
	}
	target, err := Bufferize(ctx, a.Target)
	if err != nil {
		return nil, err
	}
	args := make([]*Value, len(a.Args))
	for i, arg := range a.Args {
		args[i], err = Bufferize(ctx, arg)
		if err != nil {
			return nil, err
		}
	}
	kwargs, err := bufferizeKwargs(ctx, a.Kwargs)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(a.ReturnIDs))
	for i, id := range a.ReturnIDs {
		ids[i] = uint64(id)
	}
	return &Action{
		Name:      a.Name,
		Target:    target,
		Args:      args,
		Kwargs:    kwargs,
		ReturnIDs: ids,
	}, nil
}

// UnbufferizeAction raises a schema Action back into an execution.Action.
// Missing fields fall back to the descriptor's defaults.
func UnbufferizeAction(ctx *serde.Context, m *Action) (*execution.Action, error) {
	if m == nil {
		return nil, &serde.DecodeError{What: "action", Err: fmt.Errorf("missing action")}
	}
	target, err := Unbufferize(ctx, m.Target)
	if err != nil {
		return nil, err
	}
	var args execution.Args
	if len(m.Args) > 0 {
		args = make(execution.Args, len(m.Args))
		for i, arg := range m.Args {
			args[i], err = Unbufferize(ctx, arg)
			if err != nil {
				return nil, err
			}
		}
	}
	var kwargs execution.KWArgs
	for _, p := range m.Kwargs {
		x, err := Unbufferize(ctx, p.Value)
		if err != nil {
			return nil, err
		}
		kwargs = append(kwargs, execution.KV{Name: p.Key, Value: x})
	}
	ids := make([]types.ObjectID, len(m.ReturnIDs))
	for i, id := range m.ReturnIDs {
		ids[i] = types.ObjectID(id)
	}
	a, err := execution.NewAction(m.Name, target, args, kwargs, ids)
	if err != nil {
		return nil, &serde.DecodeError{What: "action", Err: err}
	}
	return a, nil
}
