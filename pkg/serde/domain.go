package serde

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/types"
)

// registerDomain wires the built-in domain types into a fresh registry.
func registerDomain(r *Registry) {
	r.mustRegister(CodeObjectID, types.ObjectID(0), simplifyObjectID, detailObjectID)
	r.mustRegister(CodeShape, types.Shape(nil), simplifyShape, detailShape)
	r.mustRegister(CodePlaceholder, (*types.Placeholder)(nil), simplifyPlaceholder, detailPlaceholder)
	r.mustRegister(CodeTensor, (*types.Tensor)(nil), simplifyTensor, detailTensor)
	r.mustRegister(CodeAction, (*execution.Action)(nil), simplifyAction, detailAction)
}

func simplifyObjectID(_ *Context, v any) (any, error) {
	return uint64(v.(types.ObjectID)), nil
}

func detailObjectID(_ *Context, body any) (any, error) {
	id, ok := AsUint64(body)
	if !ok {
		return nil, fmt.Errorf("body %v (%T)", body, body)
	}
	return types.ObjectID(id), nil
}

func simplifyShape(_ *Context, v any) (any, error) {
	s := v.(types.Shape)
	dims := make([]any, len(s))
	for i, d := range s {
		dims[i] = d
	}
	return dims, nil
}

func detailShape(_ *Context, body any) (any, error) {
	arr, ok := AsSlice(body)
	if !ok {
		return nil, fmt.Errorf("body %T", body)
	}
	s := make(types.Shape, len(arr))
	for i, d := range arr {
		n, ok := AsInt64(d)
		if !ok {
			return nil, fmt.Errorf("dim %v (%T)", d, d)
		}
		s[i] = n
	}
	return s, nil
}

func simplifyPlaceholder(_ *Context, v any) (any, error) {
	p := v.(*types.Placeholder)
	tags := make([]any, len(p.Tags))
	for i, tag := range p.Tags {
		tags[i] = tag
	}
	return []any{uint64(p.ID), tags, p.Description}, nil
}

func detailPlaceholder(_ *Context, body any) (any, error) {
	arr, ok := AsSlice(body)
	if !ok || len(arr) < 3 {
		return nil, fmt.Errorf("body %v", body)
	}
	id, ok := AsUint64(arr[0])
	if !ok {
		return nil, fmt.Errorf("id %v", arr[0])
	}
	rawTags, ok := AsSlice(arr[1])
	if !ok {
		return nil, fmt.Errorf("tags %T", arr[1])
	}
	tags := make([]string, len(rawTags))
	for i, t := range rawTags {
		s, ok := t.(string)
		if !ok {
			return nil, fmt.Errorf("tag %T", t)
		}
		tags[i] = s
	}
	desc, ok := arr[2].(string)
	if !ok {
		return nil, fmt.Errorf("description %T", arr[2])
	}
	return &types.Placeholder{ID: types.ObjectID(id), Tags: tags, Description: desc}, nil
}

func simplifyTensor(_ *Context, v any) (any, error) {
	t := v.(*types.Tensor)
	dims := make([]any, len(t.Shape))
	for i, d := range t.Shape {
		dims[i] = d
	}
	data := make([]any, len(t.Data))
	for i, x := range t.Data {
		data[i] = x
	}
	return []any{dims, data}, nil
}

func detailTensor(ctx *Context, body any) (any, error) {
	arr, ok := AsSlice(body)
	if !ok || len(arr) < 2 {
		return nil, fmt.Errorf("body %v", body)
	}
	rawShape, err := detailShape(ctx, arr[0])
	if err != nil {
		return nil, err
	}
	rawData, ok := AsSlice(arr[1])
	if !ok {
		return nil, fmt.Errorf("data %T", arr[1])
	}
	data := make([]float64, len(rawData))
	for i, x := range rawData {
		f, ok := x.(float64)
		if !ok {
			return nil, fmt.Errorf("element %v (%T)", x, x)
		}
		data[i] = f
	}
	return types.NewTensor(rawShape.(types.Shape), data)
}

// simplifyAction lays the descriptor out as five slots: name, target, args,
// kwargs, return ids. The last slot stays a plain integer list.
func simplifyAction(ctx *Context, v any) (any, error) {
	a := v.(*execution.Action)
	target, err := Simplify(ctx, a.Target)
	if err != nil {
		return nil, err
	}
	args, err := Simplify(ctx, a.Args)
	if err != nil {
		return nil, err
	}
	kwargs, err := Simplify(ctx, a.Kwargs)
	if err != nil {
		return nil, err
	}
	ids := make([]any, len(a.ReturnIDs))
	for i, id := range a.ReturnIDs {
		ids[i] = uint64(id)
	}
	return []any{a.Name, target, args, kwargs, ids}, nil
}

func detailAction(ctx *Context, body any) (any, error) {
	arr, ok := AsSlice(body)
	if !ok || len(arr) < 5 {
		return nil, fmt.Errorf("need 5 slots, got %v", body)
	}
	name, ok := arr[0].(string)
	if !ok {
		return nil, fmt.Errorf("name %T", arr[0])
	}
	target, err := Detail(ctx, arr[1])
	if err != nil {
		return nil, err
	}
	rawArgs, err := Detail(ctx, arr[2])
	if err != nil {
		return nil, err
	}
	var args execution.Args
	if rawArgs != nil {
		list, ok := rawArgs.([]any)
		if !ok {
			return nil, fmt.Errorf("args %T", rawArgs)
		}
		args = execution.Args(list)
	}
	rawKwargs, err := Detail(ctx, arr[3])
	if err != nil {
		return nil, err
	}
	var kwargs execution.KWArgs
	if rawKwargs != nil {
		kw, ok := rawKwargs.(execution.KWArgs)
		if !ok {
			return nil, fmt.Errorf("kwargs %T", rawKwargs)
		}
		kwargs = kw
	}
	rawIDs, ok := AsSlice(arr[4])
	if !ok {
		return nil, fmt.Errorf("return ids %T", arr[4])
	}
	ids := make([]types.ObjectID, len(rawIDs))
	for i, raw := range rawIDs {
		id, ok := AsUint64(raw)
		if !ok {
			return nil, fmt.Errorf("return id %v (%T)", raw, raw)
		}
		ids[i] = types.ObjectID(id)
	}
	return execution.NewAction(name, target, args, kwargs, ids)
}
