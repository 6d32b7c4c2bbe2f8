// Package serde lowers Go values into a compact, order-sensitive intermediate
// form and raises them back.
//
// The intermediate form contains only wire-safe values: nil, bool, int64,
// uint64 (above MaxInt64 only), float64, string, []byte and []any. Every
// composite or domain value is a two-element [code, body] pair, so a decoder
// can dispatch on position 0 without guessing; see codes.go for the frozen
// code space. Tuples keep element order, maps simplify with key-sorted
// entries so equal maps produce equal bytes, and kwargs keep insertion order.
//
// The form itself is codec-neutral. pkg/serde/codec turns it into bytes
// (msgpack by default, canonical CBOR as the alternative); integer width
// differences between those codecs are absorbed by normalization on the way
// back in.
package serde

import (
	"fmt"
	"math"
	"sort"

	"github.com/shaanrockz/PySyft/pkg/execution"
)

// tagged wraps a body with its code, producing one intermediate-form node.
func tagged(code Code, body any) []any {
	return []any{int64(code), body}
}

// Simplify lowers v into the intermediate form. Primitives pass through with
// integers normalized; []any, Args, KWArgs and map[string]any become their
// built-in coded pairs; everything else must have a registry rule.
func Simplify(ctx *Context, v any) (any, error) {
	if leaf, ok := Normalize(v); ok {
		return leaf, nil
	}
	switch val := v.(type) {
	case []any:
		return simplifyTuple(ctx, val)
	case execution.Args:
		return simplifyTuple(ctx, val)
	case execution.KWArgs:
		return simplifyKwargs(ctx, val)
	case map[string]any:
		return simplifyMap(ctx, val)
	}
	code, fn, ok := ctx.Registry.simplifierFor(v)
	if !ok {
		return nil, &EncodeError{What: fmt.Sprintf("%T", v), Err: fmt.Errorf("no simplify rule")}
	}
	body, err := fn(ctx, v)
	if err != nil {
		return nil, wrapEncode(code.String(), err)
	}
	return tagged(code, body), nil
}

// Detail raises an intermediate-form node back into its Go value. The node
// normally comes straight from a wire codec, so integer widths are folded
// before interpretation.
func Detail(ctx *Context, node any) (any, error) {
	if leaf, ok := Normalize(node); ok {
		return leaf, nil
	}
	arr, ok := AsSlice(node)
	if !ok {
		return nil, &DecodeError{What: fmt.Sprintf("%T", node), Err: fmt.Errorf("unexpected wire value")}
	}
	return detailTagged(ctx, arr)
}

// detailTagged interprets one [code, body] pair. Elements beyond the first
// two are ignored so newer peers can append to a node without breaking us.
func detailTagged(ctx *Context, node []any) (any, error) {
	if len(node) < 2 {
		return nil, &DecodeError{What: "tagged value", Err: fmt.Errorf("need [code, body], got %d elements", len(node))}
	}
	code, err := codeOf(node[0])
	if err != nil {
		return nil, err
	}
	body := node[1]
	switch code {
	case CodeTuple:
		return detailTuple(ctx, body)
	case CodeMap:
		return detailMap(ctx, body)
	case CodeKwargs:
		return detailKwargs(ctx, body)
	}
	fn, ok := ctx.Registry.detailerFor(code)
	if !ok {
		return nil, &DecodeError{What: code.String(), Err: fmt.Errorf("unknown code %d", uint8(code))}
	}
	v, err := fn(ctx, body)
	if err != nil {
		return nil, wrapDecode(code.String(), err)
	}
	return v, nil
}

func codeOf(v any) (Code, error) {
	n, ok := AsInt64(v)
	if !ok || n < 0 || n > math.MaxUint8 {
		return 0, &DecodeError{What: "tagged value", Err: fmt.Errorf("bad code %v", v)}
	}
	return Code(n), nil
}

func simplifyTuple(ctx *Context, items []any) (any, error) {
	body := make([]any, len(items))
	for i, item := range items {
		node, err := Simplify(ctx, item)
		if err != nil {
			return nil, err
		}
		body[i] = node
	}
	return tagged(CodeTuple, body), nil
}

func simplifyKwargs(ctx *Context, kw execution.KWArgs) (any, error) {
	if err := kw.Validate(); err != nil {
		return nil, &EncodeError{What: "kwargs", Err: err}
	}
	body := make([]any, len(kw))
	for i, kv := range kw {
		node, err := Simplify(ctx, kv.Value)
		if err != nil {
			return nil, err
		}
		body[i] = []any{kv.Name, node}
	}
	return tagged(CodeKwargs, body), nil
}

// simplifyMap emits entries in key order so equal maps yield equal bytes.
func simplifyMap(ctx *Context, m map[string]any) (any, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	body := make([]any, len(keys))
	for i, k := range keys {
		node, err := Simplify(ctx, m[k])
		if err != nil {
			return nil, err
		}
		body[i] = []any{k, node}
	}
	return tagged(CodeMap, body), nil
}

func detailTuple(ctx *Context, body any) (any, error) {
	arr, ok := AsSlice(body)
	if !ok {
		return nil, &DecodeError{What: "tuple", Err: fmt.Errorf("body %T", body)}
	}
	out := make([]any, len(arr))
	for i, item := range arr {
		v, err := Detail(ctx, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func detailMap(ctx *Context, body any) (any, error) {
	arr, ok := AsSlice(body)
	if !ok {
		return nil, &DecodeError{What: "map", Err: fmt.Errorf("body %T", body)}
	}
	out := make(map[string]any, len(arr))
	for _, item := range arr {
		pair, ok := AsSlice(item)
		if !ok || len(pair) < 2 {
			return nil, &DecodeError{What: "map", Err: fmt.Errorf("entry %v", item)}
		}
		key, ok := pair[0].(string)
		if !ok {
			return nil, &DecodeError{What: "map", Err: fmt.Errorf("key %T", pair[0])}
		}
		v, err := Detail(ctx, pair[1])
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func detailKwargs(ctx *Context, body any) (any, error) {
	arr, ok := AsSlice(body)
	if !ok {
		return nil, &DecodeError{What: "kwargs", Err: fmt.Errorf("body %T", body)}
	}
	out := make(execution.KWArgs, 0, len(arr))
	for _, item := range arr {
		pair, ok := AsSlice(item)
		if !ok || len(pair) < 2 {
			return nil, &DecodeError{What: "kwargs", Err: fmt.Errorf("entry %v", item)}
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, &DecodeError{What: "kwargs", Err: fmt.Errorf("name %T", pair[0])}
		}
		v, err := Detail(ctx, pair[1])
		if err != nil {
			return nil, err
		}
		out = append(out, execution.KV{Name: name, Value: v})
	}
	return out, nil
}
