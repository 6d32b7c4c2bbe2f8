package serde

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/types"
)

func roundTrip(t *testing.T, ctx *Context, f Format, v any) any {
	t.Helper()
	node, err := Simplify(ctx, v)
	if err != nil {
		t.Fatalf("simplify %#v: %v", v, err)
	}
	wc, err := ctx.CodecFor(f)
	if err != nil {
		t.Fatalf("codec for %s: %v", f, err)
	}
	data, err := wc.Marshal(node)
	if err != nil {
		t.Fatalf("%s marshal: %v", f, err)
	}
	var raw any
	if err := wc.Unmarshal(data, &raw); err != nil {
		t.Fatalf("%s unmarshal: %v", f, err)
	}
	out, err := Detail(ctx, raw)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	return out
}

func TestSimplifyNormalizesPrimitives(t *testing.T) {
	ctx := NewContext("alice")
	cases := []struct {
		in   any
		want any
	}{
		{int(7), int64(7)},
		{int8(-3), int64(-3)},
		{int32(1 << 20), int64(1 << 20)},
		{uint8(200), int64(200)},
		{uint32(42), int64(42)},
		{uint64(42), int64(42)},
		{uint64(math.MaxUint64), uint64(math.MaxUint64)},
		{float32(0.5), float64(0.5)},
		{nil, nil},
		{true, true},
		{"hi", "hi"},
	}
	for _, tc := range cases {
		got, err := Simplify(ctx, tc.in)
		if err != nil {
			t.Fatalf("simplify %#v: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("simplify %#v = %#v (%T), want %#v (%T)", tc.in, got, got, tc.want, tc.want)
		}
	}
}

func TestRoundTripValues(t *testing.T) {
	ctx := NewContext("alice")
	action, err := execution.NewAction(
		"add",
		types.NewPlaceholder(9, "#input"),
		execution.Args{int64(1), "x", []any{true, nil}},
		execution.KWArgs{{Name: "axis", Value: int64(0)}, {Name: "keepdim", Value: true}},
		[]types.ObjectID{21, 22},
	)
	if err != nil {
		t.Fatalf("new action: %v", err)
	}
	tensor, err := types.NewTensor(types.Shape{2, 2}, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("new tensor: %v", err)
	}
	values := []any{
		nil,
		true,
		"worker",
		int64(-12),
		uint64(math.MaxUint64),
		float64(3.25),
		[]byte{0x01, 0x00, 0xFF},
		[]any{int64(1), "two", []any{float64(3)}},
		map[string]any{"b": int64(2), "a": "one"},
		execution.KWArgs{{Name: "z", Value: int64(1)}, {Name: "a", Value: int64(2)}},
		types.ObjectID(42),
		types.Shape{3, 4, 5},
		types.NewPlaceholder(7, "#tag1", "#tag2"),
		tensor,
		action,
	}
	for _, f := range []Format{FormatMsgpack, FormatCBOR} {
		for _, v := range values {
			got := roundTrip(t, ctx, f, v)
			if !execution.ValueEqual(got, v) {
				t.Fatalf("%s round trip: got %#v, want %#v", f, got, v)
			}
		}
	}
}

func TestKwargsKeepInsertionOrder(t *testing.T) {
	ctx := NewContext("alice")
	kw := execution.KWArgs{
		{Name: "zeta", Value: int64(1)},
		{Name: "alpha", Value: int64(2)},
	}
	got := roundTrip(t, ctx, FormatMsgpack, kw)
	out, ok := got.(execution.KWArgs)
	if !ok {
		t.Fatalf("round trip type %T", got)
	}
	if len(out) != 2 || out[0].Name != "zeta" || out[1].Name != "alpha" {
		t.Fatalf("order not preserved: %#v", out)
	}
}

func TestMapSimplifiesDeterministically(t *testing.T) {
	ctx := NewContext("alice")
	m1 := map[string]any{}
	m1["alpha"] = int64(1)
	m1["beta"] = int64(2)
	m1["gamma"] = int64(3)
	m2 := map[string]any{}
	m2["gamma"] = int64(3)
	m2["beta"] = int64(2)
	m2["alpha"] = int64(1)

	wc, err := ctx.WireCodec()
	if err != nil {
		t.Fatalf("wire codec: %v", err)
	}
	var encoded [][]byte
	for _, m := range []map[string]any{m1, m2} {
		node, err := Simplify(ctx, m)
		if err != nil {
			t.Fatalf("simplify: %v", err)
		}
		data, err := wc.Marshal(node)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		encoded = append(encoded, data)
	}
	if !bytes.Equal(encoded[0], encoded[1]) {
		t.Fatalf("equal maps produced different bytes")
	}
}

func TestSimplifyRejectsUnregisteredType(t *testing.T) {
	ctx := NewContext("alice")
	type opaque struct{ x int }
	_, err := Simplify(ctx, opaque{x: 1})
	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("want EncodeError, got %v", err)
	}
}

func TestDetailRejectsUnknownCode(t *testing.T) {
	ctx := NewContext("alice")
	_, err := Detail(ctx, []any{int64(99), nil})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want DecodeError, got %v", err)
	}
}

func TestDetailRejectsMalformedNodes(t *testing.T) {
	ctx := NewContext("alice")
	for _, node := range []any{
		[]any{},
		[]any{int64(CodeTuple)},
		[]any{"tuple", []any{}},
		[]any{int64(-1), []any{}},
		[]any{int64(CodeAction), []any{"add"}},
	} {
		_, err := Detail(ctx, node)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("node %#v: want DecodeError, got %v", node, err)
		}
	}
}

func TestDetailIgnoresExtraTaggedElements(t *testing.T) {
	ctx := NewContext("alice")
	got, err := Detail(ctx, []any{int64(CodeObjectID), uint64(7), "future field"})
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if got != types.ObjectID(7) {
		t.Fatalf("got %#v, want ObjectID(7)", got)
	}
}

func TestCrossCodecSameValue(t *testing.T) {
	ctx := NewContext("alice")
	in := []any{types.ObjectID(5), map[string]any{"k": types.Shape{1, 2}}, "tail"}
	a := roundTrip(t, ctx, FormatMsgpack, in)
	b := roundTrip(t, ctx, FormatCBOR, in)
	if !execution.ValueEqual(a, in) || !execution.ValueEqual(b, in) {
		t.Fatalf("codec round trips disagree with input: %#v vs %#v", a, b)
	}
	if !execution.ValueEqual(a, b) {
		t.Fatalf("codec round trips disagree with each other: %#v vs %#v", a, b)
	}
}

func TestContextRegistryExtension(t *testing.T) {
	ctx := NewContext("alice")
	type custom struct{ n int64 }
	const codeCustom Code = 40
	err := ctx.Registry.Register(codeCustom, custom{},
		func(_ *Context, v any) (any, error) { return v.(custom).n, nil },
		func(_ *Context, body any) (any, error) {
			n, ok := AsInt64(body)
			if !ok {
				return nil, errors.New("bad body")
			}
			return custom{n: n}, nil
		},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	node, err := Simplify(ctx, custom{n: 11})
	if err != nil {
		t.Fatalf("simplify: %v", err)
	}
	out, err := Detail(ctx, node)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if out != (custom{n: 11}) {
		t.Fatalf("got %#v", out)
	}
	if err := ctx.Registry.Register(codeCustom, custom{}, nil, nil); err == nil {
		t.Fatalf("duplicate registration accepted")
	}
}
