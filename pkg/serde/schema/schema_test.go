package schema

import (
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/types"
)

func schemaRoundTrip(t *testing.T, ctx *serde.Context, v any) any {
	t.Helper()
	msg, err := Bufferize(ctx, v)
	if err != nil {
		t.Fatalf("bufferize %#v: %v", v, err)
	}
	data, err := msg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Value
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := Unbufferize(ctx, &decoded)
	if err != nil {
		t.Fatalf("unbufferize: %v", err)
	}
	return out
}

func TestValueRoundTrip(t *testing.T) {
	ctx := serde.NewContext("alice")
	tensor, err := types.NewTensor(types.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("new tensor: %v", err)
	}
	values := []any{
		nil,
		false,
		true,
		int64(-99),
		uint64(math.MaxUint64),
		float64(0.125),
		"worker identity",
		[]byte{0xDE, 0xAD},
		[]any{},
		[]any{int64(1), []any{"nested", nil}, true},
		map[string]any{"k1": int64(1), "k2": "two"},
		execution.KWArgs{{Name: "dim", Value: int64(0)}, {Name: "keep", Value: false}},
		types.ObjectID(77),
		types.Shape{},
		types.Shape{128, 64},
		types.NewPlaceholder(5, "#t1", "#t2"),
		tensor,
	}
	for _, v := range values {
		got := schemaRoundTrip(t, ctx, v)
		if !execution.ValueEqual(got, v) {
			t.Fatalf("round trip: got %#v, want %#v", got, v)
		}
	}
}

func TestKwargsValueKeepsOrder(t *testing.T) {
	ctx := serde.NewContext("alice")
	in := execution.KWArgs{
		{Name: "zeta", Value: int64(1)},
		{Name: "alpha", Value: int64(2)},
	}
	got := schemaRoundTrip(t, ctx, in)
	out, ok := got.(execution.KWArgs)
	if !ok || len(out) != 2 || out[0].Name != "zeta" || out[1].Name != "alpha" {
		t.Fatalf("order lost: %#v", got)
	}
}

func TestActionRoundTrip(t *testing.T) {
	ctx := serde.NewContext("alice")
	in, err := execution.NewAction(
		"matmul",
		types.ObjectID(3),
		execution.Args{types.NewPlaceholder(4), float64(2.0)},
		execution.KWArgs{{Name: "transpose", Value: true}},
		[]types.ObjectID{10, 11},
	)
	if err != nil {
		t.Fatalf("new action: %v", err)
	}
	msg, err := BufferizeAction(ctx, in)
	if err != nil {
		t.Fatalf("bufferize action: %v", err)
	}
	data, err := msg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Action
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := UnbufferizeAction(ctx, &decoded)
	if err != nil {
		t.Fatalf("unbufferize action: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("round trip: got %s, want %s", out, in)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	ctx := serde.NewContext("alice")
	msg, err := Bufferize(ctx, "keep me")
	if err != nil {
		t.Fatalf("bufferize: %v", err)
	}
	data, err := msg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// A future peer appends fields this build has never heard of.
	data = protowire.AppendTag(data, 90, protowire.VarintType)
	data = protowire.AppendVarint(data, 12345)
	data = protowire.AppendTag(data, 91, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("future payload"))
	data = protowire.AppendTag(data, 92, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 7)

	var decoded Value
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	out, err := Unbufferize(ctx, &decoded)
	if err != nil {
		t.Fatalf("unbufferize: %v", err)
	}
	if out != "keep me" {
		t.Fatalf("got %#v, want %q", out, "keep me")
	}
}

func TestMissingFieldsDefault(t *testing.T) {
	ctx := serde.NewContext("alice")

	var empty Value
	if err := empty.Unmarshal(nil); err != nil {
		t.Fatalf("unmarshal empty value: %v", err)
	}
	out, err := Unbufferize(ctx, &empty)
	if err != nil {
		t.Fatalf("unbufferize: %v", err)
	}
	if out != nil {
		t.Fatalf("empty value = %#v, want nil", out)
	}

	// An action carrying only its name: everything else takes defaults.
	var b []byte
	b = protowire.AppendTag(b, actionFieldName, protowire.BytesType)
	b = protowire.AppendString(b, "noop")
	var decoded Action
	if err := decoded.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	a, err := UnbufferizeAction(ctx, &decoded)
	if err != nil {
		t.Fatalf("unbufferize action: %v", err)
	}
	if a.Name != "noop" || a.Target != nil || len(a.Args) != 0 || len(a.Kwargs) != 0 || len(a.ReturnIDs) != 0 {
		t.Fatalf("defaults not applied: %s", a)
	}
}

func TestMalformedBytes(t *testing.T) {
	cases := [][]byte{
		{0x09},             // fixed64 tag with no payload
		{0x2A, 0x05, 0x01}, // string field promising 5 bytes, delivering 1
		{0xFF},             // truncated tag
	}
	for _, data := range cases {
		var v Value
		if err := v.Unmarshal(data); err == nil {
			t.Fatalf("unmarshal %x: expected error", data)
		}
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := Envelope{MessageType: 2, Body: []byte{0x01, 0x02, 0x03}}
	data, err := in.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	data = protowire.AppendTag(data, 77, protowire.VarintType)
	data = protowire.AppendVarint(data, 1)

	var out Envelope
	if err := out.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.MessageType != in.MessageType || string(out.Body) != string(in.Body) {
		t.Fatalf("round trip: %+v, want %+v", out, in)
	}
}

func TestBufferizeRejectsUnmappedType(t *testing.T) {
	ctx := serde.NewContext("alice")
	type opaque struct{ n int }
	_, err := Bufferize(ctx, opaque{n: 1})
	var ee *serde.EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("want EncodeError, got %v", err)
	}
}
