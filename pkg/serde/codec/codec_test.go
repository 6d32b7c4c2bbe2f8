package codec

import (
	"reflect"
	"testing"
)

func TestRegistryPreloads(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"msgpack", "cbor"} {
		c := r.Get(name)
		if c == nil {
			t.Fatalf("registry missing %q", name)
		}
		if c.Name() != name {
			t.Fatalf("codec name = %q, want %q", c.Name(), name)
		}
	}
	if r.Get("json") != nil {
		t.Fatalf("unexpected codec registered under json")
	}
}

func TestRoundTripPreservesOrder(t *testing.T) {
	in := []any{"first", []any{"second", "third"}, "fourth"}
	for _, c := range []Codec{Msgpack(), CBOR()} {
		data, err := c.Marshal(in)
		if err != nil {
			t.Fatalf("%s marshal: %v", c.Name(), err)
		}
		var out any
		if err := c.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s unmarshal: %v", c.Name(), err)
		}
		if !reflect.DeepEqual(out, in) {
			t.Fatalf("%s round trip = %#v, want %#v", c.Name(), out, in)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	in := []any{[]byte{0x00, 0x01, 0xFE}, "tail"}
	for _, c := range []Codec{Msgpack(), CBOR()} {
		data, err := c.Marshal(in)
		if err != nil {
			t.Fatalf("%s marshal: %v", c.Name(), err)
		}
		var out any
		if err := c.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s unmarshal: %v", c.Name(), err)
		}
		got, ok := out.([]any)
		if !ok || len(got) != 2 {
			t.Fatalf("%s round trip shape = %#v", c.Name(), out)
		}
		if b, ok := got[0].([]byte); !ok || !reflect.DeepEqual(b, []byte{0x00, 0x01, 0xFE}) {
			t.Fatalf("%s bytes = %#v", c.Name(), got[0])
		}
	}
}

// asInt folds the integer a codec hands back into int64 so the test does not
// depend on codec-specific width choices.
func asInt(t *testing.T, v any) int64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case int:
		return int64(n)
	default:
		t.Fatalf("non-integer value %T", v)
		return 0
	}
}

func TestNumericRoundTrip(t *testing.T) {
	in := []any{int64(0), int64(-7), int64(1 << 40), float64(2.5)}
	for _, c := range []Codec{Msgpack(), CBOR()} {
		data, err := c.Marshal(in)
		if err != nil {
			t.Fatalf("%s marshal: %v", c.Name(), err)
		}
		var out any
		if err := c.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s unmarshal: %v", c.Name(), err)
		}
		got, ok := out.([]any)
		if !ok || len(got) != 4 {
			t.Fatalf("%s round trip shape = %#v", c.Name(), out)
		}
		for i, want := range []int64{0, -7, 1 << 40} {
			if n := asInt(t, got[i]); n != want {
				t.Fatalf("%s element %d = %d, want %d", c.Name(), i, n, want)
			}
		}
		if f, ok := got[3].(float64); !ok || f != 2.5 {
			t.Fatalf("%s float = %#v", c.Name(), got[3])
		}
	}
}
