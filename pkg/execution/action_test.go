package execution

import (
	"strings"
	"testing"

	"github.com/shaanrockz/PySyft/pkg/types"
)

func TestNewActionRejectsDuplicateKwargs(t *testing.T) {
	_, err := NewAction("add", nil, nil, KWArgs{{"alpha", int64(1)}, {"alpha", int64(2)}}, nil)
	if err == nil {
		t.Fatalf("expected duplicate kwarg error")
	}
	if !strings.Contains(err.Error(), "alpha") {
		t.Fatalf("error should name the duplicate key: %v", err)
	}
}

func TestNewActionRequiresName(t *testing.T) {
	if _, err := NewAction("", nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestKWArgsGetPreservesOrder(t *testing.T) {
	kw := KWArgs{{"lr", 0.1}, {"momentum", 0.9}}
	if v, ok := kw.Get("momentum"); !ok || v != 0.9 {
		t.Fatalf("Get(momentum) = %v, %v", v, ok)
	}
	if _, ok := kw.Get("decay"); ok {
		t.Fatalf("Get on missing key should report absence")
	}
	if kw[0].Name != "lr" || kw[1].Name != "momentum" {
		t.Fatalf("insertion order not preserved: %v", kw)
	}
}

func TestActionEqual(t *testing.T) {
	mk := func() *Action {
		a, err := NewAction("add",
			types.ObjectID(17),
			Args{types.ObjectID(3), int64(2)},
			KWArgs{{"axis", int64(0)}},
			[]types.ObjectID{21},
		)
		if err != nil {
			t.Fatalf("NewAction: %v", err)
		}
		return a
	}
	a, b := mk(), mk()
	if !a.Equal(b) {
		t.Fatalf("identical actions unequal")
	}
	b.ReturnIDs = []types.ObjectID{22}
	if a.Equal(b) {
		t.Fatalf("actions with different return ids equal")
	}
}

func TestValueEqualDomain(t *testing.T) {
	ph := &types.Placeholder{ID: 5, Tags: []string{"x"}}
	tn, _ := types.NewTensor(types.Shape{2}, []float64{1, 2})
	cases := []struct {
		a, b any
		want bool
	}{
		{nil, nil, true},
		{nil, int64(0), false},
		{int64(3), int64(3), true},
		{int64(3), float64(3), false},
		{"a", "a", true},
		{[]byte{1, 2}, []byte{1, 2}, true},
		{[]any{int64(1), "x"}, []any{int64(1), "x"}, true},
		{[]any{int64(1)}, []any{int64(2)}, false},
		{map[string]any{"k": int64(1)}, map[string]any{"k": int64(1)}, true},
		{map[string]any{"k": int64(1)}, map[string]any{"k": int64(2)}, false},
		{types.ObjectID(9), types.ObjectID(9), true},
		{types.Shape{2, 3}, types.Shape{2, 3}, true},
		{ph, &types.Placeholder{ID: 5, Tags: []string{"x"}}, true},
		{ph, &types.Placeholder{ID: 5, Tags: []string{"y"}}, false},
		{tn, tn, true},
	}
	for i, c := range cases {
		if got := ValueEqual(c.a, c.b); got != c.want {
			t.Fatalf("case %d: ValueEqual(%v, %v) = %v, want %v", i, c.a, c.b, got, c.want)
		}
	}
}
