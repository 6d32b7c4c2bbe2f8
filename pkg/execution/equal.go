package execution

import (
	"bytes"

	"github.com/shaanrockz/PySyft/pkg/types"
)

// ValueEqual compares two values structurally over the domain the codecs
// carry: primitives, byte slices, sequences, string-keyed maps, keyword
// lists, and the types package. Numeric comparison follows the codec
// normalization rules, so int64(3) equals int64(3) but not float64(3).
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case Args:
		bv, ok := b.(Args)
		return ok && ValueEqual([]any(av), []any(bv))
	case KWArgs:
		bv, ok := b.(KWArgs)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Name != bv[i].Name || !ValueEqual(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			ov, present := bv[k]
			if !present || !ValueEqual(v, ov) {
				return false
			}
		}
		return true
	case types.ObjectID:
		bv, ok := b.(types.ObjectID)
		return ok && av == bv
	case []types.ObjectID:
		bv, ok := b.([]types.ObjectID)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case types.Shape:
		bv, ok := b.(types.Shape)
		return ok && av.Equal(bv)
	case *types.Placeholder:
		bv, ok := b.(*types.Placeholder)
		if !ok || av.ID != bv.ID || av.Description != bv.Description || len(av.Tags) != len(bv.Tags) {
			return false
		}
		for i := range av.Tags {
			if av.Tags[i] != bv.Tags[i] {
				return false
			}
		}
		return true
	case *types.Tensor:
		bv, ok := b.(*types.Tensor)
		return ok && av.Equal(bv)
	case *Action:
		bv, ok := b.(*Action)
		return ok && av.Equal(bv)
	default:
		return false
	}
}
