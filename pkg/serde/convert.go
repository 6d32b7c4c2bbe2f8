package serde

import "math"

// Normalize folds v into its canonical leaf form when v is a primitive:
// integers become int64 (uint64 only above MaxInt64), float32 widens to
// float64, nil/bool/string/[]byte pass through. The second return reports
// whether v was a leaf at all.
func Normalize(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case bool:
		return val, true
	case string:
		return val, true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case []byte:
		return val, true
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return uint64(val), true
		}
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return val, true
		}
		return int64(val), true
	}
	return nil, false
}

// AsInt64 folds any integer a wire codec hands back into int64. It fails on
// non-integers and on uint64 values above MaxInt64.
func AsInt64(v any) (int64, bool) {
	leaf, ok := Normalize(v)
	if !ok {
		return 0, false
	}
	n, ok := leaf.(int64)
	return n, ok
}

// AsUint64 folds any non-negative integer into uint64.
func AsUint64(v any) (uint64, bool) {
	leaf, ok := Normalize(v)
	if !ok {
		return 0, false
	}
	switch n := leaf.(type) {
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}

// AsSlice returns the []any behind a wire node.
func AsSlice(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}
