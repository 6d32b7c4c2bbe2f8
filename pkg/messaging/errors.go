package messaging

import "fmt"

// VariantMismatchError reports that bytes decoded to a different variant
// than the caller demanded.
type VariantMismatchError struct {
	Want Type
	Got  Type
}

func (e *VariantMismatchError) Error() string {
	return fmt.Sprintf("message type mismatch: want %s, got %s", e.Want, e.Got)
}
