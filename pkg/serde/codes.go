package serde

import "fmt"

// Code tags a composite or domain value in the intermediate form. Codes are
// frozen wire constants; both ends of a connection must agree on them, so
// never renumber, only append.
type Code uint8

const (
	CodeTuple       Code = 1
	CodeMap         Code = 2
	CodeKwargs      Code = 3
	CodeObjectID    Code = 4
	CodeShape       Code = 5
	CodePlaceholder Code = 6
	CodeTensor      Code = 7
	CodeAction      Code = 8
)

func (c Code) String() string {
	switch c {
	case CodeTuple:
		return "tuple"
	case CodeMap:
		return "map"
	case CodeKwargs:
		return "kwargs"
	case CodeObjectID:
		return "object id"
	case CodeShape:
		return "shape"
	case CodePlaceholder:
		return "placeholder"
	case CodeTensor:
		return "tensor"
	case CodeAction:
		return "action"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}
