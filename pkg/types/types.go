// Package types defines the small set of domain values that workers exchange:
// object identifiers, shape metadata, placeholders for not-yet-materialized
// results, and a minimal dense tensor. The wire layers treat these values as
// opaque; they only need to be registered with the codecs in pkg/serde and
// pkg/serde/schema.
package types

import (
	"fmt"
	"strings"
)

// ObjectID identifies an object in a worker's store. IDs are allocated by the
// sender (usually at random) and never reused within an exchange.
type ObjectID uint64

func (id ObjectID) String() string { return fmt.Sprintf("#%d", uint64(id)) }

// Shape is the dimension vector of a tensor-like object.
type Shape []int64

// Elems returns the number of elements a dense value of this shape holds.
func (s Shape) Elems() int64 {
	n := int64(1)
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Placeholder stands in for an object that lives on another worker or does
// not exist yet (for example the result slot of a pending command). It
// carries enough metadata to be matched against the real object later.
type Placeholder struct {
	ID          ObjectID
	Tags        []string
	Description string
}

// NewPlaceholder returns a placeholder for the given id, optionally tagged.
func NewPlaceholder(id ObjectID, tags ...string) *Placeholder {
	return &Placeholder{ID: id, Tags: tags}
}

// HasTag reports whether the placeholder carries the given tag.
func (p *Placeholder) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (p *Placeholder) String() string {
	if len(p.Tags) == 0 {
		return fmt.Sprintf("Placeholder[%s]", p.ID)
	}
	return fmt.Sprintf("Placeholder[%s tags=%s]", p.ID, strings.Join(p.Tags, ","))
}
