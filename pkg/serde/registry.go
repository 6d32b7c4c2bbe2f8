package serde

import (
	"fmt"
	"reflect"
)

// SimplifyFunc lowers one registered value into its wire body. Nested values
// inside the body must already be simplified by the func itself.
type SimplifyFunc func(ctx *Context, v any) (any, error)

// DetailFunc rebuilds a registered value from its wire body.
type DetailFunc func(ctx *Context, body any) (any, error)

type simplifier struct {
	code Code
	fn   SimplifyFunc
}

// Registry maps Go types to simplify rules and codes to detail rules. The
// zero value is not usable; NewRegistry preloads the domain types and callers
// may add their own pairs as long as codes and types stay unique.
type Registry struct {
	simplifiers map[reflect.Type]simplifier
	detailers   map[Code]DetailFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		simplifiers: make(map[reflect.Type]simplifier),
		detailers:   make(map[Code]DetailFunc),
	}
	registerDomain(r)
	return r
}

// Register binds code to the concrete type of prototype. Both directions must
// be provided.
func (r *Registry) Register(code Code, prototype any, s SimplifyFunc, d DetailFunc) error {
	if prototype == nil || s == nil || d == nil {
		return fmt.Errorf("serde: incomplete registration for %s", code)
	}
	typ := reflect.TypeOf(prototype)
	if _, dup := r.simplifiers[typ]; dup {
		return fmt.Errorf("serde: type %s already registered", typ)
	}
	if _, dup := r.detailers[code]; dup {
		return fmt.Errorf("serde: %s already registered", code)
	}
	r.simplifiers[typ] = simplifier{code: code, fn: s}
	r.detailers[code] = d
	return nil
}

func (r *Registry) mustRegister(code Code, prototype any, s SimplifyFunc, d DetailFunc) {
	if err := r.Register(code, prototype, s, d); err != nil {
		panic(err)
	}
}

func (r *Registry) simplifierFor(v any) (Code, SimplifyFunc, bool) {
	s, ok := r.simplifiers[reflect.TypeOf(v)]
	if !ok {
		return 0, nil, false
	}
	return s.code, s.fn, true
}

func (r *Registry) detailerFor(code Code) (DetailFunc, bool) {
	d, ok := r.detailers[code]
	return d, ok
}
