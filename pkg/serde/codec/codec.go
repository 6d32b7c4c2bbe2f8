// Package codec provides the byte-level codecs that carry the simplified
// value form produced by pkg/serde. Implementations must be deterministic
// and safe for concurrent use by independent callers.
package codec

// Codec marshals the simplified form (nil, bool, int64, uint64, float64,
// string, []byte and nested []any) to and from bytes.
type Codec interface {
	Name() string
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Registry maps codec names to codecs.
type Registry struct{ byName map[string]Codec }

// NewRegistry constructs a registry preloaded with the built-in codecs:
// msgpack and CBOR.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Codec)}
	r.Register(Msgpack())
	r.Register(CBOR())
	return r
}

// Register adds a codec, replacing any previous codec with the same name.
func (r *Registry) Register(c Codec) { r.byName[c.Name()] = c }

// Get returns a codec by name, or nil.
func (r *Registry) Get(name string) Codec { return r.byName[name] }
