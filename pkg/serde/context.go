package serde

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/serde/codec"
)

// Format selects the byte encoding of a marshaled message. The value doubles
// as the one-byte prefix in front of the encoded payload, so the constants
// are frozen wire values.
type Format uint8

const (
	FormatUnknown Format = 0
	FormatMsgpack Format = 1 // tuple form, msgpack bytes (default)
	FormatCBOR    Format = 2 // tuple form, canonical CBOR bytes
	FormatProto   Format = 3 // structured schema form, protobuf bytes
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatCBOR:
		return "cbor"
	case FormatProto:
		return "proto"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat maps a format name from configuration to its wire constant.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "msgpack", "":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	case "proto", "protobuf":
		return FormatProto, nil
	}
	return FormatUnknown, fmt.Errorf("serde: unknown format %q", name)
}

// Context carries everything one encode or decode needs: the identity of the
// worker doing the work, the value rules, the wire codecs and the default
// format. Pass it explicitly; there is no ambient registry. A Context is
// treated as immutable after construction and is safe for concurrent use.
type Context struct {
	WorkerID string
	Registry *Registry
	Wire     *codec.Registry
	Format   Format
}

// NewContext returns a context with the built-in registries and msgpack as
// the default format.
func NewContext(workerID string) *Context {
	return &Context{
		WorkerID: workerID,
		Registry: NewRegistry(),
		Wire:     codec.NewRegistry(),
		Format:   FormatMsgpack,
	}
}

// WithFormat returns a shallow copy of the context that defaults to f. The
// registries are shared with the original.
func (c *Context) WithFormat(f Format) *Context {
	cp := *c
	cp.Format = f
	return &cp
}

// WireCodec resolves the tuple-form codec for the context's default format.
func (c *Context) WireCodec() (codec.Codec, error) {
	return c.CodecFor(c.Format)
}

// CodecFor resolves the tuple-form codec for f. FormatProto deliberately has
// none; the schema path in pkg/serde/schema covers it.
func (c *Context) CodecFor(f Format) (codec.Codec, error) {
	var name string
	switch f {
	case FormatMsgpack:
		name = "msgpack"
	case FormatCBOR:
		name = "cbor"
	default:
		return nil, fmt.Errorf("serde: no tuple codec for %s", f)
	}
	if wc := c.Wire.Get(name); wc != nil {
		return wc, nil
	}
	return nil, fmt.Errorf("serde: codec %q not registered", name)
}
