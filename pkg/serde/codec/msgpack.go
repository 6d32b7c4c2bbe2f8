package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// msgpackCodec is the default wire codec. Array encoding preserves element
// order, which the tuple form relies on.
type msgpackCodec struct{}

// Msgpack returns the msgpack codec.
func Msgpack() Codec { return msgpackCodec{} }

func (msgpackCodec) Name() string        { return "msgpack" }
func (msgpackCodec) ContentType() string { return "application/msgpack" }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	// Decode untyped integers as int64/uint64 and floats as float64 so both
	// built-in codecs surface the same Go types.
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(v)
}
