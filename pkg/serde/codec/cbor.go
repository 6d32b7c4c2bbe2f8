package codec

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	cborEnc = mustEncMode(cbor.CanonicalEncOptions())
	cborDec = mustDecMode(cbor.DecOptions{})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	dm, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// cborCodec carries the same tuple form as msgpack using canonical CBOR.
// Integer width differences between the codecs are absorbed by the
// normalization step in pkg/serde.
type cborCodec struct{}

// CBOR returns the CBOR codec.
func CBOR() Codec { return cborCodec{} }

func (cborCodec) Name() string        { return "cbor" }
func (cborCodec) ContentType() string { return "application/cbor" }

func (cborCodec) Marshal(v any) ([]byte, error) {
	return cborEnc.Marshal(v)
}

func (cborCodec) Unmarshal(data []byte, v any) error {
	return cborDec.Unmarshal(data, v)
}
