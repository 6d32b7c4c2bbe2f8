package messaging

import (
	"errors"
	"fmt"
	"math"

	"github.com/shaanrockz/PySyft/pkg/serde"
)

// Encode lowers m to [discriminant, payload-tuple] and marshals it with the
// context's tuple codec. The result carries no format prefix; pair it with
// Decode, or use Marshal for self-describing bytes.
func Encode(ctx *serde.Context, m Message) ([]byte, error) {
	if m == nil {
		return nil, &serde.EncodeError{What: "message", Err: errors.New("nil message")}
	}
	slots, err := m.payloadSlots(ctx)
	if err != nil {
		return nil, annotate(m.Type(), err)
	}
	wc, err := ctx.WireCodec()
	if err != nil {
		return nil, annotate(m.Type(), &serde.EncodeError{What: "wire codec", Err: err})
	}
	data, err := wc.Marshal([]any{int64(m.Type()), slots})
	if err != nil {
		return nil, annotate(m.Type(), &serde.EncodeError{What: "wire bytes", Err: err})
	}
	return data, nil
}

// Decode reads bytes produced by Encode under the same format. An
// unregistered discriminant yields a RawMessage; anything malformed yields a
// DecodeError.
func Decode(ctx *serde.Context, data []byte) (Message, error) {
	tag, slots, err := decodeEnvelope(ctx, data)
	if err != nil {
		return nil, err
	}
	return detailMessage(ctx, tag, slots)
}

// DecodeAs decodes like Decode but insists on one variant. The discriminant
// is checked before any payload work, so mismatches are cheap and never
// partially decoded.
func DecodeAs(ctx *serde.Context, data []byte, want Type) (Message, error) {
	tag, slots, err := decodeEnvelope(ctx, data)
	if err != nil {
		return nil, err
	}
	if tag != want {
		return nil, &VariantMismatchError{Want: want, Got: tag}
	}
	return detailMessage(ctx, tag, slots)
}

func decodeEnvelope(ctx *serde.Context, data []byte) (Type, []any, error) {
	wc, err := ctx.WireCodec()
	if err != nil {
		return 0, nil, &serde.DecodeError{What: "wire codec", Err: err}
	}
	var raw any
	if err := wc.Unmarshal(data, &raw); err != nil {
		return 0, nil, &serde.DecodeError{What: "message", Err: err}
	}
	return splitEnvelope(raw)
}

// splitEnvelope validates the outer [discriminant, payload-tuple] pair. A
// missing payload tuple decodes as empty; extra trailing elements are
// ignored.
func splitEnvelope(raw any) (Type, []any, error) {
	arr, ok := serde.AsSlice(raw)
	if !ok || len(arr) == 0 {
		return 0, nil, &serde.DecodeError{What: "message", Err: fmt.Errorf("envelope %T", raw)}
	}
	tag, ok := serde.AsInt64(arr[0])
	if !ok || tag < 0 || tag > math.MaxUint32 {
		return 0, nil, &serde.DecodeError{What: "message", Err: fmt.Errorf("discriminant %v", arr[0])}
	}
	var slots []any
	if len(arr) > 1 && arr[1] != nil {
		slots, ok = serde.AsSlice(arr[1])
		if !ok {
			return 0, nil, &serde.DecodeError{What: "message", Err: fmt.Errorf("payload %T", arr[1])}
		}
	}
	return Type(tag), slots, nil
}

func detailMessage(ctx *serde.Context, tag Type, slots []any) (Message, error) {
	var (
		m   Message
		err error
	)
	switch tag {
	case TypeCommand:
		m, err = detailCommand(ctx, slots)
	case TypeObject:
		m, err = detailObject(ctx, slots)
	case TypeObjectRequest:
		m, err = detailObjectRequest(ctx, slots)
	case TypeIsNone:
		m, err = detailIsNone(ctx, slots)
	case TypeGetShape:
		m, err = detailGetShape(ctx, slots)
	case TypeForceObjectDelete:
		m, err = detailForceObjectDelete(ctx, slots)
	case TypeSearch:
		m, err = detailSearch(ctx, slots)
	case TypePlanCommand:
		m, err = detailPlanCommand(ctx, slots)
	case TypeExecuteWorkerFunction:
		m, err = detailExecuteWorkerFunction(ctx, slots)
	default:
		m, err = detailRaw(ctx, tag, slots)
	}
	if err != nil {
		return nil, annotate(tag, err)
	}
	return m, nil
}

// annotate prefixes an error with the variant it belongs to while keeping
// the wrapped chain intact for errors.As.
func annotate(t Type, err error) error {
	return fmt.Errorf("%s: %w", t, err)
}
