package messaging

import (
	"fmt"

	"github.com/shaanrockz/PySyft/pkg/execution"
	"github.com/shaanrockz/PySyft/pkg/serde"
	"github.com/shaanrockz/PySyft/pkg/serde/schema"
)

// Marshal encodes m under the context's default format and prepends the
// one-byte format prefix, producing self-describing bytes for the transport.
func Marshal(ctx *serde.Context, m Message) ([]byte, error) {
	return MarshalFormat(ctx, m, ctx.Format)
}

// MarshalFormat is Marshal with an explicit format choice.
func MarshalFormat(ctx *serde.Context, m Message, f serde.Format) ([]byte, error) {
	var (
		body []byte
		err  error
	)
	switch f {
	case serde.FormatMsgpack, serde.FormatCBOR:
		if ctx.Format != f {
			ctx = ctx.WithFormat(f)
		}
		body, err = Encode(ctx, m)
	case serde.FormatProto:
		body, err = bufferizeMessage(ctx, m)
	default:
		return nil, &serde.EncodeError{What: "message", Err: fmt.Errorf("unknown format %s", f)}
	}
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(f))
	return append(out, body...), nil
}

// Unmarshal inspects the format prefix and routes to the matching decode
// path.
func Unmarshal(ctx *serde.Context, data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, &serde.DecodeError{What: "message", Err: fmt.Errorf("empty input")}
	}
	f, body := serde.Format(data[0]), data[1:]
	switch f {
	case serde.FormatMsgpack, serde.FormatCBOR:
		if ctx.Format != f {
			ctx = ctx.WithFormat(f)
		}
		return Decode(ctx, body)
	case serde.FormatProto:
		return unbufferizeMessage(ctx, body)
	}
	return nil, &serde.DecodeError{What: "message", Err: fmt.Errorf("unknown format prefix %d", data[0])}
}

// UnmarshalAs is Unmarshal with a variant demand, mirroring DecodeAs.
func UnmarshalAs(ctx *serde.Context, data []byte, want Type) (Message, error) {
	m, err := Unmarshal(ctx, data)
	if err != nil {
		return nil, err
	}
	if m.Type() != want {
		return nil, &VariantMismatchError{Want: want, Got: m.Type()}
	}
	return m, nil
}

// bufferizeMessage lowers a message onto the structured schema path. Only
// CommandMessage and ObjectMessage define this path; the others are a
// deliberate EncodeError, not a silent fallback to the tuple form.
func bufferizeMessage(ctx *serde.Context, m Message) ([]byte, error) {
	if m == nil {
		return nil, &serde.EncodeError{What: "message", Err: fmt.Errorf("nil message")}
	}
	var (
		body []byte
		err  error
	)
	switch msg := m.(type) {
	case *CommandMessage:
		var action *schema.Action
		action, err = schema.BufferizeAction(ctx, msg.action)
		if err == nil {
			cmd := schema.Command{Action: action}
			body, err = cmd.Marshal()
		}
	case *ObjectMessage:
		var value *schema.Value
		value, err = schema.Bufferize(ctx, msg.object)
		if err == nil {
			obj := schema.Object{Value: value}
			body, err = obj.Marshal()
		}
	default:
		err = &serde.EncodeError{What: "schema", Err: fmt.Errorf("variant has no structured form")}
	}
	if err != nil {
		return nil, annotate(m.Type(), err)
	}
	env := schema.Envelope{MessageType: uint32(m.Type()), Body: body}
	return env.Marshal()
}

// unbufferizeMessage raises structured-path bytes back into a message. The
// schema path has no unknown-variant fallback: an unexpected discriminant
// here is a DecodeError.
func unbufferizeMessage(ctx *serde.Context, data []byte) (Message, error) {
	var env schema.Envelope
	if err := env.Unmarshal(data); err != nil {
		return nil, &serde.DecodeError{What: "envelope", Err: err}
	}
	tag := Type(env.MessageType)
	var (
		m   Message
		err error
	)
	switch tag {
	case TypeCommand:
		var cmd schema.Command
		if err = cmd.Unmarshal(env.Body); err != nil {
			err = &serde.DecodeError{What: "command body", Err: err}
			break
		}
		var action *execution.Action
		action, err = schema.UnbufferizeAction(ctx, cmd.Action)
		if err != nil {
			break
		}
		m, err = NewCommandMessage(action.Name, action.Target, action.Args, action.Kwargs, action.ReturnIDs)
	case TypeObject:
		var obj schema.Object
		if err = obj.Unmarshal(env.Body); err != nil {
			err = &serde.DecodeError{What: "object body", Err: err}
			break
		}
		var value any
		value, err = schema.Unbufferize(ctx, obj.Value)
		if err == nil {
			m = NewObjectMessage(value)
		}
	default:
		err = &serde.DecodeError{What: "envelope", Err: fmt.Errorf("no structured form for discriminant %d", env.MessageType)}
	}
	if err != nil {
		return nil, annotate(tag, err)
	}
	return m, nil
}
