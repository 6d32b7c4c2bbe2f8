package schema

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Action is the schema form of execution.Action.
// Fields: name=1, target=2, args=3 (repeated), kwargs=4 (repeated),
// return_ids=5 (packed).
type Action struct {
	Name      string
	Target    *Value
	Args      []*Value
	Kwargs    []Pair
	ReturnIDs []uint64
}

const (
	actionFieldName      = protowire.Number(1)
	actionFieldTarget    = protowire.Number(2)
	actionFieldArg       = protowire.Number(3)
	actionFieldKwarg     = protowire.Number(4)
	actionFieldReturnIDs = protowire.Number(5)
)

func (a *Action) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, actionFieldName, protowire.BytesType)
	b = protowire.AppendString(b, a.Name)
	if a.Target != nil {
		child, err := a.Target.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, actionFieldTarget, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	for _, arg := range a.Args {
		if arg == nil {
			arg = NilValue()
		}
		child, err := arg.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, actionFieldArg, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	for _, kw := range a.Kwargs {
		child, err := kw.append(nil)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, actionFieldKwarg, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	if len(a.ReturnIDs) > 0 {
		var packed []byte
		for _, id := range a.ReturnIDs {
			packed = protowire.AppendVarint(packed, id)
		}
		b = protowire.AppendTag(b, actionFieldReturnIDs, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b, nil
}

func (a *Action) Unmarshal(data []byte) error {
	*a = Action{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == actionFieldName && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			a.Name = s
		case num == actionFieldTarget && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			a.Target = new(Value)
			if err := a.Target.Unmarshal(blob); err != nil {
				return err
			}
		case num == actionFieldArg && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			arg := new(Value)
			if err := arg.Unmarshal(blob); err != nil {
				return err
			}
			a.Args = append(a.Args, arg)
		case num == actionFieldKwarg && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			var kw Pair
			if err := kw.unmarshal(blob); err != nil {
				return err
			}
			a.Kwargs = append(a.Kwargs, kw)
		case num == actionFieldReturnIDs && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			for len(blob) > 0 {
				x, k := protowire.ConsumeVarint(blob)
				if k < 0 {
					return protowire.ParseError(k)
				}
				blob = blob[k:]
				a.ReturnIDs = append(a.ReturnIDs, x)
			}
		case num == actionFieldReturnIDs && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			a.ReturnIDs = append(a.ReturnIDs, x)
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return nil
}

// Command wraps an Action for the structured path. Field: action=1.
type Command struct {
	Action *Action
}

const commandFieldAction = protowire.Number(1)

func (c *Command) Marshal() ([]byte, error) {
	var b []byte
	if c.Action != nil {
		child, err := c.Action.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, commandFieldAction, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	return b, nil
}

func (c *Command) Unmarshal(data []byte) error {
	*c = Command{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		if num == commandFieldAction && typ == protowire.BytesType {
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			c.Action = new(Action)
			if err := c.Action.Unmarshal(blob); err != nil {
				return err
			}
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return protowire.ParseError(m)
		}
		data = data[m:]
	}
	return nil
}

// Object wraps an arbitrary value for the structured path. Field: value=1.
type Object struct {
	Value *Value
}

const objectFieldValue = protowire.Number(1)

func (o *Object) Marshal() ([]byte, error) {
	var b []byte
	if o.Value != nil {
		child, err := o.Value.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, objectFieldValue, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	return b, nil
}

func (o *Object) Unmarshal(data []byte) error {
	*o = Object{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		if num == objectFieldValue && typ == protowire.BytesType {
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			o.Value = new(Value)
			if err := o.Value.Unmarshal(blob); err != nil {
				return err
			}
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return protowire.ParseError(m)
		}
		data = data[m:]
	}
	return nil
}

// Envelope pairs a message discriminant with the encoded body so the
// structured path stays self-describing.
// Fields: message_type=1, body=2.
type Envelope struct {
	MessageType uint32
	Body        []byte
}

const (
	envelopeFieldType = protowire.Number(1)
	envelopeFieldBody = protowire.Number(2)
)

func (e *Envelope) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, envelopeFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.MessageType))
	b = protowire.AppendTag(b, envelopeFieldBody, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Body)
	return b, nil
}

func (e *Envelope) Unmarshal(data []byte) error {
	*e = Envelope{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == envelopeFieldType && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			e.MessageType = uint32(x)
		case num == envelopeFieldBody && typ == protowire.BytesType:
			bs, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			e.Body = append([]byte(nil), bs...)
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return nil
}
