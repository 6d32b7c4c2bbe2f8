package schema

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Placeholder is the schema form of types.Placeholder.
// Fields: id=1, tags=2 (repeated), description=3.
type Placeholder struct {
	ID          uint64
	Tags        []string
	Description string
}

const (
	placeholderFieldID          = protowire.Number(1)
	placeholderFieldTag         = protowire.Number(2)
	placeholderFieldDescription = protowire.Number(3)
)

func (p *Placeholder) append(b []byte) []byte {
	b = protowire.AppendTag(b, placeholderFieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, p.ID)
	for _, tag := range p.Tags {
		b = protowire.AppendTag(b, placeholderFieldTag, protowire.BytesType)
		b = protowire.AppendString(b, tag)
	}
	if p.Description != "" {
		b = protowire.AppendTag(b, placeholderFieldDescription, protowire.BytesType)
		b = protowire.AppendString(b, p.Description)
	}
	return b
}

func (p *Placeholder) Unmarshal(data []byte) error {
	*p = Placeholder{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == placeholderFieldID && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			p.ID = x
		case num == placeholderFieldTag && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			p.Tags = append(p.Tags, s)
		case num == placeholderFieldDescription && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			p.Description = s
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

// Tensor is the schema form of types.Tensor.
// Fields: shape=1 (packed), data=2 (packed doubles).
type Tensor struct {
	Shape []int64
	Data  []float64
}

const (
	tensorFieldShape = protowire.Number(1)
	tensorFieldData  = protowire.Number(2)
)

func (t *Tensor) append(b []byte) []byte {
	b = protowire.AppendTag(b, tensorFieldShape, protowire.BytesType)
	b = protowire.AppendBytes(b, appendPackedInts(nil, t.Shape))
	var packed []byte
	for _, x := range t.Data {
		packed = protowire.AppendFixed64(packed, math.Float64bits(x))
	}
	b = protowire.AppendTag(b, tensorFieldData, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)
	return b
}

func (t *Tensor) Unmarshal(data []byte) error {
	*t = Tensor{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == tensorFieldShape && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			dims, err := parsePackedInts(blob)
			if err != nil {
				return err
			}
			t.Shape = append(t.Shape, dims...)
		case num == tensorFieldShape && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			t.Shape = append(t.Shape, int64(x))
		case num == tensorFieldData && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			for len(blob) > 0 {
				x, k := protowire.ConsumeFixed64(blob)
				if k < 0 {
					return protowire.ParseError(k)
				}
				blob = blob[k:]
				t.Data = append(t.Data, math.Float64frombits(x))
			}
		case num == tensorFieldData && typ == protowire.Fixed64Type:
			x, m := protowire.ConsumeFixed64(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			t.Data = append(t.Data, math.Float64frombits(x))
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
