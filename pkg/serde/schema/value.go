// Package schema is the structured counterpart of the tuple form: a
// hand-maintained protobuf wire schema encoded with protowire. Field numbers
// are frozen; decoders skip fields they do not know and treat missing fields
// as defaults, so the schema can grow without breaking older peers.
package schema

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ValueKind says which arm of a Value is meaningful. The zero kind is nil so
// an empty Value message decodes to the nil value.
type ValueKind uint8

const (
	KindNil ValueKind = iota
	KindBool
	KindInt
	KindUint
	KindDouble
	KindString
	KindBytes
	KindList
	KindMap
	KindKwargs
	KindObjectID
	KindShape
	KindPlaceholder
	KindTensor
)

// Value field numbers. Frozen wire constants; append only.
const (
	valueFieldNil         = protowire.Number(1)
	valueFieldBool        = protowire.Number(2)
	valueFieldInt         = protowire.Number(3)
	valueFieldDouble      = protowire.Number(4)
	valueFieldString      = protowire.Number(5)
	valueFieldBytes       = protowire.Number(6)
	valueFieldList        = protowire.Number(7)
	valueFieldMap         = protowire.Number(8)
	valueFieldKwargs      = protowire.Number(9)
	valueFieldObjectID    = protowire.Number(10)
	valueFieldShape       = protowire.Number(11)
	valueFieldPlaceholder = protowire.Number(12)
	valueFieldTensor      = protowire.Number(13)
	valueFieldUint        = protowire.Number(14)
)

const (
	listFieldItem  = protowire.Number(1)
	pairsFieldPair = protowire.Number(1)
	pairFieldKey   = protowire.Number(1)
	pairFieldValue = protowire.Number(2)
)

// Value is the oneof-style carrier for an arbitrary payload value. Only the
// arm selected by Kind is meaningful; Pairs serves both KindMap and
// KindKwargs.
type Value struct {
	Kind        ValueKind
	Bool        bool
	Int         int64
	Uint        uint64
	Double      float64
	Str         string
	Bytes       []byte
	List        []*Value
	Pairs       []Pair
	ObjectID    uint64
	Shape       []int64
	Placeholder *Placeholder
	Tensor      *Tensor
}

// Pair is one map or kwargs entry.
type Pair struct {
	Key   string
	Value *Value
}

func NilValue() *Value                { return &Value{Kind: KindNil} }
func BoolValue(v bool) *Value         { return &Value{Kind: KindBool, Bool: v} }
func IntValue(v int64) *Value         { return &Value{Kind: KindInt, Int: v} }
func UintValue(v uint64) *Value       { return &Value{Kind: KindUint, Uint: v} }
func DoubleValue(v float64) *Value    { return &Value{Kind: KindDouble, Double: v} }
func StringValue(v string) *Value     { return &Value{Kind: KindString, Str: v} }
func BytesValue(v []byte) *Value      { return &Value{Kind: KindBytes, Bytes: v} }
func ListValue(items []*Value) *Value { return &Value{Kind: KindList, List: items} }
func MapValue(pairs []Pair) *Value    { return &Value{Kind: KindMap, Pairs: pairs} }
func KwargsValue(pairs []Pair) *Value { return &Value{Kind: KindKwargs, Pairs: pairs} }
func ObjectIDValue(id uint64) *Value  { return &Value{Kind: KindObjectID, ObjectID: id} }
func ShapeValue(dims []int64) *Value  { return &Value{Kind: KindShape, Shape: dims} }

func PlaceholderValue(p *Placeholder) *Value {
	return &Value{Kind: KindPlaceholder, Placeholder: p}
}

func TensorValue(t *Tensor) *Value {
	return &Value{Kind: KindTensor, Tensor: t}
}

func (v *Value) Marshal() ([]byte, error) { return v.append(nil) }

func (v *Value) append(b []byte) ([]byte, error) {
	switch v.Kind {
	case KindNil:
		b = protowire.AppendTag(b, valueFieldNil, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	case KindBool:
		b = protowire.AppendTag(b, valueFieldBool, protowire.VarintType)
		var x uint64
		if v.Bool {
			x = 1
		}
		b = protowire.AppendVarint(b, x)
	case KindInt:
		b = protowire.AppendTag(b, valueFieldInt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.Int))
	case KindUint:
		b = protowire.AppendTag(b, valueFieldUint, protowire.VarintType)
		b = protowire.AppendVarint(b, v.Uint)
	case KindDouble:
		b = protowire.AppendTag(b, valueFieldDouble, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.Double))
	case KindString:
		b = protowire.AppendTag(b, valueFieldString, protowire.BytesType)
		b = protowire.AppendString(b, v.Str)
	case KindBytes:
		b = protowire.AppendTag(b, valueFieldBytes, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Bytes)
	case KindList:
		inner, err := appendValueList(nil, v.List)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, valueFieldList, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	case KindMap, KindKwargs:
		inner, err := appendPairs(nil, v.Pairs)
		if err != nil {
			return nil, err
		}
		num := valueFieldMap
		if v.Kind == KindKwargs {
			num = valueFieldKwargs
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	case KindObjectID:
		b = protowire.AppendTag(b, valueFieldObjectID, protowire.VarintType)
		b = protowire.AppendVarint(b, v.ObjectID)
	case KindShape:
		b = protowire.AppendTag(b, valueFieldShape, protowire.BytesType)
		b = protowire.AppendBytes(b, appendPackedInts(nil, v.Shape))
	case KindPlaceholder:
		if v.Placeholder == nil {
			return nil, fmt.Errorf("schema: placeholder value without payload")
		}
		b = protowire.AppendTag(b, valueFieldPlaceholder, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Placeholder.append(nil))
	case KindTensor:
		if v.Tensor == nil {
			return nil, fmt.Errorf("schema: tensor value without payload")
		}
		b = protowire.AppendTag(b, valueFieldTensor, protowire.BytesType)
		b = protowire.AppendBytes(b, v.Tensor.append(nil))
	default:
		return nil, fmt.Errorf("schema: unknown value kind %d", v.Kind)
	}
	return b, nil
}

// Unmarshal decodes data into v. Recognized fields follow last-one-wins
// oneof semantics; unknown fields are skipped.
func (v *Value) Unmarshal(data []byte) error {
	*v = Value{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == valueFieldNil && typ == protowire.VarintType:
			_, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind = KindNil
		case num == valueFieldBool && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind, v.Bool = KindBool, x != 0
		case num == valueFieldInt && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind, v.Int = KindInt, int64(x)
		case num == valueFieldUint && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind, v.Uint = KindUint, x
		case num == valueFieldDouble && typ == protowire.Fixed64Type:
			x, m := protowire.ConsumeFixed64(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind, v.Double = KindDouble, math.Float64frombits(x)
		case num == valueFieldString && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind, v.Str = KindString, s
		case num == valueFieldBytes && typ == protowire.BytesType:
			bs, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind, v.Bytes = KindBytes, append([]byte(nil), bs...)
		case num == valueFieldList && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			items, err := parseValueList(blob)
			if err != nil {
				return err
			}
			if v.Kind != KindList {
				v.List = nil
			}
			v.Kind = KindList
			v.List = append(v.List, items...)
		case (num == valueFieldMap || num == valueFieldKwargs) && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			pairs, err := parsePairs(blob)
			if err != nil {
				return err
			}
			kind := KindMap
			if num == valueFieldKwargs {
				kind = KindKwargs
			}
			if v.Kind != kind {
				v.Pairs = nil
			}
			v.Kind = kind
			v.Pairs = append(v.Pairs, pairs...)
		case num == valueFieldObjectID && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			v.Kind, v.ObjectID = KindObjectID, x
		case num == valueFieldShape && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			dims, err := parsePackedInts(blob)
			if err != nil {
				return err
			}
			if v.Kind != KindShape {
				v.Shape = nil
			}
			v.Kind = KindShape
			v.Shape = append(v.Shape, dims...)
		case num == valueFieldShape && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			if v.Kind != KindShape {
				v.Shape = nil
			}
			v.Kind = KindShape
			v.Shape = append(v.Shape, int64(x))
		case num == valueFieldPlaceholder && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			p := new(Placeholder)
			if err := p.Unmarshal(blob); err != nil {
				return err
			}
			v.Kind, v.Placeholder = KindPlaceholder, p
		case num == valueFieldTensor && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			t := new(Tensor)
			if err := t.Unmarshal(blob); err != nil {
				return err
			}
			v.Kind, v.Tensor = KindTensor, t
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

func appendValueList(b []byte, items []*Value) ([]byte, error) {
	for _, item := range items {
		if item == nil {
			item = NilValue()
		}
		child, err := item.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, listFieldItem, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	return b, nil
}

func parseValueList(data []byte) ([]*Value, error) {
	var items []*Value
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		if num == listFieldItem && typ == protowire.BytesType {
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
			item := new(Value)
			if err := item.Unmarshal(blob); err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return nil, protowire.ParseError(m)
		}
		data = data[m:]
	}
	return items, nil
}

func appendPairs(b []byte, pairs []Pair) ([]byte, error) {
	for _, p := range pairs {
		child, err := p.append(nil)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, pairsFieldPair, protowire.BytesType)
		b = protowire.AppendBytes(b, child)
	}
	return b, nil
}

func parsePairs(data []byte) ([]Pair, error) {
	var pairs []Pair
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		if num == pairsFieldPair && typ == protowire.BytesType {
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
			var p Pair
			if err := p.unmarshal(blob); err != nil {
				return nil, err
			}
			pairs = append(pairs, p)
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return nil, protowire.ParseError(m)
		}
		data = data[m:]
	}
	return pairs, nil
}

func (p Pair) append(b []byte) ([]byte, error) {
	b = protowire.AppendTag(b, pairFieldKey, protowire.BytesType)
	b = protowire.AppendString(b, p.Key)
	val := p.Value
	if val == nil {
		val = NilValue()
	}
	child, err := val.Marshal()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, pairFieldValue, protowire.BytesType)
	b = protowire.AppendBytes(b, child)
	return b, nil
}

func (p *Pair) unmarshal(data []byte) error {
	*p = Pair{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == pairFieldKey && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			p.Key = s
		case num == pairFieldValue && typ == protowire.BytesType:
			blob, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
			p.Value = new(Value)
			if err := p.Value.Unmarshal(blob); err != nil {
				return err
			}
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

func appendPackedInts(b []byte, vals []int64) []byte {
	for _, v := range vals {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}

func parsePackedInts(data []byte) ([]int64, error) {
	var out []int64
	for len(data) > 0 {
		x, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		out = append(out, int64(x))
	}
	return out, nil
}
