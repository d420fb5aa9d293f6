package tree

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

// ParseJSON decodes a JSON document into a tree, keeping object keys in
// document order. Numbers without a fraction or exponent become integers.
// A repeated key keeps its first position and its last value.
func ParseJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.InvalidArgument("document is not valid JSON")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return Int(i)
			}
		}
		return Float(r.Num)
	case gjson.JSON:
		if r.IsArray() {
			arr := NewArray()
			r.ForEach(func(_, item gjson.Result) bool {
				arr.Append(fromResult(item))
				return true
			})
			return arr
		}
		obj := NewObject()
		r.ForEach(func(key, item gjson.Result) bool {
			obj.Set(key.Str, fromResult(item))
			return true
		})
		return obj
	}
	return Null()
}

// MarshalJSON encodes the scalar
func (s *Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindString:
		return marshalString(s.str)
	case KindInt:
		return []byte(strconv.FormatInt(s.num, 10)), nil
	case KindFloat:
		return []byte(strconv.FormatFloat(s.flt, 'g', -1, 64)), nil
	case KindBool:
		return []byte(strconv.FormatBool(s.bl)), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalJSON encodes the array compactly
func (a *Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the object compactly with keys in insertion order
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := o.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, errors.Wrap(err, "failed to encode string")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
