// Package tree is the semi-structured value model every pipeline stage reads
// and mutates: ordered objects, arrays and scalars decoded from JSON.
//
// A parent exclusively owns its children. Values are never shared between
// two parents; use Clone to copy a subtree before attaching it elsewhere.
package tree

import (
	"strconv"
)

// Kind identifies the runtime shape of a Value.
type Kind int

// Value kinds
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

// String returns the kind name used in error messages
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsScalar reports whether the kind is one of the scalar kinds
func (k Kind) IsScalar() bool {
	return k != KindArray && k != KindObject
}

// Value is one node of a tree: *Object, *Array or *Scalar.
type Value interface {
	Kind() Kind
	MarshalJSON() ([]byte, error)
	clone() Value
}

// Scalar holds a string, integer, float, boolean or null.
type Scalar struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bl   bool
}

// String creates a string scalar
func String(s string) *Scalar {
	return &Scalar{kind: KindString, str: s}
}

// Int creates an integer scalar
func Int(i int64) *Scalar {
	return &Scalar{kind: KindInt, num: i}
}

// Float creates a float scalar
func Float(f float64) *Scalar {
	return &Scalar{kind: KindFloat, flt: f}
}

// Bool creates a boolean scalar
func Bool(b bool) *Scalar {
	return &Scalar{kind: KindBool, bl: b}
}

// Null creates a null scalar
func Null() *Scalar {
	return &Scalar{kind: KindNull}
}

// Strings creates an array of string scalars
func Strings(values ...string) *Array {
	arr := NewArray()
	for _, v := range values {
		arr.Append(String(v))
	}
	return arr
}

// Kind returns the scalar kind
func (s *Scalar) Kind() Kind {
	return s.kind
}

func (s *Scalar) clone() Value {
	c := *s
	return &c
}

// Text returns the display form of the scalar: strings unquoted, numbers in
// decimal, booleans as true/false and null as the empty string.
func (s *Scalar) Text() string {
	switch s.kind {
	case KindString:
		return s.str
	case KindInt:
		return strconv.FormatInt(s.num, 10)
	case KindFloat:
		return strconv.FormatFloat(s.flt, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.bl)
	default:
		return ""
	}
}

// Interface returns the scalar as a plain Go value (string, int64, float64,
// bool or nil).
func (s *Scalar) Interface() interface{} {
	switch s.kind {
	case KindString:
		return s.str
	case KindInt:
		return s.num
	case KindFloat:
		return s.flt
	case KindBool:
		return s.bl
	default:
		return nil
	}
}

// Text returns the display text of any value. Scalars use Scalar.Text;
// objects and arrays are rendered as compact JSON. A nil value is "".
func Text(v Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(*Scalar); ok {
		return s.Text()
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
