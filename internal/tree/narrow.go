package tree

import (
	"math"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

func kindOf(v Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}

func mismatch(expected string, v Value) *errors.Error {
	return errors.ShapeMismatchf("expected %s, got %s", expected, kindOf(v)).
		WithMeta("expected", expected).
		WithMeta("actual", kindOf(v))
}

// AsObject narrows v to an object
func AsObject(v Value) (*Object, error) {
	if o, ok := v.(*Object); ok && o != nil {
		return o, nil
	}
	return nil, mismatch(KindObject.String(), v)
}

// AsArray narrows v to an array
func AsArray(v Value) (*Array, error) {
	if a, ok := v.(*Array); ok && a != nil {
		return a, nil
	}
	return nil, mismatch(KindArray.String(), v)
}

// AsScalar narrows v to a scalar of any kind
func AsScalar(v Value) (*Scalar, error) {
	if s, ok := v.(*Scalar); ok && s != nil {
		return s, nil
	}
	return nil, mismatch("scalar", v)
}

// AsString narrows v to a string scalar
func AsString(v Value) (string, error) {
	if s, ok := v.(*Scalar); ok && s != nil && s.kind == KindString {
		return s.str, nil
	}
	return "", mismatch(KindString.String(), v)
}

// AsInt narrows v to an integer. A float with no fractional part that fits
// in an int64 is accepted; strings are not.
func AsInt(v Value) (int64, error) {
	s, ok := v.(*Scalar)
	if ok && s != nil {
		switch s.kind {
		case KindInt:
			return s.num, nil
		case KindFloat:
			// 2^63 is exactly representable; MaxInt64 is not.
			if s.flt == math.Trunc(s.flt) && s.flt >= math.MinInt64 && s.flt < -math.MinInt64 {
				return int64(s.flt), nil
			}
		}
	}
	return 0, mismatch(KindInt.String(), v)
}

// AsBool narrows v to a boolean
func AsBool(v Value) (bool, error) {
	if s, ok := v.(*Scalar); ok && s != nil && s.kind == KindBool {
		return s.bl, nil
	}
	return false, mismatch(KindBool.String(), v)
}

// StringField returns the string stored under key. The boolean is false when
// the key is absent; a present value of another shape is a ShapeMismatch.
func (o *Object) StringField(key string) (string, bool, error) {
	v, ok := o.values[key]
	if !ok {
		return "", false, nil
	}
	s, err := AsString(v)
	if err != nil {
		return "", true, errors.Wrapf(err, "field %q", key).WithMeta("field", key)
	}
	return s, true, nil
}

// IntField returns the integer stored under key, following StringField's
// conventions.
func (o *Object) IntField(key string) (int64, bool, error) {
	v, ok := o.values[key]
	if !ok {
		return 0, false, nil
	}
	n, err := AsInt(v)
	if err != nil {
		return 0, true, errors.Wrapf(err, "field %q", key).WithMeta("field", key)
	}
	return n, true, nil
}

// ArrayField returns the array stored under key, following StringField's
// conventions.
func (o *Object) ArrayField(key string) (*Array, bool, error) {
	v, ok := o.values[key]
	if !ok {
		return nil, false, nil
	}
	a, err := AsArray(v)
	if err != nil {
		return nil, true, errors.Wrapf(err, "field %q", key).WithMeta("field", key)
	}
	return a, true, nil
}

// ObjectField returns the object stored under key, following StringField's
// conventions.
func (o *Object) ObjectField(key string) (*Object, bool, error) {
	v, ok := o.values[key]
	if !ok {
		return nil, false, nil
	}
	obj, err := AsObject(v)
	if err != nil {
		return nil, true, errors.Wrapf(err, "field %q", key).WithMeta("field", key)
	}
	return obj, true, nil
}
