package tree

// Clone returns a deep copy of v that shares nothing with the original.
func Clone(v Value) Value {
	if v == nil {
		return nil
	}
	return v.clone()
}

// CloneObject is Clone for objects
func CloneObject(o *Object) *Object {
	if o == nil {
		return nil
	}
	return o.clone().(*Object)
}

// Equal reports whether a and b are structurally identical. Object key
// order is part of the value. An int and a float holding the same number
// are different values.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case *Scalar:
		bv := b.(*Scalar)
		switch av.kind {
		case KindString:
			return av.str == bv.str
		case KindInt:
			return av.num == bv.num
		case KindFloat:
			return av.flt == bv.flt
		case KindBool:
			return av.bl == bv.bl
		default:
			return true
		}
	case *Array:
		bv := b.(*Array)
		if len(av.items) != len(bv.items) {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if len(av.keys) != len(bv.keys) {
			return false
		}
		for i, k := range av.keys {
			if bv.keys[i] != k {
				return false
			}
			if !Equal(av.values[k], bv.values[k]) {
				return false
			}
		}
		return true
	}
	return false
}
