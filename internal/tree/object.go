package tree

// Object is an ordered mapping with unique string keys. Insertion order is
// preserved and drives serialization order.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Kind returns KindObject
func (o *Object) Kind() Kind {
	return KindObject
}

func (o *Object) clone() Value {
	c := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]Value, len(o.values)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.values {
		c.values[k] = v.clone()
	}
	return c
}

// Len returns the number of keys
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Set stores value under key. An existing key keeps its position; a new key
// is appended. A nil value is stored as null.
func (o *Object) Set(key string, value Value) {
	if value == nil {
		value = Null()
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// SetString is shorthand for Set(key, String(value))
func (o *Object) SetString(key, value string) {
	o.Set(key, String(value))
}

// Remove deletes key and reports whether it was present
func (o *Object) Remove(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Rename moves the value under from to to, keeping from's position. An
// existing value under to is discarded. Returns false if from is absent.
func (o *Object) Rename(from, to string) bool {
	v, ok := o.values[from]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	o.Remove(to)
	for i, k := range o.keys {
		if k == from {
			o.keys[i] = to
			break
		}
	}
	delete(o.values, from)
	o.values[to] = v
	return true
}

// RemoveIf deletes every key for which match returns true and returns the
// removed keys in their original order.
func (o *Object) RemoveIf(match func(key string) bool) []string {
	var removed []string
	kept := o.keys[:0]
	for _, k := range o.keys {
		if match(k) {
			removed = append(removed, k)
			delete(o.values, k)
			continue
		}
		kept = append(kept, k)
	}
	o.keys = kept
	return removed
}

// Each calls fn for every entry in order. Mutating the object from fn is
// not supported.
func (o *Object) Each(fn func(key string, value Value)) {
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}
