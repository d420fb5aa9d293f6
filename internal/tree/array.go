package tree

// Array is an ordered sequence of values.
type Array struct {
	items []Value
}

// NewArray creates an array holding items. Nil items are stored as null.
func NewArray(items ...Value) *Array {
	a := &Array{items: make([]Value, 0, len(items))}
	a.Append(items...)
	return a
}

// Kind returns KindArray
func (a *Array) Kind() Kind {
	return KindArray
}

func (a *Array) clone() Value {
	c := &Array{items: make([]Value, len(a.items))}
	for i, v := range a.items {
		c.items[i] = v.clone()
	}
	return c
}

// Len returns the number of items
func (a *Array) Len() int {
	return len(a.items)
}

// At returns the item at index i. It panics when i is out of range, like a
// slice index.
func (a *Array) At(i int) Value {
	return a.items[i]
}

// First returns the first item, or false for an empty array
func (a *Array) First() (Value, bool) {
	if len(a.items) == 0 {
		return nil, false
	}
	return a.items[0], true
}

// Items returns the backing items in order. Callers must not retain the
// slice across mutations.
func (a *Array) Items() []Value {
	return a.items
}

// Append adds values to the end of the array
func (a *Array) Append(values ...Value) {
	for _, v := range values {
		if v == nil {
			v = Null()
		}
		a.items = append(a.items, v)
	}
}

// Replace stores value at index i
func (a *Array) Replace(i int, value Value) {
	if value == nil {
		value = Null()
	}
	a.items[i] = value
}

// Texts returns the display text of every item
func (a *Array) Texts() []string {
	out := make([]string, len(a.items))
	for i, v := range a.items {
		out[i] = Text(v)
	}
	return out
}
