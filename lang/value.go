package lang

import (
	"iter"
	"slices"
)

// Type indicates the type of value.
type Type int

const (
	// TypeInteger represents a signed 64-bit integer.
	TypeInteger Type = iota

	// TypeString represents a string with its quotes stripped.
	TypeString

	// TypeList represents an ordered sequence of values.
	TypeList

	// TypeDict represents a string-keyed mapping of values.
	TypeDict
)

// String returns a string representation of the value type.
func (vt Type) String() string {
	switch vt {
	case TypeInteger:
		return "Integer"

	case TypeString:
		return "String"

	case TypeList:
		return "List"

	case TypeDict:
		return "Dict"

	default:
		return "Unknown"
	}
}

// Value represents any value in the language.
type Value struct {
	Type Type
	// Exactly one of these is meaningful based on Type
	Int  int64
	Str  string
	List []*Value
	Dict *Dict
	Pos  Position // Start of the value in source, if parsed
}

// NewInteger creates a new integer value.
func NewInteger(i int64) *Value {
	return &Value{Type: TypeInteger, Int: i}
}

// NewString creates a new string value.
func NewString(s string) *Value {
	return &Value{Type: TypeString, Str: s}
}

// NewList creates a new list value from the given elements.
func NewList(elems ...*Value) *Value {
	if elems == nil {
		elems = []*Value{}
	}

	return &Value{Type: TypeList, List: elems}
}

// NewDict creates a new dictionary value wrapping d.
// A nil d is replaced with an empty dictionary.
func NewDict(d *Dict) *Value {
	if d == nil {
		d = new(Dict)
	}

	return &Value{Type: TypeDict, Dict: d}
}

// Equal reports whether v and o hold the same data. Source positions are
// ignored.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}

	if v.Type != o.Type {
		return false
	}

	switch v.Type {
	case TypeInteger:
		return v.Int == o.Int

	case TypeString:
		return v.Str == o.Str

	case TypeList:
		return slices.EqualFunc(v.List, o.List, (*Value).Equal)

	case TypeDict:
		return v.Dict.Equal(o.Dict)

	default:
		return false
	}
}

// Dict is a string-keyed mapping that remembers the order in which keys were
// first inserted. Setting an existing key replaces its value without moving
// it. The zero value is an empty Dict ready to use.
type Dict struct {
	keys []string
	vals map[string]*Value
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Get returns the value bound to key.
func (d *Dict) Get(key string) (*Value, bool) {
	if d == nil || d.vals == nil {
		return nil, false
	}

	v, ok := d.vals[key]

	return v, ok
}

// Set binds key to v. The last write wins.
func (d *Dict) Set(key string, v *Value) {
	if d.vals == nil {
		d.vals = make(map[string]*Value)
	}

	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.vals[key] = v
}

// Delete removes key, if present.
func (d *Dict) Delete(key string) {
	if d == nil || d.vals == nil {
		return
	}

	if _, ok := d.vals[key]; !ok {
		return
	}

	delete(d.vals, key)

	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}

	return slices.Clone(d.keys)
}

// All returns an iterator over the entries in insertion order.
func (d *Dict) All() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if d == nil {
			return
		}

		for _, k := range d.keys {
			if !yield(k, d.vals[k]) {
				return
			}
		}
	}
}

// Clone returns a copy of d. Values are shared, not copied.
func (d *Dict) Clone() *Dict {
	c := new(Dict)

	for k, v := range d.All() {
		c.Set(k, v)
	}

	return c
}

// Merge copies every entry of o into d, in o's order.
func (d *Dict) Merge(o *Dict) {
	for k, v := range o.All() {
		d.Set(k, v)
	}
}

// Equal reports whether d and o hold the same entries in the same order.
func (d *Dict) Equal(o *Dict) bool {
	if d.Len() != o.Len() {
		return false
	}

	for i, k := range d.Keys() {
		if o.keys[i] != k {
			return false
		}

		if !d.vals[k].Equal(o.vals[k]) {
			return false
		}
	}

	return true
}
