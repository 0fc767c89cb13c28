// Package jsonmerge models JSON documents as a tagged variant and deep-merges
// partial updates into them.
//
// Values are immutable once built. Objects keep their members in insertion
// order so documents round-trip in the order they were written.
package jsonmerge

import (
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value. The zero Value is JSON null.
type Value struct {
	kind  Kind
	b     bool
	num   string // literal number text, as decoded or formatted
	str   string
	items []Value
	obj   *object
}

type member struct {
	key string
	val Value
}

type object struct {
	members []member
	index   map[string]int
}

func newObject(capacity int) *object {
	return &object{
		members: make([]member, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// set replaces an existing key in place or appends a new one.
func (o *object) set(key string, val Value) {
	if i, ok := o.index[key]; ok {
		o.members[i].val = val
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, member{key: key, val: val})
}

func (o *object) get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.members[i].val, true
}

func (o *object) clone() *object {
	c := newObject(len(o.members))
	for _, m := range o.members {
		c.set(m.key, m.val)
	}
	return c
}

// Member is a key/value pair used to build objects.
type Member struct {
	Key   string
	Value Value
}

// Field is shorthand for building a Member.
func Field(key string, val Value) Member {
	return Member{Key: key, Value: val}
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func String(s string) Value { return Value{kind: KindString, str: s} }

// Number builds a number from a float64. NaN and infinities have no JSON
// form and become null.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, num: strconv.FormatFloat(f, 'f', -1, 64)}
}

func Int(i int) Value {
	return Value{kind: KindNumber, num: strconv.Itoa(i)}
}

func Array(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindArray, items: copied}
}

// Object builds an object; a repeated key keeps its first position and its
// last value.
func Object(members ...Member) Value {
	obj := newObject(len(members))
	for _, m := range members {
		obj.set(m.Key, m.Value)
	}
	return Value{kind: KindObject, obj: obj}
}

// EmptyObject returns {}.
func EmptyObject() Value {
	return Value{kind: KindObject, obj: newObject(0)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) IsObject() bool { return v.kind == KindObject }

// Str returns the string payload when v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Num returns the numeric payload when v is a number.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// BoolVal returns the boolean payload when v is a bool.
func (v Value) BoolVal() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Truthy reports JavaScript truthiness, which the overlay's fallback chains
// are defined in terms of.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		f, ok := v.Num()
		return ok && f != 0 && !math.IsNaN(f)
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

// Items returns a copy of an array's elements, or nil for non-arrays.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

// Keys returns an object's keys in order, or nil for non-objects.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.obj.members))
	for i, m := range v.obj.members {
		keys[i] = m.key
	}
	return keys
}

// Lookup walks a path of object keys.
func (v Value) Lookup(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		if cur.kind != KindObject {
			return Value{}, false
		}
		next, ok := cur.obj.get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Get is Lookup that yields null for a missing path.
func (v Value) Get(path ...string) Value {
	got, _ := v.Lookup(path...)
	return got
}

// Set returns a copy of v with key set to val. A non-object v is treated as
// an empty object.
func (v Value) Set(key string, val Value) Value {
	var obj *object
	if v.kind == KindObject {
		obj = v.obj.clone()
	} else {
		obj = newObject(1)
	}
	obj.set(key, val)
	return Value{kind: KindObject, obj: obj}
}

// SetPath sets a nested key, creating intermediate objects as needed.
func (v Value) SetPath(val Value, path ...string) Value {
	if len(path) == 0 {
		return val
	}
	child := v.Get(path[0])
	return v.Set(path[0], child.SetPath(val, path[1:]...))
}

// Equal reports deep equality. Numbers compare by value, object member order
// is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		a, _ := v.Num()
		b, _ := other.Num()
		return a == b
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj.members) != len(other.obj.members) {
			return false
		}
		for _, m := range v.obj.members {
			ov, ok := other.obj.get(m.key)
			if !ok || !m.val.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}
