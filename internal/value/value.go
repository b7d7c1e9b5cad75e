// Package value implements the dynamic value tree that every record in the
// pipeline is built from: null, bool, number, string, array and an
// insertion-ordered object.
package value

import (
	"fmt"
	"sort"
	"strconv"

	orderedjson "github.com/virtuald/go-ordered-json"
)

// Kind discriminates the variant held by a Value.
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

// Value is the tagged tree node that flows through the pipeline. The zero
// Value is null.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	arr    []*Value
	obj    *Object
}

// Null returns a fresh null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(n float64) *Value { return &Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// Array wraps a slice of values (not copied).
func Array(items ...*Value) *Value { return &Value{kind: KindArray, arr: items} }

// NewObject returns an empty, insertion-ordered object value.
func NewObject() *Value { return &Value{kind: KindObject, obj: newObject()} }

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool { return v == nil || v.kind == KindNull }

func (v *Value) Bool() bool {
	if v == nil {
		return false
	}
	return v.b
}

func (v *Value) Number() float64 {
	if v == nil {
		return 0
	}
	return v.n
}

func (v *Value) Str() string {
	if v == nil {
		return ""
	}
	return v.s
}

func (v *Value) Array() []*Value {
	if v == nil || v.kind != KindArray {
		return nil
	}
	return v.arr
}

func (v *Value) Object() *Object {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Object is an insertion-ordered string -> *Value map.
type Object struct {
	keys   []string
	values map[string]*Value
}

func newObject() *Object {
	return &Object{values: make(map[string]*Value)}
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

func (o *Object) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or replaces key, preserving the original insertion position
// on replace and appending on insert.
func (o *Object) Set(key string, v *Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}
	switch v.kind {
	case KindArray:
		items := make([]*Value, len(v.arr))
		for i, it := range v.arr {
			items[i] = it.Clone()
		}
		return &Value{kind: KindArray, arr: items}
	case KindObject:
		o := newObject()
		for _, k := range v.obj.keys {
			o.Set(k, v.obj.values[k].Clone())
		}
		return &Value{kind: KindObject, obj: o}
	default:
		cp := *v
		return &cp
	}
}

// Equal performs a deep, order-sensitive-for-objects structural comparison.
// Numbers compare by value; objects compare key order too, since insertion
// order is an observable part of the data model (delimited-codec headers,
// deterministic output).
func Equal(a, b *Value) bool {
	ak, bk := a.Kind(), b.Kind()
	if ak != bk {
		return false
	}
	switch ak {
	case KindNull:
		return true
	case KindBool:
		return a.Bool() == b.Bool()
	case KindNumber:
		return a.Number() == b.Number()
	case KindString:
		return a.Str() == b.Str()
	case KindArray:
		aa, ba := a.Array(), b.Array()
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := a.Object(), b.Object()
		if ao.Len() != bo.Len() {
			return false
		}
		for i, k := range ao.Keys() {
			if bo.Keys()[i] != k {
				return false
			}
			bv, _ := bo.Get(k)
			av, _ := ao.Get(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// FromGo converts a generic Go value (as produced by encoding/json,
// go-ordered-json, or yaml.v3) into a *Value tree.
func FromGo(in any) *Value {
	switch t := in.(type) {
	case nil:
		return Null()
	case *Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case []any:
		items := make([]*Value, len(t))
		for i, it := range t {
			items[i] = FromGo(it)
		}
		return Array(items...)
	case orderedjson.OrderedObject:
		o := newObject()
		for _, kv := range t {
			o.Set(kv.Key, FromGo(kv.Value))
		}
		return &Value{kind: KindObject, obj: o}
	case map[string]any:
		o := newObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.Set(k, FromGo(t[k]))
		}
		return &Value{kind: KindObject, obj: o}
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// ToGo converts a *Value tree back into plain Go values (map[string]any /
// []any / bool / float64 / string / nil), suitable for encoding/json,
// yaml.v3 or text/template contexts that don't care about key order.
func ToGo(v *Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindNumber:
		return v.Number()
	case KindString:
		return v.Str()
	case KindArray:
		out := make([]any, 0, len(v.Array()))
		for _, it := range v.Array() {
			out = append(out, ToGo(it))
		}
		return out
	case KindObject:
		out := make(map[string]any, v.Object().Len())
		for _, k := range v.Object().Keys() {
			iv, _ := v.Object().Get(k)
			out[k] = ToGo(iv)
		}
		return out
	}
	return nil
}

// ToOrderedGo converts a *Value tree into an order-preserving structure
// built from github.com/virtuald/go-ordered-json's OrderedObject, for
// codecs (JSON/JSONL) that must round-trip key order.
func ToOrderedGo(v *Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindNumber:
		return v.Number()
	case KindString:
		return v.Str()
	case KindArray:
		out := make([]any, 0, len(v.Array()))
		for _, it := range v.Array() {
			out = append(out, ToOrderedGo(it))
		}
		return out
	case KindObject:
		out := make(orderedjson.OrderedObject, 0, v.Object().Len())
		for _, k := range v.Object().Keys() {
			iv, _ := v.Object().Get(k)
			out = append(out, orderedjson.Member{Key: k, Value: ToOrderedGo(iv)})
		}
		return out
	}
	return nil
}

// ParseNumber is used by the template resolve step to decide whether a
// rendered literal reads as a number.
func ParseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
