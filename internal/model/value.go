package model

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags the case a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Value is a recursive tagged variant: Null, Bool, Int, Float, String,
// Bytes, Array, or Object. Only the field matching Kind is meaningful.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	bytes []byte
	arr   []Value
	obj   *Object
}

// Null is the Null-kinded Value.
var Null = Value{kind: KindNull}

func Bool(b bool) Value               { return Value{kind: KindBool, b: b} }
func Int(i int64) Value               { return Value{kind: KindInt, i: i} }
func Float(f float64) Value           { return Value{kind: KindFloat, f: f} }
func String(s string) Value           { return Value{kind: KindString, s: s} }
func Bytes(b []byte) Value            { return Value{kind: KindBytes, bytes: append([]byte(nil), b...)} }
func Array(vs []Value) Value          { return Value{kind: KindArray, arr: vs} }
func ObjectValue(o *Object) Value     { return Value{kind: KindObject, obj: o} }
func EmptyObjectValue() Value         { return Value{kind: KindObject, obj: NewObject()} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)   { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool)   { return v.s, v.kind == KindString }
func (v Value) AsBytes() ([]byte, bool)    { return v.bytes, v.kind == KindBytes }
func (v Value) AsArray() ([]Value, bool)   { return v.arr, v.kind == KindArray }
func (v Value) AsObject() (*Object, bool)  { return v.obj, v.kind == KindObject }

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.bytes, o.bytes)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(o.obj)
	}
	return false
}

// Object is an ordered mapping from string to Value. Keys are unique;
// iteration order is deterministic by key (lexicographic).
type Object struct {
	m map[string]Value
}

func NewObject() *Object {
	return &Object{m: make(map[string]Value)}
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Null, false
	}
	v, ok := o.m[key]
	return v, ok
}

func (o *Object) Set(key string, v Value) {
	o.m[key] = v
}

func (o *Object) Delete(key string) {
	delete(o.m, key)
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.m)
}

// Keys returns the object's keys in deterministic (sorted) order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge overlays other's keys onto o, replacing any existing key.
func (o *Object) Merge(other *Object) {
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		o.Set(k, v)
	}
}

func (o *Object) Clone() *Object {
	clone := NewObject()
	for k, v := range o.m {
		clone.m[k] = v
	}
	return clone
}

func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for k, v := range o.m {
		ov, ok := other.m[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ToJSON converts the Value into a plain interface{} tree suitable for
// encoding/json. Bytes are base64-encoded strings; all other cases map
// losslessly.
func (v Value) ToJSON() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.bytes)
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToJSON()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, v.obj.Len())
		for _, k := range v.obj.Keys() {
			e, _ := v.obj.Get(k)
			out[k] = e.ToJSON()
		}
		return out
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToJSON())
}

// UnmarshalJSON implements json.Unmarshaler, decoding integers without a
// fractional part as Int and everything else numeric as Float.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromJSON(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromJSON converts a decoded JSON tree (as produced by a json.Decoder with
// UseNumber enabled, or by encoding/json's default decoding into
// interface{}) into a Value. json.Number values without a fractional part
// or exponent decode as Int; all other numbers decode as Float.
func FromJSON(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("model: invalid number %q: %w", t.String(), err)
		}
		return Float(f), nil
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t)), nil
		}
		return Float(t), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = ev
		}
		return Array(out), nil
	case map[string]interface{}:
		obj := NewObject()
		for k, e := range t {
			ev, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			obj.Set(k, ev)
		}
		return ObjectValue(obj), nil
	default:
		return Value{}, fmt.Errorf("model: unsupported JSON value type %T", raw)
	}
}

// ParseJSON decodes raw JSON bytes straight into a Value, preserving the
// Int/Float distinction.
func ParseJSON(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, err
	}
	return v, nil
}
