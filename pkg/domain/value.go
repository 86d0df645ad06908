package domain

import (
	"math/big"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	// KindNull is the JSON null.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindNumber is a number kept as its literal text.
	KindNumber
	// KindString is a text scalar.
	KindString
	// KindArray is an ordered list of values.
	KindArray
	// KindObject is a mapping with insertion-ordered keys.
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
	}
	return "unknown"
}

// Value is a node of a structured document.
// The set of implementations is closed: Null, Bool, Number, String, *Array and *Object.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Number is a numeric scalar kept as its decimal literal, so integers never
// round-trip through float64.
type Number string

// String is a text scalar.
type String string

// Array is an ordered sequence of values.
type Array struct {
	Items []Value
}

// Object is a mapping from unique string keys to values that remembers insertion order.
type Object struct {
	keys   []string
	fields map[string]Value
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (*Array) Kind() Kind  { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (*Array) isValue()  {}
func (*Object) isValue() {}

// Int returns a Number holding n.
func Int(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// Float returns a Number holding f. Integral floats keep a trailing ".0"
// so the float-ness survives formats that distinguish the two.
func Float(f float64) Number {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'n' || r == 'N' || r == 'I' {
			return Number(s)
		}
	}
	return Number(s + ".0")
}

// IsInteger reports whether the literal has no fraction or exponent part.
func (n Number) IsInteger() bool {
	_, ok := new(big.Int).SetString(string(n), 10)
	return ok
}

// Float64 returns the literal as a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// NewArray returns an Array holding items.
func NewArray(items ...Value) *Array {
	return &Array{Items: items}
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.Items)
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Set stores v under key. New keys are appended; existing keys keep their position.
func (o *Object) Set(key string, v Value) {
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Reorder replaces the key order. keys must be a permutation of the current keys.
func (o *Object) Reorder(keys []string) {
	if len(keys) != len(o.keys) {
		return
	}
	for _, k := range keys {
		if _, ok := o.fields[k]; !ok {
			return
		}
	}
	o.keys = append(o.keys[:0:0], keys...)
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Array:
		items := make([]Value, len(t.Items))
		for i, item := range t.Items {
			items[i] = Clone(item)
		}
		return &Array{Items: items}
	case *Object:
		out := &Object{
			keys:   make([]string, len(t.keys)),
			fields: make(map[string]Value, len(t.fields)),
		}
		copy(out.keys, t.keys)
		for k, field := range t.fields {
			out.fields[k] = Clone(field)
		}
		return out
	case nil:
		return Null{}
	default:
		return t
	}
}

// Equal reports structural equality. Numbers compare by numeric value and
// objects compare without regard to key order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Null:
		return true
	case Bool:
		return x == b.(Bool)
	case String:
		return x == b.(String)
	case Number:
		return numbersEqual(x, b.(Number))
	case *Array:
		y := b.(*Array)
		if len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Object:
		y := b.(*Object)
		if len(x.keys) != len(y.keys) {
			return false
		}
		for k, xv := range x.fields {
			yv, ok := y.fields[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b Number) bool {
	if a == b {
		return true
	}
	fa, _, errA := big.ParseFloat(string(a), 10, 256, big.ToNearestEven)
	fb, _, errB := big.ParseFloat(string(b), 10, 256, big.ToNearestEven)
	if errA != nil || errB != nil {
		return false
	}
	return fa.Cmp(fb) == 0
}

// Lookup descends from root through Object children, one segment at a time.
// It reports false when a segment is missing or a non-object is met before
// the path is exhausted.
func Lookup(root Value, p Path) (Value, bool) {
	current := root
	for _, seg := range p.segments {
		obj, ok := current.(*Object)
		if !ok {
			return nil, false
		}
		current, ok = obj.Get(seg)
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}
