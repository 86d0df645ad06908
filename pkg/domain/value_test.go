package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleObject() *Object {
	addr := NewObject()
	addr.Set("street", String("456 Another St"))
	addr.Set("city", String("Elsewhere"))

	root := NewObject()
	root.Set("name", String("Alice"))
	root.Set("age", Int(25))
	root.Set("address", addr)
	root.Set("emails", NewArray(String("alice@example.com"), String("a@example.com")))
	return root
}

func TestKind_String(t *testing.T) {
	values := []Value{Null{}, Bool(true), Number("1"), String("s"), NewArray(), NewObject()}
	var names []string
	for _, v := range values {
		names = append(names, v.Kind().String())
	}
	assert.Equal(t, []string{"null", "bool", "number", "string", "array", "object"}, names)
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestObject_KeepsInsertionOrder(t *testing.T) {
	obj := sampleObject()
	assert.Equal(t, []string{"name", "age", "address", "emails"}, obj.Keys())

	obj.Set("age", Int(26))
	assert.Equal(t, []string{"name", "age", "address", "emails"}, obj.Keys(), "overwrite keeps position")

	obj.Set("zeta", Null{})
	assert.Equal(t, []string{"name", "age", "address", "emails", "zeta"}, obj.Keys())
}

func TestEqual(t *testing.T) {
	reordered := NewObject()
	reordered.Set("b", Int(2))
	reordered.Set("a", Int(1))
	ordered := NewObject()
	ordered.Set("a", Int(1))
	ordered.Set("b", Int(2))

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"Null", Null{}, Null{}, true},
		{"Numbers By Value", Number("25"), Number("25.0"), true},
		{"Numbers Differ", Int(25), Int(26), false},
		{"Kinds Differ", String("25"), Int(25), false},
		{"Arrays Ordered", NewArray(Int(1), Int(2)), NewArray(Int(2), Int(1)), false},
		{"Objects Unordered", reordered, ordered, true},
		{"Deep", sampleObject(), sampleObject(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := sampleObject()
	cp := Clone(orig).(*Object)

	emails, _ := cp.Get("emails")
	emails.(*Array).Items = append(emails.(*Array).Items, String("new@example.com"))
	addr, _ := cp.Get("address")
	addr.(*Object).Set("city", String("Nowhere"))

	assert.True(t, Equal(orig, sampleObject()), "original must be untouched")
	assert.False(t, Equal(orig, cp))
}

func TestLookup(t *testing.T) {
	root := sampleObject()

	v, ok := Lookup(root, NewPath("address", "city"))
	require.True(t, ok)
	assert.Equal(t, String("Elsewhere"), v)

	v, ok = Lookup(root, Root)
	require.True(t, ok)
	assert.Same(t, root, v)

	_, ok = Lookup(root, NewPath("missing"))
	assert.False(t, ok)

	_, ok = Lookup(root, NewPath("age", "deeper"))
	assert.False(t, ok, "scalars have no children")

	_, ok = Lookup(root, NewPath("emails", "0"))
	assert.False(t, ok, "arrays are not addressable by segment")
}

func TestMarshalJSON_KeepsOrderAndHTML(t *testing.T) {
	obj := NewObject()
	obj.Set("z", String("<b>&</b>"))
	obj.Set("a", NewArray(Int(1), Float(2), Bool(true), Null{}))

	out, err := MarshalJSON(obj)
	require.NoError(t, err)
	if diff := cmp.Diff(`{"z":"<b>&</b>","a":[1,2.0,true,null]}`, string(out)); diff != "" {
		t.Errorf("MarshalJSON mismatch (-want +got):\n%s", diff)
	}

	_, err = MarshalJSON(Number("+Inf"))
	assert.ErrorIs(t, err, ErrSerialize)
	assert.Equal(t, "+Inf", Literal(Number("+Inf")))
}
