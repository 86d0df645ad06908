// Package mutation applies typed edits to a document tree.
package mutation

import (
	"fmt"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// Apply performs kind at addr inside root, in place.
//
// Every check runs before the tree is touched, so a failed call leaves root
// exactly as it was. v is copied before insertion; the caller keeps ownership.
//
// Recoverable failures wrap domain.ErrTypeMismatch, domain.ErrEmptyArray,
// domain.ErrValueNotFound or domain.ErrAddressNotFound (the document changed
// under a stale menu). A traversal that meets a non-object before the last
// segment wraps domain.ErrInvariant.
func Apply(root domain.Value, addr domain.Path, kind domain.MutationKind, v domain.Value) error {
	if v == nil {
		return fmt.Errorf("%w: nil value for %s at %s", domain.ErrInvariant, kind, addr)
	}
	switch kind {
	case domain.MutationReplace:
		return replace(root, addr, v)
	case domain.MutationAppend:
		return appendTo(root, addr, v)
	case domain.MutationRemove:
		return removeFrom(root, addr, v)
	}
	return fmt.Errorf("%w: unknown mutation %d", domain.ErrInvariant, kind)
}

func replace(root domain.Value, addr domain.Path, v domain.Value) error {
	if addr.IsRoot() {
		return fmt.Errorf("%w: cannot replace the document root", domain.ErrInvariant)
	}
	parent, err := container(root, addr.Parent())
	if err != nil {
		return err
	}
	obj, ok := parent.(*domain.Object)
	if !ok {
		return fmt.Errorf("%w: parent of %s is %s, not an object", domain.ErrInvariant, addr, parent.Kind())
	}
	obj.Set(addr.Base(), domain.Clone(v))
	return nil
}

func appendTo(root domain.Value, addr domain.Path, v domain.Value) error {
	arr, err := array(root, addr)
	if err != nil {
		return err
	}
	if err := checkElementKind(arr, addr, v); err != nil {
		return err
	}
	arr.Items = append(arr.Items, domain.Clone(v))
	return nil
}

func removeFrom(root domain.Value, addr domain.Path, v domain.Value) error {
	arr, err := array(root, addr)
	if err != nil {
		return err
	}
	if len(arr.Items) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEmptyArray, addr)
	}
	if err := checkElementKind(arr, addr, v); err != nil {
		return err
	}
	for i, item := range arr.Items {
		if domain.Equal(item, v) {
			arr.Items = append(arr.Items[:i:i], arr.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s in %s", domain.ErrValueNotFound, domain.Literal(v), addr)
}

// ElementKind is the kind every element of arr must share: that of its
// first element. ok is false for an empty array, which accepts any kind.
func ElementKind(arr *domain.Array) (kind domain.Kind, ok bool) {
	if len(arr.Items) == 0 {
		return domain.KindNull, false
	}
	return arr.Items[0].Kind(), true
}

func checkElementKind(arr *domain.Array, addr domain.Path, v domain.Value) error {
	want, ok := ElementKind(arr)
	if ok && v.Kind() != want {
		return fmt.Errorf("%w: %s holds %s values, got %s", domain.ErrTypeMismatch, addr, want, v.Kind())
	}
	return nil
}

func array(root domain.Value, addr domain.Path) (*domain.Array, error) {
	target, err := container(root, addr)
	if err != nil {
		return nil, err
	}
	arr, ok := target.(*domain.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s, not an array", domain.ErrInvariant, addr, target.Kind())
	}
	return arr, nil
}

// container walks addr through objects. Every step before the last must be
// an object; the value found at the end may have any kind.
func container(root domain.Value, addr domain.Path) (domain.Value, error) {
	current := root
	for i, seg := range addr.Segments() {
		obj, ok := current.(*domain.Object)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %s at depth %d, not an object", domain.ErrInvariant, addr, current.Kind(), i)
		}
		next, ok := obj.Get(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAddressNotFound, addr)
		}
		current = next
	}
	return current, nil
}
