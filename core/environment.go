package core

import (
	"github.com/Comcast/rulebind/types"
)

// Environment is the lookup contract that matching strategies and the
// Resolver work against.  Both Bindings and ScopedBindings (and their
// immutable facades) are Environments.
type Environment interface {
	// Bind adds the binding.  Fails with AlreadyExists,
	// ShadowForbidden, ReservedName, or (for immutable
	// facades) Unsupported.
	Bind(b *Binding) error

	// BindValue builds a mutable binding and Binds it.
	BindValue(name string, t types.Type, v interface{}) (*Binding, error)

	// Remove removes the named binding.  Fails with
	// NoSuchBinding.
	Remove(name string) error

	// Get returns the binding with the given name (the
	// innermost one for a ScopedBindings) or nil.
	Get(name string) *Binding

	// GetTyped is Get that additionally requires the binding's
	// type to be assignable to t.  A binding with that name but
	// an incompatible type gives nil, and outer scopes are not
	// searched.
	GetTyped(name string, t types.Type) *Binding

	// GetByType returns every binding whose type is assignable
	// to t.  A ScopedBindings returns the matches from the
	// innermost scope that has any.
	GetByType(t types.Type) []*Binding

	// GetByTypeLoose is GetByType with loose assignability:
	// only kinds are compared.
	GetByTypeLoose(t types.Type) []*Binding

	// Contains reports whether Get would find something.
	Contains(name string) bool

	// Names returns the visible names in order.
	Names() []string

	// Size returns the number of visible bindings.
	Size() int

	// AddBindingListener registers a listener for additions and
	// value changes.  The returned function unregisters it.
	AddBindingListener(l BindingListener) (remove func())

	// AsImmutable returns a read-only facade.
	AsImmutable() Environment
}

// Lookup finds a binding by name and returns its value as a T.
func Lookup[T any](env Environment, name string) (T, bool) {
	return ValueAs[T](env.Get(name))
}
