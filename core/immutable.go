package core

import (
	"github.com/Comcast/rulebind/types"
)

// immutable is a read-only facade over an Environment.  Bindings
// come back as immutable views, and mutations fail with Unsupported.
type immutable struct {
	env Environment
}

func views(bs []*Binding) []*Binding {
	if bs == nil {
		return nil
	}
	acc := make([]*Binding, len(bs))
	for i, b := range bs {
		acc[i] = b.AsImmutable()
	}
	return acc
}

func view(b *Binding) *Binding {
	if b == nil {
		return nil
	}
	return b.AsImmutable()
}

func (e *immutable) Bind(b *Binding) error {
	return Unsupported
}

func (e *immutable) BindValue(name string, t types.Type, v interface{}) (*Binding, error) {
	return nil, Unsupported
}

func (e *immutable) Remove(name string) error {
	return Unsupported
}

func (e *immutable) Get(name string) *Binding {
	return view(e.env.Get(name))
}

func (e *immutable) GetTyped(name string, t types.Type) *Binding {
	return view(e.env.GetTyped(name, t))
}

func (e *immutable) GetByType(t types.Type) []*Binding {
	return views(e.env.GetByType(t))
}

func (e *immutable) GetByTypeLoose(t types.Type) []*Binding {
	return views(e.env.GetByTypeLoose(t))
}

func (e *immutable) Contains(name string) bool {
	return e.env.Contains(name)
}

func (e *immutable) Names() []string {
	return e.env.Names()
}

func (e *immutable) Size() int {
	return e.env.Size()
}

// AddBindingListener registers the listener with the underlying
// environment.  The listener only ever sees immutable views.
func (e *immutable) AddBindingListener(l BindingListener) (remove func()) {
	return e.env.AddBindingListener(&viewListener{l: l})
}

// viewListener hands immutable views to a BindingListener.
type viewListener struct {
	l BindingListener
}

func (v *viewListener) BindingAdded(b *Binding) error {
	return v.l.BindingAdded(view(b))
}

func (v *viewListener) BindingChanged(b *Binding, oldValue, newValue interface{}) error {
	return v.l.BindingChanged(view(b), oldValue, newValue)
}

func (e *immutable) AsImmutable() Environment {
	return e
}

// ImmutableScopedBindings is the read-only facade of a
// ScopedBindings.  It offers the scoped lookups in addition to the
// Environment ones.  Pushing and popping scopes isn't possible
// through it.
type ImmutableScopedBindings struct {
	immutable
	sb *ScopedBindings
}

func (e *ImmutableScopedBindings) AsImmutable() Environment {
	return e
}

// GetAll is ScopedBindings.GetAll with views.
func (e *ImmutableScopedBindings) GetAll(name string) []*Binding {
	return views(e.sb.GetAll(name))
}

// GetAllByType is ScopedBindings.GetAllByType with views.
func (e *ImmutableScopedBindings) GetAllByType(t types.Type) []*Binding {
	return views(e.sb.GetAllByType(t))
}

// ScopeNames is ScopedBindings.ScopeNames.
func (e *ImmutableScopedBindings) ScopeNames() []string {
	return e.sb.ScopeNames()
}

// ScopeSize is ScopedBindings.ScopeSize.
func (e *ImmutableScopedBindings) ScopeSize() int {
	return e.sb.ScopeSize()
}

// PushScope always fails.
func (e *ImmutableScopedBindings) PushScope(name string, bs *Bindings) (*NamedScope, error) {
	return nil, Unsupported
}

// PopScope always fails.
func (e *ImmutableScopedBindings) PopScope() (*NamedScope, error) {
	return nil, Unsupported
}
