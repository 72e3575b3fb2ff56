/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Comcast/rulebind/types"
)

// BindingID is an opaque, process-unique identifier for a Binding.
type BindingID uint64

var lastBindingID uint64

// cell holds a binding's state.  Several Binding handles (the
// original and its immutable views) can share one cell.
type cell struct {
	id          BindingID
	name        string
	typ         types.Type
	mutable     bool
	final       bool
	primary     bool
	description string

	sync.RWMutex
	value interface{}

	changes listeners[ChangeListener]
}

// Binding is a named, typed cell.
//
// The name and type never change.  The value changes only via
// SetValue.  A Binding obtained from AsImmutable (or through an
// immutable environment) is a read-only view of the same cell: it
// sees later changes made through the original, but it cannot make
// any.
//
// Make Bindings with NewBinding.
type Binding struct {
	c        *cell
	readOnly bool
}

// ID returns the binding's identifier, which is shared by its views.
func (b *Binding) ID() BindingID {
	return b.c.id
}

// Name returns the binding's name.
func (b *Binding) Name() string {
	return b.c.name
}

// Type returns the binding's declared type.
func (b *Binding) Type() types.Type {
	return b.c.typ
}

// Value returns the current value.
func (b *Binding) Value() interface{} {
	b.c.RLock()
	v := b.c.value
	b.c.RUnlock()
	return v
}

// IsMutable reports whether SetValue can succeed via this handle.
func (b *Binding) IsMutable() bool {
	return !b.readOnly && b.c.mutable
}

// IsView reports whether this handle is a read-only view.
func (b *Binding) IsView() bool {
	return b.readOnly
}

// IsFinal reports whether inner scopes are forbidden from shadowing
// this binding.
func (b *Binding) IsFinal() bool {
	return b.c.final
}

// IsPrimary reports whether this binding should win when a type
// search finds several candidates and the Resolver prefers primary
// bindings.
func (b *Binding) IsPrimary() bool {
	return b.c.primary
}

// Description is optional documentation, which might be Markdown.
func (b *Binding) Description() string {
	return b.c.description
}

// SetValue changes the value and then calls every ChangeListener.
//
// Returns Immutable if this handle is a view or the binding isn't
// mutable.  Returns TypeMismatch if the declared type doesn't accept
// the value.  If any listener fails, the value has still changed,
// and the result is a ListenerFailed.
func (b *Binding) SetValue(v interface{}) error {
	if !b.IsMutable() {
		return &Immutable{Name: b.c.name}
	}
	if !b.c.typ.AcceptsValue(v) {
		return &TypeMismatch{
			Name:  b.c.name,
			Want:  b.c.typ,
			Value: v,
		}
	}

	b.c.Lock()
	old := b.c.value
	b.c.value = v
	b.c.Unlock()

	return notify(b.c.changes.snapshot(), func(l ChangeListener) error {
		return l.BindingChanged(b, old, v)
	})
}

// AddChangeListener registers a listener for value changes and
// returns a function that unregisters it.
func (b *Binding) AddChangeListener(l ChangeListener) (remove func()) {
	return b.c.changes.add(l)
}

// ChangeListenerCount is mostly for tests.
func (b *Binding) ChangeListenerCount() int {
	return b.c.changes.size()
}

// AsImmutable returns a read-only view.
func (b *Binding) AsImmutable() *Binding {
	if b.readOnly {
		return b
	}
	return &Binding{
		c:        b.c,
		readOnly: true,
	}
}

// Same reports whether the two handles refer to the same binding.
func (b *Binding) Same(other *Binding) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.c == other.c
}

func (b *Binding) String() string {
	if b == nil {
		return "nil"
	}
	return fmt.Sprintf("%s:%s=%v", b.c.name, b.c.typ, b.Value())
}

// ValueAs returns the binding's value as a T.
func ValueAs[T any](b *Binding) (T, bool) {
	var zero T
	if b == nil {
		return zero, false
	}
	v, is := b.Value().(T)
	return v, is
}

// BindingBuilder accumulates the pieces of a Binding.  See
// NewBinding.
type BindingBuilder struct {
	name        string
	typ         types.Type
	typed       bool
	value       interface{}
	immutable   bool
	final       bool
	primary     bool
	description string
	listeners   []ChangeListener
}

// NewBinding starts building a mutable binding with the given name.
//
//	b, err := NewBinding("x").Type(types.IntType).Value(250).Build()
func NewBinding(name string) *BindingBuilder {
	return &BindingBuilder{
		name: name,
	}
}

// Type sets the declared type.  Without it, the type is taken from
// the value (Object if the value is nil).
func (bb *BindingBuilder) Type(t types.Type) *BindingBuilder {
	bb.typ = t
	bb.typed = true
	return bb
}

// Value sets the initial value.
func (bb *BindingBuilder) Value(v interface{}) *BindingBuilder {
	bb.value = v
	return bb
}

// Immutable makes the binding reject SetValue.
func (bb *BindingBuilder) Immutable() *BindingBuilder {
	bb.immutable = true
	return bb
}

// Final forbids inner scopes from shadowing the binding.
func (bb *BindingBuilder) Final() *BindingBuilder {
	bb.final = true
	return bb
}

// Primary marks the binding as the preferred candidate among
// several of the same type.
func (bb *BindingBuilder) Primary() *BindingBuilder {
	bb.primary = true
	return bb
}

// Description sets the documentation.
func (bb *BindingBuilder) Description(s string) *BindingBuilder {
	bb.description = s
	return bb
}

// Listener adds a ChangeListener.
func (bb *BindingBuilder) Listener(l ChangeListener) *BindingBuilder {
	bb.listeners = append(bb.listeners, l)
	return bb
}

// Build checks the name and the value and makes the Binding.
//
// A nil value for a primitive type becomes that type's zero value.
func (bb *BindingBuilder) Build() (*Binding, error) {
	if !IsValidName(bb.name) {
		return nil, &InvalidName{Name: bb.name}
	}

	t := bb.typ
	if !bb.typed || t.IsZero() {
		if bb.value == nil {
			t = types.ObjectType
		} else {
			t = types.TypeOf(bb.value)
		}
	}

	v := bb.value
	if v == nil && !t.Wildcard && t.Kind != nil {
		if z, ok := t.Kind.Zero(); ok {
			v = z
		}
	}
	if !t.AcceptsValue(v) {
		return nil, &TypeMismatch{
			Name:  bb.name,
			Want:  t,
			Value: v,
		}
	}

	c := &cell{
		id:          BindingID(atomic.AddUint64(&lastBindingID, 1)),
		name:        bb.name,
		typ:         t,
		mutable:     !bb.immutable,
		final:       bb.final,
		primary:     bb.primary,
		description: bb.description,
		value:       v,
	}
	for _, l := range bb.listeners {
		c.changes.add(l)
	}

	return &Binding{c: c}, nil
}

// MustBuild is Build that panics.
func (bb *BindingBuilder) MustBuild() *Binding {
	b, err := bb.Build()
	if err != nil {
		panic(err)
	}
	return b
}
