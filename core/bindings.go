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
	"sort"
	"sync"

	"github.com/Comcast/rulebind/types"
)

// Option configures a Bindings or a ScopedBindings.
type Option func(*options)

type options struct {
	reserved ReservedNames
	rootName string
}

func makeOptions(opts []Option) options {
	o := options{
		reserved: DefaultReservedNames,
		rootName: RootScopeName,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithReservedNames replaces DefaultReservedNames.
func WithReservedNames(rs ReservedNames) Option {
	return func(o *options) {
		o.reserved = rs
	}
}

// WithRootName sets the name of a ScopedBindings' root scope.
func WithRootName(name string) Option {
	return func(o *options) {
		o.rootName = name
	}
}

type entry struct {
	b *Binding

	// detach removes the collection's relay from the binding.
	detach func()
}

// Bindings is a flat, name-keyed collection of Binding.
//
// A name can be bound only once; Bind never overwrites.  Bindings is
// safe for concurrent use.
type Bindings struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	reserved ReservedNames

	listeners listeners[BindingListener]
}

// NewBindings makes an empty collection.
func NewBindings(opts ...Option) *Bindings {
	return newBindings(makeOptions(opts))
}

func newBindings(o options) *Bindings {
	return &Bindings{
		entries:  make(map[string]*entry, 8),
		reserved: o.reserved,
	}
}

// Bind adds the binding.
//
// The check for an existing binding and the insertion are atomic, so
// when several goroutines race to bind the same name, exactly one
// wins and the others get AlreadyExists.
//
// After a successful Bind, every BindingListener registered with this
// collection hears about the new binding and about that binding's
// later value changes.
func (bs *Bindings) Bind(b *Binding) error {
	if b == nil {
		return &InvalidName{}
	}
	name := b.Name()
	if bs.reserved.Contains(name) {
		return &ReservedName{Name: name}
	}

	bs.mu.Lock()
	if _, have := bs.entries[name]; have {
		bs.mu.Unlock()
		return &AlreadyExists{Name: name}
	}
	bs.entries[name] = &entry{
		b:      b,
		detach: b.AddChangeListener(&relay{bs: bs}),
	}
	bs.mu.Unlock()

	return notify(bs.listeners.snapshot(), func(l BindingListener) error {
		return l.BindingAdded(b)
	})
}

// BindValue builds a mutable binding and binds it.
//
// If the binding was built and added but a listener failed, both the
// binding and the ListenerFailed are returned.
func (bs *Bindings) BindValue(name string, t types.Type, v interface{}) (*Binding, error) {
	b, err := NewBinding(name).Type(t).Value(v).Build()
	if err != nil {
		return nil, err
	}
	if err = bs.Bind(b); err != nil {
		if _, is := err.(*ListenerFailed); is {
			return b, err
		}
		return nil, err
	}
	return b, nil
}

// Remove removes the named binding, which then no longer reports
// changes to this collection's listeners.
func (bs *Bindings) Remove(name string) error {
	bs.mu.Lock()
	e, have := bs.entries[name]
	if have {
		delete(bs.entries, name)
	}
	bs.mu.Unlock()

	if !have {
		return &NoSuchBinding{Name: name}
	}
	e.detach()
	return nil
}

// Get returns the named binding or nil.
func (bs *Bindings) Get(name string) *Binding {
	bs.mu.RLock()
	e, have := bs.entries[name]
	bs.mu.RUnlock()
	if !have {
		return nil
	}
	return e.b
}

// GetTyped returns the named binding if its type is assignable to t.
func (bs *Bindings) GetTyped(name string, t types.Type) *Binding {
	b := bs.Get(name)
	if b == nil || !b.Type().IsAssignableTo(t) {
		return nil
	}
	return b
}

// GetByType scans all bindings for those whose type is assignable to
// t.  The result is ordered by name.
func (bs *Bindings) GetByType(t types.Type) []*Binding {
	return bs.filter(func(b *Binding) bool {
		return b.Type().IsAssignableTo(t)
	})
}

// GetByTypeLoose is GetByType that only compares kinds.
func (bs *Bindings) GetByTypeLoose(t types.Type) []*Binding {
	return bs.filter(func(b *Binding) bool {
		return b.Type().IsLooselyAssignableTo(t)
	})
}

func (bs *Bindings) filter(f func(*Binding) bool) []*Binding {
	var acc []*Binding
	for _, b := range bs.Bindings() {
		if f(b) {
			acc = append(acc, b)
		}
	}
	return acc
}

// Contains reports whether the name is bound.
func (bs *Bindings) Contains(name string) bool {
	return bs.Get(name) != nil
}

// Names returns the bound names in order.
func (bs *Bindings) Names() []string {
	bs.mu.RLock()
	acc := make([]string, 0, len(bs.entries))
	for name := range bs.entries {
		acc = append(acc, name)
	}
	bs.mu.RUnlock()
	sort.Strings(acc)
	return acc
}

// Size returns the number of bindings.
func (bs *Bindings) Size() int {
	bs.mu.RLock()
	n := len(bs.entries)
	bs.mu.RUnlock()
	return n
}

// Bindings returns the bindings ordered by name.
func (bs *Bindings) Bindings() []*Binding {
	bs.mu.RLock()
	acc := make([]*Binding, 0, len(bs.entries))
	for _, e := range bs.entries {
		acc = append(acc, e.b)
	}
	bs.mu.RUnlock()
	sort.Slice(acc, func(i, j int) bool {
		return acc[i].Name() < acc[j].Name()
	})
	return acc
}

// Reserved returns the collection's reserved names.
func (bs *Bindings) Reserved() ReservedNames {
	return bs.reserved
}

// AddBindingListener registers a listener that hears about new
// bindings and about value changes of every binding currently or
// later in this collection.
func (bs *Bindings) AddBindingListener(l BindingListener) (remove func()) {
	return bs.listeners.add(l)
}

// AsImmutable returns a read-only facade.
func (bs *Bindings) AsImmutable() Environment {
	return &immutable{env: bs}
}

// relay forwards a binding's value changes to the listeners of a
// collection that holds it.
type relay struct {
	bs *Bindings
}

func (r *relay) BindingChanged(b *Binding, oldValue, newValue interface{}) error {
	return notify(r.bs.listeners.snapshot(), func(l BindingListener) error {
		return l.BindingChanged(b, oldValue, newValue)
	})
}
