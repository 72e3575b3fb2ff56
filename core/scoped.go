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
	"github.com/Comcast/rulebind/util"
)

var (
	// RootScopeName is the default name of a ScopedBindings'
	// root scope.
	RootScopeName = "root"

	// ScopeNamePrefix starts generated scope names.
	ScopeNamePrefix = "scope-"

	// ScopeNameLength is the length of the random part of a
	// generated scope name.
	ScopeNameLength = 8
)

// NamedScope pairs a name with a Bindings.
type NamedScope struct {
	name     string
	bindings *Bindings
}

// Name returns the scope's name.
func (s *NamedScope) Name() string {
	return s.name
}

// Bindings returns the scope's collection.
func (s *NamedScope) Bindings() *Bindings {
	return s.bindings
}

func (s *NamedScope) String() string {
	return s.name
}

// ScopedBindings is a stack of named scopes.  The root scope is made
// at construction and is never popped.
//
// Lookups by name search from the innermost (most recently pushed)
// scope outward, and the first hit wins.  New bindings go into the
// innermost scope.
//
// A ScopedBindings models one logical execution's call stack, so
// pushing and popping scopes should be done by one goroutine at a
// time.  Lookups and binds are still safe from several goroutines.
type ScopedBindings struct {
	mu     sync.RWMutex
	scopes []*NamedScope // root first
	opts   options

	scopeListeners listeners[ScopeListener]
}

// NewScopedBindings makes a stack with just a root scope.
func NewScopedBindings(opts ...Option) *ScopedBindings {
	o := makeOptions(opts)
	root := &NamedScope{
		name:     o.rootName,
		bindings: newBindings(o),
	}
	return &ScopedBindings{
		scopes: []*NamedScope{root},
		opts:   o,
	}
}

// stack returns a snapshot of the scopes, root first.
func (sb *ScopedBindings) stack() []*NamedScope {
	sb.mu.RLock()
	acc := make([]*NamedScope, len(sb.scopes))
	copy(acc, sb.scopes)
	sb.mu.RUnlock()
	return acc
}

// Scopes returns the scopes, root first.
func (sb *ScopedBindings) Scopes() []*NamedScope {
	return sb.stack()
}

// ScopeNames returns the names of the scopes, root first.
func (sb *ScopedBindings) ScopeNames() []string {
	scopes := sb.stack()
	acc := make([]string, len(scopes))
	for i, s := range scopes {
		acc[i] = s.name
	}
	return acc
}

// ScopeSize returns the number of scopes, including the root.
func (sb *ScopedBindings) ScopeSize() int {
	sb.mu.RLock()
	n := len(sb.scopes)
	sb.mu.RUnlock()
	return n
}

// RootScope returns the bottom of the stack.
func (sb *ScopedBindings) RootScope() *NamedScope {
	sb.mu.RLock()
	s := sb.scopes[0]
	sb.mu.RUnlock()
	return s
}

// CurrentScope returns the top of the stack.
func (sb *ScopedBindings) CurrentScope() *NamedScope {
	sb.mu.RLock()
	s := sb.scopes[len(sb.scopes)-1]
	sb.mu.RUnlock()
	return s
}

// Scope finds a scope by name.
func (sb *ScopedBindings) Scope(name string) (*NamedScope, bool) {
	for _, s := range sb.stack() {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// genScopeName makes a scope name that's not in use.  Caller must
// hold the lock.
func (sb *ScopedBindings) genScopeName() string {
	for {
		name := ScopeNamePrefix + Gensym(ScopeNameLength)
		if sb.indexOf(name) < 0 {
			return name
		}
	}
}

// indexOf returns the position of the named scope or -1.  Caller
// must hold the lock.
func (sb *ScopedBindings) indexOf(name string) int {
	for i, s := range sb.scopes {
		if s.name == name {
			return i
		}
	}
	return -1
}

// PushScope pushes a new scope.
//
// An empty name gets a generated one.  A nil bs gets a new, empty
// Bindings with the same reserved names as this stack.  Returns
// ScopeExists if a scope with that name is already on the stack.
//
// Every ScopeListener hears about the new scope.  If any fail, the
// scope is still pushed and the returned error is a ListenerFailed.
func (sb *ScopedBindings) PushScope(name string, bs *Bindings) (*NamedScope, error) {
	if bs == nil {
		bs = newBindings(sb.opts)
	}

	sb.mu.Lock()
	if name == "" {
		name = sb.genScopeName()
	} else if 0 <= sb.indexOf(name) {
		sb.mu.Unlock()
		return nil, &ScopeExists{Name: name}
	}
	s := &NamedScope{
		name:     name,
		bindings: bs,
	}
	sb.scopes = append(sb.scopes, s)
	depth := len(sb.scopes)
	sb.mu.Unlock()

	util.Logf("ScopedBindings.PushScope %s depth %d", name, depth)

	return s, notify(sb.scopeListeners.snapshot(), func(l ScopeListener) error {
		return l.ScopeAdded(s)
	})
}

// PopScope removes the current scope.  Returns CannotRemoveRoot if
// only the root is left.
func (sb *ScopedBindings) PopScope() (*NamedScope, error) {
	sb.mu.Lock()
	n := len(sb.scopes)
	if n == 1 {
		sb.mu.Unlock()
		return nil, CannotRemoveRoot
	}
	s := sb.scopes[n-1]
	sb.scopes[n-1] = nil
	sb.scopes = sb.scopes[:n-1]
	sb.mu.Unlock()

	util.Logf("ScopedBindings.PopScope %s depth %d", s.name, n-1)

	return s, sb.removed(s)
}

// PopScopes pops scopes until the named scope has been popped.  The
// popped scopes are returned innermost first.
//
// Returns NoSuchScope if the name isn't on the stack and
// CannotRemoveRoot if it names the root.  Nothing is popped in either
// case.
func (sb *ScopedBindings) PopScopes(name string) ([]*NamedScope, error) {
	sb.mu.Lock()
	i := sb.indexOf(name)
	switch {
	case i < 0:
		sb.mu.Unlock()
		return nil, &NoSuchScope{Name: name}
	case i == 0:
		sb.mu.Unlock()
		return nil, CannotRemoveRoot
	}
	popped := make([]*NamedScope, 0, len(sb.scopes)-i)
	for j := len(sb.scopes) - 1; i <= j; j-- {
		popped = append(popped, sb.scopes[j])
		sb.scopes[j] = nil
	}
	sb.scopes = sb.scopes[:i]
	sb.mu.Unlock()

	var errs []error
	for _, s := range popped {
		util.Logf("ScopedBindings.PopScopes %s", s.name)
		if err := sb.removed(s); err != nil {
			errs = append(errs, err)
		}
	}
	if 0 < len(errs) {
		return popped, &ListenerFailed{Errors: errs}
	}
	return popped, nil
}

func (sb *ScopedBindings) removed(s *NamedScope) error {
	return notify(sb.scopeListeners.snapshot(), func(l ScopeListener) error {
		return l.ScopeRemoved(s)
	})
}

// AddScopeListener registers a listener for pushes and pops.
func (sb *ScopedBindings) AddScopeListener(l ScopeListener) (remove func()) {
	return sb.scopeListeners.add(l)
}

// AddBindingListener registers the listener with every scope that's
// currently on the stack.
//
// Scopes pushed later do not get this listener.  Call
// AddBindingListener again after pushing if that's what you want.
func (sb *ScopedBindings) AddBindingListener(l BindingListener) (remove func()) {
	scopes := sb.stack()
	removes := make([]func(), len(scopes))
	for i, s := range scopes {
		removes[i] = s.bindings.AddBindingListener(l)
	}
	return func() {
		for _, r := range removes {
			r()
		}
	}
}

// Bind adds the binding to the current scope.
//
// Returns ShadowForbidden if an outer scope has a final binding with
// the same name.  Otherwise behaves like Bindings.Bind on the current
// scope.
func (sb *ScopedBindings) Bind(b *Binding) error {
	if b == nil {
		return &InvalidName{}
	}
	name := b.Name()
	if sb.opts.reserved.Contains(name) {
		return &ReservedName{Name: name}
	}

	scopes := sb.stack()
	top := len(scopes) - 1
	for i := top - 1; 0 <= i; i-- {
		if outer := scopes[i].bindings.Get(name); outer != nil && outer.IsFinal() {
			return &ShadowForbidden{
				Name:  name,
				Scope: scopes[i].name,
			}
		}
	}

	return scopes[top].bindings.Bind(b)
}

// BindValue builds a mutable binding and binds it in the current
// scope.
func (sb *ScopedBindings) BindValue(name string, t types.Type, v interface{}) (*Binding, error) {
	b, err := NewBinding(name).Type(t).Value(v).Build()
	if err != nil {
		return nil, err
	}
	if err = sb.Bind(b); err != nil {
		if _, is := err.(*ListenerFailed); is {
			return b, err
		}
		return nil, err
	}
	return b, nil
}

// Remove removes the named binding from the current scope only.
func (sb *ScopedBindings) Remove(name string) error {
	return sb.CurrentScope().bindings.Remove(name)
}

// Get returns the innermost binding with the given name.
func (sb *ScopedBindings) Get(name string) *Binding {
	scopes := sb.stack()
	for i := len(scopes) - 1; 0 <= i; i-- {
		if b := scopes[i].bindings.Get(name); b != nil {
			return b
		}
	}
	return nil
}

// GetTyped returns the innermost binding with the given name if its
// type is assignable to t.
//
// If the innermost binding with that name has an incompatible type,
// the result is nil even if an outer scope has a compatible binding
// with the same name.
func (sb *ScopedBindings) GetTyped(name string, t types.Type) *Binding {
	b := sb.Get(name)
	if b == nil || !b.Type().IsAssignableTo(t) {
		return nil
	}
	return b
}

// GetByType returns the matches from the innermost scope that has
// any.  Matches from different scopes are never merged.
func (sb *ScopedBindings) GetByType(t types.Type) []*Binding {
	return sb.innermost(func(bs *Bindings) []*Binding {
		return bs.GetByType(t)
	})
}

// GetByTypeLoose is GetByType that only compares kinds.
func (sb *ScopedBindings) GetByTypeLoose(t types.Type) []*Binding {
	return sb.innermost(func(bs *Bindings) []*Binding {
		return bs.GetByTypeLoose(t)
	})
}

func (sb *ScopedBindings) innermost(f func(*Bindings) []*Binding) []*Binding {
	scopes := sb.stack()
	for i := len(scopes) - 1; 0 <= i; i-- {
		if found := f(scopes[i].bindings); 0 < len(found) {
			return found
		}
	}
	return nil
}

// GetAll returns every binding with the given name from every scope,
// root first.
func (sb *ScopedBindings) GetAll(name string) []*Binding {
	var acc []*Binding
	for _, s := range sb.stack() {
		if b := s.bindings.Get(name); b != nil {
			acc = append(acc, b)
		}
	}
	return acc
}

// GetAllByType returns every binding assignable to t from every
// scope, root first.
func (sb *ScopedBindings) GetAllByType(t types.Type) []*Binding {
	var acc []*Binding
	for _, s := range sb.stack() {
		acc = append(acc, s.bindings.GetByType(t)...)
	}
	return acc
}

// Contains reports whether any scope binds the name.
func (sb *ScopedBindings) Contains(name string) bool {
	return sb.Get(name) != nil
}

// Names returns the distinct names bound in any scope, in order.
func (sb *ScopedBindings) Names() []string {
	seen := make(map[string]struct{}, 16)
	for _, s := range sb.stack() {
		for _, name := range s.bindings.Names() {
			seen[name] = struct{}{}
		}
	}
	acc := make([]string, 0, len(seen))
	for name := range seen {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// Size returns the number of visible (distinct) names.
func (sb *ScopedBindings) Size() int {
	return len(sb.Names())
}

// Visible returns the binding that Get would return for each visible
// name, ordered by name.
func (sb *ScopedBindings) Visible() []*Binding {
	names := sb.Names()
	acc := make([]*Binding, 0, len(names))
	for _, name := range names {
		if b := sb.Get(name); b != nil {
			acc = append(acc, b)
		}
	}
	return acc
}

// AsImmutable returns a read-only facade.  See ImmutableScopedBindings.
func (sb *ScopedBindings) AsImmutable() Environment {
	return &ImmutableScopedBindings{
		immutable: immutable{env: sb},
		sb:        sb,
	}
}
