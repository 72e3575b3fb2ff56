package core

import (
	"sync"
)

// ChangeListener hears about value changes on a Binding.
type ChangeListener interface {
	BindingChanged(b *Binding, oldValue, newValue interface{}) error
}

// ChangeFunc adapts a function to a ChangeListener.
type ChangeFunc func(b *Binding, oldValue, newValue interface{}) error

func (f ChangeFunc) BindingChanged(b *Binding, oldValue, newValue interface{}) error {
	return f(b, oldValue, newValue)
}

// BindingListener hears about bindings added to a collection and
// about value changes of those bindings.
type BindingListener interface {
	ChangeListener
	BindingAdded(b *Binding) error
}

// BindingFuncs adapts a pair of functions to a BindingListener.
// Either function can be nil.
type BindingFuncs struct {
	Added   func(b *Binding) error
	Changed func(b *Binding, oldValue, newValue interface{}) error
}

func (fs *BindingFuncs) BindingAdded(b *Binding) error {
	if fs.Added == nil {
		return nil
	}
	return fs.Added(b)
}

func (fs *BindingFuncs) BindingChanged(b *Binding, oldValue, newValue interface{}) error {
	if fs.Changed == nil {
		return nil
	}
	return fs.Changed(b, oldValue, newValue)
}

// ScopeListener hears about scopes pushed onto and popped off of a
// ScopedBindings.
type ScopeListener interface {
	ScopeAdded(s *NamedScope) error
	ScopeRemoved(s *NamedScope) error
}

// ScopeFuncs adapts a pair of functions to a ScopeListener.  Either
// function can be nil.
type ScopeFuncs struct {
	Added   func(s *NamedScope) error
	Removed func(s *NamedScope) error
}

func (fs *ScopeFuncs) ScopeAdded(s *NamedScope) error {
	if fs.Added == nil {
		return nil
	}
	return fs.Added(s)
}

func (fs *ScopeFuncs) ScopeRemoved(s *NamedScope) error {
	if fs.Removed == nil {
		return nil
	}
	return fs.Removed(s)
}

// listeners is a copy-on-write list.  Readers get a snapshot and call
// it without holding any lock.
//
// Entries have ids so that listeners that aren't comparable (like
// ChangeFuncs) can still be removed.
type listeners[L any] struct {
	mu      sync.Mutex
	next    int
	entries []listenerEntry[L]
}

type listenerEntry[L any] struct {
	id int
	l  L
}

// add appends the listener and returns a function that removes it.
func (ls *listeners[L]) add(l L) func() {
	ls.mu.Lock()
	ls.next++
	id := ls.next
	entries := make([]listenerEntry[L], len(ls.entries), len(ls.entries)+1)
	copy(entries, ls.entries)
	ls.entries = append(entries, listenerEntry[L]{id: id, l: l})
	ls.mu.Unlock()

	return func() {
		ls.remove(id)
	}
}

func (ls *listeners[L]) remove(id int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for i, e := range ls.entries {
		if e.id == id {
			entries := make([]listenerEntry[L], 0, len(ls.entries)-1)
			entries = append(entries, ls.entries[:i]...)
			ls.entries = append(entries, ls.entries[i+1:]...)
			return
		}
	}
}

func (ls *listeners[L]) snapshot() []L {
	ls.mu.Lock()
	entries := ls.entries
	ls.mu.Unlock()

	acc := make([]L, len(entries))
	for i, e := range entries {
		acc[i] = e.l
	}
	return acc
}

func (ls *listeners[L]) size() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.entries)
}

// notify calls f for every listener, in order, and gathers the
// errors.
func notify[L any](ls []L, f func(L) error) error {
	var errs []error
	for _, l := range ls {
		if err := f(l); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ListenerFailed{Errors: errs}
}
