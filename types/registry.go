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

package types

import (
	"reflect"
	"sync"
)

// Registry maps kind names (and canonical Go types) to Kinds.
//
// Lookups are safe for concurrent use.  Registration usually happens
// in init functions.
type Registry struct {
	sync.RWMutex

	byName map[string]*Kind
	byGo   map[reflect.Type]*Kind

	// ordered remembers registration order for TypeOf fallbacks.
	ordered []*Kind
}

// NewRegistry makes an empty Registry.  See DefaultRegistry for one
// that has the built-in kinds.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Kind, 32),
		byGo:   make(map[reflect.Type]*Kind, 32),
	}
}

// DefaultRegistry has the built-in kinds.  Other packages add their
// own kinds (e.g. "Binding", "Optional").
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(Object, String, Bool, Int, Long, Float, Double,
		Number, List, Collection, Map, Duration, Time)
}

// Register adds the kinds.  A kind with a name that's already
// registered replaces the old one.
func (r *Registry) Register(ks ...*Kind) {
	r.Lock()
	for _, k := range ks {
		if old, have := r.byName[k.Name]; have {
			for i, o := range r.ordered {
				if o == old {
					r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
					break
				}
			}
		}
		r.byName[k.Name] = k
		if k.goType != nil {
			r.byGo[k.goType] = k
		}
		r.ordered = append(r.ordered, k)
	}
	r.Unlock()
}

// Lookup finds a kind by name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	r.RLock()
	k, have := r.byName[name]
	r.RUnlock()
	return k, have
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []*Kind {
	r.RLock()
	acc := make([]*Kind, len(r.ordered))
	copy(acc, r.ordered)
	r.RUnlock()
	return acc
}

// TypeOf returns a raw Type describing the runtime value.
//
// An exact match on a kind's canonical Go type wins.  Otherwise the
// first registered kind (other than Object) that accepts the value's
// Go type is used, and Object is the last resort.  Nil gives Any.
func (r *Registry) TypeOf(v interface{}) Type {
	if v == nil {
		return Any
	}
	t := reflect.TypeOf(v)

	r.RLock()
	defer r.RUnlock()

	if k, have := r.byGo[t]; have {
		return Of(k)
	}
	for _, k := range r.ordered {
		if k == Object || k.accepts == nil {
			continue
		}
		if k.accepts(t) {
			return Of(k)
		}
	}
	return ObjectType
}

// TypeOf is DefaultRegistry.TypeOf.
func TypeOf(v interface{}) Type {
	return DefaultRegistry.TypeOf(v)
}
