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
	"time"
)

// Kind is a nominal type: a name, a set of direct supertypes, and a
// predicate that says which Go values inhabit the kind.
//
// Kinds are compared by identity.  Make them once (usually in an
// init) and Register them with a Registry.
type Kind struct {
	// Name is the nominal name, like "String" or "List".
	Name string

	// Supers are the direct supertypes.  Object is implicit.
	Supers []*Kind

	// Primitive kinds have a non-nil zero value and do not accept
	// nil.
	Primitive bool

	// accepts reports whether a Go type inhabits this kind.  If
	// nil, every Go type does.
	accepts func(reflect.Type) bool

	// goType is the canonical Go type (if any), which is used for
	// Zero and for Registry lookups by Go type.
	goType reflect.Type
}

// NewKind makes a Kind whose values are exactly the given Go type
// (or anything assignable to it).
//
// A nil goType makes an abstract kind that accepts nothing on its
// own; use NewKindFunc for something more interesting.
func NewKind(name string, goType reflect.Type, supers ...*Kind) *Kind {
	k := &Kind{
		Name:   name,
		Supers: supers,
		goType: goType,
	}
	if goType == nil {
		k.accepts = func(reflect.Type) bool { return false }
	} else {
		k.accepts = func(t reflect.Type) bool {
			return t.AssignableTo(goType)
		}
	}
	return k
}

// NewKindFunc makes a Kind with a custom acceptance predicate.
func NewKindFunc(name string, accepts func(reflect.Type) bool, supers ...*Kind) *Kind {
	return &Kind{
		Name:    name,
		Supers:  supers,
		accepts: accepts,
	}
}

// GoType returns the canonical Go type, which might be nil.
func (k *Kind) GoType() reflect.Type {
	return k.goType
}

// IsSubkindOf reports whether k is other or (transitively) one of
// other's subkinds.  Every kind is a subkind of Object.
func (k *Kind) IsSubkindOf(other *Kind) bool {
	if k == nil || other == nil {
		return false
	}
	if k == other || other == Object {
		return true
	}
	for _, s := range k.Supers {
		if s.IsSubkindOf(other) {
			return true
		}
	}
	return false
}

// Accepts reports whether the given runtime value inhabits this kind.
//
// Type arguments are not checked (runtime values are erased).  A nil
// value is accepted only by non-primitive kinds.
func (k *Kind) Accepts(v interface{}) bool {
	if v == nil {
		return !k.Primitive
	}
	return k.AcceptsGoType(reflect.TypeOf(v))
}

// AcceptsGoType is Accepts for a reflect.Type.
//
// A kind accepts a Go type if its own predicate does or if any
// registered subkind's predicate would.  We only look at the kind's
// own predicate here; abstract kinds like Number should provide a
// predicate that covers their subkinds.
func (k *Kind) AcceptsGoType(t reflect.Type) bool {
	if k.accepts == nil {
		return true
	}
	return k.accepts(t)
}

// Zero returns the zero value for a primitive kind.
func (k *Kind) Zero() (interface{}, bool) {
	if !k.Primitive || k.goType == nil {
		return nil, false
	}
	return reflect.Zero(k.goType).Interface(), true
}

func (k *Kind) String() string {
	if k == nil {
		return "<nil>"
	}
	return k.Name
}

func goKinds(ks ...reflect.Kind) func(reflect.Type) bool {
	return func(t reflect.Type) bool {
		for _, k := range ks {
			if t.Kind() == k {
				return true
			}
		}
		return false
	}
}

// The built-in kinds.
var (
	// Object is the root of the kind hierarchy.  It accepts
	// anything.
	Object = NewKindFunc("Object", nil)

	String = NewKind("String", reflect.TypeOf(""))
	Bool   = NewKind("Bool", reflect.TypeOf(false))

	Number = NewKindFunc("Number", goKinds(
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64))

	Int    = NewKind("Int", reflect.TypeOf(int(0)), Number)
	Long   = NewKind("Long", reflect.TypeOf(int64(0)), Number)
	Float  = NewKind("Float", reflect.TypeOf(float32(0)), Number)
	Double = NewKind("Double", reflect.TypeOf(float64(0)), Number)

	Collection = NewKindFunc("Collection", goKinds(reflect.Slice, reflect.Array))
	List       = NewKindFunc("List", goKinds(reflect.Slice, reflect.Array), Collection)
	Map        = NewKindFunc("Map", goKinds(reflect.Map))

	Duration = NewKind("Duration", reflect.TypeOf(time.Duration(0)))
	Time     = NewKind("Time", reflect.TypeOf(time.Time{}))
)

func init() {
	for _, k := range []*Kind{String, Bool, Int, Long, Float, Double, Duration, Time} {
		k.Primitive = true
	}
	List.goType = reflect.TypeOf([]interface{}{})
	Map.goType = reflect.TypeOf(map[string]interface{}{})
}
