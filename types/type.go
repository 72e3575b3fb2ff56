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

// Package types provides declared type descriptors (a nominal Kind
// plus type arguments) and the assignability checks used to match
// bindings against parameters.
//
// A Type is a value.  Compare Types with Equal, not ==.
package types

import (
	"strings"
)

// Type describes a declared type: a Kind and an ordered list of type
// arguments.  A wildcard Type ("?") has no Kind and matches
// anything.
type Type struct {
	Kind     *Kind
	Args     []Type
	Wildcard bool
}

// Any is the unbounded wildcard.
var Any = Type{Wildcard: true}

// Of makes a Type with the given kind and arguments.
func Of(k *Kind, args ...Type) Type {
	var as []Type
	if 0 < len(args) {
		as = make([]Type, len(args))
		copy(as, args)
	}
	return Type{
		Kind: k,
		Args: as,
	}
}

// Common descriptors.
var (
	ObjectType = Of(Object)
	StringType = Of(String)
	IntType    = Of(Int)
	LongType   = Of(Long)
	DoubleType = Of(Double)
	BoolType   = Of(Bool)
)

// IsZero reports whether this Type is the zero Type (no kind, not a
// wildcard).
func (t Type) IsZero() bool {
	return t.Kind == nil && !t.Wildcard && len(t.Args) == 0
}

// Raw returns the Type without its arguments.
func (t Type) Raw() Type {
	if t.Wildcard {
		return t
	}
	return Type{Kind: t.Kind}
}

// Arg returns the i-th type argument or Any if there isn't one.
func (t Type) Arg(i int) Type {
	if i < 0 || len(t.Args) <= i {
		return Any
	}
	return t.Args[i]
}

// Equal reports whether the two descriptors have the same kind and
// arguments, position by position.
func (t Type) Equal(u Type) bool {
	if t.Wildcard || u.Wildcard {
		return t.Wildcard == u.Wildcard
	}
	if t.Kind != u.Kind || len(t.Args) != len(u.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(u.Args[i]) {
			return false
		}
	}
	return true
}

// IsAssignableTo reports whether a binding declared with type t can
// be used where target is wanted.
//
// Either side being a wildcard is enough.  Otherwise t's kind must be
// target's kind or a subkind.  A target without arguments is a raw
// match.  Otherwise the arguments must agree in number and each pair
// must be assignable (no variance beyond wildcards).
func (t Type) IsAssignableTo(target Type) bool {
	if t.Wildcard || target.Wildcard {
		return true
	}
	if !t.Kind.IsSubkindOf(target.Kind) {
		return false
	}
	if len(target.Args) == 0 {
		return true
	}
	if len(t.Args) != len(target.Args) {
		return false
	}
	for i, a := range t.Args {
		if !a.IsAssignableTo(target.Args[i]) {
			return false
		}
	}
	return true
}

// IsLooselyAssignableTo only checks kinds.  Type arguments are
// ignored entirely.
func (t Type) IsLooselyAssignableTo(target Type) bool {
	if t.Wildcard || target.Wildcard {
		return true
	}
	return t.Kind.IsSubkindOf(target.Kind)
}

// Assignable is IsAssignableTo or IsLooselyAssignableTo depending on
// loose.
func Assignable(candidate, target Type, loose bool) bool {
	if loose {
		return candidate.IsLooselyAssignableTo(target)
	}
	return candidate.IsAssignableTo(target)
}

// IsUnconstrained reports whether t is a wildcard or a kind whose
// arguments are all (recursively) unconstrained wildcards, like
// List<?>.  A raw kind with no arguments is not unconstrained.
func (t Type) IsUnconstrained() bool {
	if t.Wildcard {
		return true
	}
	if len(t.Args) == 0 {
		return false
	}
	for _, a := range t.Args {
		if !a.IsUnconstrained() {
			return false
		}
	}
	return true
}

// AcceptsValue reports whether the runtime value v can be stored in
// something declared with type t.
func (t Type) AcceptsValue(v interface{}) bool {
	if t.Wildcard || t.Kind == nil {
		return true
	}
	return t.Kind.Accepts(v)
}

func (t Type) String() string {
	if t.Wildcard {
		return "?"
	}
	if t.Kind == nil {
		return "<none>"
	}
	if len(t.Args) == 0 {
		return t.Kind.Name
	}
	var b strings.Builder
	b.WriteString(t.Kind.Name)
	b.WriteString("<")
	for i, a := range t.Args {
		if 0 < i {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteString(">")
	return b.String()
}

// MarshalText renders the type with String.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses with the DefaultRegistry.
func (t *Type) UnmarshalText(bs []byte) error {
	u, err := Parse(DefaultRegistry, string(bs))
	if err != nil {
		return err
	}
	*t = u
	return nil
}
