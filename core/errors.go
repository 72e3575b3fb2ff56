package core

// These errors are user errors, not internal errors.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Comcast/rulebind/types"
)

var (
	// CannotRemoveRoot occurs when somebody tries to pop the root
	// scope of a ScopedBindings.
	CannotRemoveRoot = errors.New("cannot remove the root scope")

	// Unsupported occurs when a mutating operation is attempted
	// through an immutable facade.
	Unsupported = errors.New("unsupported operation on an immutable environment")
)

// AlreadyExists occurs when a name is bound twice in the same
// collection.
type AlreadyExists struct {
	Name string
}

func (e *AlreadyExists) Error() string {
	return `binding "` + e.Name + `" already exists`
}

// ShadowForbidden occurs when binding a name that an outer scope has
// bound with a final binding.
type ShadowForbidden struct {
	Name  string
	Scope string
}

func (e *ShadowForbidden) Error() string {
	return `binding "` + e.Name + `" in scope "` + e.Scope + `" is final and cannot be shadowed`
}

// ScopeExists occurs when a scope is pushed with a name that's
// already on the stack.
type ScopeExists struct {
	Name string
}

func (e *ScopeExists) Error() string {
	return `scope "` + e.Name + `" already exists`
}

// NoSuchScope occurs when a named scope isn't on the stack.
type NoSuchScope struct {
	Name string
}

func (e *NoSuchScope) Error() string {
	return `no scope "` + e.Name + `"`
}

// NoSuchBinding occurs when a named binding isn't there.
type NoSuchBinding struct {
	Name string
}

func (e *NoSuchBinding) Error() string {
	return `no binding "` + e.Name + `"`
}

// Immutable occurs when a value is assigned through an immutable view
// or to a binding that was built without Mutable.
type Immutable struct {
	Name string
}

func (e *Immutable) Error() string {
	return `binding "` + e.Name + `" is immutable`
}

// TypeMismatch occurs when a binding is given a value that its
// declared type doesn't accept.
type TypeMismatch struct {
	Name  string
	Want  types.Type
	Value interface{}
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf(`binding "%s" of type %s cannot hold a %T`, e.Name, e.Want, e.Value)
}

// ReservedName occurs when an externally supplied binding name is in
// the environment's ReservedNames.
type ReservedName struct {
	Name string
}

func (e *ReservedName) Error() string {
	return `name "` + e.Name + `" is reserved`
}

// InvalidName occurs when a name isn't an identifier.
type InvalidName struct {
	Name string
}

func (e *InvalidName) Error() string {
	return `invalid binding name "` + e.Name + `"`
}

// Candidate summarizes a binding that was considered during
// resolution.
type Candidate struct {
	Name string     `json:"name"`
	Type types.Type `json:"type"`
}

func candidatesOf(bs []*Binding) []Candidate {
	acc := make([]Candidate, len(bs))
	for i, b := range bs {
		acc[i] = Candidate{
			Name: b.Name(),
			Type: b.Type(),
		}
	}
	return acc
}

// AmbiguousMatch occurs when resolution found more than one binding
// where exactly one was required.
type AmbiguousMatch struct {
	Param      string
	Type       types.Type
	Strategy   Strategy
	Candidates []Candidate
}

func (e *AmbiguousMatch) Error() string {
	cs := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		cs[i] = c.Name + ":" + c.Type.String()
	}
	return fmt.Sprintf(`ambiguous match for parameter "%s" (%s) using %s: [%s]`,
		e.Param, e.Type, e.Strategy, strings.Join(cs, ", "))
}

// ConversionFailed occurs when the Converter couldn't coerce a value
// (or a default literal) to a parameter's type.
type ConversionFailed struct {
	Param    string
	Value    interface{}
	Target   types.Type
	Strategy Strategy
	Cause    error
}

func (e *ConversionFailed) Error() string {
	s := fmt.Sprintf(`cannot convert %#v to %s for parameter "%s"`, e.Value, e.Target, e.Param)
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *ConversionFailed) Unwrap() error {
	return e.Cause
}

// ResolutionFailed gathers every parameter's failure from a single
// Resolve.
type ResolutionFailed struct {
	Errors []error
}

func (e *ResolutionFailed) Error() string {
	switch len(e.Errors) {
	case 0:
		return "resolution failed"
	case 1:
		return "resolution failed: " + e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "resolution failed with %d errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %v", i+1, err)
	}
	return b.String()
}

func (e *ResolutionFailed) Unwrap() []error {
	return e.Errors
}

// ListenerFailed gathers the errors returned by listeners.  Every
// listener runs even if an earlier one fails.
type ListenerFailed struct {
	Errors []error
}

func (e *ListenerFailed) Error() string {
	return "listener failed: " + errors.Join(e.Errors...).Error()
}

func (e *ListenerFailed) Unwrap() []error {
	return e.Errors
}
