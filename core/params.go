/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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
	"github.com/Comcast/rulebind/types"
)

// ParameterDescriptor describes one argument slot of a function whose
// arguments come from an Environment.
//
// A declared type of Binding<T> asks for the Binding itself (identity
// wrapping); Optional<T> asks for an Optional.  In both cases T is the
// underlying type that's used for matching.
//
// Descriptors are made once with NewParameter and never change.
type ParameterDescriptor struct {
	name       string
	declared   types.Type
	underlying types.Type
	identity   bool
	optional   bool
	strategy   *Strategy
	def        *string
	doc        string
}

// Name is the parameter's name, which might be empty.
func (p *ParameterDescriptor) Name() string {
	return p.name
}

// Type is the declared type.
func (p *ParameterDescriptor) Type() types.Type {
	return p.declared
}

// Underlying is the type used for matching: the declared type with
// any Binding or Optional wrapper removed.
func (p *ParameterDescriptor) Underlying() types.Type {
	return p.underlying
}

// WrapsIdentity reports whether the parameter wants the Binding
// itself.
func (p *ParameterDescriptor) WrapsIdentity() bool {
	return p.identity
}

// WrapsOptional reports whether the parameter wants an Optional.
func (p *ParameterDescriptor) WrapsOptional() bool {
	return p.optional
}

// Strategy returns the explicit strategy (if any).
func (p *ParameterDescriptor) Strategy() (Strategy, bool) {
	if p.strategy == nil || *p.strategy == Unspecified {
		return Unspecified, false
	}
	return *p.strategy, true
}

// Default returns the default literal (if any).
func (p *ParameterDescriptor) Default() (string, bool) {
	if p.def == nil {
		return "", false
	}
	return *p.def, true
}

// Doc describes the parameter in English and Markdown.  Audience is
// developers.
func (p *ParameterDescriptor) Doc() string {
	return p.doc
}

func (p *ParameterDescriptor) String() string {
	return p.name + ":" + p.declared.String()
}

// InvalidParameter occurs when a ParameterBuilder can't make sense of
// what it was given.
type InvalidParameter struct {
	Name   string
	Reason string
}

func (e *InvalidParameter) Error() string {
	return `invalid parameter "` + e.Name + `": ` + e.Reason
}

// ParameterBuilder accumulates the pieces of a ParameterDescriptor.
type ParameterBuilder struct {
	p ParameterDescriptor
}

// NewParameter starts a descriptor with the given name and declared
// type.
//
// The name can be empty for a parameter that's only ever matched by
// type.
func NewParameter(name string, declared types.Type) *ParameterBuilder {
	return &ParameterBuilder{
		p: ParameterDescriptor{
			name:     name,
			declared: declared,
		},
	}
}

// Strategy overrides the Resolver's strategy for this parameter.
func (pb *ParameterBuilder) Strategy(s Strategy) *ParameterBuilder {
	pb.p.strategy = &s
	return pb
}

// Default sets the literal that's converted to the underlying type
// when nothing matches.
func (pb *ParameterBuilder) Default(literal string) *ParameterBuilder {
	pb.p.def = &literal
	return pb
}

// Doc sets the documentation.
func (pb *ParameterBuilder) Doc(s string) *ParameterBuilder {
	pb.p.doc = s
	return pb
}

// Build derives the wrapping flags and the underlying type.
func (pb *ParameterBuilder) Build() (*ParameterDescriptor, error) {
	p := pb.p
	if p.name != "" && !IsValidName(p.name) {
		return nil, &InvalidName{Name: p.name}
	}
	if p.declared.IsZero() {
		return nil, &InvalidParameter{Name: p.name, Reason: "no type"}
	}

	p.underlying = p.declared
	if !p.declared.Wildcard {
		switch p.declared.Kind {
		case BindingKind:
			p.identity = true
			p.underlying = p.declared.Arg(0)
		case OptionalKind:
			p.optional = true
			p.underlying = p.declared.Arg(0)
		}
	}
	if 1 < len(p.declared.Args) && (p.identity || p.optional) {
		return nil, &InvalidParameter{Name: p.name, Reason: "too many type arguments for " + p.declared.String()}
	}
	if !p.underlying.Wildcard {
		switch p.underlying.Kind {
		case BindingKind, OptionalKind:
			return nil, &InvalidParameter{Name: p.name, Reason: "nested wrapping in " + p.declared.String()}
		}
	}
	if p.identity && p.def != nil {
		return nil, &InvalidParameter{Name: p.name, Reason: "a Binding parameter can't have a default"}
	}
	if p.name == "" {
		if s, ok := p.Strategy(); ok && (s == ByName || s == ByNameAndType) {
			return nil, &InvalidParameter{Reason: "strategy " + s.String() + " needs a name"}
		}
	}

	return &p, nil
}

// MustBuild is Build that panics.
func (pb *ParameterBuilder) MustBuild() *ParameterDescriptor {
	p, err := pb.Build()
	if err != nil {
		panic(err)
	}
	return p
}
