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
	"context"
	"errors"

	"github.com/Comcast/rulebind/types"
	"github.com/Comcast/rulebind/util"
)

// Converter coerces a value to a type.  It's the one thing the
// Resolver calls that might block, so it gets a context.
type Converter interface {
	Convert(ctx context.Context, v interface{}, target types.Type) (interface{}, error)
}

// ConverterFunc adapts a function to a Converter.
type ConverterFunc func(ctx context.Context, v interface{}, target types.Type) (interface{}, error)

func (f ConverterFunc) Convert(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
	return f(ctx, v, target)
}

// NoConverter is the cause of a ConversionFailed when the Resolver has
// no Converter.
var NoConverter = errors.New("no converter")

// ZeroValuer supplies a value for a parameter when nothing matched and
// there's no default.
type ZeroValuer interface {
	Zero(t types.Type) (interface{}, bool)
}

// KindZeros is the default ZeroValuer.  It gives the Go zero value
// for primitive kinds and nothing otherwise.
type KindZeros struct{}

func (KindZeros) Zero(t types.Type) (interface{}, bool) {
	if t.Wildcard || t.Kind == nil {
		return nil, false
	}
	return t.Kind.Zero()
}

// BindingMatch records the binding (if any) that a parameter matched
// and the strategy that found it.
type BindingMatch struct {
	Parameter *ParameterDescriptor
	Binding   *Binding
	Strategy  Strategy
}

// Resolver turns ParameterDescriptors into argument values drawn from
// an Environment.
type Resolver struct {
	// Strategy is used for parameters that don't specify their
	// own.  Unspecified means DefaultStrategy.
	Strategy Strategy

	// Converter handles values (and default literals) that don't
	// fit a parameter's type.  Can be nil, in which case any
	// conversion fails.
	Converter Converter

	// Zeros supplies values for unmatched parameters without
	// defaults.  Nil means KindZeros.
	Zeros ZeroValuer

	// PreferPrimary, when true, resolves an otherwise ambiguous
	// match in favor of the one candidate marked primary (if
	// there is exactly one).
	PreferPrimary bool
}

// NewResolver makes a Resolver with DefaultStrategy.
func NewResolver(c Converter) *Resolver {
	return &Resolver{
		Strategy:  DefaultStrategy,
		Converter: c,
		Zeros:     KindZeros{},
	}
}

// StrategyFor returns the strategy used for the parameter.
func (r *Resolver) StrategyFor(p *ParameterDescriptor) Strategy {
	if s, ok := p.Strategy(); ok {
		return s
	}
	if r.Strategy == Unspecified {
		return DefaultStrategy
	}
	return r.Strategy
}

// Candidates runs the parameter's strategy against the environment.
//
// An unconstrained underlying type (like List<?>) is matched loosely,
// so a raw List binding is a candidate.
func (r *Resolver) Candidates(p *ParameterDescriptor, env Environment) ([]*Binding, Strategy) {
	s := r.StrategyFor(p)
	u := p.Underlying()
	found := s.Match(env, p.Name(), u, u.IsUnconstrained())
	if 1 < len(found) && r.PreferPrimary {
		if b := primary(found); b != nil {
			found = []*Binding{b}
		}
	}
	return found, s
}

func primary(bs []*Binding) *Binding {
	var acc *Binding
	for _, b := range bs {
		if b.IsPrimary() {
			if acc != nil {
				return nil
			}
			acc = b
		}
	}
	return acc
}

func ambiguous(p *ParameterDescriptor, s Strategy, found []*Binding) error {
	return &AmbiguousMatch{
		Param:      p.Name(),
		Type:       p.Type(),
		Strategy:   s,
		Candidates: candidatesOf(found),
	}
}

// Match finds the binding for each parameter without reading or
// converting any values.  A parameter that matched nothing gets a
// BindingMatch with a nil Binding.
func (r *Resolver) Match(params []*ParameterDescriptor, env Environment) ([]*BindingMatch, error) {
	acc := make([]*BindingMatch, 0, len(params))
	var errs []error
	for _, p := range params {
		found, s := r.Candidates(p, env)
		m := &BindingMatch{
			Parameter: p,
			Strategy:  s,
		}
		switch len(found) {
		case 0:
		case 1:
			m.Binding = found[0]
		default:
			errs = append(errs, ambiguous(p, s, found))
		}
		acc = append(acc, m)
	}
	if 0 < len(errs) {
		return nil, &ResolutionFailed{Errors: errs}
	}
	return acc, nil
}

// Resolve returns one value per parameter, in order.
//
// Every parameter is attempted.  If any fail, the result is nil and
// the error is a ResolutionFailed that holds each failure
// (AmbiguousMatch or ConversionFailed).
func (r *Resolver) Resolve(ctx context.Context, params []*ParameterDescriptor, env Environment) ([]interface{}, error) {
	acc := make([]interface{}, len(params))
	var errs []error
	for i, p := range params {
		v, err := r.ResolveParameter(ctx, p, env)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		acc[i] = v
	}
	if 0 < len(errs) {
		return nil, &ResolutionFailed{Errors: errs}
	}
	return acc, nil
}

// ResolveParameter resolves a single parameter.
func (r *Resolver) ResolveParameter(ctx context.Context, p *ParameterDescriptor, env Environment) (interface{}, error) {
	found, s := r.Candidates(p, env)
	util.Logf("Resolver parameter %s found %d via %s", p, len(found), s)

	if 1 < len(found) {
		return nil, ambiguous(p, s, found)
	}

	if p.WrapsIdentity() {
		if len(found) == 1 {
			return found[0], nil
		}
		return nil, nil
	}

	u := p.Underlying()

	if len(found) == 1 {
		v := found[0].Value()
		if !u.AcceptsValue(v) {
			var err error
			if v, err = r.convert(ctx, p, s, v); err != nil {
				return nil, err
			}
		}
		if p.WrapsOptional() {
			return Some(v), nil
		}
		return v, nil
	}

	if p.WrapsOptional() {
		return None(), nil
	}

	if lit, ok := p.Default(); ok {
		if u.AcceptsValue(lit) {
			return lit, nil
		}
		return r.convert(ctx, p, s, lit)
	}

	zs := r.Zeros
	if zs == nil {
		zs = KindZeros{}
	}
	if z, ok := zs.Zero(u); ok {
		return z, nil
	}
	return nil, nil
}

func (r *Resolver) convert(ctx context.Context, p *ParameterDescriptor, s Strategy, v interface{}) (interface{}, error) {
	fail := func(err error) error {
		return &ConversionFailed{
			Param:    p.Name(),
			Value:    v,
			Target:   p.Underlying(),
			Strategy: s,
			Cause:    err,
		}
	}
	if r.Converter == nil {
		return nil, fail(NoConverter)
	}
	x, err := r.Converter.Convert(ctx, v, p.Underlying())
	if err != nil {
		return nil, fail(err)
	}
	if !p.Underlying().AcceptsValue(x) {
		return nil, fail(&TypeMismatch{Name: p.Name(), Want: p.Underlying(), Value: x})
	}
	return x, nil
}
