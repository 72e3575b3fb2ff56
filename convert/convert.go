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

// Package convert is a conversion service that a core.Resolver can
// use to coerce binding values and default literals to the types that
// parameters declare.
//
// Conversions are registered by source kind and target kind.  When
// there's no conversion registered for a value's exact kind, the
// conversions for its superkinds are tried in the order they were
// registered.
package convert

import (
	"context"
	"fmt"
	"sync"

	"github.com/Comcast/rulebind/types"
	"github.com/Comcast/rulebind/util"
)

// Func converts a value to the target type.  The value's kind is the
// source kind the Func was registered with (or a subkind).
type Func func(ctx context.Context, v interface{}, target types.Type) (interface{}, error)

// Key identifies a conversion.
type Key struct {
	From *types.Kind
	To   *types.Kind
}

func (k Key) String() string {
	return k.From.String() + "->" + k.To.String()
}

// NoConverter occurs when no registered conversion can handle a
// value.
type NoConverter struct {
	Value  interface{}
	Source types.Type
	Target types.Type
}

func (e *NoConverter) Error() string {
	return fmt.Sprintf("no conversion from %s (%T) to %s", e.Source, e.Value, e.Target)
}

// Service holds conversions.  It implements core.Converter.
//
// A Service is safe for concurrent use.
type Service struct {
	sync.RWMutex

	// Registry determines the kind of a value.
	Registry *types.Registry

	fns   map[Key]Func
	order []Key
}

// NewService makes a Service with no conversions.  A nil registry
// means types.DefaultRegistry.
func NewService(reg *types.Registry) *Service {
	if reg == nil {
		reg = types.DefaultRegistry
	}
	return &Service{
		Registry: reg,
		fns:      make(map[Key]Func, 32),
	}
}

// NewDefaultService makes a Service with the built-in conversions.
func NewDefaultService() *Service {
	s := NewService(nil)
	RegisterBuiltins(s)
	return s
}

// Register adds (or replaces) the conversion for the pair of kinds.
func (s *Service) Register(from, to *types.Kind, f Func) {
	k := Key{From: from, To: to}
	s.Lock()
	if _, have := s.fns[k]; !have {
		s.order = append(s.order, k)
	}
	s.fns[k] = f
	s.Unlock()
}

// Keys returns the registered pairs in registration order.
func (s *Service) Keys() []Key {
	s.RLock()
	acc := make([]Key, len(s.order))
	copy(acc, s.order)
	s.RUnlock()
	return acc
}

// find returns the conversion for the source and target kinds.
func (s *Service) find(from, to *types.Kind) (Func, bool) {
	s.RLock()
	defer s.RUnlock()

	if f, have := s.fns[Key{From: from, To: to}]; have {
		return f, true
	}
	for _, k := range s.order {
		if k.To == to && from.IsSubkindOf(k.From) {
			return s.fns[k], true
		}
	}
	return nil, false
}

// Convert returns v if the target already accepts it.  Otherwise the
// conversion registered for v's kind and the target's kind is used.
func (s *Service) Convert(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
	if target.AcceptsValue(v) {
		return v, nil
	}

	source := s.Registry.TypeOf(v)
	if v == nil || target.Wildcard || target.Kind == nil {
		return nil, &NoConverter{Value: v, Source: source, Target: target}
	}

	f, have := s.find(source.Kind, target.Kind)
	if !have {
		return nil, &NoConverter{Value: v, Source: source, Target: target}
	}

	util.Logf("convert %s -> %s", source, target)

	return f(ctx, v, target)
}
