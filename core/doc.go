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

// Package core provides the binding environment that rule conditions
// and actions draw their arguments from, and the machinery that
// resolves a function's parameters against that environment.
//
// A Binding is a named, typed cell.  Bindings is a flat collection of
// them, and ScopedBindings is a stack of named scopes (each with its
// own Bindings) that gives lexical-style shadowing: a lookup by name
// finds the innermost binding with that name.
//
// A function that wants to be called with arguments from an
// Environment describes its parameters with ParameterDescriptors.  A
// Resolver then runs a matching Strategy for each parameter (by name,
// by type, or some combination), unwraps or wraps the result as the
// parameter asks (Optional, or the Binding itself), falls back to a
// default, converts values when their runtime type doesn't fit, and
// reports ambiguity as an error rather than guessing.
//
// Types are described with package types.  A binding declared as
// types.Of(types.List, types.StringType) matches a parameter that
// wants a List, a List<String>, or a Collection<String>, but not a
// List<Int>.
//
// Listeners (ChangeListener, BindingListener, ScopeListener) are
// called synchronously, in registration order, by whatever goroutine
// made the change.  A listener must not modify the collection that's
// notifying it.
//
// Ideally nothing here blocks.  The only exception is a Converter,
// which the Resolver calls with the caller's context.
package core
