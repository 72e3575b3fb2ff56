package core

import (
	"context"
	"fmt"
)

// Function is a Go function whose arguments are resolved from an
// Environment.  Conditions and actions of a rule are Functions.
type Function struct {
	// Name is for diagnostics.
	Name string `json:"name,omitempty"`

	// Doc describes the function in English and Markdown.
	Doc string `json:"doc,omitempty"`

	// Params are the argument slots, in order.
	Params []*ParameterDescriptor `json:"-"`

	// F receives one value per parameter.
	F func(ctx context.Context, args []interface{}) (interface{}, error) `json:"-"`
}

// Invoke resolves the arguments and calls F.
//
// Resolution happens completely before F is called.  If any parameter
// fails to resolve, F is not called.
func (f *Function) Invoke(ctx context.Context, r *Resolver, env Environment) (interface{}, error) {
	args, err := r.Resolve(ctx, f.Params, env)
	if err != nil {
		return nil, &InvocationFailed{Function: f.Name, Cause: err}
	}
	return f.F(ctx, args)
}

// Condition invokes the function as a condition, which must return a
// bool.
func (f *Function) Condition(ctx context.Context, r *Resolver, env Environment) (bool, error) {
	x, err := f.Invoke(ctx, r, env)
	if err != nil {
		return false, err
	}
	b, is := x.(bool)
	if !is {
		return false, &NotACondition{Function: f.Name, Value: x}
	}
	return b, nil
}

// InvocationFailed occurs when a Function's arguments couldn't be
// resolved.
type InvocationFailed struct {
	Function string
	Cause    error
}

func (e *InvocationFailed) Error() string {
	return `function "` + e.Function + `": ` + e.Cause.Error()
}

func (e *InvocationFailed) Unwrap() error {
	return e.Cause
}

// NotACondition occurs when a Function used as a condition returns
// something other than a bool.
type NotACondition struct {
	Function string
	Value    interface{}
}

func (e *NotACondition) Error() string {
	return fmt.Sprintf(`condition "%s" returned a %T, not a bool`, e.Function, e.Value)
}
