package core

import (
	"fmt"
	"reflect"

	"github.com/Comcast/rulebind/types"
)

// Optional is a value that might not be there.  The Resolver gives an
// Optional to parameters declared as Optional<T>.
type Optional struct {
	value   interface{}
	present bool
}

// Some makes a present Optional.
func Some(v interface{}) Optional {
	return Optional{value: v, present: true}
}

// None makes an empty Optional.
func None() Optional {
	return Optional{}
}

// IsPresent reports whether there's a value.
func (o Optional) IsPresent() bool {
	return o.present
}

// Get returns the value and whether it's present.
func (o Optional) Get() (interface{}, bool) {
	return o.value, o.present
}

// OrElse returns the value if present and v otherwise.
func (o Optional) OrElse(v interface{}) interface{} {
	if o.present {
		return o.value
	}
	return v
}

func (o Optional) String() string {
	if !o.present {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

// The kinds for identity and optional wrapping.
var (
	// BindingKind is the kind of a parameter that wants the
	// Binding itself rather than its value.
	BindingKind = types.NewKind("Binding", reflect.TypeOf(&Binding{}))

	// OptionalKind is the kind of a parameter that wants an
	// Optional.
	OptionalKind = types.NewKind("Optional", reflect.TypeOf(Optional{}))
)

func init() {
	types.DefaultRegistry.Register(BindingKind, OptionalKind)
}
