package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Comcast/rulebind/types"
)

// Strategy is a way to find candidate bindings for a parameter.
type Strategy int

const (
	// Unspecified is the zero Strategy.  A Resolver with it uses
	// DefaultStrategy, and a parameter with it uses the Resolver's.
	Unspecified Strategy = iota

	// ByName finds the binding with the parameter's name,
	// whatever its type.
	ByName

	// ByType finds every binding whose type is assignable to the
	// parameter's type, whatever its name.
	ByType

	// ByNameAndType finds the binding with the parameter's name
	// if its type is assignable.
	ByNameAndType

	// ByNameThenByType is ByNameAndType, falling back to ByType
	// when that finds nothing.
	ByNameThenByType

	// ByNameAndTypeThenByType is ByNameAndType, falling back to
	// ByType when that finds nothing.
	ByNameAndTypeThenByType
)

// DefaultStrategy is used by a Resolver that doesn't specify one.
var DefaultStrategy = ByNameAndTypeThenByType

var strategyNames = [...]string{
	Unspecified:             "unspecified",
	ByName:                  "byName",
	ByType:                  "byType",
	ByNameAndType:           "byNameAndType",
	ByNameThenByType:        "byNameThenByType",
	ByNameAndTypeThenByType: "byNameAndTypeThenByType",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "unknown"
	}
	return strategyNames[s]
}

// UnknownStrategy occurs when ParseStrategy doesn't recognize the
// name.
var UnknownStrategy = errors.New("unknown strategy")

// ParseStrategy finds a Strategy by (case-insensitive) name.
// Unspecified can't be parsed.
func ParseStrategy(s string) (Strategy, error) {
	for i, name := range strategyNames {
		if Strategy(i) != Unspecified && strings.EqualFold(name, s) {
			return Strategy(i), nil
		}
	}
	return Unspecified, fmt.Errorf("%w %q", UnknownStrategy, s)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(bs []byte) error {
	x, err := ParseStrategy(string(bs))
	if err != nil {
		return err
	}
	*s = x
	return nil
}

// Match runs the strategy against the environment.
//
// Name-based matching goes through env.Get, so for a ScopedBindings
// it only ever considers the innermost binding with the name, even if
// that binding's type fails the check.  Type-based matching uses
// env.GetByType (or GetByTypeLoose when loose).
func (s Strategy) Match(env Environment, name string, t types.Type, loose bool) []*Binding {
	switch s {
	case ByName:
		if b := env.Get(name); b != nil {
			return []*Binding{b}
		}
		return nil
	case ByType:
		return byType(env, t, loose)
	case ByNameAndType:
		return byNameAndType(env, name, t, loose)
	case ByNameThenByType, ByNameAndTypeThenByType:
		if found := byNameAndType(env, name, t, loose); 0 < len(found) {
			return found
		}
		return byType(env, t, loose)
	default:
		return nil
	}
}

func byType(env Environment, t types.Type, loose bool) []*Binding {
	if loose {
		return env.GetByTypeLoose(t)
	}
	return env.GetByType(t)
}

func byNameAndType(env Environment, name string, t types.Type, loose bool) []*Binding {
	if name == "" {
		return nil
	}
	b := env.Get(name)
	if b == nil || !types.Assignable(b.Type(), t, loose) {
		return nil
	}
	return []*Binding{b}
}
