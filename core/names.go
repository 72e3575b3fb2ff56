package core

import (
	"regexp"
	"sort"
)

// identifier is the grammar for binding names.
var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// IsValidName reports whether the string can name a Binding.
func IsValidName(name string) bool {
	return identifier.MatchString(name)
}

// ReservedNames is an immutable set of names that an environment will
// not bind on behalf of callers.
type ReservedNames struct {
	names map[string]struct{}
}

// NewReservedNames makes a set from the given names.
func NewReservedNames(names ...string) ReservedNames {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return ReservedNames{names: m}
}

// Contains reports whether the name is reserved.
func (rs ReservedNames) Contains(name string) bool {
	_, have := rs.names[name]
	return have
}

// Names returns the reserved names in order.
func (rs ReservedNames) Names() []string {
	acc := make([]string, 0, len(rs.names))
	for n := range rs.names {
		acc = append(acc, n)
	}
	sort.Strings(acc)
	return acc
}

// DefaultReservedNames are the names a rule engine binds for itself.
var DefaultReservedNames = NewReservedNames(
	"bindings",
	"scope",
	"ruleContext",
	"ruleSet",
	"result",
)
