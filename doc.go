// Package rulebind provides the binding runtime for rule evaluation:
// typed named bindings, scoped environments, and the matching of rule
// function parameters to bindings.
//
// The core code is in package 'core', the type algebra is in
// 'types', and some command-line tools are in `cmd`.
package rulebind
