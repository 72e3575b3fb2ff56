package types

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError occurs when Parse can't make sense of a type string.
type SyntaxError struct {
	Src    string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bad type %q at %d: %s", e.Src, e.Offset, e.Msg)
}

// UnknownKind occurs when a type string names a kind that isn't
// registered.
type UnknownKind struct {
	Name string
}

func (e *UnknownKind) Error() string {
	return `unknown kind "` + e.Name + `"`
}

// Parse reads a type string like "Map<String, List<?>>".
//
// Grammar:
//
//	type = "?" | name [ "<" type { "," type } ">" ]
func Parse(r *Registry, s string) (Type, error) {
	if r == nil {
		r = DefaultRegistry
	}
	p := &parser{src: s, reg: r}
	t, err := p.typ()
	if err != nil {
		return Type{}, err
	}
	p.space()
	if p.pos < len(p.src) {
		return Type{}, p.fail("trailing input")
	}
	return t, nil
}

// MustParse is Parse that panics.  For tests and package-level vars.
func MustParse(s string) Type {
	t, err := Parse(DefaultRegistry, s)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src string
	pos int
	reg *Registry
}

func (p *parser) fail(msg string) error {
	return &SyntaxError{Src: p.src, Offset: p.pos, Msg: msg}
}

func (p *parser) space() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.space()
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) name() string {
	p.space()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c == '_' || c == '.' || unicode.IsLetter(c) || (start < p.pos && unicode.IsDigit(c)) {
			p.pos++
			continue
		}
		break
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

func (p *parser) typ() (Type, error) {
	if p.peek() == '?' {
		p.pos++
		return Any, nil
	}
	n := p.name()
	if n == "" {
		return Type{}, p.fail("expected a kind name or '?'")
	}
	k, have := p.reg.Lookup(n)
	if !have {
		return Type{}, &UnknownKind{Name: n}
	}
	if p.peek() != '<' {
		return Of(k), nil
	}
	p.pos++

	var args []Type
	for {
		a, err := p.typ()
		if err != nil {
			return Type{}, err
		}
		args = append(args, a)
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return Of(k, args...), nil
		default:
			return Type{}, p.fail("expected ',' or '>'")
		}
	}
}
